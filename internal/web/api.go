package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ruuvi-sensor/internal/codec"
	"ruuvi-sensor/internal/ingest"
	"ruuvi-sensor/internal/packet"
	"ruuvi-sensor/internal/ruuvi"
)

const maxDecodeBody = 4096

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write json", "error", err)
	}
}

func errorKind(err error) string {
	if kind := ruuvi.KindOf(err); kind != 0 {
		return kind.String()
	}

	if errors.Is(err, ingest.ErrForeign) {
		return "foreign"
	}

	return "unknown"
}

func devicesHandler(s stats) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.Current())
	}
}

// decodeHandler decodes a single URL or hex payload without recording it.
// The reply is CBOR when the Accept header asks for application/cbor.
func decodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxDecodeBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "read_body"})

			return
		}

		reading, err := ingest.Decode(body)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: errorKind(err)})

			return
		}

		enc := codec.Negotiate(r.Header.Get("Accept"))

		p := packet.New(reading, time.Now())
		p.URL = ingest.SourceURL(body)

		b, err := enc.Marshal(p)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Kind: "encode"})

			return
		}

		w.Header().Set("Content-Type", enc.ContentType())

		if _, err := w.Write(b); err != nil {
			slog.DebugContext(r.Context(), "write decode response", "error", err)
		}
	}
}
