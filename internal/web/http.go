package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	iofs "io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ruuvi-sensor/internal/dataset"
	"ruuvi-sensor/internal/packet"
)

const (
	readHeaderTimeout = 2 * time.Second
)

type stats interface {
	EventResponse() *dataset.EventResponse
	Current() []packet.Packet
}

type eventEmitter interface {
	Subscribe() chan packet.Packet
	Unsubscribe(ch chan packet.Packet)
}

type metricsWriter interface {
	WritePrometheus(w io.Writer)
}

//go:embed public
var publicFiles embed.FS

//go:embed templates
var templateFiles embed.FS

var errStreamUnsupported = errors.New("streaming unsupported")

func newServer(ctx context.Context, addr string) *http.Server {
	return &http.Server{
		ReadHeaderTimeout: readHeaderTimeout,
		Addr:              addr,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
}

func sendResponse(w http.ResponseWriter, response *dataset.EventResponse) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errStreamUnsupported
	}

	if _, err := fmt.Fprintf(w, "data: "); err != nil {
		return fmt.Errorf("error writing to client: %w", err)
	}

	encoder := json.NewEncoder(w)

	if err := encoder.Encode(response); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}

	if _, err := fmt.Fprint(w, "\n"); err != nil {
		return fmt.Errorf("error writing to client: %w", err)
	}

	flusher.Flush()

	return nil
}

func subscribeHandler(emitter eventEmitter, s stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch := emitter.Subscribe()
		defer emitter.Unsubscribe(ch)

		ctx := r.Context()

		if err := sendResponse(w, s.EventResponse()); err != nil {
			slog.ErrorContext(ctx, "sse", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}

				if err := sendResponse(w, s.EventResponse()); err != nil {
					slog.DebugContext(ctx, "sse", "error", err)

					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

func fileExists(fs embed.FS, path string) bool {
	_, err := fs.Open(path)

	return !errors.Is(err, iofs.ErrNotExist)
}

func mainHandler(fs http.Handler, tmpl *template.Template, s stats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)

			return
		}

		path := "public" + r.URL.Path
		if r.URL.Path != "/" && fileExists(publicFiles, path) {
			r.URL.Path = path
			fs.ServeHTTP(w, r)

			return
		}

		jsonData, err := json.Marshal(s.EventResponse())
		if err != nil {
			slog.ErrorContext(r.Context(), "main page", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		data := struct {
			JSONData template.JS
		}{
			JSONData: template.JS(jsonData), //nolint:gosec
		}

		if err := tmpl.Execute(w, data); err != nil {
			slog.ErrorContext(r.Context(), "main page", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func metricsHandler(m metricsWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m.WritePrometheus(w)
	}
}

func New(ctx context.Context, addr string, emitter eventEmitter, s stats, m metricsWriter) (*http.Server, error) {
	handler, err := newHandler(emitter, s, m)
	if err != nil {
		return nil, err
	}

	srv := newServer(ctx, addr)
	srv.Handler = handler

	return srv, nil
}

func newHandler(emitter eventEmitter, s stats, m metricsWriter) (http.Handler, error) {
	fs := http.FileServer(http.FS(publicFiles))

	tmpl, err := template.ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	mux := http.NewServeMux()

	mux.Handle("/", mainHandler(fs, tmpl, s))
	mux.Handle("/subscribe", subscribeHandler(emitter, s))
	mux.Handle("/ws", websocketHandler(emitter, s))
	mux.Handle("GET /api/devices", devicesHandler(s))
	mux.Handle("POST /api/decode", decodeHandler())
	mux.Handle("GET /metrics", metricsHandler(m))

	return mux, nil
}
