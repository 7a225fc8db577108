package ingest

import (
	"bytes"
	"encoding/hex"
)

type payloadKind int

const (
	kindBinary payloadKind = iota
	kindHex
	kindURL
)

var urlMarker = []byte("ruu.vi")

// classify tells URL text and hex text apart from binary manufacturer data.
func classify(payload []byte) payloadKind {
	trimmed := bytes.TrimSpace(payload)

	if bytes.Contains(trimmed, urlMarker) || bytes.HasPrefix(trimmed, []byte("http")) {
		return kindURL
	}

	if len(trimmed) > 0 && len(trimmed)%2 == 0 && isHex(trimmed) {
		return kindHex
	}

	return kindBinary
}

func isHex(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return true
}

func decodeHex(payload []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	out := make([]byte, hex.DecodedLen(len(trimmed)))

	if _, err := hex.Decode(out, trimmed); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return out, nil
}

// SourceURL returns payload as a URL when it carries a ruu.vi URL.
func SourceURL(payload []byte) string {
	if classify(payload) != kindURL {
		return ""
	}

	return string(bytes.TrimSpace(payload))
}
