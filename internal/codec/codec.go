package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

type Encoding string

const (
	JSON Encoding = "json"
	CBOR Encoding = "cbor"
)

// encMode uses Core Deterministic Encoding so equal packets produce equal
// bytes on the wire.
var encMode cbor.EncMode

func init() {
	var err error

	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano

	encMode, err = opts.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

func Parse(s string) (Encoding, error) {
	switch e := Encoding(s); e {
	case JSON, CBOR:
		return e, nil
	default:
		return "", fmt.Errorf("unknown encoding %q", s)
	}
}

func (e Encoding) Marshal(v any) ([]byte, error) {
	switch e {
	case CBOR:
		b, err := encMode.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cbor marshal: %w", err)
		}

		return b, nil
	case JSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("json marshal: %w", err)
		}

		return b, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", string(e))
	}
}

// Negotiate picks CBOR when the Accept header asks for it, JSON otherwise.
func Negotiate(accept string) Encoding {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(mediaType, CBOR.ContentType()) {
			return CBOR
		}
	}

	return JSON
}

func (e Encoding) ContentType() string {
	if e == CBOR {
		return "application/cbor"
	}

	return "application/json"
}
