package ruuvi

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindNotRuuviURL ErrorKind = iota + 1
	KindMalformedURL
	KindMalformedLength
	KindUnsupportedFormat
	KindMalformedEncoding
)

var (
	ErrNotRuuviURL       = errors.New("not a ruuvi url")
	ErrMalformedURL      = errors.New("malformed url")
	ErrMalformedLength   = errors.New("malformed length")
	ErrUnsupportedFormat = errors.New("unsupported data format")
	ErrMalformedEncoding = errors.New("malformed encoding")
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotRuuviURL:
		return "not_ruuvi_url"
	case KindMalformedURL:
		return "malformed_url"
	case KindMalformedLength:
		return "malformed_length"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindMalformedEncoding:
		return "malformed_encoding"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotRuuviURL:
		return ErrNotRuuviURL
	case KindMalformedURL:
		return ErrMalformedURL
	case KindMalformedLength:
		return ErrMalformedLength
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindMalformedEncoding:
		return ErrMalformedEncoding
	default:
		return nil
	}
}

// DecodeError reports why a payload could not be decoded. Format is set for
// unsupported-format and format-specific length errors, Length for length
// errors.
type DecodeError struct {
	Kind   ErrorKind
	Format Format
	Length int
	Err    error
}

func (e *DecodeError) Error() string {
	var msg string

	switch e.Kind {
	case KindUnsupportedFormat:
		msg = fmt.Sprintf("%s: %d", e.Kind.sentinel(), uint8(e.Format))
	case KindMalformedLength:
		if e.Format != 0 {
			msg = fmt.Sprintf("%s: %d bytes for format %d", e.Kind.sentinel(), e.Length, uint8(e.Format))
		} else {
			msg = fmt.Sprintf("%s: %d bytes", e.Kind.sentinel(), e.Length)
		}
	default:
		msg = fmt.Sprint(e.Kind.sentinel())
	}

	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *DecodeError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// KindOf returns the kind of a decode error, or zero when err is not one.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}

	return 0
}
