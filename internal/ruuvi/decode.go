package ruuvi

import (
	"encoding/base64"
	"strings"
)

const (
	urlHostMarker = "ruu.vi"

	// Format 4 URLs drop the last base64 character of the eddystone id.
	truncatedFragmentLen = 9
	truncatedFragmentPad = "a=="

	formatOffset = 2
)

var urlSafe = strings.NewReplacer("-", "+", "_", "/")

// DecodeURL decodes the format 2 or 4 reading carried in the fragment of a
// ruu.vi URL.
func DecodeURL(url string) (V24, error) {
	if !strings.Contains(url, urlHostMarker) {
		return V24{}, &DecodeError{Kind: KindNotRuuviURL}
	}

	_, fragment, found := strings.Cut(url, "#")
	if !found || fragment == "" {
		return V24{}, &DecodeError{Kind: KindMalformedURL}
	}

	data, err := decodeFragment(fragment)
	if err != nil {
		return V24{}, &DecodeError{Kind: KindMalformedEncoding, Err: err}
	}

	if len(data) < v24MinLength || len(data) > v24MaxLength {
		return V24{}, &DecodeError{Kind: KindMalformedLength, Length: len(data)}
	}

	switch f := Format(data[0]); f {
	case FormatV2, FormatV4:
		return decodeV24(data), nil
	default:
		return V24{}, &DecodeError{Kind: KindUnsupportedFormat, Format: f}
	}
}

func decodeFragment(fragment string) ([]byte, error) {
	if len(fragment) == truncatedFragmentLen {
		fragment += truncatedFragmentPad
	}

	fragment = strings.TrimRight(urlSafe.Replace(fragment), "=")

	// A lone trailing character carries fewer than 8 bits and is ignored.
	if len(fragment)%4 == 1 {
		fragment = fragment[:len(fragment)-1]
	}

	return base64.RawStdEncoding.DecodeString(fragment) //nolint:wrapcheck
}

// DecodeAdvertisement decodes manufacturer data whose first two bytes are
// the company id, already verified by the caller, followed by the format id.
func DecodeAdvertisement(data []byte) (Reading, error) {
	if len(data) <= formatOffset {
		return nil, &DecodeError{Kind: KindMalformedLength, Length: len(data)}
	}

	switch f := Format(data[formatOffset]); f {
	case FormatV3:
		r, err := decodeV3(data)
		if err != nil {
			return nil, err
		}

		return r, nil
	case FormatV5:
		r, err := decodeV5(data)
		if err != nil {
			return nil, err
		}

		return r, nil
	default:
		return nil, &DecodeError{Kind: KindUnsupportedFormat, Format: f}
	}
}
