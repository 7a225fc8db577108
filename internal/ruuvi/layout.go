package ruuvi

type signing uint8

const (
	unsigned signing = iota
	twosComplement
	signMagnitude
	nearComplement
)

// field locates one big-endian value inside a payload.
type field struct {
	offset int
	width  int
	sign   signing
}

func (f field) end() int {
	return f.offset + f.width
}

func (f field) raw(b []byte) uint16 {
	var v uint16
	for _, x := range b[f.offset:f.end()] {
		v = v<<8 | uint16(x)
	}

	return v
}

func (f field) value(b []byte) int {
	raw := f.raw(b)

	switch f.sign {
	case twosComplement:
		return twosComplement16(raw)
	case signMagnitude:
		return recoverSigned(byte(raw))
	case nearComplement:
		return nearComplement16(raw)
	default:
		return int(raw)
	}
}

// minLength is the shortest payload that holds every field.
func minLength(fields ...field) int {
	n := 0
	for _, f := range fields {
		n = max(n, f.end())
	}

	return n
}

var v24Layout = struct {
	format, humidity, temperature, pressure, eddystoneID field
}{
	format:      field{offset: 0, width: 1},
	humidity:    field{offset: 1, width: 1},
	temperature: field{offset: 2, width: 1, sign: signMagnitude},
	pressure:    field{offset: 4, width: 2},
	eddystoneID: field{offset: 6, width: 1},
}

// Format 3 temperature is two bytes read separately, see signMagnitude128.
var v3Layout = struct {
	humidity, tempWhole, tempFraction, pressure, accX, accY, accZ, battery field
}{
	humidity:     field{offset: 3, width: 1},
	tempWhole:    field{offset: 4, width: 1},
	tempFraction: field{offset: 5, width: 1},
	pressure:     field{offset: 6, width: 2},
	accX:         field{offset: 8, width: 2, sign: twosComplement},
	accY:         field{offset: 10, width: 2, sign: twosComplement},
	accZ:         field{offset: 12, width: 2, sign: twosComplement},
	battery:      field{offset: 14, width: 2},
}

var v5Layout = struct {
	temperature, humidity, pressure, accX, accY, accZ, power, movement, sequence field
}{
	temperature: field{offset: 3, width: 2, sign: nearComplement},
	humidity:    field{offset: 5, width: 2},
	pressure:    field{offset: 7, width: 2},
	accX:        field{offset: 9, width: 2, sign: twosComplement},
	accY:        field{offset: 11, width: 2, sign: twosComplement},
	accZ:        field{offset: 13, width: 2, sign: twosComplement},
	power:       field{offset: 15, width: 2},
	movement:    field{offset: 17, width: 1},
	sequence:    field{offset: 18, width: 2},
}

var (
	v24MinLength = minLength(v24Layout.format, v24Layout.humidity, v24Layout.temperature, v24Layout.pressure)
	v24MaxLength = v24Layout.eddystoneID.end()
	v3MinLength  = minLength(v3Layout.humidity, v3Layout.tempWhole, v3Layout.tempFraction,
		v3Layout.pressure, v3Layout.accX, v3Layout.accY, v3Layout.accZ, v3Layout.battery)
	v5MinLength = minLength(v5Layout.temperature, v5Layout.humidity, v5Layout.pressure,
		v5Layout.accX, v5Layout.accY, v5Layout.accZ, v5Layout.power, v5Layout.movement, v5Layout.sequence)
)
