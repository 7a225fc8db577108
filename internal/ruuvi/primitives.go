package ruuvi

import "math"

// recoverSigned reads a byte whose high bit is a sign flag and whose low
// seven bits are the magnitude.
func recoverSigned(b byte) int {
	magnitude := int(b & 0x7F)
	if b&0x80 != 0 {
		return -magnitude
	}

	return magnitude
}

func twosComplement16(raw uint16) int {
	if raw > math.MaxInt16 {
		return int(raw) - 65536
	}

	return int(raw)
}

// nearComplement16 is the format 5 temperature correction. It subtracts
// 65534, not 65536, so 0x8000 maps to -32766.
func nearComplement16(raw uint16) int {
	if raw > math.MaxInt16 {
		return int(raw) - 65534
	}

	return int(raw)
}

// signMagnitude128 combines whole degrees and hundredths; a sum above 128
// marks a negative value whose magnitude is sum-128.
func signMagnitude128(whole, fraction byte) float64 {
	v := float64(whole) + float64(fraction)/100
	if v > 128 {
		v = -(v - 128)
	}

	return v
}

// decimalDigits reads the two nibbles of b as decimal digits. A high nibble
// above 9 is not a number; a low nibble above 9 terminates the number after
// the first digit.
func decimalDigits(b byte) (int, bool) {
	hi, lo := int(b>>4), int(b&0x0F)
	if hi > 9 {
		return 0, false
	}

	if lo > 9 {
		return hi, true
	}

	return hi*10 + lo, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
