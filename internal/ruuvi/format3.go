package ruuvi

func decodeV3(b []byte) (V3, error) {
	if len(b) < v3MinLength {
		return V3{}, &DecodeError{Kind: KindMalformedLength, Format: FormatV3, Length: len(b)}
	}

	l := v3Layout

	humidity, ok := decimalDigits(byte(l.humidity.raw(b)))
	if !ok {
		return V3{}, &DecodeError{Kind: KindMalformedEncoding, Format: FormatV3, Length: len(b)}
	}

	temperature := signMagnitude128(byte(l.tempWhole.raw(b)), byte(l.tempFraction.raw(b)))

	return V3{
		Humidity:      float64(humidity) / 2,
		Temperature:   round2(temperature),
		Pressure:      l.pressure.value(b) + 50000,
		AccelerationX: l.accX.value(b),
		AccelerationY: l.accY.value(b),
		AccelerationZ: l.accZ.value(b),
		Battery:       l.battery.value(b),
	}, nil
}
