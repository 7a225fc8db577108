package ruuvi

const (
	batteryOffset = 1600
	txPowerOffset = 40
	txPowerMask   = 0b11111
)

func decodeV5(b []byte) (V5, error) {
	if len(b) < v5MinLength {
		return V5{}, &DecodeError{Kind: KindMalformedLength, Format: FormatV5, Length: len(b)}
	}

	l := v5Layout
	power := l.power.raw(b)

	return V5{
		Temperature:               float64(l.temperature.value(b)) / 200.0,
		Humidity:                  float64(l.humidity.value(b)) / 400.0,
		Pressure:                  l.pressure.value(b) + 50000,
		AccelerationX:             l.accX.value(b),
		AccelerationY:             l.accY.value(b),
		AccelerationZ:             l.accZ.value(b),
		Battery:                   int(power>>5) + batteryOffset,
		TxPower:                   int(power&txPowerMask)*2 - txPowerOffset,
		MovementCounter:           uint8(l.movement.raw(b)),
		MeasurementSequenceNumber: l.sequence.raw(b),
	}, nil
}
