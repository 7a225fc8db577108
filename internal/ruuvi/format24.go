package ruuvi

// decodeV24 expects a 6 or 7 byte payload; the URL adapter checks that.
func decodeV24(b []byte) V24 {
	l := v24Layout

	r := V24{
		Format:      Format(l.format.raw(b)),
		Humidity:    float64(l.humidity.value(b)) / 2,
		Temperature: float64(l.temperature.value(b)),
		Pressure:    float64(l.pressure.value(b)+50000) / 100,
	}

	if len(b) == v24MaxLength {
		id := uint8(l.eddystoneID.raw(b))
		r.EddystoneID = &id
	}

	return r
}
