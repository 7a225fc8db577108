package metrics_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ruuvi-sensor/internal/metrics"
	"ruuvi-sensor/internal/packet"
	"ruuvi-sensor/internal/ruuvi"
)

func TestObserve(t *testing.T) {
	r := metrics.New()

	p := packet.New(ruuvi.V5{Temperature: 24.3, Humidity: 53.49, Pressure: 100044, Battery: 2977, TxPower: 4, MovementCounter: 66},
		time.Now())
	p.Address = "C8:25:2D:8E:9C:11"
	p.Name = "kitchen"
	p.Source = "udp"

	r.Observe(p)
	r.Observe(p)

	var buf bytes.Buffer
	r.WritePrometheus(&buf)

	out := buf.String()
	l := `{address="C8:25:2D:8E:9C:11",name="kitchen",format="5"}`

	assert.Contains(t, out, `ruuvi_temperature_celsius`+l+` 24.3`)
	assert.Contains(t, out, `ruuvi_pressure_hpa`+l+` 1000.44`)
	assert.Contains(t, out, `ruuvi_battery_mv`+l+` 2977`)
	assert.Contains(t, out, `ruuvi_tx_power_dbm`+l+` 4`)
	assert.Contains(t, out, `ruuvi_packets_total{source="udp"} 2`)
}

func TestObserveFormat2HasNoBattery(t *testing.T) {
	r := metrics.New()

	p := packet.New(ruuvi.V24{Format: ruuvi.FormatV2, Temperature: 24, Humidity: 30, Pressure: 995}, time.Now())
	p.Address = "serial"

	r.Observe(p)

	var buf bytes.Buffer
	r.WritePrometheus(&buf)

	out := buf.String()
	assert.Contains(t, out, `ruuvi_temperature_celsius{address="serial",name="serial",format="2"} 24`)
	assert.NotContains(t, out, "ruuvi_battery_mv")
	assert.NotContains(t, out, "ruuvi_tx_power_dbm")
}

func TestDecodeErrorAndDuplicate(t *testing.T) {
	r := metrics.New()

	r.DecodeError("mqtt", ruuvi.KindUnsupportedFormat)
	r.DecodeError("mqtt", ruuvi.KindUnsupportedFormat)
	r.Duplicate("serial")

	var buf bytes.Buffer
	r.WritePrometheus(&buf)

	assert.Contains(t, buf.String(), `ruuvi_decode_errors_total{source="mqtt",kind="unsupported_format"} 2`)
	assert.Contains(t, buf.String(), `ruuvi_duplicates_total{source="serial"} 1`)
}
