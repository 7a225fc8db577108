package metrics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"ruuvi-sensor/internal/packet"
	"ruuvi-sensor/internal/ruuvi"
)

type Registry struct {
	set *metrics.Set
}

func New() *Registry {
	return &Registry{
		set: metrics.NewSet(),
	}
}

func labels(p packet.Packet) string {
	name := p.Name
	if name == "" {
		name = p.Address
	}

	return fmt.Sprintf(`{address=%q,name=%q,format="%d"}`, p.Address, name, uint8(p.DataFormat))
}

// Observe records the latest values of a decoded packet.
func (r *Registry) Observe(p packet.Packet) {
	l := labels(p)

	r.set.GetOrCreateGauge("ruuvi_temperature_celsius"+l, nil).Set(p.Temperature)
	r.set.GetOrCreateGauge("ruuvi_humidity_percent"+l, nil).Set(p.Humidity)
	r.set.GetOrCreateGauge("ruuvi_pressure_hpa"+l, nil).Set(p.Pressure)
	r.set.GetOrCreateHistogram("ruuvi_temperature_distribution_celsius" + l).Update(p.Temperature)

	if p.Voltage > 0 {
		r.set.GetOrCreateGauge("ruuvi_battery_mv"+l, nil).Set(p.Voltage)
	}

	if v5, ok := p.Reading.(ruuvi.V5); ok {
		r.set.GetOrCreateGauge("ruuvi_tx_power_dbm"+l, nil).Set(float64(v5.TxPower))
		r.set.GetOrCreateGauge("ruuvi_movement_counter"+l, nil).Set(float64(v5.MovementCounter))
		r.set.GetOrCreateGauge("ruuvi_measurement_sequence_number"+l, nil).Set(float64(v5.MeasurementSequenceNumber))
	}

	r.set.GetOrCreateCounter(fmt.Sprintf(`ruuvi_packets_total{source=%q}`, p.Source)).Inc()
}

func (r *Registry) DecodeError(source string, kind ruuvi.ErrorKind) {
	r.set.GetOrCreateCounter(fmt.Sprintf(`ruuvi_decode_errors_total{source=%q,kind=%q}`, source, kind)).Inc()
}

func (r *Registry) Duplicate(source string) {
	r.set.GetOrCreateCounter(fmt.Sprintf(`ruuvi_duplicates_total{source=%q}`, source)).Inc()
}

func (r *Registry) WritePrometheus(w io.Writer) {
	r.set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}

// Push periodically sends the registry to a Prometheus import endpoint such
// as VictoriaMetrics' /api/v1/import/prometheus until ctx is done.
func (r *Registry) Push(ctx context.Context, pushURL string, interval time.Duration) error {
	opts := &metrics.PushOptions{
		ExtraLabels: `service_name="ruuvi-sensor"`,
	}

	err := metrics.InitPushExtWithOptions(ctx, pushURL, interval, r.set.WritePrometheus, opts)
	if err != nil {
		return fmt.Errorf("init metrics push: %w", err)
	}

	return nil
}
