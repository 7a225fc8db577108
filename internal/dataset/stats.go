package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ruuvi-sensor/internal/packet"
)

const retention = 7 * 24 * time.Hour

type eventEmitter interface {
	Subscribe() chan packet.Packet
	Unsubscribe(ch chan packet.Packet)
}

type deviceData struct {
	temperature *setOfData
	humidity    *setOfData
	pressure    *setOfData
	voltage     *setOfData
}

func newDeviceData() *deviceData {
	return &deviceData{
		temperature: newSetOfData(),
		humidity:    newSetOfData(),
		pressure:    newSetOfData(),
		voltage:     newSetOfData(),
	}
}

// Stats aggregates readings per device address.
type Stats struct {
	mu      sync.RWMutex
	devices map[string]*deviceData
	latest  *packet.Latest
}

type EventResponse struct {
	Chart   map[string]*Series `json:"chart"`
	Current []packet.Packet    `json:"current"`
}

type Series struct {
	Temperature timeSeries `json:"temperature"`
	Humidity    timeSeries `json:"humidity"`
	Pressure    timeSeries `json:"pressure"`
	Voltage     timeSeries `json:"voltage"`
}

func NewStats(latest *packet.Latest) *Stats {
	return &Stats{
		devices: make(map[string]*deviceData),
		latest:  latest,
	}
}

func (s *Stats) device(address string) *deviceData {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[address]
	if !ok {
		d = newDeviceData()
		s.devices[address] = d
	}

	return d
}

func (s *Stats) Push(p packet.Packet) {
	d := s.device(p.Address)

	d.temperature.push(p.Temperature, p.Timestamp)
	d.humidity.push(p.Humidity, p.Timestamp)
	d.pressure.push(p.Pressure, p.Timestamp)

	if p.Voltage > 0 {
		d.voltage.push(p.Voltage, p.Timestamp)
	}
}

func (s *Stats) Subscribe(ctx context.Context, emitter eventEmitter) error {
	ch := emitter.Subscribe()
	defer emitter.Unsubscribe(ch)

	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return nil
			}

			s.Push(data)
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *Stats) Series() map[string]*Series {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Series, len(s.devices))
	for addr, d := range s.devices {
		out[addr] = &Series{
			Temperature: d.temperature.timeSeries(),
			Humidity:    d.humidity.timeSeries(),
			Pressure:    d.pressure.timeSeries(),
			Voltage:     d.voltage.timeSeries(),
		}
	}

	return out
}

func (s *Stats) removeBefore(t time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.devices {
		d.temperature.remove(t)
		d.humidity.remove(t)
		d.pressure.remove(t)
		d.voltage.remove(t)
	}
}

func (s *Stats) Clear(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			slog.DebugContext(ctx, "running scheduled task clear")

			s.removeBefore(now.Add(-retention))
		}
	}
}

func (s *Stats) Current() []packet.Packet {
	return s.latest.All()
}

func (s *Stats) EventResponse() *EventResponse {
	return &EventResponse{
		Current: s.Current(),
		Chart:   s.Series(),
	}
}
