package packet

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"ruuvi-sensor/internal/ruuvi"
)

// Packet is a decoded reading together with where and when it was received.
type Packet struct {
	Address    string       `json:"address"`
	Name       string       `json:"name,omitempty"`
	Source     string       `json:"source"`
	DataFormat ruuvi.Format `json:"data_format"`
	// URL is the ruu.vi URL a format 2 or 4 reading was decoded from.
	URL string `json:"url,omitempty"`

	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	// Pressure in hPa for every format.
	Pressure float64 `json:"pressure"`
	// Voltage is the battery voltage in mV, zero for formats 2 and 4.
	Voltage float64 `json:"voltage,omitempty"`

	Reading   ruuvi.Reading `json:"reading"`
	Timestamp time.Time     `json:"timestamp"`
}

func New(r ruuvi.Reading, timestamp time.Time) Packet {
	p := Packet{
		DataFormat: r.DataFormat(),
		Reading:    r,
		Timestamp:  timestamp,
	}

	switch v := r.(type) {
	case ruuvi.V24:
		p.Temperature = v.Temperature
		p.Humidity = v.Humidity
		p.Pressure = v.Pressure
	case ruuvi.V3:
		p.Temperature = v.Temperature
		p.Humidity = v.Humidity
		p.Pressure = PascalToHectopascal(v.Pressure)
		p.Voltage = float64(v.Battery)
	case ruuvi.V5:
		p.Temperature = v.Temperature
		p.Humidity = v.Humidity
		p.Pressure = PascalToHectopascal(v.Pressure)
		p.Voltage = float64(v.Battery)
	}

	return p
}

func PascalToHectopascal(pa int) float64 {
	return float64(pa) / 100
}

func (p Packet) String() string {
	return fmt.Sprintf("%s %s t=%.2f h=%.2f p=%.2f v=%.0f",
		p.Address, p.DataFormat, p.Temperature, p.Humidity, p.Pressure, p.Voltage)
}

// Latest keeps the most recent packet per device address.
type Latest struct {
	data map[string]Packet
	mu   sync.RWMutex
}

func NewLatest() *Latest {
	return &Latest{
		data: make(map[string]Packet),
	}
}

// Set stores p and reports whether its address was seen for the first time.
func (l *Latest) Set(p Packet) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, seen := l.data[p.Address]
	l.data[p.Address] = p

	return !seen
}

func (l *Latest) Get(address string) (Packet, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.data[address]

	return p, ok
}

// All returns the stored packets ordered by address.
func (l *Latest) All() []Packet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Packet, 0, len(l.data))
	for _, p := range l.data {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Address < out[j].Address
	})

	return out
}
