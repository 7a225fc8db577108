// Package ruuvi decodes the sensor payloads broadcast by RuuviTag beacons.
//
// Two entry points exist, one per transport: DecodeURL for the Eddystone
// short URL carrying data formats 2 and 4, and DecodeAdvertisement for raw
// manufacturer data carrying formats 3 and 5. Every decode is a pure function
// of its input and may run concurrently with any other.
package ruuvi

import "fmt"

type Format uint8

const (
	FormatV2 Format = 2
	FormatV3 Format = 3
	FormatV4 Format = 4
	FormatV5 Format = 5
)

func (f Format) String() string {
	return fmt.Sprintf("v%d", uint8(f))
}

// Reading is one decoded measurement. The concrete type is one of V24, V3
// or V5.
type Reading interface {
	DataFormat() Format
	reading()
}

// V24 is a data format 2 or 4 reading taken from a ruu.vi URL.
type V24 struct {
	Format      Format  `json:"data_format"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
	// Pressure in hPa.
	Pressure float64 `json:"pressure"`
	// EddystoneID is only broadcast by format 4.
	EddystoneID *uint8 `json:"eddystone_id,omitempty"`
}

type V3 struct {
	Humidity      float64 `json:"humidity"`
	Temperature   float64 `json:"temperature"`
	Pressure      int     `json:"pressure"`
	AccelerationX int     `json:"acceleration_x"`
	AccelerationY int     `json:"acceleration_y"`
	AccelerationZ int     `json:"acceleration_z"`
	Battery       int     `json:"battery"`
}

type V5 struct {
	Humidity                  float64 `json:"humidity"`
	Temperature               float64 `json:"temperature"`
	Pressure                  int     `json:"pressure"`
	AccelerationX             int     `json:"acceleration_x"`
	AccelerationY             int     `json:"acceleration_y"`
	AccelerationZ             int     `json:"acceleration_z"`
	Battery                   int     `json:"battery"`
	TxPower                   int     `json:"tx_power"`
	MovementCounter           uint8   `json:"movement_counter"`
	MeasurementSequenceNumber uint16  `json:"measurement_sequence_number"`
}

func (r V24) DataFormat() Format { return r.Format }
func (V3) DataFormat() Format    { return FormatV3 }
func (V5) DataFormat() Format    { return FormatV5 }

func (V24) reading() {}
func (V3) reading()  {}
func (V5) reading()  {}
