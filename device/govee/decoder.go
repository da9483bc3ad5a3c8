// Package govee decodes the manufacturer-data broadcast of Govee H5075
// hygrometers, which pack temperature and humidity into a single
// big-endian integer.
package govee

import (
  "encoding/binary"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/bytefield"
  "github.com/rwbl/go-blesensors/device"
)

// ManufacturerKey is the advertisement key of the Govee company ID 0xEC88.
const ManufacturerKey = "0XEC88"

// The manufacturer data is 6 bytes:
//
//  0-3 packed reading, big-endian u32; bit 23 (0x800000) flags a negative
//      temperature. value/1000 is the temperature in 0.1 °C, value%1000
//      the humidity in 0.1 %RH
//  4   battery level, u8, %
//  5   reserved
const (
  advertisedDataLength = 6
  temperatureSignBit = 0x800000
)

type frame struct {
  Packed uint32
  Battery uint8
}

func parseFrame(data []byte) frame {
  return frame{
    Packed: bytefield.Uint32(data, 0, binary.BigEndian),
    Battery: bytefield.Uint8(data, 4),
  }
}

type Decoder struct {
  // AdvertisementKey overrides the manufacturer key the decoder consumes.
  // Empty means ManufacturerKey.
  AdvertisementKey string
}

func (d Decoder) Key() string {
  if d.AdvertisementKey != "" {
    return d.AdvertisementKey
  }

  return ManufacturerKey
}

func (d Decoder) Decode(data []byte) (reading device.Reading, err error) {
  if len(data) != advertisedDataLength {
    return reading, errors.Wrapf(device.ErrWrongLength,
      "Expect %d bytes, received %d", advertisedDataLength, len(data))
  }

  f := parseFrame(data)

  raw := f.Packed
  negative := raw&temperatureSignBit != 0

  if negative {
    raw &^= temperatureSignBit
  }

  reading.Temperature = float64(raw/1000) / 10

  if negative {
    reading.Temperature = -reading.Temperature
  }

  reading.Humidity = int(raw % 1000 / 10)
  reading.BatteryLevel = int(f.Battery)

  reading.HasTemperature = true
  reading.HasHumidity = true
  reading.HasBatteryLevel = true

  return reading, nil
}
