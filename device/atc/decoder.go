// Package atc decodes advertisements from Xiaomi LYWSD03MMC thermometers
// running the ATC custom firmware, which broadcasts readings as service
// data - no connection needed.
package atc

import (
  "encoding/binary"
  "math"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/bytefield"
  "github.com/rwbl/go-blesensors/device"
)

// ServiceDataUUID is the Environmental Sensing service the firmware
// advertises under.
const ServiceDataUUID = "0000181A-0000-1000-8000-00805F9B34FB"

// The service data is 15 bytes:
//
//  0-5   embedded MAC (redundant, the scan layer's address is authoritative)
//  6-7   temperature, little-endian u16, 0.01 °C
//  8-9   humidity, little-endian u16, 0.01 %RH
//  10-11 battery voltage, little-endian u16, mV
//  12    battery level, u8, %
//  13-14 frame counter + flags, unused
const (
  advertisedDataLength = 15
  fieldsOffset = 6
)

type frame struct {
  TemperatureRaw uint16
  HumidityRaw uint16
  VoltageRaw uint16
  Battery uint8
}

func parseFrame(data []byte) frame {
  bo := binary.LittleEndian

  return frame{
    TemperatureRaw: bytefield.Uint16(data, fieldsOffset, bo),
    HumidityRaw: bytefield.Uint16(data, fieldsOffset+2, bo),
    VoltageRaw: bytefield.Uint16(data, fieldsOffset+4, bo),
    Battery: bytefield.Uint8(data, fieldsOffset+6),
  }
}

type Decoder struct {
  // AdvertisementKey overrides the service UUID the decoder consumes.
  // Empty means ServiceDataUUID.
  AdvertisementKey string
}

func (d Decoder) Key() string {
  if d.AdvertisementKey != "" {
    return d.AdvertisementKey
  }

  return ServiceDataUUID
}

func (d Decoder) Decode(data []byte) (reading device.Reading, err error) {
  if len(data) != advertisedDataLength {
    return reading, errors.Wrapf(device.ErrWrongLength,
      "Expect %d bytes, received %d", advertisedDataLength, len(data))
  }

  f := parseFrame(data)

  reading.Temperature = float64(f.TemperatureRaw) / 100
  reading.Humidity = int(math.Round(float64(f.HumidityRaw) / 100))
  reading.Voltage = math.Round(float64(f.VoltageRaw)/10) / 100
  reading.BatteryLevel = int(f.Battery)

  reading.HasTemperature = true
  reading.HasHumidity = true
  reading.HasVoltage = true
  reading.HasBatteryLevel = true

  return reading, nil
}
