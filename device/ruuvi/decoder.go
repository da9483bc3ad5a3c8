// Package ruuvi decodes RuuviTag RAWv2 manufacturer data (data format
// 0x05, see the ruuvi-sensor-protocols documentation).
package ruuvi

import (
  "encoding/binary"
  "math"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/bytefield"
  "github.com/rwbl/go-blesensors/device"
)

// ManufacturerKey is the advertisement key of Ruuvi Innovations Ltd,
// company ID 0x0499.
const ManufacturerKey = "0X499"

// The manufacturer data is 24 bytes: an 18-byte RAWv2 frame followed by the
// 6-byte device MAC, which is redundant with the scanned address and
// discarded.
//
//  0     data format, must be 0x05
//  1-2   temperature, big-endian i16, 0.005 °C
//  3-4   humidity, big-endian u16, 0.0025 %RH
//  5-6   pressure, big-endian u16, Pa with a -50000 offset
//  7-12  acceleration x/y/z, big-endian i16 each, mG
//  13-14 power info: top 11 bits battery voltage above 1.6 V in mV,
//        bottom 5 bits TX power above -40 dBm in 2 dBm steps
//  15    movement counter, u8
//  16-17 measurement sequence number, big-endian u16
const (
  advertisedDataLength = 24
  frameLength = 18
  formatRAWv2 = 0x05
)

// Documented battery voltage range, used for the level interpolation. The
// resulting percentage is deliberately not clamped to [0,100]: out-of-range
// voltages yield out-of-range percentages, which consumers use to detect
// them.
const (
  batteryVoltageMin = 1.600
  batteryVoltageMax = 3.646
)

type frame struct {
  Format uint8
  TemperatureRaw int16
  HumidityRaw uint16
  PressureRaw uint16
  AccelerationX int16
  AccelerationY int16
  AccelerationZ int16
  PowerInfo uint16
  MovementCounter uint8
  SequenceCounter uint16
}

func parseFrame(data []byte) frame {
  bo := binary.BigEndian

  return frame{
    Format: bytefield.Uint8(data, 0),
    TemperatureRaw: bytefield.Int16(data, 1, bo),
    HumidityRaw: bytefield.Uint16(data, 3, bo),
    PressureRaw: bytefield.Uint16(data, 5, bo),
    AccelerationX: bytefield.Int16(data, 7, bo),
    AccelerationY: bytefield.Int16(data, 9, bo),
    AccelerationZ: bytefield.Int16(data, 11, bo),
    PowerInfo: bytefield.Uint16(data, 13, bo),
    MovementCounter: bytefield.Uint8(data, 15),
    SequenceCounter: bytefield.Uint16(data, 16, bo),
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

  if data[0] != formatRAWv2 {
    return reading, errors.Wrapf(device.ErrWrongDiscriminator,
      "unexpected data format 0x%02X, want 0x%02X", data[0], formatRAWv2)
  }

  f := parseFrame(data[:frameLength])

  voltage := float64(f.PowerInfo>>5+1600) / 1000
  voltage = math.Round(voltage*100) / 100

  reading.Temperature = math.Round(float64(f.TemperatureRaw)/20) / 10
  reading.Humidity = int(f.HumidityRaw / 400)
  reading.AirPressure = int((uint32(f.PressureRaw) + 50000) / 100)
  reading.AccelerationX = int(f.AccelerationX)
  reading.AccelerationY = int(f.AccelerationY)
  reading.AccelerationZ = int(f.AccelerationZ)
  reading.Voltage = voltage
  reading.BatteryLevel = int(
    (voltage - batteryVoltageMin) / (batteryVoltageMax - batteryVoltageMin) * 100)
  reading.TxStrength = int(f.PowerInfo&0x1f)*2 - 40
  reading.MovementCounter = int(f.MovementCounter)
  reading.SequenceCounter = int(f.SequenceCounter)

  reading.HasTemperature = true
  reading.HasHumidity = true
  reading.HasAirPressure = true
  reading.HasAcceleration = true
  reading.HasVoltage = true
  reading.HasBatteryLevel = true
  reading.HasTxStrength = true
  reading.HasMovementCounter = true
  reading.HasSequenceCounter = true

  return reading, nil
}
