package device

import (
  "encoding/json"
  "fmt"
  "strings"
)

type Status string

const (
  StatusOK Status = "OK"
  StatusErr Status = "ERR"
)

// Reading is one decoded sensor measurement. Numeric fields are only
// meaningful when the matching Has* flag is set; decoders set the flags for
// the fields their wire format carries. A reading is a plain value - it
// holds no reference to the payload it was decoded from.
type Reading struct {
  Status Status
  // Human-readable failure cause. Empty when Status is OK.
  Message string
  Mac string
  Name string

  Temperature float64 // °C
  Humidity int // %RH
  AirPressure int // hPa
  Voltage float64 // V
  BatteryLevel int // %, not clamped to [0,100]
  AccelerationX int
  AccelerationY int
  AccelerationZ int
  TxStrength int // dBm
  MovementCounter int
  SequenceCounter int

  HasTemperature bool
  HasHumidity bool
  HasAirPressure bool
  HasVoltage bool
  HasBatteryLevel bool
  HasAcceleration bool
  HasTxStrength bool
  HasMovementCounter bool
  HasSequenceCounter bool
}

// NewErrorReading builds the ERR reading emitted when decoding fails for a
// device. The failure never propagates further; the batch continues.
func NewErrorReading(mac, name string, err error) Reading {
  return Reading{
    Status: StatusErr,
    Message: err.Error(),
    Mac: mac,
    Name: name,
  }
}

func (r Reading) String() string {
  if r.Status == StatusErr {
    return fmt.Sprintf("Reading[ERR,Mac=%v,Message=%q]", r.Mac, r.Message)
  }

  var fields []string

  if r.HasTemperature {
    fields = append(fields, fmt.Sprintf("Temperature=%.2f°C", r.Temperature))
  }

  if r.HasHumidity {
    fields = append(fields, fmt.Sprintf("Humidity=%d%%", r.Humidity))
  }

  if r.HasAirPressure {
    fields = append(fields, fmt.Sprintf("AirPressure=%dhPa", r.AirPressure))
  }

  if r.HasVoltage {
    fields = append(fields, fmt.Sprintf("Voltage=%.2fV", r.Voltage))
  }

  if r.HasBatteryLevel {
    fields = append(fields, fmt.Sprintf("Battery=%d%%", r.BatteryLevel))
  }

  if r.HasTxStrength {
    fields = append(fields, fmt.Sprintf("TxStrength=%ddBm", r.TxStrength))
  }

  return fmt.Sprintf("Reading[OK,Mac=%v,%v]", r.Mac, strings.Join(fields, ","))
}

// MarshalJSON renders the integration contract: status/message/mac/name
// always, numeric fields only on OK and only when the format carries them.
func (r Reading) MarshalJSON() ([]byte, error) {
  out := make(map[string]any, 16)

  out["status"] = r.Status
  out["message"] = r.Message
  out["mac"] = r.Mac

  if r.Name != "" {
    out["name"] = r.Name
  } else {
    out["name"] = nil
  }

  if r.Status == StatusOK {
    if r.HasTemperature {
      out["temperature"] = r.Temperature
    }

    if r.HasHumidity {
      out["humidity"] = r.Humidity
    }

    if r.HasAirPressure {
      out["airpressure"] = r.AirPressure
    }

    if r.HasVoltage {
      out["voltage"] = r.Voltage
    }

    if r.HasBatteryLevel {
      out["batterylevel"] = r.BatteryLevel
    }

    if r.HasAcceleration {
      out["accelerationx"] = r.AccelerationX
      out["accelerationy"] = r.AccelerationY
      out["accelerationz"] = r.AccelerationZ
    }

    if r.HasTxStrength {
      out["txstrength"] = r.TxStrength
    }

    if r.HasMovementCounter {
      out["movementcounter"] = r.MovementCounter
    }

    if r.HasSequenceCounter {
      out["sequencecounter"] = r.SequenceCounter
    }
  }

  return json.Marshal(out)
}
