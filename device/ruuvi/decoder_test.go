package ruuvi_test

import (
  "encoding/hex"
  "reflect"
  "strings"
  "testing"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/device"
  "github.com/rwbl/go-blesensors/device/ruuvi"
)

func mustHex(t *testing.T, s string) []byte {
  t.Helper()

  data, err := hex.DecodeString(s)

  if err != nil {
    t.Fatalf("bad fixture %q: %v", s, err)
  }

  return data
}

func TestDecode(t *testing.T) {
  // 18-byte RAWv2 frame + trailing device MAC.
  data := mustHex(t, "050B856030C879FFE0006403F8AA16193843"+"F76FD827B78D")

  got, err := ruuvi.Decoder{}.Decode(data)

  if err != nil {
    t.Fatalf("Decode(%x) got error: %v", data, err)
  }

  want := device.Reading{
    Temperature: 14.7,
    Humidity: 61,
    AirPressure: 1013,
    AccelerationX: -32,
    AccelerationY: 100,
    AccelerationZ: 1016,
    Voltage: 2.96,
    BatteryLevel: 66,
    TxStrength: 4,
    MovementCounter: 25,
    SequenceCounter: 14407,
    HasTemperature: true,
    HasHumidity: true,
    HasAirPressure: true,
    HasAcceleration: true,
    HasVoltage: true,
    HasBatteryLevel: true,
    HasTxStrength: true,
    HasMovementCounter: true,
    HasSequenceCounter: true,
  }

  if !reflect.DeepEqual(got, want) {
    t.Fatalf("Decode(%x): got %+#v, wanted %+#v", data, got, want)
  }
}

func TestDecode_SecondFixture(t *testing.T) {
  data := mustHex(t, "050D255DB8CAFEFFE4006C03F8AB761CAFC6"+"F76FD827B78D")

  got, err := ruuvi.Decoder{}.Decode(data)

  if err != nil {
    t.Fatalf("Decode(%x) got error: %v", data, err)
  }

  if got.Temperature != 16.8 {
    t.Errorf("Temperature: got %v, want 16.8", got.Temperature)
  }

  if got.Humidity != 59 {
    t.Errorf("Humidity: got %v, want 59", got.Humidity)
  }

  if got.AirPressure != 1019 {
    t.Errorf("AirPressure: got %v, want 1019", got.AirPressure)
  }

  if got.AccelerationX != -28 || got.AccelerationY != 108 || got.AccelerationZ != 1016 {
    t.Errorf("Acceleration: got (%v, %v, %v), want (-28, 108, 1016)",
      got.AccelerationX, got.AccelerationY, got.AccelerationZ)
  }

  if got.Voltage != 2.97 {
    t.Errorf("Voltage: got %v, want 2.97", got.Voltage)
  }

  if got.BatteryLevel != 66 {
    t.Errorf("BatteryLevel: got %v, want 66", got.BatteryLevel)
  }

  if got.TxStrength != 4 {
    t.Errorf("TxStrength: got %v, want 4", got.TxStrength)
  }

  if got.MovementCounter != 28 || got.SequenceCounter != 45002 {
    t.Errorf("Counters: got (%v, %v), want (28, 45002)",
      got.MovementCounter, got.SequenceCounter)
  }
}

func TestDecode_TrailingMacIgnored(t *testing.T) {
  frame := "050B856030C879FFE0006403F8AA16193843"

  a, errA := ruuvi.Decoder{}.Decode(mustHex(t, frame+"F76FD827B78D"))
  b, errB := ruuvi.Decoder{}.Decode(mustHex(t, frame+"000000000000"))

  if errA != nil || errB != nil {
    t.Fatalf("Decode got errors: %v, %v", errA, errB)
  }

  if !reflect.DeepEqual(a, b) {
    t.Fatalf("trailing MAC changed the reading: %+#v vs %+#v", a, b)
  }
}

func TestDecode_PowerInfoBounds(t *testing.T) {
  base := mustHex(t, "050B856030C879FFE0006403F8AA16193843"+"F76FD827B78D")

  // all power-info bits set: voltage 3.65 V, TX power +22 dBm.
  data := append([]byte(nil), base...)
  data[13], data[14] = 0xff, 0xff

  got, err := ruuvi.Decoder{}.Decode(data)

  if err != nil {
    t.Fatalf("Decode got error: %v", err)
  }

  if got.Voltage != 3.65 {
    t.Errorf("Voltage: got %v, want 3.65", got.Voltage)
  }

  if got.TxStrength != 22 {
    t.Errorf("TxStrength: got %v, want 22", got.TxStrength)
  }

  if got.BatteryLevel != 100 {
    t.Errorf("BatteryLevel: got %v, want 100", got.BatteryLevel)
  }

  // all bits clear: voltage at the documented minimum.
  data[13], data[14] = 0x00, 0x00

  got, err = ruuvi.Decoder{}.Decode(data)

  if err != nil {
    t.Fatalf("Decode got error: %v", err)
  }

  if got.Voltage != 1.6 {
    t.Errorf("Voltage: got %v, want 1.6", got.Voltage)
  }

  if got.BatteryLevel != 0 {
    t.Errorf("BatteryLevel: got %v, want 0", got.BatteryLevel)
  }

  if got.TxStrength != -40 {
    t.Errorf("TxStrength: got %v, want -40", got.TxStrength)
  }
}

func TestDecode_WrongLength(t *testing.T) {
  for _, size := range []int{0, 18, 20, 25} {
    _, err := ruuvi.Decoder{}.Decode(make([]byte, size))

    if !errors.Is(err, device.ErrWrongLength) {
      t.Errorf("Decode(%d bytes): got %v, want ErrWrongLength", size, err)
    }

    if !strings.Contains(err.Error(), "Expect 24") {
      t.Errorf("Decode(%d bytes): message %q does not cite the expected size",
        size, err.Error())
    }
  }
}

func TestDecode_WrongDiscriminator(t *testing.T) {
  data := mustHex(t, "030B856030C879FFE0006403F8AA16193843"+"F76FD827B78D")

  _, err := ruuvi.Decoder{}.Decode(data)

  if !errors.Is(err, device.ErrWrongDiscriminator) {
    t.Fatalf("Decode: got %v, want ErrWrongDiscriminator", err)
  }

  if !strings.Contains(err.Error(), "0x03") {
    t.Errorf("message %q does not name the received discriminator", err.Error())
  }
}

func TestKey(t *testing.T) {
  if got := (ruuvi.Decoder{}).Key(); got != "0X499" {
    t.Errorf("Key(): got %q, want %q", got, "0X499")
  }
}
