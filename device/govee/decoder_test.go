package govee_test

import (
  "encoding/hex"
  "reflect"
  "strings"
  "testing"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/device"
  "github.com/rwbl/go-blesensors/device/govee"
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
  data := mustHex(t, "00029E436400")

  got, err := govee.Decoder{}.Decode(data)

  if err != nil {
    t.Fatalf("Decode(%x) got error: %v", data, err)
  }

  want := device.Reading{
    Temperature: 17.1,
    Humidity: 58,
    BatteryLevel: 100,
    HasTemperature: true,
    HasHumidity: true,
    HasBatteryLevel: true,
  }

  if !reflect.DeepEqual(got, want) {
    t.Fatalf("Decode(%x): got %+#v, wanted %+#v", data, got, want)
  }
}

func TestDecode_NegativeTemperature(t *testing.T) {
  // same packed value as the positive fixture but with bit 23 set.
  data := mustHex(t, "80029E436400")

  got, err := govee.Decoder{}.Decode(data)

  if err != nil {
    t.Fatalf("Decode(%x) got error: %v", data, err)
  }

  if got.Temperature != -17.1 {
    t.Errorf("Temperature: got %v, want -17.1", got.Temperature)
  }

  if got.Humidity != 58 {
    t.Errorf("Humidity: got %v, want 58", got.Humidity)
  }
}

func TestDecode_ReservedByteIgnored(t *testing.T) {
  a, errA := govee.Decoder{}.Decode(mustHex(t, "00029E436400"))
  b, errB := govee.Decoder{}.Decode(mustHex(t, "00029E4364FF"))

  if errA != nil || errB != nil {
    t.Fatalf("Decode got errors: %v, %v", errA, errB)
  }

  if !reflect.DeepEqual(a, b) {
    t.Fatalf("reserved byte changed the reading: %+#v vs %+#v", a, b)
  }
}

func TestDecode_WrongLength(t *testing.T) {
  for _, size := range []int{0, 4, 5, 7, 24} {
    _, err := govee.Decoder{}.Decode(make([]byte, size))

    if !errors.Is(err, device.ErrWrongLength) {
      t.Errorf("Decode(%d bytes): got %v, want ErrWrongLength", size, err)
    }

    if !strings.Contains(err.Error(), "Expect 6") {
      t.Errorf("Decode(%d bytes): message %q does not cite the expected size",
        size, err.Error())
    }
  }
}

func TestKey(t *testing.T) {
  if got := (govee.Decoder{}).Key(); got != "0XEC88" {
    t.Errorf("Key(): got %q, want %q", got, "0XEC88")
  }
}
