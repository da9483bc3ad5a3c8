package device_test

import (
  "testing"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/device"
  "github.com/rwbl/go-blesensors/device/atc"
  "github.com/rwbl/go-blesensors/device/govee"
  "github.com/rwbl/go-blesensors/device/ruuvi"
  "github.com/rwbl/go-blesensors/scan"
)

func ruuviDevice() scan.DiscoveredDevice {
  return scan.DiscoveredDevice{
    Address: "F7:6F:D8:27:B7:8D",
    Name: "Ruuvi B78D",
    AdvertisementData: map[string]string{
      "0X499": "050B856030C879FFE0006403F8AA16193843F76FD827B78D",
    },
  }
}

func TestDecode(t *testing.T) {
  reading, err := device.Decode(ruuviDevice(), ruuvi.Decoder{})

  if err != nil {
    t.Fatalf("Decode got error: %v", err)
  }

  if reading.Status != device.StatusOK {
    t.Errorf("Status: got %v, want OK", reading.Status)
  }

  if reading.Mac != "F7:6F:D8:27:B7:8D" {
    t.Errorf("Mac: got %q", reading.Mac)
  }

  if reading.Name != "Ruuvi B78D" {
    t.Errorf("Name: got %q", reading.Name)
  }

  if reading.Temperature != 14.7 {
    t.Errorf("Temperature: got %v, want 14.7", reading.Temperature)
  }
}

func TestDecode_MissingKey(t *testing.T) {
  dev := ruuviDevice()

  reading, err := device.Decode(dev, govee.Decoder{})

  if !errors.Is(err, device.ErrMissingKey) {
    t.Fatalf("Decode: got %v, want ErrMissingKey", err)
  }

  if reading.Status != device.StatusErr {
    t.Errorf("Status: got %v, want ERR", reading.Status)
  }

  if reading.Message == "" {
    t.Error("Message: empty on ERR reading")
  }

  if reading.Mac != dev.Address {
    t.Errorf("Mac: got %q, want %q", reading.Mac, dev.Address)
  }
}

func TestDecode_DecodeErrorYieldsErrReading(t *testing.T) {
  dev := ruuviDevice()
  dev.AdvertisementData["0X499"] = "050B85" // truncated

  reading, err := device.Decode(dev, ruuvi.Decoder{})

  if !errors.Is(err, device.ErrWrongLength) {
    t.Fatalf("Decode: got %v, want ErrWrongLength", err)
  }

  if reading.Status != device.StatusErr {
    t.Errorf("Status: got %v, want ERR", reading.Status)
  }
}

func TestDecode_MalformedHex(t *testing.T) {
  dev := ruuviDevice()
  dev.AdvertisementData["0X499"] = "NOT-HEX"

  reading, err := device.Decode(dev, ruuvi.Decoder{})

  if err == nil {
    t.Fatal("Decode: expected an error for malformed hex")
  }

  if reading.Status != device.StatusErr {
    t.Errorf("Status: got %v, want ERR", reading.Status)
  }
}

func TestDispatcher(t *testing.T) {
  dispatcher := device.NewDispatcher(atc.Decoder{}, govee.Decoder{}, ruuvi.Decoder{})

  reading, err := dispatcher.Dispatch(ruuviDevice())

  if err != nil {
    t.Fatalf("Dispatch got error: %v", err)
  }

  if !reading.HasSequenceCounter || reading.SequenceCounter != 14407 {
    t.Errorf("Dispatch did not select the ruuvi decoder: %+v", reading)
  }

  goveeDev := scan.DiscoveredDevice{
    Address: "A4:C1:38:D1:17:57",
    Name: "GVH5075_1757",
    AdvertisementData: map[string]string{"0XEC88": "00029E436400"},
  }

  reading, err = dispatcher.Dispatch(goveeDev)

  if err != nil {
    t.Fatalf("Dispatch got error: %v", err)
  }

  if reading.Temperature != 17.1 || reading.Humidity != 58 {
    t.Errorf("Dispatch did not select the govee decoder: %+v", reading)
  }
}

func TestDispatcher_NoMatchingKey(t *testing.T) {
  dispatcher := device.NewDispatcher(atc.Decoder{}, govee.Decoder{}, ruuvi.Decoder{})

  dev := scan.DiscoveredDevice{
    Address: "AA:BB:CC:DD:EE:FF",
    AdvertisementData: map[string]string{"0X4C": "0215494E"},
  }

  reading, err := dispatcher.Dispatch(dev)

  if !errors.Is(err, device.ErrMissingKey) {
    t.Fatalf("Dispatch: got %v, want ErrMissingKey", err)
  }

  if reading.Status != device.StatusErr {
    t.Errorf("Status: got %v, want ERR", reading.Status)
  }
}
