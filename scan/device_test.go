package scan_test

import (
  "encoding/json"
  "testing"

  ble_mod "github.com/go-ble/ble"
  "github.com/rwbl/go-blesensors/scan"
)

func TestManufacturerKey(t *testing.T) {
  if got := scan.ManufacturerKey(0x0499); got != "0X499" {
    t.Errorf("ManufacturerKey(0x0499): got %q, want %q", got, "0X499")
  }

  if got := scan.ManufacturerKey(0xec88); got != "0XEC88" {
    t.Errorf("ManufacturerKey(0xec88): got %q, want %q", got, "0XEC88")
  }
}

func TestServiceKey16Bit(t *testing.T) {
  want := "0000181A-0000-1000-8000-00805F9B34FB"

  if got := scan.ServiceKey(ble_mod.UUID16(0x181a)); got != want {
    t.Errorf("ServiceKey(0x181a): got %q, want %q", got, want)
  }
}

func TestFromAdvertisement(t *testing.T) {
  adv := FakeAdvertisement{
    addr: ble_mod.NewAddr("f7:6f:d8:27:b7:8d"),
    name: "Ruuvi B78D",
    manufacturerData: []byte{
      0x99, 0x04, // company ID 0x0499, little-endian
      0x05, 0x0b, 0x85,
    },
    rssi: -59,
  }

  dev := scan.FromAdvertisement(adv)

  if dev.Address != "F7:6F:D8:27:B7:8D" {
    t.Errorf("Address: got %q", dev.Address)
  }

  payload, ok := dev.Data("0x499")

  if !ok {
    t.Fatalf("Data(0x499): key not found in %v", dev.AdvertisementData)
  }

  if payload != "050B85" {
    t.Errorf("Data(0x499): got %q, want %q", payload, "050B85")
  }

  // exact match only - a key prefix must not resolve.
  if _, ok := dev.Data("0X49"); ok {
    t.Error("Data(0X49): prefix lookup unexpectedly succeeded")
  }
}

func TestJSONRoundTrip(t *testing.T) {
  in := []byte(`{"address": "a4:c1:38:52:74:c2", "name": null, ` +
    `"advertisementdata": {"0x499": "050b85"}}`)

  var dev scan.DiscoveredDevice

  if err := json.Unmarshal(in, &dev); err != nil {
    t.Fatalf("Unmarshal: %v", err)
  }

  if dev.Address != "A4:C1:38:52:74:C2" {
    t.Errorf("Address not normalized: %q", dev.Address)
  }

  if payload, ok := dev.Data("0X499"); !ok || payload != "050B85" {
    t.Errorf("Data(0X499): got %q, %v", payload, ok)
  }

  out, err := json.Marshal(dev)

  if err != nil {
    t.Fatalf("Marshal: %v", err)
  }

  var generic map[string]any

  if err := json.Unmarshal(out, &generic); err != nil {
    t.Fatalf("Unmarshal(out): %v", err)
  }

  if generic["name"] != nil {
    t.Errorf("name: got %v, want null", generic["name"])
  }
}

func TestDataBytesMalformedHex(t *testing.T) {
  dev := scan.DiscoveredDevice{
    AdvertisementData: map[string]string{"0X499": "ZZ"},
  }

  _, ok, err := dev.DataBytes("0X499")

  if !ok {
    t.Fatal("DataBytes: key unexpectedly missing")
  }

  if err == nil {
    t.Fatal("DataBytes: expected an error for malformed hex")
  }
}

type FakeAdvertisement struct {
  name string
  manufacturerData []byte
  serviceData []ble_mod.ServiceData
  addr ble_mod.Addr
  rssi int
}

func (f FakeAdvertisement) LocalName() string {
  return f.name
}

func (f FakeAdvertisement) ManufacturerData() []byte {
  return f.manufacturerData
}

func (f FakeAdvertisement) ServiceData() []ble_mod.ServiceData {
  return f.serviceData
}

func (f FakeAdvertisement) Services() []ble_mod.UUID {
  return nil
}

func (f FakeAdvertisement) OverflowService() []ble_mod.UUID {
  return nil
}

func (f FakeAdvertisement) TxPowerLevel() int {
  return 0
}

func (f FakeAdvertisement) Connectable() bool {
  return false
}

func (f FakeAdvertisement) SolicitedService() []ble_mod.UUID {
  return nil
}

func (f FakeAdvertisement) RSSI() int {
  return f.rssi
}

func (f FakeAdvertisement) Addr() ble_mod.Addr {
  return f.addr
}
