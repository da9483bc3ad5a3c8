// Package scan models the output of the BLE scan layer: one record per
// discovered device, carrying the address, the advertised names and the raw
// advertisement payloads keyed by manufacturer ID or service UUID.
//
// The JSON wire form matches what home-automation integrations consume:
//
//  {"address": "A4:C1:38:52:74:C2", "name": "ATC_5274C2",
//   "local_name": "ATC_5274C2",
//   "advertisementdata": {"0000181A-...": "C27452..."}, "rssi": -46}
package scan

import (
  "encoding/binary"
  "encoding/hex"
  "encoding/json"
  "fmt"
  "strings"

  "github.com/go-ble/ble"
  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/bytefield"
  "github.com/rwbl/go-blesensors/utils"
)

// Trailing part of the Bluetooth base UUID, used to canonicalize 16- and
// 32-bit service UUIDs into their 128-bit form.
const baseUUIDSuffix = "-0000-1000-8000-00805F9B34FB"

type DiscoveredDevice struct {
  // Colon-separated MAC address, uppercase.
  Address string
  // Name as reported by the radio. Empty if the device did not advertise one.
  Name string
  LocalName string
  RSSI int
  // Raw advertisement payloads, hex-encoded without separators. Keys are
  // uppercase: manufacturer IDs in "0X499" form, service UUIDs in canonical
  // 128-bit form.
  AdvertisementData map[string]string
}

// ManufacturerKey renders a 16-bit company identifier the way the scan
// contract expects it: "0X" followed by unpadded uppercase hex.
func ManufacturerKey(companyID uint16) string {
  return fmt.Sprintf("0X%X", companyID)
}

// ServiceKey canonicalizes a service UUID to its uppercase 128-bit string
// form. go-ble UUIDs are little-endian byte slices of 2, 4 or 16 bytes.
func ServiceKey(u ble.UUID) string {
  s := strings.ToUpper(hex.EncodeToString(utils.Reverse([]byte(u))))

  switch len(u) {
  case 2:
    return "0000" + s + baseUUIDSuffix
  case 4:
    return s + baseUUIDSuffix
  case 16:
    return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
  default:
    return s
  }
}

// FromAdvertisement converts a live advertisement into the scan record
// consumed by the decoders. Manufacturer data is split into its leading
// little-endian company ID and the vendor payload, mirroring how scanner
// stacks key their advertisement maps.
func FromAdvertisement(a ble.Advertisement) DiscoveredDevice {
  d := DiscoveredDevice{
    Address: strings.ToUpper(a.Addr().String()),
    Name: a.LocalName(),
    LocalName: a.LocalName(),
    RSSI: a.RSSI(),
    AdvertisementData: make(map[string]string),
  }

  if md := a.ManufacturerData(); len(md) >= 2 {
    companyID := bytefield.Uint16(md, 0, binary.LittleEndian)
    d.AdvertisementData[ManufacturerKey(companyID)] =
      strings.ToUpper(hex.EncodeToString(md[2:]))
  }

  for _, sd := range a.ServiceData() {
    d.AdvertisementData[ServiceKey(sd.UUID)] =
      strings.ToUpper(hex.EncodeToString(sd.Data))
  }

  return d
}

// Data looks up the raw payload for an advertisement key. Lookup is
// exact-match on the uppercase form of the key, never a prefix match.
func (d DiscoveredDevice) Data(key string) (string, bool) {
  payload, ok := d.AdvertisementData[strings.ToUpper(key)]
  return payload, ok
}

// DataBytes looks up and hex-decodes the payload for an advertisement key.
func (d DiscoveredDevice) DataBytes(key string) ([]byte, bool, error) {
  payload, ok := d.Data(key)

  if !ok {
    return nil, false, nil
  }

  raw, err := hex.DecodeString(payload)

  if err != nil {
    return nil, true, errors.Wrapf(err, "malformed hex payload for key %q", key)
  }

  return raw, true, nil
}

func (d DiscoveredDevice) String() string {
  return fmt.Sprintf("device[addr=%v, name=%q, keys=%d]",
    d.Address, d.Name, len(d.AdvertisementData))
}

type deviceJSON struct {
  Address string `json:"address"`
  Name *string `json:"name"`
  LocalName string `json:"local_name,omitempty"`
  AdvertisementData map[string]string `json:"advertisementdata"`
  RSSI int `json:"rssi,omitempty"`
}

func (d DiscoveredDevice) MarshalJSON() ([]byte, error) {
  out := deviceJSON{
    Address: d.Address,
    LocalName: d.LocalName,
    AdvertisementData: d.AdvertisementData,
    RSSI: d.RSSI,
  }

  // "name" is null, not "", when the radio reported no name.
  if d.Name != "" {
    name := d.Name
    out.Name = &name
  }

  return json.Marshal(out)
}

func (d *DiscoveredDevice) UnmarshalJSON(data []byte) error {
  var in deviceJSON

  if err := json.Unmarshal(data, &in); err != nil {
    return err
  }

  d.Address = strings.ToUpper(in.Address)
  d.LocalName = in.LocalName
  d.RSSI = in.RSSI

  if in.Name != nil {
    d.Name = *in.Name
  } else {
    d.Name = ""
  }

  d.AdvertisementData = make(map[string]string, len(in.AdvertisementData))

  for key, payload := range in.AdvertisementData {
    d.AdvertisementData[strings.ToUpper(key)] = strings.ToUpper(payload)
  }

  return nil
}
