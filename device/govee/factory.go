package govee

import (
  "fmt"
  "net"
  "strings"

  "github.com/rwbl/go-blesensors/device"
)

type Factory struct{}

func (f *Factory) FromSpec(spec device.DeviceSpec) (device.Device, error) {
  d := Device{}

  addr := spec.Addr()

  if name := spec.Name(); name != "" {
    d.name = name
  } else {
    d.name = "govee-" + strings.ToLower(strings.ReplaceAll(addr, ":", ""))
  }

  hwAddr, err := net.ParseMAC(addr)
  if err != nil {
    return nil, fmt.Errorf("invalid addr: %w", err)
  }

  d.addr = hwAddr
  d.decoder = Decoder{AdvertisementKey: spec.Key()}

  return &d, nil
}

func (f *Factory) Help() string {
  return `Supported parameters:
addr (string, required): MAC address of this Govee hygrometer
name (string): Name of this Govee hygrometer
key (string): Override the manufacturer key holding the readings`
}
