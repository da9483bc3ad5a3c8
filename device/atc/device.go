package atc

import (
  "fmt"
  "net"

  "github.com/rwbl/go-blesensors/device"
)

type Device struct {
  name string
  addr net.HardwareAddr
  decoder Decoder
}

func (d *Device) Name() string {
  return d.name
}

func (d *Device) Addr() net.HardwareAddr {
  return d.addr
}

func (d *Device) Flags() device.Flags {
  // the firmware broadcasts everything in the advertisement itself.
  return 0
}

func (d *Device) Decoder() device.Decoder {
  return d.decoder
}

func (d *Device) String() string {
  return fmt.Sprintf("atc[name=%q, addr=%v]", d.name, d.addr.String())
}
