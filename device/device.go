package device

import (
	"errors"
	"net"
)

var (
  // ErrMissingKey is returned when none of the configured advertisement keys
  // are present in a discovered device's data.
  ErrMissingKey = errors.New("missing advertisement key")
  // ErrWrongLength is returned when a payload does not match the fixed size
  // of its wire format.
  ErrWrongLength = errors.New("wrong data size")
  // ErrWrongDiscriminator is returned when a format/version byte does not
  // carry the expected tag.
  ErrWrongDiscriminator = errors.New("wrong data format")
)

type Flags uint8

const (
  FlagRequiresBleActiveScan Flags = 1 << iota
)

// Device is a configured sensor node: an address to scan for plus the
// decoder for its advertisement wire format.
type Device interface {
  Name() string
  Addr() net.HardwareAddr
  Flags() Flags
  Decoder() Decoder
  String() string
}
