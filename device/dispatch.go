package device

import (
  "sort"
  "strings"

  "github.com/pkg/errors"
  "github.com/rwbl/go-blesensors/scan"
)

// Decode runs a single known decoder against a discovered device. The
// returned reading is always usable: on any failure it carries StatusErr
// and the cause, and the error is returned alongside for callers that
// retry (the scan layer) or count failures.
func Decode(d scan.DiscoveredDevice, dec Decoder) (Reading, error) {
  raw, ok, err := d.DataBytes(dec.Key())

  if !ok {
    err = errors.Wrapf(ErrMissingKey, "no data for advertisement key %q", dec.Key())
    return NewErrorReading(d.Address, d.Name, err), err
  }

  if err != nil {
    return NewErrorReading(d.Address, d.Name, err), err
  }

  reading, err := dec.Decode(raw)

  if err != nil {
    return NewErrorReading(d.Address, d.Name, err), err
  }

  reading.Status = StatusOK
  reading.Mac = d.Address
  reading.Name = d.Name

  return reading, nil
}

// Dispatcher selects a decoder for a discovered device by exact-match
// lookup of its advertisement keys. It does no content sniffing: a device
// matches a family if and only if that family's key is present.
type Dispatcher struct {
  decoders map[string]Decoder
}

func NewDispatcher(decoders ...Decoder) *Dispatcher {
  d := &Dispatcher{
    decoders: make(map[string]Decoder, len(decoders)),
  }

  for _, dec := range decoders {
    d.decoders[strings.ToUpper(dec.Key())] = dec
  }

  return d
}

// Dispatch decodes the device with the first configured decoder whose key
// is present in its advertisement data. Keys are tried in sorted order so
// dispatch is deterministic when a device carries more than one known key.
func (dp *Dispatcher) Dispatch(d scan.DiscoveredDevice) (Reading, error) {
  keys := make([]string, 0, len(dp.decoders))

  for key := range dp.decoders {
    keys = append(keys, key)
  }

  sort.Strings(keys)

  for _, key := range keys {
    if _, ok := d.Data(key); ok {
      return Decode(d, dp.decoders[key])
    }
  }

  err := errors.Wrapf(ErrMissingKey,
    "none of the configured advertisement keys %v are present", keys)

  return NewErrorReading(d.Address, d.Name, err), err
}
