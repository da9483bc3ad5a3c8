package device

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// DeviceSpec is the parsed form of a `key=value,key=value` device flag.
type DeviceSpec map[string]string

const (
  DeviceSpecFieldName = "name"
  DeviceSpecFieldAddress = "addr"
  // Optional override for the advertisement key the decoder consumes, for
  // clones that re-use a known wire format under a different key.
  DeviceSpecFieldKey = "key"
)

func NewDeviceSpec(s string) DeviceSpec {
  spec := DeviceSpec{}
  entries := strings.Split(s, ",")

  for _, entry := range entries {
    parts := strings.SplitN(entry, "=", 2)

    if len(parts) != 2 {
      log.Warn().Str("Entry", entry).Msg("Skipping invalid device spec entry")
      continue
    }

    spec[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
  }

  return spec
}

func (ds DeviceSpec) Name() string {
  return ds[DeviceSpecFieldName]
}

func (ds DeviceSpec) Addr() string {
  return ds[DeviceSpecFieldAddress]
}

func (ds DeviceSpec) Key() string {
  return strings.ToUpper(ds[DeviceSpecFieldKey])
}
