// Package bytefield reads fixed-width integer fields out of advertisement
// payloads. Callers are expected to have validated the total payload length
// already; an out-of-range offset is a bug in the caller and panics.
package bytefield

import (
  "encoding/binary"
)

func Uint8(b []byte, offset int) uint8 {
  return b[offset]
}

func Uint16(b []byte, offset int, bo binary.ByteOrder) uint16 {
  return bo.Uint16(b[offset : offset+2])
}

// Int16 reads a two's complement signed 16-bit field.
func Int16(b []byte, offset int, bo binary.ByteOrder) int16 {
  return int16(bo.Uint16(b[offset : offset+2]))
}

func Uint32(b []byte, offset int, bo binary.ByteOrder) uint32 {
  return bo.Uint32(b[offset : offset+4])
}

func Int32(b []byte, offset int, bo binary.ByteOrder) int32 {
  return int32(bo.Uint32(b[offset : offset+4]))
}
