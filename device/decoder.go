package device

// Decoder converts a raw advertisement payload into a reading. One
// implementation exists per sensor family; all of them are pure functions
// of the input bytes and never retain the buffer they are handed.
type Decoder interface {
  // Key is the advertisement-data key this decoder consumes: a
  // manufacturer-ID token ("0X499") or a 128-bit service UUID.
  Key() string
  // Decode validates and parses the payload. The returned reading carries
  // only the measurement fields; identity (mac/name/status) is stamped by
  // the dispatcher.
  Decode(data []byte) (Reading, error)
}
