package cellbox

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the fixed size of a stream header.
	HeaderSize = 16

	// VersionMajor and VersionMinor are written into new headers.
	VersionMajor = 1
	VersionMinor = 2
)

// Magic identifies the stream format.
var Magic = [3]byte{'A', 'N', 'B'}

// Header records the format version and the original payload size of a
// standard mode stream.
//
//	0-2   magic "ANB"
//	3     reserved
//	4-11  payload size, big endian
//	12    major version
//	13    minor version
//	14-15 reserved
type Header struct {
	Major       uint8
	Minor       uint8
	PayloadSize uint64
}

// NewHeader returns a current version header for a payload of size bytes.
func NewHeader(size uint64) Header {
	return Header{
		Major:       VersionMajor,
		Minor:       VersionMinor,
		PayloadSize: size,
	}
}

// Bytes returns the 16 byte encoding of h.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:3], Magic[:])
	binary.BigEndian.PutUint64(b[4:12], h.PayloadSize)
	b[12] = h.Major
	b[13] = h.Minor
	return b
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *Header) UnmarshalBinary(b []byte) error {
	parsed, err := ParseHeader(b)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Version returns the "major.minor" version string.
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.Major, h.Minor)
}

// ParseHeader decodes the first HeaderSize bytes of b, rejecting an unknown
// magic or major version.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(b))
	}
	if b[0] != Magic[0] || b[1] != Magic[1] || b[2] != Magic[2] {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrMalformedEnvelope, b[0:3])
	}
	h := Header{
		Major:       b[12],
		Minor:       b[13],
		PayloadSize: binary.BigEndian.Uint64(b[4:12]),
	}
	if h.Major != VersionMajor {
		return Header{}, fmt.Errorf("%w: unsupported version %s", ErrMalformedEnvelope, h.Version())
	}
	return h, nil
}
