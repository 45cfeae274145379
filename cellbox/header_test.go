package cellbox

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderLayout(t *testing.T) {
	b := NewHeader(0x0102030405060708).Bytes()
	require.Len(t, b, HeaderSize)
	require.Equal(t, "414e4200010203040506070801020000", hex.EncodeToString(b))
}

func TestHeaderRoundTrip(t *testing.T) {
	for _, size := range []uint64{0, 1, 15, 16, 1 << 20, 1<<32 + 7, math.MaxInt64} {
		h, err := ParseHeader(NewHeader(size).Bytes())
		require.NoError(t, err)
		require.Equal(t, size, h.PayloadSize)
		require.Equal(t, uint8(VersionMajor), h.Major)
		require.Equal(t, uint8(VersionMinor), h.Minor)
		require.Equal(t, "1.2", h.Version())
	}
}

func TestHeaderBinaryMarshaler(t *testing.T) {
	want := NewHeader(42)
	b, err := want.MarshalBinary()
	require.NoError(t, err)

	var got Header
	require.NoError(t, got.UnmarshalBinary(b))
	require.Equal(t, want, got)
}

func TestParseHeaderTruncated(t *testing.T) {
	b := NewHeader(10).Bytes()
	for _, n := range []int{0, 3, 15} {
		_, err := ParseHeader(b[:n])
		require.ErrorIs(t, err, ErrTruncatedHeader)
	}
}

func TestParseHeaderIgnoresTrailingBytes(t *testing.T) {
	b := append(NewHeader(10).Bytes(), 0xde, 0xad)
	h, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint64(10), h.PayloadSize)
}

func TestParseHeaderValidates(t *testing.T) {
	b := NewHeader(10).Bytes()
	b[1] = 'X'
	_, err := ParseHeader(b)
	require.ErrorIs(t, err, ErrMalformedEnvelope)

	b = NewHeader(10).Bytes()
	b[12] = 2
	_, err = ParseHeader(b)
	require.ErrorIs(t, err, ErrMalformedEnvelope)

	// Minor revisions stay readable.
	b = NewHeader(10).Bytes()
	b[13] = 9
	h, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, "1.9", h.Version())
}
