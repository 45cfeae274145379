package cellbox

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// script replays fixed walk values.
type script struct {
	t    *testing.T
	vals []int
}

func (s *script) Intn(n int) int {
	require.NotEmpty(s.t, s.vals, "walk drawn more often than expected")
	v := s.vals[0]
	s.vals = s.vals[1:]
	require.Less(s.t, v, n)
	return v
}

func newRandomized(t *testing.T) *Randomized {
	c, err := NewRandomized(testKey(), WithWalker(testWalker(t)))
	require.NoError(t, err)
	t.Cleanup(c.Clean)
	return c
}

func TestRandomizeBufferLayout(t *testing.T) {
	w := &script{t: t, vals: []int{3, 0xaa, 0xbb, 0xcc}}
	c, err := NewRandomized(testKey(), WithWalker(w))
	require.NoError(t, err)
	defer c.Clean()

	payload := make([]byte, 40)
	env, err := c.RandomizeBuffer(payload)
	require.NoError(t, err)
	require.Empty(t, w.vals)

	// 8 + 2 + 40 = 50, rounded to 64.
	require.Len(t, env, 64)
	require.Equal(t, uint32(40), binary.BigEndian.Uint32(env[0:4]))
	require.Equal(t, uint32(3), binary.BigEndian.Uint32(env[4:8]))
	require.Equal(t, []byte{0xaa, 0xbb}, env[8:10])

	// Block 0 lands at 3, block 1 at 3+4.
	want := make([]byte, 40)
	want[3] = 0xaa
	want[7] = 0xbb
	require.Equal(t, want, env[10:50])
	require.Equal(t, want, payload)

	require.Equal(t, byte(0xcc), env[50])
	require.Equal(t, make([]byte, 13), env[51:])
}

func TestRandomizeWalkAccumulates(t *testing.T) {
	// Seed 15 over four blocks: steps 15, 0, 1, 2 give 15, 15, 16, 18.
	w := &script{t: t, vals: []int{15, 1, 2, 4, 8, 0x77}}
	c, err := NewRandomized(testKey(), WithWalker(w))
	require.NoError(t, err)
	defer c.Clean()

	payload := make([]byte, 64)
	env, err := c.RandomizeBuffer(payload)
	require.NoError(t, err)
	require.Len(t, env, 80)

	want := make([]byte, 64)
	want[15] = 1 ^ 2
	want[16] = 4
	want[18] = 8
	require.Equal(t, want, payload)

	out, err := c.DeRandomizeBuffer(env)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 64), out)
}

func TestRandomizeBlockExactEnvelope(t *testing.T) {
	// 8 + 0 + 8 = 16 needs no filler, so no filler byte is drawn.
	w := &script{t: t, vals: []int{5}}
	c, err := NewRandomized(testKey(), WithWalker(w))
	require.NoError(t, err)
	defer c.Clean()

	env, err := c.RandomizeBuffer([]byte("abcdefgh"))
	require.NoError(t, err)
	require.Len(t, env, 16)
	require.Equal(t, []byte("abcdefgh"), env[8:])
}

func TestRandomizedRoundTrip(t *testing.T) {
	c := newRandomized(t)
	for _, n := range []int{0, 1, 7, 8, 15, 16, 17, 100, 1000, 65536} {
		plain := make([]byte, n)
		_, err := rand.Read(plain)
		require.NoError(t, err)
		orig := append([]byte{}, plain...)

		ct, err := c.Encrypt(plain)
		require.NoError(t, err)
		require.Zero(t, len(ct)%BlockSize)
		require.Equal(t, orig, plain)

		pt, err := c.Decrypt(ct)
		require.NoError(t, err)
		require.Equal(t, orig, pt)
	}
}

func TestRandomizedMaxPayload(t *testing.T) {
	c := newRandomized(t)
	plain := make([]byte, MaxRandomizedPayload)
	plain[len(plain)-1] = 0x42

	ct, err := c.Encrypt(plain)
	require.NoError(t, err)
	pt, err := c.Decrypt(ct)
	require.NoError(t, err)
	require.Equal(t, plain, pt)

	_, err = c.Encrypt(make([]byte, MaxRandomizedPayload+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestRandomizedEmpty(t *testing.T) {
	c := newRandomized(t)
	ct, err := c.Encrypt(nil)
	require.NoError(t, err)
	require.Len(t, ct, BlockSize)

	pt, err := c.Decrypt(ct)
	require.NoError(t, err)
	require.NotNil(t, pt)
	require.Empty(t, pt)
}

func TestRandomizedHidesRepetition(t *testing.T) {
	c := newRandomized(t)
	plain := bytes.Repeat([]byte{0x11}, 64)
	a, err := c.Encrypt(plain)
	require.NoError(t, err)
	b, err := c.Encrypt(plain)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestRandomizedDecryptIgnoresPartialTail(t *testing.T) {
	c := newRandomized(t)
	plain := []byte("a short message")
	ct, err := c.Encrypt(plain)
	require.NoError(t, err)

	pt, err := c.Decrypt(append(ct, 1, 2, 3))
	require.NoError(t, err)
	require.Equal(t, plain, pt)
}

func envelope(length, seed int32, size int) []byte {
	env := make([]byte, size)
	binary.BigEndian.PutUint32(env[0:4], uint32(length))
	binary.BigEndian.PutUint32(env[4:8], uint32(seed))
	return env
}

func TestDeRandomizeRejects(t *testing.T) {
	c := newRandomized(t)
	cases := map[string][]byte{
		"short":        make([]byte, 7),
		"negative":     envelope(-1, 0, 32),
		"too large":    envelope(MaxRandomizedPayload+1, 0, 32),
		"min int":      envelope(-1<<31, 0, 32),
		"bad seed":     envelope(4, 16, 16),
		"neg seed":     envelope(4, -3, 16),
		"past the end": envelope(100, 0, 64),
	}
	for name, env := range cases {
		_, err := c.DeRandomizeBuffer(env)
		require.ErrorIs(t, err, ErrMalformedEnvelope, name)
	}
}

func TestRandomizedWrongKey(t *testing.T) {
	a := newRandomized(t)
	other := testKey()
	other[1] = 1
	b, err := NewRandomized(other, WithWalker(testWalker(t)))
	require.NoError(t, err)
	defer b.Clean()

	ct, err := a.Encrypt(bytes.Repeat([]byte("x"), 200))
	require.NoError(t, err)
	_, err = b.Decrypt(ct)
	require.ErrorIs(t, err, ErrMalformedEnvelope)
}
