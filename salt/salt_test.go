package salt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"anbcrypt/entropy"
)

func TestAlphabet(t *testing.T) {
	require.Len(t, Alphabet, 91)
	seen := make(map[rune]bool)
	for _, r := range Alphabet {
		require.False(t, seen[r], "duplicate %q", r)
		seen[r] = true
		require.True(t, r > ' ' && r <= '~', "%q is not printable ASCII", r)
	}
	// Not in the set.
	for _, r := range "&,; " {
		require.False(t, seen[r], "%q should not be in the alphabet", r)
	}
}

func TestNew(t *testing.T) {
	s, err := New(DefaultLength, nil)
	require.NoError(t, err)
	require.Len(t, s.String(), DefaultLength)
	for _, r := range s.String() {
		require.True(t, strings.ContainsRune(Alphabet, r))
	}

	s, err = New(64, entropy.Secure())
	require.NoError(t, err)
	require.Len(t, s.String(), 64)

	_, err = New(0, nil)
	require.ErrorIs(t, err, ErrInvalidLength)
	_, err = New(-1, nil)
	require.ErrorIs(t, err, ErrInvalidLength)
}

func TestNewDeterministic(t *testing.T) {
	key := bytes.Repeat([]byte{1}, entropy.WalkKeySize)
	w1, err := entropy.NewDeterministic(key)
	require.NoError(t, err)
	w2, err := entropy.NewDeterministic(key)
	require.NoError(t, err)

	a, err := New(16, w1)
	require.NoError(t, err)
	b, err := New(16, w2)
	require.NoError(t, err)
	require.Equal(t, a.String(), b.String())
}

func TestEncodeDecode(t *testing.T) {
	require.Equal(t, "Q", Encode("A"))
	require.Equal(t, "1", Encode("!"))
	require.Equal(t, "A", Decode("Q"))
	require.Equal(t, string(rune('~'+Shift)), Encode("~"))

	require.Equal(t, Alphabet, Decode(Encode(Alphabet)))
	for i := 0; i < 50; i++ {
		s, err := New(DefaultLength, nil)
		require.NoError(t, err)
		enc := s.Encoded()
		require.NotEqual(t, s.String(), enc)
		require.Equal(t, s.String(), Decode(enc))
		require.Equal(t, s.String(), FromEncoded(enc).String())
	}
}
