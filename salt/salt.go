// Package salt generates printable password salts.
//
// The stored form is a plain Caesar shift of the salt. It only keeps the
// salt from being recognisable at a glance and provides no secrecy.
package salt

import (
	"errors"
	"fmt"
	"strings"

	"anbcrypt/entropy"
)

const (
	// DefaultLength is the salt length used when none is configured.
	DefaultLength = 8

	// Shift is the code point offset applied by Encode.
	Shift = 16
)

// Alphabet is the set salt characters are drawn from.
const Alphabet = `!"#$%()*+-./'` +
	`1234567890:<=>?@` +
	`ABCDEFGHIJKLMNOPQRSTUVWXYZ` +
	"[\\]^_`{|}~" +
	`abcdefghijklmnopqrstuvwxyz`

// ErrInvalidLength is returned for non positive salt lengths.
var ErrInvalidLength = errors.New("salt: invalid length")

// Salt is a printable salt string.
type Salt struct {
	s string
}

// New draws a salt of length characters from src. A nil src uses the
// system CSPRNG.
func New(length int, src entropy.Source) (*Salt, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if src == nil {
		src = entropy.Secure()
	}
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(Alphabet[src.Intn(len(Alphabet))])
	}
	return &Salt{s: sb.String()}, nil
}

// FromEncoded restores a salt from its Encode form.
func FromEncoded(enc string) *Salt {
	return &Salt{s: Decode(enc)}
}

// String returns the salt.
func (s *Salt) String() string {
	return s.s
}

// Encoded returns the shifted storage form of the salt.
func (s *Salt) Encoded() string {
	return Encode(s.s)
}

// Encode shifts every character of s up by Shift.
func Encode(s string) string {
	return shift(s, Shift)
}

// Decode reverses Encode.
func Decode(s string) string {
	return shift(s, -Shift)
}

func shift(s string, by rune) string {
	return strings.Map(func(r rune) rune {
		return r + by
	}, s)
}
