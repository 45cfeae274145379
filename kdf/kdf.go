// Package kdf derives fixed length key material from a password with a
// single digest pass.
package kdf

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jzelinskie/whirlpool"
	"golang.org/x/crypto/hkdf"
)

// Digest selects the derivation algorithm.
type Digest int

const (
	// SHA1 is the SHA-1 based generator, and the fallback for unknown
	// selectors.
	SHA1 Digest = 0

	// Whirlpool truncates a Whirlpool digest of the password.
	Whirlpool Digest = 1

	// WhirlpoolSize is the native Whirlpool output size in bytes.
	WhirlpoolSize = 64

	sha1MaxOutput = 255 * sha1.Size
)

// ErrInvalidKeyLength is returned when the requested key length cannot be
// produced by the selected digest.
var ErrInvalidKeyLength = errors.New("kdf: invalid key length")

// String returns the lower case name used in configuration files.
func (d Digest) String() string {
	switch d {
	case Whirlpool:
		return "whirlpool"
	default:
		return "sha1"
	}
}

// ParseDigest maps a configuration name to a Digest.
func ParseDigest(name string) (Digest, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sha1", "sha-1":
		return SHA1, nil
	case "whirlpool":
		return Whirlpool, nil
	default:
		return SHA1, fmt.Errorf("kdf: unknown digest '%v'", name)
	}
}

// Derive returns exactly keyLen bytes derived from password. The password is
// hashed as its UTF-8 encoding, so every character contributes all its bytes.
func Derive(password string, d Digest, keyLen int) ([]byte, error) {
	if keyLen <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKeyLength, keyLen)
	}
	switch d {
	case Whirlpool:
		return deriveWhirlpool([]byte(password), keyLen)
	default:
		return deriveSHA1([]byte(password), keyLen)
	}
}

func deriveWhirlpool(password []byte, keyLen int) ([]byte, error) {
	if keyLen > WhirlpoolSize {
		return nil, fmt.Errorf("%w: whirlpool yields at most %d bytes, %d requested", ErrInvalidKeyLength, WhirlpoolSize, keyLen)
	}
	h := whirlpool.New()
	h.Write(password)
	digest := h.Sum(nil)

	key := make([]byte, keyLen)
	copy(key, digest)
	return key, nil
}

func deriveSHA1(password []byte, keyLen int) ([]byte, error) {
	if keyLen > sha1MaxOutput {
		return nil, fmt.Errorf("%w: sha1 generator yields at most %d bytes, %d requested", ErrInvalidKeyLength, sha1MaxOutput, keyLen)
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(hkdf.New(sha1.New, password, nil, nil), key); err != nil {
		return nil, err
	}
	return key, nil
}
