// Package primitive provides the 128-bit block cipher capability the framing
// layer is built on.
package primitive

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/katzenpost/hpqc/util"
	"gitlab.com/yawning/bsaes.git"
)

const (
	// BlockSize is the cipher block size in bytes.
	BlockSize = 16

	// KeySize is the size of the key material accepted by Setup (320 bits).
	KeySize = 40

	aesKeySize = 32
)

var (
	// ErrKeySize is returned by Setup when the key is not KeySize bytes.
	ErrKeySize = errors.New("primitive: invalid key size")

	// ErrNotKeyed is returned when a block is transformed before Setup or
	// after Erase.
	ErrNotKeyed = errors.New("primitive: cipher is not keyed")
)

// Block is a single-block cipher with an explicit key lifecycle.
type Block interface {
	// Setup runs the key schedule.
	Setup(key []byte) error

	// TransformBlock encrypts (or decrypts) exactly BlockSize bytes in place.
	TransformBlock(block []byte, encrypt bool) error

	// Erase wipes the key schedule. It is safe to call more than once.
	Erase()
}

type resetter interface {
	Reset()
}

// BSAES is the default Block, a bitsliced constant time AES-256 keyed from
// the first 32 bytes of the 40 byte key material. Bytes 32 to 39 are ignored:
// keys differing only there encrypt identically, and the effective key
// strength is 256 bits, not 320.
type BSAES struct {
	key []byte
	blk cipher.Block
}

// NewBSAES returns an unkeyed BSAES block cipher.
func NewBSAES() *BSAES {
	return new(BSAES)
}

// Setup implements Block.
func (b *BSAES) Setup(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(key), KeySize)
	}
	b.Erase()

	b.key = make([]byte, aesKeySize)
	copy(b.key, key[:aesKeySize])
	blk, err := bsaes.NewCipher(b.key)
	if err != nil {
		util.ExplicitBzero(b.key)
		b.key = nil
		return err
	}
	b.blk = blk
	return nil
}

// TransformBlock implements Block.
func (b *BSAES) TransformBlock(block []byte, encrypt bool) error {
	if b.blk == nil {
		return ErrNotKeyed
	}
	if len(block) != BlockSize {
		return fmt.Errorf("primitive: block is %d bytes, want %d", len(block), BlockSize)
	}
	if encrypt {
		b.blk.Encrypt(block, block)
	} else {
		b.blk.Decrypt(block, block)
	}
	return nil
}

// Erase implements Block.
func (b *BSAES) Erase() {
	if r, ok := b.blk.(resetter); ok {
		r.Reset()
	}
	b.blk = nil
	if b.key != nil {
		util.ExplicitBzero(b.key)
		b.key = nil
	}
}

// Keyed reports whether the cipher currently holds key material.
func (b *BSAES) Keyed() bool {
	return b.blk != nil
}
