// Package cellbox implements the block framing layer: the cipher contract,
// the standard zero padded mode, the randomized mode that hides block
// boundaries and payload length, and the 16 byte stream header.
//
// Every block is encrypted independently. There is no chaining and no
// integrity protection, corrupted ciphertext decrypts to corrupted plaintext.
// A Cipher is not safe for concurrent use.
package cellbox

import (
	"errors"
	"fmt"
	"io"

	"github.com/katzenpost/hpqc/util"
	"gopkg.in/op/go-logging.v1"

	"anbcrypt/entropy"
	"anbcrypt/kdf"
	"anbcrypt/primitive"
)

const (
	// BlockSize is the cipher block size.
	BlockSize = primitive.BlockSize

	// KeySize is the key material size used by every mode (320 bits).
	KeySize = primitive.KeySize
)

// ModeID identifies the framing that produced a ciphertext. It is not
// written into the data by this package.
type ModeID int

const (
	// ModeStandard is the zero padded block mode.
	ModeStandard ModeID = 1

	// ModeRandomized is the randomized envelope mode.
	ModeRandomized ModeID = 2
)

func (m ModeID) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeRandomized:
		return "randomized"
	default:
		return fmt.Sprintf("ModeID(%d)", int(m))
	}
}

var (
	// ErrMalformedEnvelope is returned when a header or randomized envelope
	// carries values that could not have been produced by this package.
	ErrMalformedEnvelope = errors.New("cellbox: malformed envelope")

	// ErrTruncatedHeader is returned when fewer than HeaderSize bytes are
	// available for a stream header.
	ErrTruncatedHeader = errors.New("cellbox: truncated header")

	// ErrPayloadTooLarge is returned when a payload exceeds
	// MaxRandomizedPayload.
	ErrPayloadTooLarge = errors.New("cellbox: payload too large")

	// ErrCleaned is returned when a Cipher is used after Clean.
	ErrCleaned = errors.New("cellbox: cipher used after Clean")
)

// Cipher is the contract shared by both modes.
type Cipher interface {
	// Encrypt returns a new buffer holding the ciphertext of plaintext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt returns the plaintext of ciphertext. The ciphertext buffer
	// is decrypted in place.
	Decrypt(ciphertext []byte) ([]byte, error)

	// Clean erases all key material. It is idempotent.
	Clean()

	// ModeID returns the mode identifier.
	ModeID() ModeID

	// Digest returns the key derivation algorithm the key came from.
	Digest() kdf.Digest
}

// Option configures a Cipher.
type Option func(*options)

type options struct {
	block primitive.Block
	walk  entropy.Source
	log   *logging.Logger
}

// WithBlock replaces the default block cipher primitive.
func WithBlock(b primitive.Block) Option {
	return func(o *options) {
		o.block = b
	}
}

// WithWalker replaces the randomized mode's position walk generator. The
// cipher owns it from then on and erases it on Clean or failed construction.
// It has no effect on the standard mode.
func WithWalker(s entropy.Source) Option {
	return func(o *options) {
		o.walk = s
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) *options {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	if o.block == nil {
		o.block = primitive.NewBSAES()
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	return o
}

func discardLogger() *logging.Logger {
	l := logging.MustGetLogger("cellbox")
	l.SetBackend(logging.AddModuleLevel(logging.NewLogBackend(io.Discard, "", 0)))
	return l
}

// DeriveKey derives KeySize bytes of key material from password.
func DeriveKey(password string, d kdf.Digest) ([]byte, error) {
	return kdf.Derive(password, d, KeySize)
}

// core holds what both modes share: the keyed primitive and the digest tag.
type core struct {
	block   primitive.Block
	digest  kdf.Digest
	log     *logging.Logger
	cleaned bool
}

func (c *core) init(key []byte, d kdf.Digest, o *options) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: key is %d bytes, want %d", kdf.ErrInvalidKeyLength, len(key), KeySize)
	}
	if err := o.block.Setup(key); err != nil {
		return err
	}
	c.block = o.block
	c.digest = d
	c.log = o.log
	return nil
}

func (c *core) initPassword(password string, d kdf.Digest, o *options) error {
	key, err := DeriveKey(password, d)
	if err != nil {
		return err
	}
	defer util.ExplicitBzero(key)
	o.log.Debugf("derived %d byte key with %v", len(key), d)
	return c.init(key, d, o)
}

// cryptBlocks transforms every full block of buf in place. A trailing
// partial block is left untouched.
func (c *core) cryptBlocks(buf []byte, encrypt bool) error {
	if c.cleaned {
		return ErrCleaned
	}
	for i := 0; i+BlockSize <= len(buf); i += BlockSize {
		if err := c.block.TransformBlock(buf[i:i+BlockSize], encrypt); err != nil {
			return err
		}
	}
	return nil
}

// Clean erases the key schedule.
func (c *core) Clean() {
	if c.block != nil {
		c.block.Erase()
	}
	c.cleaned = true
}

// Digest returns the key derivation algorithm.
func (c *core) Digest() kdf.Digest {
	return c.digest
}
