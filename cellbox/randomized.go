package cellbox

import (
	"encoding/binary"
	"fmt"

	"anbcrypt/entropy"
	"anbcrypt/kdf"
)

const (
	// MaxRandomizedPayload is the largest payload the randomized envelope
	// accepts.
	MaxRandomizedPayload = 1024 * 1024

	envelopeHeaderSize = 8
)

// Randomized hides the payload length and block boundaries. Before block
// encryption every 16 byte block of payload gets one random byte XORed in at
// a position chosen by a walk, and the payload is wrapped in an envelope:
//
//	0-3   original length, big endian
//	4-7   walk seed position, big endian
//	8..   one random byte per full payload block
//	..    payload
//	..    filler up to the next block boundary, first byte random
//
// The walk position accumulates (seed+i) mod 16 for block i and is never
// reduced back into a block.
type Randomized struct {
	core
	walk entropy.Source
}

// NewRandomized returns a Randomized cipher keyed with a raw KeySize byte
// key.
func NewRandomized(key []byte, opts ...Option) (*Randomized, error) {
	o := newOptions(opts)
	c := new(Randomized)
	if err := c.setWalk(o); err != nil {
		return nil, err
	}
	if err := c.init(key, kdf.SHA1, o); err != nil {
		c.eraseWalk()
		return nil, err
	}
	return c, nil
}

// NewRandomizedFromPassword returns a Randomized cipher keyed from password.
func NewRandomizedFromPassword(password string, d kdf.Digest, opts ...Option) (*Randomized, error) {
	o := newOptions(opts)
	c := new(Randomized)
	if err := c.setWalk(o); err != nil {
		return nil, err
	}
	if err := c.initPassword(password, d, o); err != nil {
		c.eraseWalk()
		return nil, err
	}
	return c, nil
}

func (c *Randomized) setWalk(o *options) error {
	if o.walk != nil {
		c.walk = o.walk
		return nil
	}
	w, err := entropy.NewWalk()
	if err != nil {
		return err
	}
	c.walk = w
	return nil
}

func (c *Randomized) eraseWalk() {
	if e, ok := c.walk.(entropy.Eraser); ok {
		e.Erase()
	}
	c.walk = nil
}

// Encrypt implements Cipher. plaintext is not modified.
func (c *Randomized) Encrypt(plaintext []byte) ([]byte, error) {
	if c.cleaned {
		return nil, ErrCleaned
	}
	env, err := c.RandomizeBuffer(append([]byte{}, plaintext...))
	if err != nil {
		return nil, err
	}
	if err := c.cryptBlocks(env, true); err != nil {
		return nil, err
	}
	return env, nil
}

// Decrypt implements Cipher. The full blocks of ciphertext are decrypted in
// place, the recovered payload is returned in a new buffer.
func (c *Randomized) Decrypt(ciphertext []byte) ([]byte, error) {
	if err := c.cryptBlocks(ciphertext, false); err != nil {
		return nil, err
	}
	return c.DeRandomizeBuffer(ciphertext)
}

// ModeID implements Cipher.
func (c *Randomized) ModeID() ModeID {
	return ModeRandomized
}

// Clean erases the key schedule and the walk generator.
func (c *Randomized) Clean() {
	c.core.Clean()
	c.eraseWalk()
}

// RandomizeBuffer XORs the walk bytes into payload, modifying it, and
// returns the block aligned envelope.
func (c *Randomized) RandomizeBuffer(payload []byte) ([]byte, error) {
	if c.cleaned {
		return nil, ErrCleaned
	}
	if len(payload) > MaxRandomizedPayload {
		return nil, fmt.Errorf("%w: %d bytes, at most %d", ErrPayloadTooLarge, len(payload), MaxRandomizedPayload)
	}

	n := len(payload) / BlockSize
	vals := make([]byte, n)
	seed := c.walk.Intn(BlockSize)
	pos := 0
	for i := range vals {
		vals[i] = byte(c.walk.Intn(256))
		pos += (seed + i) % BlockSize
		payload[pos] ^= vals[i]
	}

	used := envelopeHeaderSize + n + len(payload)
	env := RoundBuffer(make([]byte, used))
	binary.BigEndian.PutUint32(env[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint32(env[4:8], uint32(seed))
	copy(env[envelopeHeaderSize:], vals)
	copy(env[envelopeHeaderSize+n:], payload)
	// Only the first filler byte is random, the rest stay zero.
	if used < len(env) {
		env[used] = byte(c.walk.Intn(256))
	}
	c.log.Debugf("randomized %d bytes into %d byte envelope", len(payload), len(env))
	return env, nil
}

// DeRandomizeBuffer validates a decrypted envelope and returns the original
// payload in a new buffer.
func (c *Randomized) DeRandomizeBuffer(env []byte) ([]byte, error) {
	if len(env) < envelopeHeaderSize {
		return nil, fmt.Errorf("%w: envelope is %d bytes", ErrMalformedEnvelope, len(env))
	}
	length := int32(binary.BigEndian.Uint32(env[0:4]))
	if length < 0 || length > MaxRandomizedPayload {
		return nil, fmt.Errorf("%w: length %d out of range", ErrMalformedEnvelope, length)
	}
	seed := int32(binary.BigEndian.Uint32(env[4:8]))
	if seed < 0 || seed >= BlockSize {
		return nil, fmt.Errorf("%w: seed position %d out of range", ErrMalformedEnvelope, seed)
	}
	n := int(length) / BlockSize
	if need := envelopeHeaderSize + n + int(length); need > len(env) {
		return nil, fmt.Errorf("%w: declares %d bytes, has %d", ErrMalformedEnvelope, need, len(env))
	}

	vals := env[envelopeHeaderSize : envelopeHeaderSize+n]
	payload := make([]byte, length)
	copy(payload, env[envelopeHeaderSize+n:])
	pos := 0
	for i, v := range vals {
		pos += (int(seed) + i) % BlockSize
		payload[pos] ^= v
	}
	return payload, nil
}

var _ Cipher = (*Randomized)(nil)
