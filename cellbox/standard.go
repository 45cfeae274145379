package cellbox

import (
	"errors"
	"fmt"
	"io"

	"anbcrypt/kdf"
)

// Standard zero pads the payload to the block size and encrypts every block
// independently. Decrypt does not strip the padding; use the stream
// functions when the exact length has to survive.
type Standard struct {
	core
}

// NewStandard returns a Standard cipher keyed with a raw KeySize byte key.
func NewStandard(key []byte, opts ...Option) (*Standard, error) {
	c := new(Standard)
	if err := c.init(key, kdf.SHA1, newOptions(opts)); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStandardFromPassword returns a Standard cipher keyed from password.
func NewStandardFromPassword(password string, d kdf.Digest, opts ...Option) (*Standard, error) {
	c := new(Standard)
	if err := c.initPassword(password, d, newOptions(opts)); err != nil {
		return nil, err
	}
	return c, nil
}

// RoundBuffer returns a copy of b zero padded to the next multiple of
// BlockSize. Block aligned input, including empty input, is not extended.
func RoundBuffer(b []byte) []byte {
	size := len(b)
	if r := size % BlockSize; r != 0 {
		size += BlockSize - r
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// Encrypt implements Cipher. plaintext is not modified.
func (c *Standard) Encrypt(plaintext []byte) ([]byte, error) {
	buf := RoundBuffer(plaintext)
	if err := c.cryptBlocks(buf, true); err != nil {
		return nil, err
	}
	return buf, nil
}

// Decrypt implements Cipher. ciphertext is decrypted in place and returned;
// a trailing partial block is left as is.
func (c *Standard) Decrypt(ciphertext []byte) ([]byte, error) {
	if err := c.cryptBlocks(ciphertext, false); err != nil {
		return nil, err
	}
	return ciphertext, nil
}

// ModeID implements Cipher.
func (c *Standard) ModeID() ModeID {
	return ModeStandard
}

// EncryptStream writes a header for size bytes followed by the encryption of
// size bytes read from r, one zero padded block per 16 byte chunk. An empty
// payload still produces one block. If r ends early the last chunk is
// written and an error wrapping io.ErrUnexpectedEOF is returned.
func (c *Standard) EncryptStream(r io.Reader, w io.Writer, size uint64) error {
	if c.cleaned {
		return ErrCleaned
	}
	if _, err := w.Write(NewHeader(size).Bytes()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var (
		consumed uint64
		blocks   int
		block    [BlockSize]byte
	)
	for {
		want := uint64(BlockSize)
		if rem := size - consumed; rem < want {
			want = rem
		}
		n, err := io.ReadFull(r, block[:want])
		short := false
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			short = true
		default:
			return fmt.Errorf("failed to read payload: %w", err)
		}
		for i := n; i < BlockSize; i++ {
			block[i] = 0
		}

		if err := c.block.TransformBlock(block[:], true); err != nil {
			return err
		}
		if _, err := w.Write(block[:]); err != nil {
			return fmt.Errorf("failed to write block: %w", err)
		}
		blocks++
		consumed += uint64(n)

		if short {
			c.log.Debugf("stream encrypt: input ended after %d of %d bytes", consumed, size)
			return fmt.Errorf("payload ended after %d of %d bytes: %w", consumed, size, io.ErrUnexpectedEOF)
		}
		if n != BlockSize || consumed >= size {
			break
		}
	}
	c.log.Debugf("stream encrypt: %d bytes in %d blocks", consumed, blocks)
	return nil
}

// DecryptStream reads a header and the blocks following it from r and writes
// exactly the recorded payload size to w. Nothing past the last block is
// read from r.
func (c *Standard) DecryptStream(r io.Reader, w io.Writer) (Header, error) {
	if c.cleaned {
		return Header{}, ErrCleaned
	}
	var hdr [HeaderSize]byte
	n, err := io.ReadFull(r, hdr[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, n)
		}
		return Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	h, err := ParseHeader(hdr[:])
	if err != nil {
		return Header{}, err
	}
	c.log.Debugf("stream decrypt: header version %s, payload %d bytes", h.Version(), h.PayloadSize)

	var (
		consumed uint64
		block    [BlockSize]byte
	)
	for {
		n, err := io.ReadFull(r, block[:])
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if consumed < h.PayloadSize {
				return h, fmt.Errorf("ciphertext ended after %d of %d bytes: %w", consumed, h.PayloadSize, io.ErrUnexpectedEOF)
			}
			return h, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return h, fmt.Errorf("partial block of %d bytes: %w", n, err)
		default:
			return h, fmt.Errorf("failed to read block: %w", err)
		}

		if err := c.block.TransformBlock(block[:], false); err != nil {
			return h, err
		}
		out := block[:]
		if rem := h.PayloadSize - consumed; rem <= BlockSize {
			out = block[:rem]
		}
		if _, err := w.Write(out); err != nil {
			return h, fmt.Errorf("failed to write payload: %w", err)
		}
		consumed += BlockSize
		if consumed >= h.PayloadSize {
			return h, nil
		}
	}
}

var _ Cipher = (*Standard)(nil)
