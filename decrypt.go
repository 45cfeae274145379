package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/katzenpost/hpqc/util"
	"github.com/spf13/cobra"

	"anbcrypt/cellbox"
)

func decrypt(cmd *cobra.Command, opts *Options) error {
	cfg, backend, l, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	passphrase, err := getPassphrase(cmd, "Enter passphrase: ")
	if err != nil {
		return fmt.Errorf("failed to get passphrase: %w", err)
	}
	defer util.ExplicitBzero(passphrase)

	if len(passphrase) == 0 {
		return fmt.Errorf("passphrase cannot be empty")
	}

	c, err := openCipher(cfg.Cipher, passphrase, l)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	defer c.Clean()
	l.Infof("decrypting in %v mode, %v key derivation", c.ModeID(), c.Digest())

	in, _, closeIn, err := openInput(cmd, opts.In)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(cmd, opts.Out)
	if err != nil {
		return err
	}
	writer := bufio.NewWriterSize(out, 1024*1024) // 1MB buffer

	switch c := c.(type) {
	case *cellbox.Standard:
		h, err := c.DecryptStream(in, writer)
		if err != nil {
			closeOut()
			if errors.Is(err, cellbox.ErrMalformedEnvelope) || errors.Is(err, cellbox.ErrTruncatedHeader) {
				return fmt.Errorf("invalid header (is it a standard mode anbcrypt file?): %w", err)
			}
			return fmt.Errorf("decryption failed: %w", err)
		}
		l.Debugf("format version %s, %d bytes", h.Version(), h.PayloadSize)
	case *cellbox.Randomized:
		ct, err := readBounded(in, maxEnvelopeSize)
		if err != nil {
			closeOut()
			return fmt.Errorf("failed to read input: %w", err)
		}
		pt, err := c.Decrypt(ct)
		if err != nil {
			closeOut()
			return fmt.Errorf("decryption failed (wrong passphrase, mode or corrupted data?): %w", err)
		}
		_, err = writer.Write(pt)
		util.ExplicitBzero(pt)
		if err != nil {
			closeOut()
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		closeOut()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return closeOut()
}
