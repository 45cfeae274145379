package main

import (
	"bufio"
	"fmt"

	"github.com/katzenpost/hpqc/util"
	"github.com/spf13/cobra"

	"anbcrypt/cellbox"
)

func encrypt(cmd *cobra.Command, opts *Options) error {
	cfg, backend, l, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	passphrase, err := getPassphraseWithConfirm(cmd, "Enter passphrase: ", "Confirm passphrase: ")
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
	l.Infof("encrypting in %v mode, %v key derivation", c.ModeID(), c.Digest())

	in, size, closeIn, err := openInput(cmd, opts.In)
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
		if err := c.EncryptStream(in, writer, size); err != nil {
			closeOut()
			return fmt.Errorf("encryption failed: %w", err)
		}
	case *cellbox.Randomized:
		if size > cellbox.MaxRandomizedPayload {
			closeOut()
			return fmt.Errorf("randomized mode accepts at most %d bytes, input is %d", cellbox.MaxRandomizedPayload, size)
		}
		payload, err := readBounded(in, cellbox.MaxRandomizedPayload)
		if err != nil {
			closeOut()
			return fmt.Errorf("failed to read input: %w", err)
		}
		ct, err := c.Encrypt(payload)
		util.ExplicitBzero(payload)
		if err != nil {
			closeOut()
			return fmt.Errorf("encryption failed: %w", err)
		}
		if _, err := writer.Write(ct); err != nil {
			closeOut()
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		closeOut()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	l.Debugf("encrypted %d bytes", size)
	return closeOut()
}
