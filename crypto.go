package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"gopkg.in/op/go-logging.v1"

	"anbcrypt/cellbox"
	"anbcrypt/config"
)

// maxEnvelopeSize is the largest ciphertext the randomized mode produces.
const maxEnvelopeSize = 8 + cellbox.MaxRandomizedPayload/cellbox.BlockSize + cellbox.MaxRandomizedPayload + cellbox.BlockSize

// openCipher derives the key from passphrase and returns the configured mode.
func openCipher(cfg *config.Cipher, passphrase []byte, l *logging.Logger) (cellbox.Cipher, error) {
	if !utf8.Valid(passphrase) {
		return nil, fmt.Errorf("passphrase is not valid UTF-8")
	}

	opts := []cellbox.Option{cellbox.WithLogger(l)}
	switch cfg.ModeID() {
	case cellbox.ModeRandomized:
		return cellbox.NewRandomizedFromPassword(string(passphrase), cfg.DigestID(), opts...)
	default:
		return cellbox.NewStandardFromPassword(string(passphrase), cfg.DigestID(), opts...)
	}
}

// openInput returns the payload reader and its size. Regular files are
// streamed; anything else is read fully into memory to learn its size.
func openInput(cmd *cobra.Command, path string) (io.Reader, uint64, func() error, error) {
	var r io.Reader = cmd.InOrStdin()
	closer := func() error { return nil }
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to open input: %w", err)
		}
		r, closer = f, f.Close
	}

	if f, ok := r.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() {
			return f, uint64(fi.Size()), closer, nil
		}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		closer()
		return nil, 0, nil, fmt.Errorf("failed to read input: %w", err)
	}
	return bytes.NewReader(b), uint64(len(b)), closer, nil
}

// openOutput returns the output writer, creating path if set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

// readBounded reads all of r, failing if it holds more than limit bytes.
func readBounded(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("input exceeds %d bytes", limit)
	}
	return b, nil
}
