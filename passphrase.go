package main

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/katzenpost/hpqc/util"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func getPassphrase(cmd *cobra.Command, prompt string) ([]byte, error) {
	// First check environment variable
	if envPass := os.Getenv(PassphraseEnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	return readPassword(cmd, prompt)
}

func getPassphraseWithConfirm(cmd *cobra.Command, prompt, confirmPrompt string) ([]byte, error) {
	if envPass := os.Getenv(PassphraseEnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	passphrase, err := readPassword(cmd, prompt)
	if err != nil {
		return nil, err
	}

	confirm, err := readPassword(cmd, confirmPrompt)
	if err != nil {
		util.ExplicitBzero(passphrase)
		return nil, err
	}
	defer util.ExplicitBzero(confirm)

	if !bytes.Equal(passphrase, confirm) {
		util.ExplicitBzero(passphrase)
		return nil, fmt.Errorf("passphrases do not match")
	}
	return passphrase, nil
}

func readPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	stderr := cmd.ErrOrStderr()
	fmt.Fprint(stderr, prompt)

	var passphrase []byte
	var err error

	if term.IsTerminal(int(syscall.Stdin)) {
		// STDIN is a terminal, use secure input
		passphrase, err = term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(stderr)
	} else {
		// STDIN carries the payload, read the passphrase from /dev/tty
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			if runtime.GOOS == "windows" {
				return nil, fmt.Errorf("passphrase must be set via %s environment variable when STDIN is piped", PassphraseEnvVar)
			}
			return nil, fmt.Errorf("cannot read passphrase: STDIN is piped and /dev/tty is not available. Set %s environment variable", PassphraseEnvVar)
		}
		defer tty.Close()

		passphrase, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(stderr)
	}

	if err != nil {
		return nil, err
	}
	return passphrase, nil
}
