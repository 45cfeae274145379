package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anbcrypt/salt"
)

func newSaltCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "salt",
		Short: "Generate and convert password salts",
	}

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Print a random salt and its stored form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, backend, l, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer backend.Close()

			s, err := salt.New(cfg.Cipher.SaltLength, nil)
			if err != nil {
				return err
			}
			l.Debugf("generated %d character salt", cfg.Cipher.SaltLength)
			fmt.Fprintf(cmd.OutOrStdout(), "salt:    %s\nencoded: %s\n", s, s.Encoded())
			return nil
		},
	}
	generate.Flags().IntVarP(&opts.SaltLength, "length", "l", 0, "salt length (default from config, 8)")

	encode := &cobra.Command{
		Use:   "encode SALT",
		Short: "Convert a salt to its stored form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), salt.Encode(args[0]))
			return nil
		},
	}

	decode := &cobra.Command{
		Use:   "decode ENCODED",
		Short: "Recover a salt from its stored form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), salt.FromEncoded(args[0]))
			return nil
		},
	}

	cmd.AddCommand(generate, encode, decode)
	return cmd
}
