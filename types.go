package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/op/go-logging.v1"

	"anbcrypt/config"
	"anbcrypt/kdf"
	"anbcrypt/log"
)

// Options holds the command line flags shared by all commands. Flags
// override the configuration file.
type Options struct {
	ConfigFile string
	Mode       string
	Digest     string
	LogLevel   string

	In  string
	Out string

	SaltLength int
}

// loadConfig reads the configuration file, if any, and applies the flags.
func (o *Options) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadFile(o.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if o.Mode != "" {
		if _, err := config.ParseMode(o.Mode); err != nil {
			return nil, fmt.Errorf("invalid argument for --mode: %w", err)
		}
		cfg.Cipher.Mode = strings.ToLower(o.Mode)
	}
	if o.Digest != "" {
		d, err := kdf.ParseDigest(o.Digest)
		if err != nil {
			return nil, fmt.Errorf("invalid argument for --digest: %w", err)
		}
		cfg.Cipher.Digest = d.String()
	}
	if o.LogLevel != "" {
		if _, err := log.LevelFromString(o.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid argument for --log-level: %w", err)
		}
		cfg.Logging.Level = strings.ToUpper(o.LogLevel)
	}
	if o.SaltLength != 0 {
		cfg.Cipher.SaltLength = o.SaltLength
	}
	return cfg, nil
}

// setup loads the configuration and the logging backend for cmd.
func (o *Options) setup(cmd *cobra.Command) (*config.Config, *log.Backend, *logging.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	var backend *log.Backend
	if cfg.Logging.File == "" && !cfg.Logging.Disable {
		backend, err = log.NewWriter(cmd.ErrOrStderr(), cfg.Logging.Level)
	} else {
		backend, err = log.New(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.Disable)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, backend, backend.GetLogger("anbcrypt"), nil
}
