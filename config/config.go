// Package config implements the anbcrypt configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"anbcrypt/cellbox"
	"anbcrypt/kdf"
	"anbcrypt/salt"
)

const (
	defaultLogLevel = "NOTICE"
	defaultMode     = "standard"
	defaultDigest   = "whirlpool"
)

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// File specifies the log file, if omitted stderr will be used.
	File string

	// Level specifies the log level.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl // Force uppercase.
	return nil
}

// Cipher selects the framing mode and key derivation.
type Cipher struct {
	// Mode is either "standard" (streamed, with header) or "randomized"
	// (in memory, payloads up to 1 MiB).
	Mode string

	// Digest is the password digest, "sha1" or "whirlpool".
	Digest string

	// SaltLength is the length of generated salts.
	SaltLength int
}

func (cCfg *Cipher) validate() error {
	if cCfg.Mode == "" {
		cCfg.Mode = defaultMode
	}
	if _, err := ParseMode(cCfg.Mode); err != nil {
		return fmt.Errorf("config: Cipher: %v", err)
	}
	cCfg.Mode = strings.ToLower(cCfg.Mode)

	if cCfg.Digest == "" {
		cCfg.Digest = defaultDigest
	}
	d, err := kdf.ParseDigest(cCfg.Digest)
	if err != nil {
		return fmt.Errorf("config: Cipher: %v", err)
	}
	cCfg.Digest = d.String()

	switch {
	case cCfg.SaltLength == 0:
		cCfg.SaltLength = salt.DefaultLength
	case cCfg.SaltLength < 0:
		return errors.New("config: Cipher: SaltLength must be positive")
	}
	return nil
}

// ModeID returns the configured mode.
func (cCfg *Cipher) ModeID() cellbox.ModeID {
	m, _ := ParseMode(cCfg.Mode)
	return m
}

// DigestID returns the configured digest.
func (cCfg *Cipher) DigestID() kdf.Digest {
	d, _ := kdf.ParseDigest(cCfg.Digest)
	return d
}

// ParseMode maps a mode name to its identifier.
func ParseMode(name string) (cellbox.ModeID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "standard":
		return cellbox.ModeStandard, nil
	case "randomized":
		return cellbox.ModeRandomized, nil
	default:
		return 0, fmt.Errorf("unknown mode '%v'", name)
	}
}

// Config is the top level anbcrypt configuration.
type Config struct {
	Logging *Logging
	Cipher  *Cipher
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration.
func (cfg *Config) FixupAndValidate() error {
	if cfg.Logging == nil {
		cfg.Logging = &Logging{}
	}
	if cfg.Cipher == nil {
		cfg.Cipher = &Cipher{}
	}
	if err := cfg.Logging.validate(); err != nil {
		return err
	}
	return cfg.Cipher.validate()
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := new(Config)
	if err := cfg.FixupAndValidate(); err != nil {
		panic("config: defaults are invalid: " + err.Error())
	}
	return cfg
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
