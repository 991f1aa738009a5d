package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	goTeller "github.com/MrEthical07/goTeller"
)

// fileConfig is the TOML shape of the terminal configuration.
type fileConfig struct {
	Storage storageSection `toml:"storage"`
	Lockout lockoutSection `toml:"lockout"`
	Session sessionSection `toml:"session"`
	Token   tokenSection   `toml:"token"`
	Secret  secretSection  `toml:"secret"`
	Audit   auditSection   `toml:"audit"`
	Metrics metricsSection `toml:"metrics"`
}

type storageSection struct {
	// Driver is "json" or "sqlite".
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	Seed   bool   `toml:"seed"`
}

type lockoutSection struct {
	Threshold int `toml:"threshold"`
}

type sessionSection struct {
	TTL         string `toml:"ttl"`
	RedisAddr   string `toml:"redis_addr"`
	RedisPrefix string `toml:"redis_prefix"`
}

type tokenSection struct {
	// SigningKeyHex is a hex encoded HMAC key of at least 32 bytes.
	SigningKeyHex string `toml:"signing_key_hex"`
	Issuer        string `toml:"issuer"`
	Leeway        string `toml:"leeway"`
}

type secretSection struct {
	HashNewSecrets bool `toml:"hash_new_secrets"`
}

type auditSection struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type metricsSection struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

func defaultFileConfig() fileConfig {
	def := goTeller.DefaultConfig()
	return fileConfig{
		Storage: storageSection{Driver: "json", Path: "goteller.json", Seed: true},
		Lockout: lockoutSection{Threshold: def.Lockout.Threshold},
		Session: sessionSection{TTL: def.Session.TTL.String(), RedisPrefix: def.Session.RedisPrefix},
		Token:   tokenSection{Issuer: def.Token.Issuer, Leeway: "0s"},
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, fmt.Errorf("decode %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

func saveConfig(path string, cfg fileConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// engineConfig maps the file onto an engine configuration and validates it.
func (c fileConfig) engineConfig() (goTeller.Config, error) {
	cfg := goTeller.DefaultConfig()
	cfg.Lockout.Threshold = c.Lockout.Threshold

	ttl, err := parseDuration("session.ttl", c.Session.TTL)
	if err != nil {
		return goTeller.Config{}, err
	}
	cfg.Session.TTL = ttl
	if c.Session.RedisPrefix != "" {
		cfg.Session.RedisPrefix = c.Session.RedisPrefix
	}

	if c.Token.SigningKeyHex != "" {
		key, err := hex.DecodeString(c.Token.SigningKeyHex)
		if err != nil {
			return goTeller.Config{}, fmt.Errorf("token.signing_key_hex: %w", err)
		}
		cfg.Token.SigningKey = key
	}
	if c.Token.Issuer != "" {
		cfg.Token.Issuer = c.Token.Issuer
	}
	leeway, err := parseDuration("token.leeway", c.Token.Leeway)
	if err != nil {
		return goTeller.Config{}, err
	}
	cfg.Token.Leeway = leeway

	cfg.Secret.HashNewSecrets = c.Secret.HashNewSecrets
	cfg.Audit.Enabled = c.Audit.Enabled
	cfg.Metrics.Enabled = c.Metrics.Enabled || c.Metrics.Addr != ""
	cfg.Metrics.EnableLatencyHistograms = cfg.Metrics.Enabled

	switch c.Storage.Driver {
	case "json", "sqlite":
	default:
		return goTeller.Config{}, fmt.Errorf("storage.driver must be json or sqlite, got %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return goTeller.Config{}, errors.New("storage.path must not be empty")
	}

	if err := cfg.Validate(); err != nil {
		return goTeller.Config{}, err
	}
	return cfg, nil
}

func parseDuration(field, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}
