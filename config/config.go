// Package config loads the daemon configuration from TOML or YAML and turns
// it into engine parameters.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"safepump/crypto"
)

var ErrUnsupportedFormat = errors.New("config: unsupported file extension")

type Config struct {
	ListenAddress string `toml:"ListenAddress" yaml:"listen"`
	DataDir       string `toml:"DataDir" yaml:"data_dir"`
	JournalPath   string `toml:"JournalPath" yaml:"journal"`
	Service       string `toml:"Service" yaml:"service"`
	Environment   string `toml:"Environment" yaml:"environment"`
	LogLevel      string `toml:"LogLevel" yaml:"log_level"`

	Telemetry   Telemetry   `toml:"telemetry" yaml:"telemetry"`
	RateLimit   RateLimit   `toml:"rate_limit" yaml:"rate_limit"`
	Pauses      Pauses      `toml:"pauses" yaml:"pauses"`
	Coordinator Coordinator `toml:"coordinator" yaml:"coordinator"`
	Asset       Asset       `toml:"asset" yaml:"asset"`
}

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// DefaultAuthorityKeyFile is the swap authority key written next to a
// generated configuration.
const DefaultAuthorityKeyFile = "authority.key"

// Load reads the configuration at path, choosing the decoder by extension.
// A missing file is created with defaults, freshly generated pool and vault
// accounts and a swap authority key so a local daemon can start without
// manual setup.
func Load(path string) (*Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path, f)
	}

	cfg := &Config{}
	switch f {
	case formatTOML:
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0])
		}
	case formatYAML:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./safepump-data"
	}
	if strings.TrimSpace(cfg.JournalPath) == "" {
		cfg.JournalPath = filepath.Join(cfg.DataDir, "journal.db")
	}
	if strings.TrimSpace(cfg.Service) == "" {
		cfg.Service = "safepumpd"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 20
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 40
	}
}

// createDefault writes a default configuration file. The authority key is
// stored in DefaultAuthorityKeyFile beside it; an existing key file is reused.
func createDefault(path string, f format) (*Config, error) {
	authority, err := defaultAuthority(filepath.Join(filepath.Dir(path), DefaultAuthorityKeyFile))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Coordinator: Coordinator{
			Authorities:   []string{authority.String()},
			LiquidityPool: crypto.NewAddress().String(),
			TreasuryVault: crypto.NewAddress().String(),
			RewardsVault:  crypto.NewAddress().String(),
			Treasury:      crypto.NewAddress().String(),
		},
	}
	cfg.applyDefaults()
	if err := persist(path, f, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultAuthority(keyPath string) (crypto.PublicKey, error) {
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		key, err := crypto.PrivateKeyFromBytes(raw)
		if err != nil {
			return crypto.PublicKey{}, fmt.Errorf("parse authority key %s: %w", keyPath, err)
		}
		return key.PubKey(), nil
	}
	if !os.IsNotExist(err) {
		return crypto.PublicKey{}, err
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return crypto.PublicKey{}, err
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o755); err != nil {
		return crypto.PublicKey{}, err
	}
	if err := os.WriteFile(keyPath, key.Bytes(), 0o600); err != nil {
		return crypto.PublicKey{}, fmt.Errorf("save authority key %s: %w", keyPath, err)
	}
	return key.PubKey(), nil
}

func persist(path string, f format, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	if f == formatYAML {
		enc := yaml.NewEncoder(file)
		defer enc.Close()
		return enc.Encode(cfg)
	}
	return toml.NewEncoder(file).Encode(cfg)
}
