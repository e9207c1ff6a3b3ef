package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoAuthority = errors.New("config: coordinator.Authorities must list at least one swap authority")

// Validate checks the configuration by building every parameter set from it.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("config: DataDir is required")
	}
	if len(cfg.Coordinator.Authorities) == 0 {
		return ErrNoAuthority
	}
	if _, err := cfg.CoordinatorParams(); err != nil {
		return err
	}
	if _, err := cfg.Treasury(); err != nil {
		return err
	}
	if _, err := cfg.AssetParams(); err != nil {
		return err
	}
	if fee := cfg.PoolFeeBps(); fee >= 10_000 {
		return fmt.Errorf("config: PoolFeeBps %d out of range", fee)
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		return fmt.Errorf("config: rate limit must be positive")
	}
	return nil
}
