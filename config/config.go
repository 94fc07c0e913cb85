// Package config loads host configuration from YAML and turns it into VM
// options.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/host"
	"github.com/kromsten/cosmwasm/hostfuncs"
	"github.com/kromsten/cosmwasm/infrastructure/wasmapi"
)

// validate is a package-level singleton; constructing a validator is
// expensive.
var validate = validator.New()

// Config is the host configuration file.
type Config struct {
	// Features lists the enabled capabilities by name.
	Features []entities.Feature `yaml:"features"`

	// AddressPrefix is the bech32 prefix of the chain.
	AddressPrefix string `yaml:"address_prefix" validate:"required"`

	// CacheDir persists compiled machine code between restarts. Empty
	// keeps compilation in memory.
	CacheDir string `yaml:"cache_dir"`

	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	GasCosts hostfuncs.GasCosts `yaml:"gas_costs"`
	Limits   hostfuncs.Limits   `yaml:"limits"`
}

// Default is the configuration an empty file resolves to.
func Default() Config {
	return Config{
		Features:      host.DefaultFeatures().List(),
		AddressPrefix: "cosmos",
		LogLevel:      "info",
		GasCosts:      hostfuncs.DefaultGasCosts(),
		Limits:        hostfuncs.DefaultLimits(),
	}
}

// Load reads and validates a configuration file. Absent keys keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the feature list.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := c.FeatureSet(); err != nil {
		return err
	}
	return nil
}

// FeatureSet resolves the feature names into a set.
func (c Config) FeatureSet() (entities.Features, error) {
	return entities.NewFeatures(c.Features...)
}

// SlogLevel maps the configured level name to slog.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options assembles the VM options the configuration describes. Backtraces
// are enabled process-wide when the feature is listed.
func (c Config) Options() ([]host.Option, error) {
	features, err := c.FeatureSet()
	if err != nil {
		return nil, err
	}
	if features.Has(entities.FeatureBacktraces) {
		errors.EnableBacktraces(true)
	}

	opts := []host.Option{
		host.WithFeatures(features),
		host.WithGasCosts(c.GasCosts),
		host.WithLimits(c.Limits),
		host.WithAPI(wasmapi.New(wasmapi.WithPrefix(c.AddressPrefix))),
	}
	if c.CacheDir != "" {
		opts = append(opts, host.WithCompilationCacheDir(c.CacheDir))
	}
	return opts, nil
}
