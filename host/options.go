package host

import (
	"log/slog"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/ports"
	"github.com/kromsten/cosmwasm/hostfuncs"
	hostwazero "github.com/kromsten/cosmwasm/infrastructure/wazero"
)

type config struct {
	api        ports.API
	features   entities.Features
	costs      hostfuncs.GasCosts
	limits     hostfuncs.Limits
	random     ports.RandomSource
	logger     *slog.Logger
	middleware []hostwazero.Middleware
	cacheDir   string
}

// DefaultFeatures is the capability set a VM runs with unless overridden:
// everything stable, without the randomness beacon.
func DefaultFeatures() entities.Features {
	features, err := entities.NewFeatures(
		entities.FeatureIterator,
		entities.FeatureStaking,
		entities.FeatureStargate,
		entities.FeatureIBC3,
		entities.FeatureCosmwasm11,
		entities.FeatureAbort,
	)
	if err != nil {
		panic(err)
	}
	return features
}

// Option configures a VM.
type Option func(*config)

// WithAPI sets the address and signature backend. Defaults to none; a VM
// without an API rejects address and crypto imports at call time, so any
// real deployment sets one.
func WithAPI(api ports.API) Option {
	return func(c *config) {
		c.api = api
	}
}

// WithFeatures overrides the capability set.
func WithFeatures(features entities.Features) Option {
	return func(c *config) {
		c.features = features
	}
}

// WithGasCosts overrides the price list.
func WithGasCosts(costs hostfuncs.GasCosts) Option {
	return func(c *config) {
		c.costs = costs
	}
}

// WithLimits overrides the boundary limits.
func WithLimits(limits hostfuncs.Limits) Option {
	return func(c *config) {
		c.limits = limits
	}
}

// WithRandomSource wires the randomness beacon and is required when the
// random feature is enabled.
func WithRandomSource(source ports.RandomSource) Option {
	return func(c *config) {
		c.random = source
	}
}

// WithLogger sets the logger contract debug output and call traces go to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithImportMiddleware wraps every host import, FIFO.
func WithImportMiddleware(mw ...hostwazero.Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithCompilationCacheDir persists compiled machine code across restarts.
func WithCompilationCacheDir(dir string) Option {
	return func(c *config) {
		c.cacheDir = dir
	}
}

func defaultConfig() config {
	return config{
		features: DefaultFeatures(),
		costs:    hostfuncs.DefaultGasCosts(),
		limits:   hostfuncs.DefaultLimits(),
		logger:   slog.Default(),
	}
}
