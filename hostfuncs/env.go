package hostfuncs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/ports"
)

// Env is the per-invocation execution environment of the host functions:
// the storage view, api, querier and gas meter of one contract call, plus
// the table of open range iterators. An Env must not outlive its call and
// must not be shared between calls.
type Env struct {
	storage  ports.Storage
	api      ports.API
	querier  ports.Querier
	gas      ports.GasMeter
	random   ports.RandomSource
	logger   *slog.Logger
	features entities.Features
	costs    GasCosts
	limits   Limits

	contract entities.Addr
	height   uint64

	iterators      map[uint32]ports.Iterator
	nextIteratorID uint32
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithLogger routes contract debug messages to the given logger.
func WithLogger(logger *slog.Logger) EnvOption {
	return func(e *Env) {
		e.logger = logger
	}
}

// WithFeatures sets the enabled capability set. Defaults to none.
func WithFeatures(features entities.Features) EnvOption {
	return func(e *Env) {
		e.features = features
	}
}

// WithRandomSource wires the randomness beacon, required when the random
// feature is enabled.
func WithRandomSource(source ports.RandomSource) EnvOption {
	return func(e *Env) {
		e.random = source
	}
}

// WithGasCosts overrides the default price list.
func WithGasCosts(costs GasCosts) EnvOption {
	return func(e *Env) {
		e.costs = costs
	}
}

// WithLimits overrides the default boundary limits.
func WithLimits(limits Limits) EnvOption {
	return func(e *Env) {
		e.limits = limits
	}
}

// WithInvocation records which contract at which height is executing, used
// for logging and randomness derivation.
func WithInvocation(contract entities.Addr, height uint64) EnvOption {
	return func(e *Env) {
		e.contract = contract
		e.height = height
	}
}

// NewEnv assembles the environment for one invocation.
func NewEnv(storage ports.Storage, api ports.API, querier ports.Querier, gas ports.GasMeter, opts ...EnvOption) *Env {
	e := &Env{
		storage:   storage,
		api:       api,
		querier:   querier,
		gas:       gas,
		logger:    slog.Default(),
		costs:     DefaultGasCosts(),
		limits:    DefaultLimits(),
		iterators: make(map[uint32]ports.Iterator),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Features returns the enabled capability set.
func (e *Env) Features() entities.Features {
	return e.features
}

// GasMeter exposes the invocation's meter.
func (e *Env) GasMeter() ports.GasMeter {
	return e.gas
}

// Limits returns the boundary limits in effect.
func (e *Env) Limits() Limits {
	return e.limits
}

// Close releases all open iterators. Called when the invocation returns.
func (e *Env) Close() error {
	var firstErr error
	for id, it := range e.iterators {
		if err := it.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close iterator %d: %w", id, err)
		}
		delete(e.iterators, id)
	}
	return firstErr
}

// envContextKey attaches the Env to the context flowing through wazero into
// the host function implementations.
type envContextKey struct{}

// WithEnv returns a context carrying the environment.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envContextKey{}, env)
}

// FromContext extracts the environment of the current invocation.
func FromContext(ctx context.Context) (*Env, bool) {
	env, ok := ctx.Value(envContextKey{}).(*Env)
	return env, ok
}
