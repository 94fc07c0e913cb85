// Package log provides structured logging (slog) for contract execution.
// Records emitted inside an invocation are annotated with the contract
// address and block height carried in the context, so interleaved calls
// stay attributable.
package log

import (
	"context"
	"log/slog"

	"github.com/kromsten/cosmwasm/domain/entities"
)

type invocationKey struct{}

type invocation struct {
	contract entities.Addr
	height   uint64
}

// WithInvocation tags the context with the executing contract.
func WithInvocation(ctx context.Context, contract entities.Addr, height uint64) context.Context {
	return context.WithValue(ctx, invocationKey{}, invocation{contract: contract, height: height})
}

// InvocationFromContext reports the executing contract, if any.
func InvocationFromContext(ctx context.Context) (entities.Addr, uint64, bool) {
	inv, ok := ctx.Value(invocationKey{}).(invocation)
	return inv.contract, inv.height, ok
}

// ContextHandler decorates an slog.Handler with invocation attributes.
type ContextHandler struct {
	inner slog.Handler
	opts  handlerConfig
}

// HandlerOption configures the ContextHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level slog.Leveler
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// NewContextHandler wraps an existing handler.
func NewContextHandler(inner slog.Handler, opts ...HandlerOption) *ContextHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ContextHandler{inner: inner, opts: cfg}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.opts.level.Level() {
		return false
	}
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler, attaching contract and height when the
// context carries an invocation.
func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if contract, height, ok := InvocationFromContext(ctx); ok {
		record = record.Clone()
		record.AddAttrs(
			slog.String("contract", contract.String()),
			slog.Uint64("height", height),
		)
	}
	return h.inner.Handle(ctx, record)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), opts: h.opts}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name), opts: h.opts}
}
