package wazero

import (
	"context"
	"log/slog"
	"time"

	"github.com/tetratelabs/wazero/api"
)

// WithCallLogging returns middleware that logs every host import call with
// its duration. Logged after the call so traps still surface first.
func WithCallLogging(logger *slog.Logger) Middleware {
	return func(name string, next api.GoModuleFunc) api.GoModuleFunc {
		return api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			start := time.Now()
			defer func() {
				logger.DebugContext(ctx, "host import",
					"name", name,
					"duration", time.Since(start),
				)
			}()
			next(ctx, mod, stack)
		})
	}
}
