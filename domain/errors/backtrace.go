package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
)

// backtracesEnabled gates backtrace capture globally. Off by default to keep
// error construction cheap; enabled through configuration for debugging.
var backtracesEnabled atomic.Bool

// EnableBacktraces toggles backtrace capture on error construction.
func EnableBacktraces(enabled bool) {
	backtracesEnabled.Store(enabled)
}

// BacktracesEnabled reports the current setting.
func BacktracesEnabled() bool {
	return backtracesEnabled.Load()
}

const maxBacktraceFrames = 32

// Backtrace is a captured host call stack attached to an error.
type Backtrace struct {
	pcs []uintptr
}

// Capture records the current stack, skipping the given number of frames on
// top of Capture itself. Returns nil when capture is disabled.
func Capture(skip int) *Backtrace {
	if !backtracesEnabled.Load() {
		return nil
	}
	pcs := make([]uintptr, maxBacktraceFrames)
	n := runtime.Callers(skip+2, pcs)
	return &Backtrace{pcs: pcs[:n]}
}

// String renders the backtrace one frame per line.
func (b *Backtrace) String() string {
	if b == nil || len(b.pcs) == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(b.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
