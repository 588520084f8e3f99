package modelo

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/modelo/capability"
	"github.com/gogpu/modelo/progress"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for modelo and its sub-packages.
// By default, modelo produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used by modelo:
//   - [slog.LevelDebug]: per-backend probe failures, stale timers
//   - [slog.LevelInfo]: tier selection, load lifecycle
//   - [slog.LevelWarn]: no backend available, load errors and timeouts
//
// Example:
//
//	modelo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	capability.SetLogger(l)
	progress.SetLogger(l)
}

// Logger returns the current logger used by modelo.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
