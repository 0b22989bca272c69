package ggmix

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active package logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for ggmix, its sub-packages and the gg
// drawing library underneath. By default nothing is logged.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
//
// Log levels used by ggmix:
//   - [slog.LevelDebug]: per-frame diagnostics (throttled units, pass stats)
//   - [slog.LevelInfo]: lifecycle (units instantiated, channels created, loop start)
//   - [slog.LevelWarn]: control-plane failures and recovered unit panics
//   - [slog.LevelError]: back buffer reallocation failures
//
// A Compositor created WithLogger uses its own logger instead.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gg.SetLogger(l)
}

// Logger returns the current package logger.
// Sub-packages (stage, automation, units) call this to share configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
