package gx

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled reports false so callers skip message formatting entirely.
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

// SetLogger configures the logger for gx and all its sub-packages.
// By default, gx produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by gx:
//   - [slog.LevelDebug]: lifecycle internals (lazy renderer init, texture collection)
//   - [slog.LevelInfo]: device selection
//   - [slog.LevelWarn]: degraded but supported conditions (oversized images, drawing outside a frame)
//   - [slog.LevelError]: resources that cannot be created on this device
//
// Example:
//
//	gx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by gx.
// Sub-packages call this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// LogOnce suppresses repeated log messages keyed by an arbitrary string.
// The zero value is ready to use.
type LogOnce struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// Warn logs msg at warn level the first time key is seen.
func (o *LogOnce) Warn(key, msg string, args ...any) {
	if o.first(key) {
		Logger().Warn(msg, args...)
	}
}

// Error logs msg at error level the first time key is seen.
func (o *LogOnce) Error(key, msg string, args ...any) {
	if o.first(key) {
		Logger().Error(msg, args...)
	}
}

// Reset forgets every key seen so far.
func (o *LogOnce) Reset() {
	o.mu.Lock()
	o.seen = nil
	o.mu.Unlock()
}

func (o *LogOnce) first(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.seen[key]; ok {
		return false
	}
	if o.seen == nil {
		o.seen = make(map[string]struct{})
	}
	o.seen[key] = struct{}{}
	return true
}
