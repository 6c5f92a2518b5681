package diagram

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record; Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by diagram. By default nothing is
// logged. Pass nil to silence logging again.
//
// Log levels used:
//   - [slog.LevelDebug]: animation wraparounds
//   - [slog.LevelInfo]: rejected connect attempts
//   - [slog.LevelWarn]: ingestion records that were skipped
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current diagram logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
