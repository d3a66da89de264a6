package logger

import (
	"io"
	"log/slog"

	"whale_analyzer/internal/app/port"
)

// slogAdapter implements port.Logger on top of a slog logger.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter returns a port.Logger writing through the global logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{l: current()}
}

// NewNop returns a port.Logger that discards everything.
func NewNop() port.Logger {
	return &slogAdapter{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.l.Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.l.Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.l.Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.l.Error(msg, args...)
}

func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{l: a.l.With(args...)}
}
