package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w. verbose lowers the level to debug.
func New(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		return Discard()
	}
	level := slog.LevelInfo
	if verbose || DebugEnabled() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
