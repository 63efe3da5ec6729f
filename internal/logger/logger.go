package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON slog.Logger writing to w at the given level.
// A nil writer means os.Stdout.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetupDefault installs New(w, level) as the process-wide default logger.
func SetupDefault(w io.Writer, level slog.Level) *slog.Logger {
	l := New(w, level)
	slog.SetDefault(l)
	return l
}
