package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates the process logger writing to stderr.
// format is "json" or "text"; anything else falls back to text.
// The "error" key is rewritten to "err" so attrs match across packages.
func New(level, format string) *slog.Logger {
	return newLogger(os.Stderr, ParseLevel(level), format)
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
