package commands

import (
	"io"
	"log/slog"
)

// NewLogger returns a JSON logger when format is "json" and a text logger
// otherwise.
func NewLogger(format string, w io.Writer) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}
