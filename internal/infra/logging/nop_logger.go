package logging

import (
	"log/slog"
)

// NewNopLogger returns a logger that drops every record. GetLogger hands it
// out when output is "discard"; tests use it directly.
func NewNopLogger() Logger {
	return slog.New(slog.DiscardHandler)
}
