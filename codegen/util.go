package codegen

import (
	"context"
	"log/slog"
)

// LevelTrace sits between Info and Warn so per-instruction records can be
// enabled without turning on all debug output.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
