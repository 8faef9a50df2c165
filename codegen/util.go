package codegen

import (
	"context"
	"log/slog"
)

// LevelTrace is used for per-instruction events, below debug.
const LevelTrace slog.Level = slog.LevelDebug - 4

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
