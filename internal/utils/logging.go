package utils

import (
	"context"
	"log/slog"

	"github.com/basilica-ai/minercheck/internal/checks"
)

// OutcomeToSlog logs a finished outcome at debug level.
func OutcomeToSlog(stage string, o checks.Outcome) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"stage", stage,
		"check", o.Name,
		"passed", o.Passed,
	}

	attrs = addIf(attrs, "kind", o.Kind)
	attrs = addIf(attrs, "message", o.Message)
	attrs = addIf(attrs, "detail", o.Detail)
	attrs = addIf(attrs, "duration", o.Duration)

	slog.Debug("Check finished", attrs...)
}

func addIf[T comparable](attrs []any, name string, v T) []any {
	var zero T
	if v != zero {
		attrs = append(attrs, name)
		attrs = append(attrs, v)
	}

	return attrs
}
