package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes framework events to an slog.Logger.
// Useful for development when you want to see framework events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Errors log at Warn level,
// everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("device", event.Device),
		slog.String("category", event.Category.String()),
	}

	if event.Op != "" {
		attrs = append(attrs, slog.String("op", event.Op))
	}
	if event.HandleID != "" {
		attrs = append(attrs, slog.String("handle_id", event.HandleID))
	}

	switch {
	case event.Lifecycle != nil:
		attrs = append(attrs, slog.String("state", event.Lifecycle.State))
		if event.Lifecycle.MapperName != "" {
			attrs = append(attrs, slog.String("mapper", event.Lifecycle.MapperName))
		}
		if event.Lifecycle.Regions > 0 {
			attrs = append(attrs, slog.Int("regions", event.Lifecycle.Regions))
		}
	case event.IRQ != nil:
		attrs = append(attrs,
			slog.Int("line", int(event.IRQ.Line)),
			slog.String("action", event.IRQ.Action),
		)
	case event.Mapping != nil:
		attrs = append(attrs,
			slog.Int("index", event.Mapping.Index),
			slog.Uint64("length", event.Mapping.Length),
		)
	}

	level := slog.LevelDebug
	msg := "udd event"
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", event.Error.Message))
		msg = "udd error"
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
