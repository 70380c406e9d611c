package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers a text message to a WhatsApp number. The result is
// strictly advisory: callers log failures but never let them affect a
// state transition. kind is one of the events.Kind* values; machineID
// identifies the machine the message is about.
type Notifier interface {
	Notify(ctx context.Context, kind, machineID, number, message string) error
}

// ConsoleNotifier logs instead of sending; used in dev and as the
// fallback when no WasapBot credentials are configured.
type ConsoleNotifier struct {
	log zerolog.Logger
}

func NewConsole(log zerolog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) Notify(_ context.Context, kind, machineID, number, message string) error {
	c.log.Info().
		Str("kind", kind).
		Str("machine_id", machineID).
		Str("number", number).
		Str("message", message).
		Msg("notify (console)")
	return nil
}
