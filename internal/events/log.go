package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info().
		Stringer("event_id", event.ID).
		Str("event_type", event.Type).
		Str("key", event.Key).
		Interface("payload", event.Payload).
		Msg("event published")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
