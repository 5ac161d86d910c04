package queue

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher writes notifications to the application log. It is used when
// no broker is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, m Message) error {
	p.log.Info().
		Str("kind", string(m.Kind)).
		Str("event", m.Event).
		Str("entity", string(m.Entity)).
		Str("entity_id", m.EntityID).
		Str("actor_id", m.ActorID).
		Str("title", m.Title).
		Msg(m.Message)
	return nil
}
