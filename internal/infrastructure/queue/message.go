package queue

import (
	"context"
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// Message is the JSON document published for each notification.
type Message struct {
	Kind     domain.NotificationKind `json:"kind"`
	Event    string                  `json:"event"`
	Title    string                  `json:"title"`
	Message  string                  `json:"message"`
	Entity   domain.EntityKind       `json:"entity,omitempty"`
	EntityID string                  `json:"entity_id,omitempty"`
	ActorID  string                  `json:"actor_id,omitempty"`
	At       time.Time               `json:"at"`
}

// Publisher delivers rendered notifications to their audience.
type Publisher interface {
	Publish(ctx context.Context, m Message) error
}

// Renderer turns a notification into a localized title and message.
type Renderer interface {
	Render(lang string, n domain.Notification) (title, message string)
}
