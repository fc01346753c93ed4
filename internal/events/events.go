// Package events carries order lifecycle notifications out of the storefront.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(eventType, key string, payload any) (Event, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return Event{}, fmt.Errorf("events: failed to generate event id: %w", err)
	}

	return Event{
		ID:         id,
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
