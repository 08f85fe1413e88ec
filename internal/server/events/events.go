// Package events publishes change notifications for devices and bookings.
// Publishing is best effort: callers log a failed publish and move on, the
// stored collection is the source of truth.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/rackbook/internal/logging"
)

// Event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
	DeviceCreated  = "device.created"
	DeviceUpdated  = "device.updated"
	DeviceDeleted  = "device.deleted"
	UserCreated    = "user.created"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time. key is the id of
// the record the event is about and is used for partitioning.
func New(eventType string, key int64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        strconv.FormatInt(key, 10),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// LogPublisher writes events to the log. It is used when no broker is
// configured.
type LogPublisher struct {
	logger logging.Logger
}

func NewLogPublisher(l logging.Logger) *LogPublisher {
	return &LogPublisher{logger: l.With("module", "events")}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.Debug(ctx, "event", "id", e.ID, "type", e.Type, "key", e.Key)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
