// Package events publishes domain events to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Type string

const (
	ExclusionToggled     Type = "budget.exclusion.toggled"
	TransactionsImported Type = "transactions.imported"
	TransactionsSynced   Type = "transactions.synced"
)

// Event is something that happened in the domain.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	OwnerID    uuid.UUID `json:"ownerId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// New creates an event with a new ID that occurs now.
func New(t Type, owner uuid.UUID, data any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		OwnerID:    owner,
		OccurredAt: time.Now().In(time.UTC),
		Data:       data,
	}
}

// JSON returns the JSON encoding of the event.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Notify publishes the event. Failures are logged and otherwise ignored,
// events never fail the operation that caused them.
func Notify(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}

	err := p.Publish(ctx, e)
	if err != nil {
		log.Error().Err(err).Str("event", string(e.Type)).Str("id", e.ID.String()).Msg("publishing event failed")
	}
}

// LogPublisher writes events to the log.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	body, err := e.JSON()
	if err != nil {
		return err
	}

	log.Info().Str("event", string(e.Type)).RawJSON("body", body).Msg("event")
	return nil
}

func (LogPublisher) Close() error {
	return nil
}
