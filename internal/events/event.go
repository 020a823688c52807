// Package events carries relationship domain events to downstream consumers.
// Events are published after the mutation that produced them has committed.
package events

import (
	"context"
	"time"

	"amizades/internal/models"

	"github.com/google/uuid"
)

// Type names a relationship event.
type Type string

const (
	RequestSent     Type = "request.sent"
	RequestAccepted Type = "request.accepted"
	RequestRejected Type = "request.rejected"
)

// Event records one committed relationship mutation.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, senderID, receiverID string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		SenderID:   senderID,
		ReceiverID: receiverID,
		OccurredAt: time.Now().UTC(),
	}
}

// PairKey is the canonical pair, so every event about one pair shares a key.
func (e Event) PairKey() string {
	lo, hi := models.CanonicalPair(e.SenderID, e.ReceiverID)
	return lo + ":" + hi
}

// Publisher delivers events to one sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, e Event) error
}

// Closer is implemented by publishers holding connections.
type Closer interface {
	Close() error
}
