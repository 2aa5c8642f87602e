package book

import (
	"context"
	"time"
)

// EventType is used as the routing key suffix: book.<type>.
type EventType string

const (
	EventCreated              EventType = "created"
	EventUpdated              EventType = "updated"
	EventDeleted              EventType = "deleted"
	EventReviewed             EventType = "reviewed"
	EventWishlistReplaced     EventType = "wishlist_replaced"
	EventMemberRemoved        EventType = "member_removed"
	EventReadingStatusChanged EventType = "reading_status_changed"
)

// Event is emitted after a mutation has been committed.
type Event struct {
	Type       EventType     `json:"type"`
	BookID     uint          `json:"book_id"`
	Status     ReadingStatus `json:"status,omitempty"`
	Emails     []string      `json:"emails,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, bookID uint) Event {
	return Event{Type: t, BookID: bookID, OccurredAt: time.Now().UTC()}
}

// EventPublisher delivers events to subscribers. Delivery is best effort
// and a failure never undoes the mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
