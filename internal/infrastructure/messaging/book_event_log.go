package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// DecodeBookEvent parses a message body written by BookEventPublisher.
func DecodeBookEvent(body []byte) (book.Event, error) {
	var ev book.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return book.Event{}, fmt.Errorf("decode book event: %w", err)
	}
	if ev.Type == "" || ev.BookID == 0 {
		return book.Event{}, fmt.Errorf("decode book event: missing type or book_id")
	}
	return ev, nil
}

// LogBookEvents returns a consumer handler that writes each event as a
// structured log line. Undecodable messages are logged and acknowledged;
// requeueing them would only loop.
func LogBookEvents(log *logrus.Logger) func(ctx context.Context, routingKey string, body []byte) error {
	return func(_ context.Context, routingKey string, body []byte) error {
		ev, err := DecodeBookEvent(body)
		if err != nil {
			log.WithError(err).WithField("routing_key", routingKey).Warn("dropping message")
			return nil
		}

		fields := logrus.Fields{
			"routing_key": routingKey,
			"event":       ev.Type,
			"book_id":     ev.BookID,
			"occurred_at": ev.OccurredAt,
		}
		if ev.Status != "" {
			fields["status"] = ev.Status
		}
		if len(ev.Emails) > 0 {
			fields["emails"] = ev.Emails
		}
		log.WithFields(fields).Info("book event")
		return nil
	}
}
