package messaging

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// RoutingKeyPrefix is prepended to the event type: book.created, book.deleted...
const RoutingKeyPrefix = "book."

// Publisher is the slice of mq.Publisher this package needs.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Exchange() string
}

// BookEventPublisher sends book events to a topic exchange.
type BookEventPublisher struct {
	publisher Publisher
}

func NewBookEventPublisher(publisher Publisher) *BookEventPublisher {
	return &BookEventPublisher{publisher: publisher}
}

func RoutingKey(t book.EventType) string {
	return RoutingKeyPrefix + string(t)
}

func (p *BookEventPublisher) Publish(ctx context.Context, event book.Event) error {
	key := RoutingKey(event.Type)
	err := p.publisher.Publish(ctx, key, event)
	metrics.ObservePublish(p.publisher.Exchange(), key, err)
	if err != nil {
		return apperrors.ErrBrokerError.WithCause(err)
	}
	return nil
}

var _ book.EventPublisher = (*BookEventPublisher)(nil)
