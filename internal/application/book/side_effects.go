package book

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// SideEffects is shared by the use cases: the book cache, the event
// publisher and the logger used when either of them fails. Neither can fail
// an operation; by the time they run the change is committed.
type SideEffects struct {
	cache  book.Cache
	events book.EventPublisher
	log    *logrus.Logger
}

func NewSideEffects(cache book.Cache, events book.EventPublisher, log *logrus.Logger) *SideEffects {
	if cache == nil {
		cache = book.NopCache{}
	}
	if events == nil {
		events = book.NopPublisher{}
	}
	return &SideEffects{cache: cache, events: events, log: log}
}

// committed drops the cached copy of the book and announces the change.
func (s *SideEffects) committed(ctx context.Context, event book.Event) {
	entry := s.log.WithFields(logrus.Fields{
		"book_id": event.BookID,
		"event":   event.Type,
	})
	if traceID := tracing.TraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}

	if err := s.cache.Invalidate(ctx, event.BookID); err != nil {
		entry.WithError(err).Warn("cache invalidation failed")
	}
	if err := s.events.Publish(ctx, event); err != nil {
		entry.WithError(err).Warn("event publish failed")
	}
}

// lookup reads through the cache. Cache errors fall back to the store.
func (s *SideEffects) lookup(ctx context.Context, id uint, load func(context.Context) (*book.Book, error)) (*book.Book, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("book_id", id).Warn("cache read failed")
	}
	if cached != nil {
		return cached, nil
	}

	b, err := load(ctx)
	if err != nil || b == nil {
		return b, err
	}
	if err := s.cache.Set(ctx, b); err != nil {
		s.log.WithError(err).WithField("book_id", id).Warn("cache fill failed")
	}
	return b, nil
}

// traced runs fn inside a span named book.<op> and records the operation
// metrics. A nil book without error counts as not_found.
func traced(ctx context.Context, op string, id uint, fn func(context.Context) (*book.Book, error)) (*book.Book, error) {
	start := time.Now()
	var opts []trace.SpanStartOption
	if id != 0 {
		opts = append(opts, trace.WithAttributes(attribute.Int64("book.id", int64(id))))
	}
	ctx, span := tracing.StartSpan(ctx, "book."+op, opts...)

	b, err := fn(ctx)

	tracing.End(span, err)
	metrics.ObserveBookOperation(op, start, err, err == nil && b == nil)
	return b, err
}
