package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

type recordingPublisher struct {
	keys     []string
	messages []interface{}
	err      error
}

func (r *recordingPublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	r.keys = append(r.keys, routingKey)
	r.messages = append(r.messages, message)
	return r.err
}

func (r *recordingPublisher) Exchange() string { return "bookshelf.events" }

func TestBookEventPublisher_Publish(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewBookEventPublisher(rec)

	ev := book.NewEvent(book.EventReadingStatusChanged, 3)
	ev.Status = book.StatusFinished
	ev.Emails = []string{"a@x.com"}

	before := testutil.ToFloat64(metrics.MessagesPublishedTotal.WithLabelValues(
		"bookshelf.events", "book.reading_status_changed", metrics.ResultSuccess))

	require.NoError(t, p.Publish(context.Background(), ev))
	assert.Equal(t, []string{"book.reading_status_changed"}, rec.keys)
	assert.Equal(t, ev, rec.messages[0])

	after := testutil.ToFloat64(metrics.MessagesPublishedTotal.WithLabelValues(
		"bookshelf.events", "book.reading_status_changed", metrics.ResultSuccess))
	assert.Equal(t, before+1, after)
}

func TestBookEventPublisher_PublishError(t *testing.T) {
	rec := &recordingPublisher{err: errors.New("channel closed")}
	p := NewBookEventPublisher(rec)

	err := p.Publish(context.Background(), book.NewEvent(book.EventDeleted, 3))
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeBrokerError, appErr.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesPublishedTotal.WithLabelValues(
		"bookshelf.events", "book.deleted", metrics.ResultFailure)))
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "book.created", RoutingKey(book.EventCreated))
	assert.Equal(t, "book.wishlist_replaced", RoutingKey(book.EventWishlistReplaced))
}
