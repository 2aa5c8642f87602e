package book

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/pagination"
)

type mockService struct {
	mock.Mock
}

func bookResult(args mock.Arguments) (*book.Book, error) {
	b, _ := args.Get(0).(*book.Book)
	return b, args.Error(1)
}

func (m *mockService) ListBooks(ctx context.Context, filter book.Filter, opts pagination.Options) (*book.Page, error) {
	args := m.Called(ctx, filter, opts)
	p, _ := args.Get(0).(*book.Page)
	return p, args.Error(1)
}

func (m *mockService) GetBook(ctx context.Context, id uint) (*book.Book, error) {
	return bookResult(m.Called(ctx, id))
}

func (m *mockService) CreateBook(ctx context.Context, b *book.Book) (*book.Book, error) {
	return bookResult(m.Called(ctx, b))
}

func (m *mockService) UpdateBook(ctx context.Context, id uint, patch book.Patch) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, patch))
}

func (m *mockService) DeleteBook(ctx context.Context, id uint) (*book.Book, error) {
	return bookResult(m.Called(ctx, id))
}

func (m *mockService) AddReview(ctx context.Context, id uint, review book.Review) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, review))
}

func (m *mockService) AddToWishlist(ctx context.Context, id uint, emails []string) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, emails))
}

func (m *mockService) RemoveFromWishlist(ctx context.Context, id uint, email string) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, email))
}

func (m *mockService) AddToReadSoon(ctx context.Context, id uint, emails []string) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, emails))
}

func (m *mockService) AddToCurrentlyReading(ctx context.Context, id uint, emails []string) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, emails))
}

func (m *mockService) AddToFinished(ctx context.Context, id uint, emails []string) (*book.Book, error) {
	return bookResult(m.Called(ctx, id, emails))
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, id uint) (*book.Book, error) {
	return bookResult(m.Called(ctx, id))
}

func (m *mockCache) Set(ctx context.Context, b *book.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event book.Event) error {
	return m.Called(ctx, event).Error(0)
}

// eventOf matches an event by type and book id, ignoring the timestamp.
func eventOf(t book.EventType, id uint) interface{} {
	return mock.MatchedBy(func(e book.Event) bool {
		return e.Type == t && e.BookID == id
	})
}
