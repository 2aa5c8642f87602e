package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/logger"
	"github.com/xiebiao/bookshelf/pkg/pagination"
)

type fixture struct {
	svc     *mockService
	cache   *mockCache
	events  *mockPublisher
	effects *SideEffects
}

func newFixture() *fixture {
	f := &fixture{svc: new(mockService), cache: new(mockCache), events: new(mockPublisher)}
	f.effects = NewSideEffects(f.cache, f.events, logger.Discard())
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.svc.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func dune() *book.Book {
	b := book.NewBook("Dune", "Frank Herbert", book.GenreScienceFiction, "1965", nil)
	b.ID = 7
	b.CreatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b.UpdatedAt = b.CreatedAt
	return b
}

var ctx = context.Background()

func TestListBooks(t *testing.T) {
	f := newFixture()
	uc := NewListBooksUseCase(f.svc)

	f.svc.On("ListBooks", mock.Anything,
		book.Filter{SearchTerm: "tolkien", Fields: map[string]string{"genre": "Fantasy"}},
		pagination.Options{Page: 2, Limit: 5, SortBy: "title", SortOrder: "asc"},
	).Return(&book.Page{Page: 2, Limit: 5, Total: 6, Books: []*book.Book{dune()}}, nil)

	resp, err := uc.Execute(ctx, ListBooksRequest{
		SearchTerm: "tolkien",
		Filters:    map[string]string{"genre": "Fantasy"},
		Page:       2,
		Limit:      5,
		SortBy:     "title",
		SortOrder:  "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, int64(6), resp.Total)
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "Dune", resp.Books[0].Title)
	assert.Equal(t, "2024-05-01T12:00:00Z", resp.Books[0].CreatedAt)
	f.assertExpectations(t)
}

func TestListBooks_StoreError(t *testing.T) {
	f := newFixture()
	boom := apperrors.Wrap(errors.New("conn reset"), "count books failed")
	f.svc.On("ListBooks", mock.Anything, mock.Anything, mock.Anything).Return(nil, boom)

	_, err := NewListBooksUseCase(f.svc).Execute(ctx, ListBooksRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestGetBook_CacheHit(t *testing.T) {
	f := newFixture()
	f.cache.On("Get", mock.Anything, uint(7)).Return(dune(), nil)

	resp, err := NewGetBookUseCase(f.svc, f.effects).Execute(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), resp.ID)
	f.svc.AssertNotCalled(t, "GetBook", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestGetBook_CacheMissFills(t *testing.T) {
	f := newFixture()
	b := dune()
	f.cache.On("Get", mock.Anything, uint(7)).Return(nil, nil)
	f.svc.On("GetBook", mock.Anything, uint(7)).Return(b, nil)
	f.cache.On("Set", mock.Anything, b).Return(nil)

	resp, err := NewGetBookUseCase(f.svc, f.effects).Execute(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", resp.Author)
	f.assertExpectations(t)
}

func TestGetBook_CacheDownFallsBackToStore(t *testing.T) {
	f := newFixture()
	b := dune()
	f.cache.On("Get", mock.Anything, uint(7)).Return(nil, apperrors.ErrRedisError)
	f.svc.On("GetBook", mock.Anything, uint(7)).Return(b, nil)
	f.cache.On("Set", mock.Anything, b).Return(apperrors.ErrRedisError)

	resp, err := NewGetBookUseCase(f.svc, f.effects).Execute(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestGetBook_NotFoundIsNilAndNotCached(t *testing.T) {
	f := newFixture()
	f.cache.On("Get", mock.Anything, uint(9)).Return(nil, nil)
	f.svc.On("GetBook", mock.Anything, uint(9)).Return(nil, nil)

	resp, err := NewGetBookUseCase(f.svc, f.effects).Execute(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, resp)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestCreateBook(t *testing.T) {
	f := newFixture()
	f.svc.On("CreateBook", mock.Anything, mock.MatchedBy(func(b *book.Book) bool {
		return b.Title == "Dune" &&
			b.Genre == book.GenreScienceFiction &&
			len(b.Reviews) == 1 && b.Reviews[0].Email == "a@x.com" &&
			len(b.Wishlist) == 0
	})).Return(dune(), nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
	f.events.On("Publish", mock.Anything, eventOf(book.EventCreated, 7)).Return(nil)

	resp, err := NewCreateBookUseCase(f.svc, f.effects).Execute(ctx, CreateBookRequest{
		Title:           "Dune",
		Author:          "Frank Herbert",
		Genre:           "Science Fiction",
		PublicationDate: "1965",
		Reviews:         []ReviewInput{{Email: "a@x.com", Comment: "spice"}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), resp.ID)
	assert.Equal(t, []string{}, resp.ReadSoon)
	f.assertExpectations(t)
}

func TestCreateBook_InvalidGenreHasNoSideEffects(t *testing.T) {
	f := newFixture()
	f.svc.On("CreateBook", mock.Anything, mock.Anything).Return(nil, book.ErrInvalidGenre)

	_, err := NewCreateBookUseCase(f.svc, f.effects).Execute(ctx, CreateBookRequest{Genre: "Cooking"})
	assert.ErrorIs(t, err, book.ErrInvalidGenre)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestUpdateBook(t *testing.T) {
	f := newFixture()
	title := "Dune Messiah"
	genre := "Science Fiction"
	reviews := []ReviewInput{{Email: "b@x.com", Comment: "darker"}}

	f.svc.On("UpdateBook", mock.Anything, uint(7), mock.MatchedBy(func(p book.Patch) bool {
		return *p.Title == "Dune Messiah" && *p.Genre == book.GenreScienceFiction &&
			p.Author == nil && len(*p.Reviews) == 1
	})).Return(dune(), nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
	f.events.On("Publish", mock.Anything, eventOf(book.EventUpdated, 7)).Return(nil)

	resp, err := NewUpdateBookUseCase(f.svc, f.effects).Execute(ctx, 7, UpdateBookRequest{
		Title:   &title,
		Genre:   &genre,
		Reviews: &reviews,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp)
	f.assertExpectations(t)
}

func TestUpdateBook_EmptyPatchPublishesNothing(t *testing.T) {
	f := newFixture()
	f.svc.On("UpdateBook", mock.Anything, uint(7), book.Patch{}).Return(dune(), nil)

	resp, err := NewUpdateBookUseCase(f.svc, f.effects).Execute(ctx, 7, UpdateBookRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp)
	f.assertExpectations(t)
}

func TestUpdateBook_NotFound(t *testing.T) {
	f := newFixture()
	f.svc.On("UpdateBook", mock.Anything, uint(9), mock.Anything).Return(nil, nil)

	title := "x"
	resp, err := NewUpdateBookUseCase(f.svc, f.effects).Execute(ctx, 9, UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, resp)
	f.assertExpectations(t)
}

func TestDeleteBook(t *testing.T) {
	f := newFixture()
	f.svc.On("DeleteBook", mock.Anything, uint(7)).Return(dune(), nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
	f.events.On("Publish", mock.Anything, eventOf(book.EventDeleted, 7)).Return(nil)

	resp, err := NewDeleteBookUseCase(f.svc, f.effects).Execute(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Dune", resp.Title)
	f.assertExpectations(t)
}

func TestDeleteBook_NotFound(t *testing.T) {
	f := newFixture()
	f.svc.On("DeleteBook", mock.Anything, uint(9)).Return(nil, nil)

	resp, err := NewDeleteBookUseCase(f.svc, f.effects).Execute(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, resp)
	f.assertExpectations(t)
}

func TestAddReview(t *testing.T) {
	f := newFixture()
	b := dune()
	b.Reviews = []book.Review{{Email: "a@x.com", Comment: "spice"}}
	f.svc.On("AddReview", mock.Anything, uint(7), book.Review{Email: "a@x.com", Comment: "spice"}).Return(b, nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
	f.events.On("Publish", mock.Anything, eventOf(book.EventReviewed, 7)).Return(nil)

	resp, err := NewAddReviewUseCase(f.svc, f.effects).Execute(ctx, 7, AddReviewRequest{Email: "a@x.com", Comment: "spice"})
	require.NoError(t, err)
	assert.Equal(t, []ReviewResponse{{Email: "a@x.com", Comment: "spice"}}, resp.Reviews)
	f.assertExpectations(t)
}

func TestReplaceWishlist(t *testing.T) {
	f := newFixture()
	b := dune()
	b.Wishlist = []string{"a@x.com", "b@x.com"}
	f.svc.On("AddToWishlist", mock.Anything, uint(7), []string{"a@x.com", "b@x.com"}).Return(b, nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e book.Event) bool {
		return e.Type == book.EventWishlistReplaced && len(e.Emails) == 2
	})).Return(nil)

	resp, err := NewReplaceWishlistUseCase(f.svc, f.effects).Execute(ctx, 7, []string{"a@x.com", "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, resp.Wishlist)
	f.assertExpectations(t)
}

func TestRemoveFromLists(t *testing.T) {
	f := newFixture()
	f.svc.On("RemoveFromWishlist", mock.Anything, uint(7), "a@x.com").Return(dune(), nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
	f.events.On("Publish", mock.Anything, eventOf(book.EventMemberRemoved, 7)).Return(nil)

	resp, err := NewRemoveFromListsUseCase(f.svc, f.effects).Execute(ctx, 7, "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, resp)
	f.assertExpectations(t)
}

func TestMoveReadingStatus(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status book.ReadingStatus
		call   func(uc *MoveReadingStatusUseCase, ctx context.Context, id uint, emails []string) (*BookResponse, error)
	}{
		{"read soon", "AddToReadSoon", book.StatusReadSoon, (*MoveReadingStatusUseCase).ReadSoon},
		{"currently reading", "AddToCurrentlyReading", book.StatusCurrentlyReading, (*MoveReadingStatusUseCase).CurrentlyReading},
		{"finished", "AddToFinished", book.StatusFinished, (*MoveReadingStatusUseCase).Finished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			emails := []string{"b@x.com", "a@x.com", "b@x.com"}
			f.svc.On(tt.method, mock.Anything, uint(7), emails).Return(dune(), nil)
			f.cache.On("Invalidate", mock.Anything, uint(7)).Return(nil)
			f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e book.Event) bool {
				return e.Type == book.EventReadingStatusChanged &&
					e.Status == tt.status &&
					assert.ObjectsAreEqual([]string{"b@x.com", "a@x.com"}, e.Emails)
			})).Return(nil)

			uc := NewMoveReadingStatusUseCase(f.svc, f.effects)
			resp, err := tt.call(uc, ctx, 7, emails)
			require.NoError(t, err)
			assert.NotNil(t, resp)
			f.assertExpectations(t)
		})
	}
}

func TestMoveReadingStatus_EmptyPayload(t *testing.T) {
	f := newFixture()
	f.svc.On("AddToFinished", mock.Anything, uint(7), []string{}).Return(nil, book.ErrEmptyMembers)

	_, err := NewMoveReadingStatusUseCase(f.svc, f.effects).Finished(ctx, 7, []string{})
	assert.ErrorIs(t, err, book.ErrEmptyMembers)
	f.assertExpectations(t)
}

func TestSideEffectFailuresDoNotFailTheRequest(t *testing.T) {
	f := newFixture()
	f.svc.On("DeleteBook", mock.Anything, uint(7)).Return(dune(), nil)
	f.cache.On("Invalidate", mock.Anything, uint(7)).Return(apperrors.ErrRedisError)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(apperrors.ErrBrokerError)

	resp, err := NewDeleteBookUseCase(f.svc, f.effects).Execute(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), resp.ID)
	f.assertExpectations(t)
}

func TestNewSideEffects_NilFallsBackToNop(t *testing.T) {
	svc := new(mockService)
	svc.On("GetBook", mock.Anything, uint(7)).Return(dune(), nil)
	svc.On("DeleteBook", mock.Anything, uint(7)).Return(dune(), nil)

	effects := NewSideEffects(nil, nil, logger.Discard())
	got, err := NewGetBookUseCase(svc, effects).Execute(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = NewDeleteBookUseCase(svc, effects).Execute(ctx, 7)
	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestToBookResponse(t *testing.T) {
	assert.Nil(t, toBookResponse(nil))

	b := &book.Book{ID: 1, Title: "T", Genre: book.GenrePoetry}
	resp := toBookResponse(b)
	assert.Equal(t, []string{}, resp.Wishlist)
	assert.Equal(t, []string{}, resp.Finished)
	assert.Equal(t, []ReviewResponse{}, resp.Reviews)
	assert.Equal(t, "Poetry", resp.Genre)
}
