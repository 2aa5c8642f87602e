package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// CreateBookUseCase adds a book to the catalog. Membership lists start
// empty; reviews may be given up front.
type CreateBookUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewCreateBookUseCase(bookService book.Service, effects *SideEffects) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService, effects: effects}
}

type CreateBookRequest struct {
	Title           string
	Author          string
	Genre           string
	PublicationDate string
	Reviews         []ReviewInput
}

type ReviewInput struct {
	Email   string
	Comment string
}

func toReviews(in []ReviewInput) []book.Review {
	out := make([]book.Review, len(in))
	for i, r := range in {
		out[i] = book.Review{Email: r.Email, Comment: r.Comment}
	}
	return out
}

func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	b, err := traced(ctx, "create_book", 0, func(ctx context.Context) (*book.Book, error) {
		return uc.bookService.CreateBook(ctx, book.NewBook(
			req.Title,
			req.Author,
			book.Genre(req.Genre),
			req.PublicationDate,
			toReviews(req.Reviews),
		))
	})
	if err != nil {
		return nil, err
	}

	uc.effects.committed(ctx, book.NewEvent(book.EventCreated, b.ID))
	return toBookResponse(b), nil
}
