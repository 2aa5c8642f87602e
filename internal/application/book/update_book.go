package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// UpdateBookUseCase applies a partial update. Absent fields are left alone;
// a present reviews array replaces the whole review sequence.
type UpdateBookUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewUpdateBookUseCase(bookService book.Service, effects *SideEffects) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService, effects: effects}
}

type UpdateBookRequest struct {
	Title           *string
	Author          *string
	Genre           *string
	PublicationDate *string
	Reviews         *[]ReviewInput
}

func (r UpdateBookRequest) patch() book.Patch {
	p := book.Patch{
		Title:           r.Title,
		Author:          r.Author,
		PublicationDate: r.PublicationDate,
	}
	if r.Genre != nil {
		g := book.Genre(*r.Genre)
		p.Genre = &g
	}
	if r.Reviews != nil {
		reviews := toReviews(*r.Reviews)
		p.Reviews = &reviews
	}
	return p
}

// Execute returns (nil, nil) when the book does not exist.
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req UpdateBookRequest) (*BookResponse, error) {
	patch := req.patch()
	b, err := traced(ctx, "update_book", id, func(ctx context.Context) (*book.Book, error) {
		return uc.bookService.UpdateBook(ctx, id, patch)
	})
	if err != nil || b == nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		uc.effects.committed(ctx, book.NewEvent(book.EventUpdated, id))
	}
	return toBookResponse(b), nil
}
