package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

type AddReviewUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewAddReviewUseCase(bookService book.Service, effects *SideEffects) *AddReviewUseCase {
	return &AddReviewUseCase{bookService: bookService, effects: effects}
}

type AddReviewRequest struct {
	Email   string
	Comment string
}

// Execute appends the review after the existing ones.
func (uc *AddReviewUseCase) Execute(ctx context.Context, id uint, req AddReviewRequest) (*BookResponse, error) {
	b, err := traced(ctx, "add_review", id, func(ctx context.Context) (*book.Book, error) {
		return uc.bookService.AddReview(ctx, id, book.Review{Email: req.Email, Comment: req.Comment})
	})
	if err != nil || b == nil {
		return nil, err
	}

	ev := book.NewEvent(book.EventReviewed, id)
	ev.Emails = []string{req.Email}
	uc.effects.committed(ctx, ev)
	return toBookResponse(b), nil
}
