package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

type DeleteBookUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewDeleteBookUseCase(bookService book.Service, effects *SideEffects) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService, effects: effects}
}

// Execute returns the book as it was before deletion, or (nil, nil) when it
// did not exist.
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := traced(ctx, "delete_book", id, func(ctx context.Context) (*book.Book, error) {
		return uc.bookService.DeleteBook(ctx, id)
	})
	if err != nil || b == nil {
		return nil, err
	}

	uc.effects.committed(ctx, book.NewEvent(book.EventDeleted, id))
	return toBookResponse(b), nil
}
