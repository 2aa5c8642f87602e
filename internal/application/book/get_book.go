package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// GetBookUseCase reads one book, through the cache when one is configured.
type GetBookUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewGetBookUseCase(bookService book.Service, effects *SideEffects) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, effects: effects}
}

// Execute returns (nil, nil) when the book does not exist.
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := traced(ctx, "get_book", id, func(ctx context.Context) (*book.Book, error) {
		return uc.effects.lookup(ctx, id, func(ctx context.Context) (*book.Book, error) {
			return uc.bookService.GetBook(ctx, id)
		})
	})
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}
