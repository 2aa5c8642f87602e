package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// MoveReadingStatusUseCase puts users on one of the three reading lists.
// The last email of the payload is the acting user; every payload email
// leaves the other two lists in the same transaction.
type MoveReadingStatusUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewMoveReadingStatusUseCase(bookService book.Service, effects *SideEffects) *MoveReadingStatusUseCase {
	return &MoveReadingStatusUseCase{bookService: bookService, effects: effects}
}

func (uc *MoveReadingStatusUseCase) ReadSoon(ctx context.Context, id uint, emails []string) (*BookResponse, error) {
	return uc.execute(ctx, id, book.StatusReadSoon, emails, uc.bookService.AddToReadSoon)
}

func (uc *MoveReadingStatusUseCase) CurrentlyReading(ctx context.Context, id uint, emails []string) (*BookResponse, error) {
	return uc.execute(ctx, id, book.StatusCurrentlyReading, emails, uc.bookService.AddToCurrentlyReading)
}

func (uc *MoveReadingStatusUseCase) Finished(ctx context.Context, id uint, emails []string) (*BookResponse, error) {
	return uc.execute(ctx, id, book.StatusFinished, emails, uc.bookService.AddToFinished)
}

type moveFunc func(ctx context.Context, id uint, emails []string) (*book.Book, error)

func (uc *MoveReadingStatusUseCase) execute(ctx context.Context, id uint, status book.ReadingStatus, emails []string, move moveFunc) (*BookResponse, error) {
	b, err := traced(ctx, "add_to_"+string(status), id, func(ctx context.Context) (*book.Book, error) {
		return move(ctx, id, emails)
	})
	if err != nil || b == nil {
		return nil, err
	}

	ev := book.NewEvent(book.EventReadingStatusChanged, id)
	ev.Status = status
	ev.Emails = book.UniqueEmails(emails)
	uc.effects.committed(ctx, ev)
	return toBookResponse(b), nil
}
