package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// ReplaceWishlistUseCase overwrites the wishlist with the given emails.
// It does not merge: an email missing from the payload leaves the list.
type ReplaceWishlistUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewReplaceWishlistUseCase(bookService book.Service, effects *SideEffects) *ReplaceWishlistUseCase {
	return &ReplaceWishlistUseCase{bookService: bookService, effects: effects}
}

func (uc *ReplaceWishlistUseCase) Execute(ctx context.Context, id uint, emails []string) (*BookResponse, error) {
	b, err := traced(ctx, "add_to_wishlist", id, func(ctx context.Context) (*book.Book, error) {
		return uc.bookService.AddToWishlist(ctx, id, emails)
	})
	if err != nil || b == nil {
		return nil, err
	}

	ev := book.NewEvent(book.EventWishlistReplaced, id)
	ev.Emails = b.Wishlist
	uc.effects.committed(ctx, ev)
	return toBookResponse(b), nil
}

// RemoveFromListsUseCase detaches a user from a book: the email leaves the
// wishlist and all three reading lists at once.
type RemoveFromListsUseCase struct {
	bookService book.Service
	effects     *SideEffects
}

func NewRemoveFromListsUseCase(bookService book.Service, effects *SideEffects) *RemoveFromListsUseCase {
	return &RemoveFromListsUseCase{bookService: bookService, effects: effects}
}

func (uc *RemoveFromListsUseCase) Execute(ctx context.Context, id uint, email string) (*BookResponse, error) {
	b, err := traced(ctx, "remove_from_wishlist", id, func(ctx context.Context) (*book.Book, error) {
		return uc.bookService.RemoveFromWishlist(ctx, id, email)
	})
	if err != nil || b == nil {
		return nil, err
	}

	ev := book.NewEvent(book.EventMemberRemoved, id)
	ev.Emails = []string{email}
	uc.effects.committed(ctx, ev)
	return toBookResponse(b), nil
}
