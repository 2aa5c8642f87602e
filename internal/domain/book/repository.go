package book

import (
	"context"

	"github.com/xiebiao/bookshelf/pkg/pagination"
)

// Repository is implemented by the persistence layer.
//
// Every method that mutates a book is atomic: either the whole change is
// committed or none of it is. Methods addressing a missing id return
// ErrBookNotFound; any other error is a store failure.
type Repository interface {
	// Create inserts the book and its reviews and fills in ID and timestamps.
	Create(ctx context.Context, book *Book) error

	FindByID(ctx context.Context, id uint) (*Book, error)

	// Update merges patch onto the stored book and returns the result.
	Update(ctx context.Context, id uint, patch Patch) (*Book, error)

	// Delete removes the book with all of its lists and returns the
	// state it had before removal.
	Delete(ctx context.Context, id uint) (*Book, error)

	// List returns one page of books matching params and the total number
	// of matches regardless of the page window.
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	AppendReview(ctx context.Context, id uint, review Review) (*Book, error)

	// ReplaceWishlist sets the wishlist to exactly emails.
	ReplaceWishlist(ctx context.Context, id uint, emails []string) (*Book, error)

	// RemoveMember detaches email from the wishlist and every reading list.
	RemoveMember(ctx context.Context, id uint, email string) (*Book, error)

	// SetReadingStatus moves every email to status. Emails that already
	// have it keep their position; the others are appended in order.
	SetReadingStatus(ctx context.Context, id uint, status ReadingStatus, emails []string) (*Book, error)
}

// Filter selects books. An empty filter matches everything.
type Filter struct {
	// SearchTerm is matched case-insensitively as a substring of any
	// searchable field. It is used as given, surrounding spaces included.
	SearchTerm string
	// Fields are exact-match conditions, all of which must hold. No book has
	// a field outside FilterableFields, so such a key matches nothing.
	Fields map[string]string
}

// ListParams combines a filter with a resolved page window.
type ListParams struct {
	Filter Filter
	Window pagination.Result
}
