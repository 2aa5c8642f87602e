package book

import (
	"context"
	"errors"

	"github.com/xiebiao/bookshelf/pkg/pagination"
)

// Service is the catalog core exposed to the application layer.
//
// Not-found is a soft condition: every method addressing a single book
// returns (nil, nil) when the id does not exist. Callers must check for a
// nil book explicitly. Store errors are returned as they come from the
// repository.
type Service interface {
	// ListBooks is the query builder: filter, sort, page window, total.
	ListBooks(ctx context.Context, filter Filter, opts pagination.Options) (*Page, error)

	GetBook(ctx context.Context, id uint) (*Book, error)
	CreateBook(ctx context.Context, book *Book) (*Book, error)
	UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error)
	DeleteBook(ctx context.Context, id uint) (*Book, error)
	AddReview(ctx context.Context, id uint, review Review) (*Book, error)

	// AddToWishlist replaces the wishlist wholesale. It does not merge
	// with the existing list, unlike the reading-status operations.
	AddToWishlist(ctx context.Context, id uint, emails []string) (*Book, error)

	// RemoveFromWishlist detaches email from all four lists.
	RemoveFromWishlist(ctx context.Context, id uint, email string) (*Book, error)

	// The last email of the payload is the acting user.
	AddToReadSoon(ctx context.Context, id uint, emails []string) (*Book, error)
	AddToCurrentlyReading(ctx context.Context, id uint, emails []string) (*Book, error)
	AddToFinished(ctx context.Context, id uint, emails []string) (*Book, error)
}

// Page is one window of a book listing.
type Page struct {
	Page  int
	Limit int
	Total int64
	Books []*Book
}

type service struct {
	repo Repository
}

// NewService wires the core on top of a repository.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListBooks(ctx context.Context, filter Filter, opts pagination.Options) (*Page, error) {
	window := pagination.Calculate(opts)

	books, total, err := s.repo.List(ctx, ListParams{
		Filter: filter,
		Window: window,
	})
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*Book{}
	}

	return &Page{
		Page:  window.Page,
		Limit: window.Limit,
		Total: total,
		Books: books,
	}, nil
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return soft(s.repo.FindByID(ctx, id))
}

func (s *service) CreateBook(ctx context.Context, book *Book) (*Book, error) {
	if !book.Genre.IsValid() {
		return nil, ErrInvalidGenre
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) UpdateBook(ctx context.Context, id uint, patch Patch) (*Book, error) {
	if patch.Genre != nil && !patch.Genre.IsValid() {
		return nil, ErrInvalidGenre
	}
	if patch.IsEmpty() {
		return s.GetBook(ctx, id)
	}
	return soft(s.repo.Update(ctx, id, patch))
}

func (s *service) DeleteBook(ctx context.Context, id uint) (*Book, error) {
	return soft(s.repo.Delete(ctx, id))
}

func (s *service) AddReview(ctx context.Context, id uint, review Review) (*Book, error) {
	return soft(s.repo.AppendReview(ctx, id, review))
}

func (s *service) AddToWishlist(ctx context.Context, id uint, emails []string) (*Book, error) {
	return soft(s.repo.ReplaceWishlist(ctx, id, UniqueEmails(emails)))
}

func (s *service) RemoveFromWishlist(ctx context.Context, id uint, email string) (*Book, error) {
	return soft(s.repo.RemoveMember(ctx, id, email))
}

func (s *service) AddToReadSoon(ctx context.Context, id uint, emails []string) (*Book, error) {
	return s.moveTo(ctx, id, StatusReadSoon, emails)
}

func (s *service) AddToCurrentlyReading(ctx context.Context, id uint, emails []string) (*Book, error) {
	return s.moveTo(ctx, id, StatusCurrentlyReading, emails)
}

func (s *service) AddToFinished(ctx context.Context, id uint, emails []string) (*Book, error) {
	return s.moveTo(ctx, id, StatusFinished, emails)
}

// moveTo puts the payload into the target list. The acting user (last
// element) is thereby pulled out of the other two lists; so is every other
// payload email, since a user can only hold one status.
func (s *service) moveTo(ctx context.Context, id uint, status ReadingStatus, emails []string) (*Book, error) {
	if len(emails) == 0 {
		return nil, ErrEmptyMembers
	}
	return soft(s.repo.SetReadingStatus(ctx, id, status, UniqueEmails(emails)))
}

// soft maps ErrBookNotFound to a nil book without error.
func soft(b *Book, err error) (*Book, error) {
	if errors.Is(err, ErrBookNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
