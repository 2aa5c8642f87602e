package book

import (
	"time"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookResponse is the outward shape of a book. Lists are never null.
type BookResponse struct {
	ID               uint             `json:"id"`
	Title            string           `json:"title"`
	Author           string           `json:"author"`
	Genre            string           `json:"genre"`
	PublicationDate  string           `json:"publication_date"`
	Reviews          []ReviewResponse `json:"reviews"`
	Wishlist         []string         `json:"wishlist"`
	ReadSoon         []string         `json:"read_soon"`
	CurrentlyReading []string         `json:"currently_reading"`
	Finished         []string         `json:"finished"`
	CreatedAt        string           `json:"created_at"`
	UpdatedAt        string           `json:"updated_at"`
}

type ReviewResponse struct {
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

// toBookResponse keeps the soft not-found: a nil book maps to nil.
func toBookResponse(b *book.Book) *BookResponse {
	if b == nil {
		return nil
	}
	reviews := make([]ReviewResponse, len(b.Reviews))
	for i, r := range b.Reviews {
		reviews[i] = ReviewResponse{Email: r.Email, Comment: r.Comment}
	}
	return &BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Genre:            string(b.Genre),
		PublicationDate:  b.PublicationDate,
		Reviews:          reviews,
		Wishlist:         orEmpty(b.Wishlist),
		ReadSoon:         orEmpty(b.ReadSoon),
		CurrentlyReading: orEmpty(b.CurrentlyReading),
		Finished:         orEmpty(b.Finished),
		CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
