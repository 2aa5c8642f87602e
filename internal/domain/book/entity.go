package book

import (
	"time"
)

// Book is the catalog aggregate root.
//
// The four membership lists hold user emails in insertion order. ReadSoon,
// CurrentlyReading and Finished are disjoint: a user has at most one
// reading status per book. The persistence layer stores them as a single
// (book, email) -> status table, so the lists here are a projection of it.
type Book struct {
	ID               uint
	Title            string
	Author           string
	Genre            Genre
	PublicationDate  string
	Reviews          []Review
	Wishlist         []string
	ReadSoon         []string
	CurrentlyReading []string
	Finished         []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Review is appended to a book and never edited individually.
type Review struct {
	Email   string
	Comment string
}

// NewBook builds a book ready to be inserted. Membership lists start empty.
func NewBook(title, author string, genre Genre, publicationDate string, reviews []Review) *Book {
	now := time.Now()
	if reviews == nil {
		reviews = []Review{}
	}
	return &Book{
		Title:            title,
		Author:           author,
		Genre:            genre,
		PublicationDate:  publicationDate,
		Reviews:          reviews,
		Wishlist:         []string{},
		ReadSoon:         []string{},
		CurrentlyReading: []string{},
		Finished:         []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Members returns the list backing the given reading status.
func (b *Book) Members(status ReadingStatus) []string {
	switch status {
	case StatusReadSoon:
		return b.ReadSoon
	case StatusCurrentlyReading:
		return b.CurrentlyReading
	case StatusFinished:
		return b.Finished
	default:
		return nil
	}
}

// StatusOf returns the reading status of email, or "" if the user has none.
func (b *Book) StatusOf(email string) ReadingStatus {
	for _, status := range ReadingStatuses() {
		for _, m := range b.Members(status) {
			if m == email {
				return status
			}
		}
	}
	return ""
}

// Apply merges the fields present in p onto b.
func (b *Book) Apply(p Patch) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.PublicationDate != nil {
		b.PublicationDate = *p.PublicationDate
	}
	if p.Reviews != nil {
		b.Reviews = append([]Review{}, (*p.Reviews)...)
	}
	b.UpdatedAt = time.Now()
}

// Patch is a partial update. Nil fields are left alone; a non-nil Reviews
// replaces the whole review sequence.
type Patch struct {
	Title           *string
	Author          *string
	Genre           *Genre
	PublicationDate *string
	Reviews         *[]Review
}

// IsEmpty reports whether p changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Genre == nil &&
		p.PublicationDate == nil && p.Reviews == nil
}

// ReadingStatus names one of the three mutually exclusive reading lists.
type ReadingStatus string

const (
	StatusReadSoon         ReadingStatus = "read_soon"
	StatusCurrentlyReading ReadingStatus = "currently_reading"
	StatusFinished         ReadingStatus = "finished"
)

// ReadingStatuses lists the statuses in display order.
func ReadingStatuses() []ReadingStatus {
	return []ReadingStatus{StatusReadSoon, StatusCurrentlyReading, StatusFinished}
}

func (s ReadingStatus) IsValid() bool {
	switch s {
	case StatusReadSoon, StatusCurrentlyReading, StatusFinished:
		return true
	}
	return false
}

// UniqueEmails drops repeated entries while keeping first-seen order.
func UniqueEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
