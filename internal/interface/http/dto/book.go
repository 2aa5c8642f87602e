package dto

import (
	appbook "github.com/xiebiao/bookshelf/internal/application/book"
)

// CreateBookRequest is the body of POST /books.
// The genre tag is registered in validation.go.
type CreateBookRequest struct {
	Title           string          `json:"title" binding:"required,max=255" example:"The Hobbit"`
	Author          string          `json:"author" binding:"required,max=255" example:"J.R.R. Tolkien"`
	Genre           string          `json:"genre" binding:"required,genre" example:"Fantasy"`
	PublicationDate string          `json:"publication_date" binding:"required,max=64" example:"1937-09-21"`
	Reviews         []ReviewRequest `json:"reviews" binding:"omitempty,dive"`
}

type ReviewRequest struct {
	Email   string `json:"email" binding:"required,email" example:"reader@example.com"`
	Comment string `json:"comment" binding:"required,max=5000" example:"A classic."`
}

func (r CreateBookRequest) ToUseCase() appbook.CreateBookRequest {
	return appbook.CreateBookRequest{
		Title:           r.Title,
		Author:          r.Author,
		Genre:           r.Genre,
		PublicationDate: r.PublicationDate,
		Reviews:         toReviewInputs(r.Reviews),
	}
}

// UpdateBookRequest is the body of PATCH /books/:id. Omitted fields are
// left alone; a reviews array replaces every review of the book.
type UpdateBookRequest struct {
	Title           *string          `json:"title" binding:"omitempty,min=1,max=255"`
	Author          *string          `json:"author" binding:"omitempty,min=1,max=255"`
	Genre           *string          `json:"genre" binding:"omitempty,genre"`
	PublicationDate *string          `json:"publication_date" binding:"omitempty,min=1,max=64"`
	Reviews         *[]ReviewRequest `json:"reviews" binding:"omitempty,dive"`
}

func (r UpdateBookRequest) ToUseCase() appbook.UpdateBookRequest {
	req := appbook.UpdateBookRequest{
		Title:           r.Title,
		Author:          r.Author,
		Genre:           r.Genre,
		PublicationDate: r.PublicationDate,
	}
	if r.Reviews != nil {
		reviews := toReviewInputs(*r.Reviews)
		req.Reviews = &reviews
	}
	return req
}

func toReviewInputs(in []ReviewRequest) []appbook.ReviewInput {
	out := make([]appbook.ReviewInput, len(in))
	for i, r := range in {
		out[i] = appbook.ReviewInput{Email: r.Email, Comment: r.Comment}
	}
	return out
}

// EmailsRequest carries the members for the wishlist and the reading lists.
// For the reading lists the last email is the acting user.
type EmailsRequest struct {
	Emails []string `json:"emails" binding:"required,min=1,dive,required,email" example:"reader@example.com"`
}

// WishlistRequest may be empty: PUT with no emails clears the wishlist.
type WishlistRequest struct {
	Emails []string `json:"emails" binding:"omitempty,dive,required,email"`
}

type RemoveMemberRequest struct {
	Email string `json:"email" binding:"required,email" example:"reader@example.com"`
}

// ListBooksQuery is the query string of GET /books.
type ListBooksQuery struct {
	SearchTerm      string `form:"searchTerm" binding:"omitempty,max=255" example:"tolkien"`
	Page            int    `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit           int    `form:"limit" binding:"omitempty,min=1" example:"10"`
	SortBy          string `form:"sortBy" binding:"omitempty,sortable" example:"title"`
	SortOrder       string `form:"sortOrder" binding:"omitempty,oneof=asc desc 1 -1" example:"asc"`
	Title           string `form:"title"`
	Author          string `form:"author"`
	Genre           string `form:"genre" binding:"omitempty,genre"`
	PublicationDate string `form:"publication_date"`
}

func (q ListBooksQuery) ToUseCase() appbook.ListBooksRequest {
	filters := make(map[string]string)
	for field, value := range map[string]string{
		"title":            q.Title,
		"author":           q.Author,
		"genre":            q.Genre,
		"publication_date": q.PublicationDate,
	} {
		if value != "" {
			filters[field] = value
		}
	}
	return appbook.ListBooksRequest{
		SearchTerm: q.SearchTerm,
		Filters:    filters,
		Page:       q.Page,
		Limit:      q.Limit,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}
}

// BookListResponse documents the envelope of GET /books for swagger.
type BookListResponse struct {
	Code    int                     `json:"code" example:"0"`
	Message string                  `json:"message" example:"success"`
	Meta    PageMeta                `json:"meta"`
	Data    []*appbook.BookResponse `json:"data"`
}

type PageMeta struct {
	Page  int   `json:"page" example:"1"`
	Limit int   `json:"limit" example:"10"`
	Total int64 `json:"total" example:"42"`
}
