package book

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/pagination"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// ListBooksUseCase serves the catalog listing: search, exact filters,
// optional sort and a page window. Listings are not cached.
type ListBooksUseCase struct {
	bookService book.Service
}

func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

type ListBooksRequest struct {
	SearchTerm string
	Filters    map[string]string // exact match: title, author, genre, publication_date
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string // asc | desc | 1 | -1
}

type ListBooksResponse struct {
	Books []*BookResponse `json:"books"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int64           `json:"total"`
}

func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (resp *ListBooksResponse, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "book.list_books")
	span.SetAttributes(
		attribute.String("book.search_term", req.SearchTerm),
		attribute.Int("book.page", req.Page),
		attribute.Int("book.limit", req.Limit),
	)
	defer func() {
		tracing.End(span, err)
		metrics.ObserveBookOperation("list_books", start, err, false)
	}()

	page, err := uc.bookService.ListBooks(ctx,
		book.Filter{SearchTerm: req.SearchTerm, Fields: req.Filters},
		pagination.Options{
			Page:      req.Page,
			Limit:     req.Limit,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
		},
	)
	if err != nil {
		return nil, err
	}

	books := make([]*BookResponse, len(page.Books))
	for i, b := range page.Books {
		books[i] = toBookResponse(b)
	}
	span.SetAttributes(attribute.Int64("book.total", page.Total))

	return &ListBooksResponse{
		Books: books,
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	}, nil
}
