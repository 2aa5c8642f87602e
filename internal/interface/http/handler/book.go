package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// BookHandler exposes the catalog use cases over HTTP. It only binds
// requests, calls the application layer and renders the envelope.
type BookHandler struct {
	listBooks     *appbook.ListBooksUseCase
	getBook       *appbook.GetBookUseCase
	createBook    *appbook.CreateBookUseCase
	updateBook    *appbook.UpdateBookUseCase
	deleteBook    *appbook.DeleteBookUseCase
	addReview     *appbook.AddReviewUseCase
	wishlist      *appbook.ReplaceWishlistUseCase
	removeMember  *appbook.RemoveFromListsUseCase
	readingStatus *appbook.MoveReadingStatusUseCase
}

func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	addReview *appbook.AddReviewUseCase,
	wishlist *appbook.ReplaceWishlistUseCase,
	removeMember *appbook.RemoveFromListsUseCase,
	readingStatus *appbook.MoveReadingStatusUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:     listBooks,
		getBook:       getBook,
		createBook:    createBook,
		updateBook:    updateBook,
		deleteBook:    deleteBook,
		addReview:     addReview,
		wishlist:      wishlist,
		removeMember:  removeMember,
		readingStatus: readingStatus,
	}
}

// ListBooks
// @Summary      List books
// @Description  Search, filter, sort and paginate the catalog
// @Tags         books
// @Produce      json
// @Param        searchTerm        query string false "case-insensitive substring of title, author or genre"
// @Param        title             query string false "exact title"
// @Param        author            query string false "exact author"
// @Param        genre             query string false "exact genre"
// @Param        publication_date  query string false "exact publication date"
// @Param        page              query int    false "page, from 1"
// @Param        limit             query int    false "page size, capped at 100"
// @Param        sortBy            query string false "id, title, author, genre, publication_date, created_at or updated_at"
// @Param        sortOrder         query string false "asc or desc"
// @Success      200 {object} dto.BookListResponse
// @Failure      400 {object} response.Response
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listBooks.Execute(c.Request.Context(), q.ToUseCase())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Books, result.Page, result.Limit, result.Total)
}

// GetBook
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id  path int true "book id"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	result, err := h.getBook.Execute(c.Request.Context(), id)
	render(c, result, err)
}

// CreateBook
// @Summary      Create a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "book"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      401 {object} response.Response
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), req.ToUseCase())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook
// @Summary      Update a book
// @Description  Only the fields present in the body change. A reviews array replaces all reviews.
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path int                   true "book id"
// @Param        request  body dto.UpdateBookRequest true "fields to change"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), id, req.ToUseCase())
	render(c, result, err)
}

// DeleteBook
// @Summary      Delete a book
// @Description  Returns the book as it was before deletion.
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id  path int true "book id"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	result, err := h.deleteBook.Execute(c.Request.Context(), id)
	render(c, result, err)
}

// AddReview
// @Summary      Add a review
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path int               true "book id"
// @Param        request  body dto.ReviewRequest true "review"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id}/reviews [post]
func (h *BookHandler) AddReview(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.addReview.Execute(c.Request.Context(), id, appbook.AddReviewRequest{
		Email:   req.Email,
		Comment: req.Comment,
	})
	render(c, result, err)
}

// ReplaceWishlist
// @Summary      Replace the wishlist
// @Description  The wishlist becomes exactly the given emails.
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path int                 true "book id"
// @Param        request  body dto.WishlistRequest true "emails"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id}/wishlist [put]
func (h *BookHandler) ReplaceWishlist(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req dto.WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Emails == nil {
		req.Emails = []string{}
	}

	result, err := h.wishlist.Execute(c.Request.Context(), id, req.Emails)
	render(c, result, err)
}

// RemoveMember
// @Summary      Remove a user from a book
// @Description  The email leaves the wishlist and every reading list.
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path int                     true "book id"
// @Param        request  body dto.RemoveMemberRequest true "email"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id}/wishlist [delete]
func (h *BookHandler) RemoveMember(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var req dto.RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.removeMember.Execute(c.Request.Context(), id, req.Email)
	render(c, result, err)
}

// MoveReadingStatus returns the handler for one reading list.
// @Summary      Move users to a reading list
// @Description  The last email is the acting user. Every email leaves the other two reading lists.
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path int               true "book id"
// @Param        request  body dto.EmailsRequest true "emails, acting user last"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response
// @Failure      404 {object} response.Response
// @Router       /api/v1/books/{id}/read-soon [post]
// @Router       /api/v1/books/{id}/currently-reading [post]
// @Router       /api/v1/books/{id}/finished [post]
func (h *BookHandler) MoveReadingStatus(status book.ReadingStatus) gin.HandlerFunc {
	var move func(ctx context.Context, id uint, emails []string) (*appbook.BookResponse, error)
	switch status {
	case book.StatusReadSoon:
		move = h.readingStatus.ReadSoon
	case book.StatusCurrentlyReading:
		move = h.readingStatus.CurrentlyReading
	case book.StatusFinished:
		move = h.readingStatus.Finished
	default:
		panic("unknown reading status " + string(status))
	}

	return func(c *gin.Context) {
		id, ok := bookID(c)
		if !ok {
			return
		}
		var req dto.EmailsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := move(c.Request.Context(), id, req.Emails)
		render(c, result, err)
	}
}

// bookID parses the :id path parameter and writes a 400 when it is not a
// positive integer.
func bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}

// render maps the soft not-found of the use cases to a 404.
func render(c *gin.Context, result *appbook.BookResponse, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if result == nil {
		response.Error(c, book.ErrBookNotFound)
		return
	}
	response.Success(c, result)
}

func bindError(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, "invalid request: "+err.Error())
}
