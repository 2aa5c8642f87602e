package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// bookRepository implements book.Repository on GORM.
//
// Every mutation runs in one transaction that starts by locking the book
// row (SELECT ... FOR UPDATE). Concurrent mutations of the same book are
// therefore serialised and a reader never sees a half-applied change.
type bookRepository struct {
	db  *gorm.DB
	txm *TxManager
}

func NewBookRepository(db *gorm.DB, txm *TxManager) book.Repository {
	return &bookRepository{db: db, txm: txm}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	err := r.txm.Transaction(ctx, func(ctx context.Context) error {
		// Create also inserts the Reviews association
		return getDB(ctx, r.db).Create(model).Error
	})
	if err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrDuplicateEntry.WithCause(err)
		}
		return apperrors.Wrap(err, "create book failed")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.load(getDB(ctx, r.db), id)
}

func (r *bookRepository) Update(ctx context.Context, id uint, patch book.Patch) (*book.Book, error) {
	return r.mutate(ctx, id, func(db *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Author != nil {
			updates["author"] = *patch.Author
		}
		if patch.Genre != nil {
			updates["genre"] = string(*patch.Genre)
		}
		if patch.PublicationDate != nil {
			updates["publication_date"] = *patch.PublicationDate
		}
		if len(updates) > 0 {
			if err := db.Model(&BookModel{ID: id}).Updates(updates).Error; err != nil {
				return apperrors.Wrap(err, "update book failed")
			}
		}

		if patch.Reviews != nil {
			if err := db.Where("book_id = ?", id).Delete(&ReviewModel{}).Error; err != nil {
				return apperrors.Wrap(err, "replace reviews failed")
			}
			if reviews := toReviewModels(id, *patch.Reviews); len(reviews) > 0 {
				if err := db.Create(&reviews).Error; err != nil {
					return apperrors.Wrap(err, "replace reviews failed")
				}
			}
			if len(updates) == 0 {
				return r.touch(db, id)
			}
		}
		return nil
	})
}

func (r *bookRepository) Delete(ctx context.Context, id uint) (*book.Book, error) {
	var prior *book.Book
	err := r.txm.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, r.db)
		if err := r.lock(db, id); err != nil {
			return err
		}
		b, err := r.load(db, id)
		if err != nil {
			return err
		}
		prior = b

		for _, child := range []interface{}{&ReviewModel{}, &WishlistModel{}, &ReadingStatusModel{}} {
			if err := db.Where("book_id = ?", id).Delete(child).Error; err != nil {
				return apperrors.Wrap(err, "delete book lists failed")
			}
		}
		if err := db.Delete(&BookModel{}, id).Error; err != nil {
			return apperrors.Wrap(err, "delete book failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prior, nil
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	db := getDB(ctx, r.db)

	var total int64
	if err := applyFilter(db.Model(&BookModel{}), params.Filter).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "count books failed")
	}

	var models []BookModel
	query := applyWindow(applyFilter(db.Model(&BookModel{}), params.Filter), params.Window)
	if err := preloadLists(query).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "list books failed")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

func (r *bookRepository) AppendReview(ctx context.Context, id uint, review book.Review) (*book.Book, error) {
	return r.mutate(ctx, id, func(db *gorm.DB) error {
		model := &ReviewModel{BookID: id, Email: review.Email, Comment: review.Comment}
		if err := db.Create(model).Error; err != nil {
			return apperrors.Wrap(err, "add review failed")
		}
		return r.touch(db, id)
	})
}

func (r *bookRepository) ReplaceWishlist(ctx context.Context, id uint, emails []string) (*book.Book, error) {
	return r.mutate(ctx, id, func(db *gorm.DB) error {
		if err := db.Where("book_id = ?", id).Delete(&WishlistModel{}).Error; err != nil {
			return apperrors.Wrap(err, "clear wishlist failed")
		}
		if len(emails) > 0 {
			rows := make([]WishlistModel, len(emails))
			for i, e := range emails {
				rows[i] = WishlistModel{BookID: id, Email: e}
			}
			if err := db.Create(&rows).Error; err != nil {
				return apperrors.Wrap(err, "fill wishlist failed")
			}
		}
		return r.touch(db, id)
	})
}

func (r *bookRepository) RemoveMember(ctx context.Context, id uint, email string) (*book.Book, error) {
	return r.mutate(ctx, id, func(db *gorm.DB) error {
		var removed int64
		for _, model := range []interface{}{&WishlistModel{}, &ReadingStatusModel{}} {
			res := db.Where("book_id = ? AND email = ?", id, email).Delete(model)
			if res.Error != nil {
				return apperrors.Wrap(res.Error, "remove member failed")
			}
			removed += res.RowsAffected
		}
		if removed == 0 {
			return nil
		}
		return r.touch(db, id)
	})
}

func (r *bookRepository) SetReadingStatus(ctx context.Context, id uint, status book.ReadingStatus, emails []string) (*book.Book, error) {
	if !status.IsValid() {
		return nil, book.ErrInvalidStatus
	}
	return r.mutate(ctx, id, func(db *gorm.DB) error {
		if len(emails) == 0 {
			return nil
		}

		var existing []ReadingStatusModel
		if err := db.Where("book_id = ? AND email IN ?", id, emails).Find(&existing).Error; err != nil {
			return apperrors.Wrap(err, "load reading statuses failed")
		}

		// members already in the target keep their row and position;
		// members in another list lose it and are appended below
		kept := make(map[string]bool, len(existing))
		var stale []uint
		for _, m := range existing {
			if m.Status == string(status) {
				kept[m.Email] = true
				continue
			}
			stale = append(stale, m.ID)
		}
		if len(stale) > 0 {
			if err := db.Delete(&ReadingStatusModel{}, stale).Error; err != nil {
				return apperrors.Wrap(err, "pull reading statuses failed")
			}
		}

		var fresh []ReadingStatusModel
		for _, e := range emails {
			if !kept[e] {
				fresh = append(fresh, ReadingStatusModel{BookID: id, Email: e, Status: string(status)})
			}
		}
		if len(fresh) == 0 {
			return nil
		}
		if err := db.Create(&fresh).Error; err != nil {
			return apperrors.Wrap(err, "add reading statuses failed")
		}
		return r.touch(db, id)
	})
}

// mutate locks the book, applies fn and reloads the book, all in one
// transaction. A missing book yields book.ErrBookNotFound.
func (r *bookRepository) mutate(ctx context.Context, id uint, fn func(db *gorm.DB) error) (*book.Book, error) {
	var result *book.Book
	err := r.txm.Transaction(ctx, func(ctx context.Context) error {
		db := getDB(ctx, r.db)
		if err := r.lock(db, id); err != nil {
			return err
		}
		if err := fn(db); err != nil {
			return err
		}
		b, err := r.load(db, id)
		if err != nil {
			return err
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lock takes a row lock on the book. SQLite ignores the locking clause and
// serialises writers on its own.
func (r *bookRepository) lock(db *gorm.DB, id uint) error {
	var model BookModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book.ErrBookNotFound
		}
		return apperrors.Wrap(err, "lock book failed")
	}
	return nil
}

func (r *bookRepository) load(db *gorm.DB, id uint) (*book.Book, error) {
	var model BookModel
	if err := preloadLists(db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "find book failed")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) touch(db *gorm.DB, id uint) error {
	if err := db.Model(&BookModel{ID: id}).Update("updated_at", time.Now().UTC()).Error; err != nil {
		return apperrors.Wrap(err, "touch book failed")
	}
	return nil
}

func preloadLists(db *gorm.DB) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id") }
	return db.
		Preload("Reviews", byID).
		Preload("Wishlist", byID).
		Preload("Statuses", byID)
}

// =========================================
// model <-> entity
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		Title:           b.Title,
		Author:          b.Author,
		Genre:           string(b.Genre),
		PublicationDate: b.PublicationDate,
		Reviews:         toReviewModels(0, b.Reviews),
	}
}

func toReviewModels(bookID uint, reviews []book.Review) []ReviewModel {
	out := make([]ReviewModel, len(reviews))
	for i, rv := range reviews {
		out[i] = ReviewModel{BookID: bookID, Email: rv.Email, Comment: rv.Comment}
	}
	return out
}

func toBookEntity(model *BookModel) *book.Book {
	b := &book.Book{
		ID:               model.ID,
		Title:            model.Title,
		Author:           model.Author,
		Genre:            book.Genre(model.Genre),
		PublicationDate:  model.PublicationDate,
		Reviews:          make([]book.Review, len(model.Reviews)),
		Wishlist:         make([]string, len(model.Wishlist)),
		ReadSoon:         []string{},
		CurrentlyReading: []string{},
		Finished:         []string{},
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
	for i, rv := range model.Reviews {
		b.Reviews[i] = book.Review{Email: rv.Email, Comment: rv.Comment}
	}
	for i, w := range model.Wishlist {
		b.Wishlist[i] = w.Email
	}
	for _, s := range model.Statuses {
		switch book.ReadingStatus(s.Status) {
		case book.StatusReadSoon:
			b.ReadSoon = append(b.ReadSoon, s.Email)
		case book.StatusCurrentlyReading:
			b.CurrentlyReading = append(b.CurrentlyReading, s.Email)
		case book.StatusFinished:
			b.Finished = append(b.Finished, s.Email)
		}
	}
	return b
}
