package mysql

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// newTestDB opens a private in-memory SQLite database with the production
// schema. A single connection keeps every statement on the same memory db.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

type BookRepositorySuite struct {
	suite.Suite
	ctx  context.Context
	db   *gorm.DB
	repo book.Repository
}

func TestBookRepository(t *testing.T) {
	suite.Run(t, new(BookRepositorySuite))
}

func (s *BookRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.db = newTestDB(s.T())
	s.repo = NewBookRepository(s.db, NewTxManager(s.db))
}

func (s *BookRepositorySuite) create(title, author string, genre book.Genre, date string, reviews ...book.Review) *book.Book {
	b := book.NewBook(title, author, genre, date, reviews)
	s.Require().NoError(s.repo.Create(s.ctx, b))
	return b
}

func (s *BookRepositorySuite) TestCreateAndFind() {
	created := s.create("The Hobbit", "J.R.R. Tolkien", book.GenreFantasy, "1937-09-21",
		book.Review{Email: "a@x.com", Comment: "classic"},
		book.Review{Email: "b@x.com", Comment: "cozy"},
	)
	s.NotZero(created.ID)
	s.False(created.CreatedAt.IsZero())

	found, err := s.repo.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("The Hobbit", found.Title)
	s.Equal(book.GenreFantasy, found.Genre)
	s.Equal("1937-09-21", found.PublicationDate)
	s.Equal([]book.Review{
		{Email: "a@x.com", Comment: "classic"},
		{Email: "b@x.com", Comment: "cozy"},
	}, found.Reviews)
	s.Empty(found.Wishlist)
	s.Empty(found.ReadSoon)
}

func (s *BookRepositorySuite) TestFindByID_NotFound() {
	_, err := s.repo.FindByID(s.ctx, 999)
	s.ErrorIs(err, book.ErrBookNotFound)
}

func (s *BookRepositorySuite) TestUpdate_OnlyPresentFields() {
	b := s.create("Old Title", "Jane Austen", book.GenreRomance, "1815-12-23",
		book.Review{Email: "a@x.com", Comment: "witty"})
	title := "New Title"

	updated, err := s.repo.Update(s.ctx, b.ID, book.Patch{Title: &title})
	s.Require().NoError(err)

	s.Equal("New Title", updated.Title)
	s.Equal("Jane Austen", updated.Author)
	s.Equal(book.GenreRomance, updated.Genre)
	s.Equal("1815-12-23", updated.PublicationDate)
	s.Len(updated.Reviews, 1)
}

func (s *BookRepositorySuite) TestUpdate_ReplacesReviews() {
	b := s.create("Emma", "Jane Austen", book.GenreRomance, "1815",
		book.Review{Email: "a@x.com", Comment: "witty"})
	reviews := []book.Review{{Email: "c@x.com", Comment: "replaced"}}

	updated, err := s.repo.Update(s.ctx, b.ID, book.Patch{Reviews: &reviews})
	s.Require().NoError(err)
	s.Equal(reviews, updated.Reviews)
}

func (s *BookRepositorySuite) TestUpdate_NotFound() {
	title := "x"
	_, err := s.repo.Update(s.ctx, 42, book.Patch{Title: &title})
	s.ErrorIs(err, book.ErrBookNotFound)
}

func (s *BookRepositorySuite) TestDelete_ReturnsPriorStateAndRemovesLists() {
	b := s.create("Dune", "Frank Herbert", book.GenreScienceFiction, "1965",
		book.Review{Email: "a@x.com", Comment: "spice"})
	_, err := s.repo.ReplaceWishlist(s.ctx, b.ID, []string{"w@x.com"})
	s.Require().NoError(err)
	_, err = s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusFinished, []string{"f@x.com"})
	s.Require().NoError(err)

	prior, err := s.repo.Delete(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("Dune", prior.Title)
	s.Equal([]string{"w@x.com"}, prior.Wishlist)
	s.Equal([]string{"f@x.com"}, prior.Finished)

	_, err = s.repo.FindByID(s.ctx, b.ID)
	s.ErrorIs(err, book.ErrBookNotFound)

	var orphans int64
	s.db.Model(&ReadingStatusModel{}).Where("book_id = ?", b.ID).Count(&orphans)
	s.Zero(orphans)
	s.db.Model(&ReviewModel{}).Where("book_id = ?", b.ID).Count(&orphans)
	s.Zero(orphans)

	_, err = s.repo.Delete(s.ctx, b.ID)
	s.ErrorIs(err, book.ErrBookNotFound)
}

func (s *BookRepositorySuite) TestAppendReview_KeepsOrder() {
	b := s.create("Beloved", "Toni Morrison", book.GenreFiction, "1987",
		book.Review{Email: "a@x.com", Comment: "first"})

	updated, err := s.repo.AppendReview(s.ctx, b.ID, book.Review{Email: "b@x.com", Comment: "second"})
	s.Require().NoError(err)
	s.Equal([]book.Review{
		{Email: "a@x.com", Comment: "first"},
		{Email: "b@x.com", Comment: "second"},
	}, updated.Reviews)

	_, err = s.repo.AppendReview(s.ctx, 999, book.Review{Email: "b@x.com", Comment: "x"})
	s.ErrorIs(err, book.ErrBookNotFound)
}

func (s *BookRepositorySuite) TestReplaceWishlist_Replaces() {
	b := s.create("Ulysses", "James Joyce", book.GenreFiction, "1922")

	_, err := s.repo.ReplaceWishlist(s.ctx, b.ID, []string{"a@x.com", "b@x.com"})
	s.Require().NoError(err)

	updated, err := s.repo.ReplaceWishlist(s.ctx, b.ID, []string{"c@x.com"})
	s.Require().NoError(err)
	s.Equal([]string{"c@x.com"}, updated.Wishlist)

	cleared, err := s.repo.ReplaceWishlist(s.ctx, b.ID, nil)
	s.Require().NoError(err)
	s.Empty(cleared.Wishlist)
}

func (s *BookRepositorySuite) TestEmailsDifferingInCaseAreDistinctMembers() {
	b := s.create("Emma", "Jane Austen", book.GenreRomance, "1815")

	wishlist, err := s.repo.ReplaceWishlist(s.ctx, b.ID, []string{"a@x.com", "A@x.com"})
	s.Require().NoError(err)
	s.Equal([]string{"a@x.com", "A@x.com"}, wishlist.Wishlist)

	_, err = s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusFinished, []string{"a@x.com"})
	s.Require().NoError(err)
	updated, err := s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusFinished, []string{"A@x.com"})
	s.Require().NoError(err)
	s.Equal([]string{"a@x.com", "A@x.com"}, updated.Finished)

	removed, err := s.repo.RemoveMember(s.ctx, b.ID, "A@x.com")
	s.Require().NoError(err)
	s.Equal([]string{"a@x.com"}, removed.Wishlist)
	s.Equal([]string{"a@x.com"}, removed.Finished)
}

func (s *BookRepositorySuite) TestRemoveMember_DetachesFromAllListsIdempotently() {
	b := s.create("Middlemarch", "George Eliot", book.GenreFiction, "1871")
	_, err := s.repo.ReplaceWishlist(s.ctx, b.ID, []string{"me@x.com", "other@x.com"})
	s.Require().NoError(err)
	_, err = s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusCurrentlyReading, []string{"me@x.com"})
	s.Require().NoError(err)
	_, err = s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusFinished, []string{"other@x.com"})
	s.Require().NoError(err)

	once, err := s.repo.RemoveMember(s.ctx, b.ID, "me@x.com")
	s.Require().NoError(err)
	twice, err := s.repo.RemoveMember(s.ctx, b.ID, "me@x.com")
	s.Require().NoError(err)

	for _, got := range []*book.Book{once, twice} {
		s.Equal([]string{"other@x.com"}, got.Wishlist)
		s.Empty(got.ReadSoon)
		s.Empty(got.CurrentlyReading)
		s.Equal([]string{"other@x.com"}, got.Finished)
	}
	s.Equal(once.UpdatedAt, twice.UpdatedAt, "second removal changes nothing")
}

func (s *BookRepositorySuite) TestSetReadingStatus_MovesBetweenLists() {
	b := s.create("Dracula", "Bram Stoker", book.GenreHorror, "1897")
	_, err := s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusReadSoon, []string{"a@x.com"})
	s.Require().NoError(err)

	updated, err := s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusCurrentlyReading, []string{"a@x.com"})
	s.Require().NoError(err)

	s.Empty(updated.ReadSoon)
	s.Equal([]string{"a@x.com"}, updated.CurrentlyReading)
	s.Empty(updated.Finished)
}

func (s *BookRepositorySuite) TestSetReadingStatus_SetSemantics() {
	b := s.create("Frankenstein", "Mary Shelley", book.GenreHorror, "1818")
	_, err := s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusFinished, []string{"a@x.com", "b@x.com"})
	s.Require().NoError(err)
	_, err = s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusReadSoon, []string{"c@x.com"})
	s.Require().NoError(err)

	// a stays in place, c moves over from read_soon and lands at the end
	updated, err := s.repo.SetReadingStatus(s.ctx, b.ID, book.StatusFinished, []string{"a@x.com", "c@x.com"})
	s.Require().NoError(err)

	s.Equal([]string{"a@x.com", "b@x.com", "c@x.com"}, updated.Finished)
	s.Empty(updated.ReadSoon)
	s.Empty(updated.CurrentlyReading)
}

func (s *BookRepositorySuite) TestSetReadingStatus_ListsStayDisjoint() {
	b := s.create("Persuasion", "Jane Austen", book.GenreRomance, "1817")
	statuses := book.ReadingStatuses()

	for i := 0; i < 9; i++ {
		_, err := s.repo.SetReadingStatus(s.ctx, b.ID, statuses[i%3], []string{"x@x.com", "me@x.com"})
		s.Require().NoError(err)
	}

	got, err := s.repo.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	seen := map[string]int{}
	for _, status := range statuses {
		for _, e := range got.Members(status) {
			seen[e]++
		}
	}
	s.Equal(map[string]int{"x@x.com": 1, "me@x.com": 1}, seen)
	s.Equal(book.StatusFinished, got.StatusOf("me@x.com"))
}

func (s *BookRepositorySuite) TestSetReadingStatus_NotFoundAndInvalid() {
	_, err := s.repo.SetReadingStatus(s.ctx, 999, book.StatusReadSoon, []string{"a@x.com"})
	s.ErrorIs(err, book.ErrBookNotFound)

	_, err = s.repo.SetReadingStatus(s.ctx, 1, book.ReadingStatus("abandoned"), []string{"a@x.com"})
	s.ErrorIs(err, book.ErrInvalidStatus)
}

func (s *BookRepositorySuite) TestSetReadingStatus_ConcurrentMovesOfOneUser() {
	b := s.create("Walden", "Henry David Thoreau", book.GenreNonFiction, "1854")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(status book.ReadingStatus) {
			defer wg.Done()
			_, err := s.repo.SetReadingStatus(s.ctx, b.ID, status, []string{"me@x.com"})
			assert.NoError(s.T(), err)
		}(book.ReadingStatuses()[i%3])
	}
	wg.Wait()

	got, err := s.repo.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	total := len(got.ReadSoon) + len(got.CurrentlyReading) + len(got.Finished)
	s.Equal(1, total, "the user holds exactly one status")
}

func TestTxManager_JoinsOuterTransaction(t *testing.T) {
	db := newTestDB(t)
	txm := NewTxManager(db)
	repo := NewBookRepository(db, txm)
	ctx := context.Background()

	b := book.NewBook("Rollback", "Nobody", book.GenreFiction, "2000", nil)
	errAbort := fmt.Errorf("abort")
	err := txm.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, b))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound, "insert made inside the outer transaction is rolled back")
}

func TestMigrationSession_BinaryCollationOnMySQL(t *testing.T) {
	// sql.Open is lazy and the version probe is skipped, so nothing dials
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "bookshelf:secret@tcp(127.0.0.1:1)/bookshelf?charset=utf8mb4",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true, Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	opts, ok := migrationSession(db).Get("gorm:table_options")
	require.True(t, ok)
	assert.Contains(t, opts, "COLLATE=utf8mb4_bin")

	_, ok = migrationSession(newTestDB(t)).Get("gorm:table_options")
	assert.False(t, ok, "sqlite already compares text byte for byte")
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%tolkien%", containsPattern("Tolkien"))
	assert.Equal(t, "%50!%!_off!!%", containsPattern("50%_off!"))
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(fmt.Errorf("Error 1062: Duplicate entry 'x' for key 'y'")))
	assert.True(t, isDuplicateError(fmt.Errorf("UNIQUE constraint failed: book_wishlists.email")))
	assert.False(t, isDuplicateError(fmt.Errorf("connection reset")))
}
