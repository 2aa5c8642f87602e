package mysql

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
)

// NewDB opens the MySQL connection pool and migrates the schema.
//
// SQL statements are logged in debug mode only. AutoMigrate only creates
// tables and adds columns; it never drops anything.
func NewDB(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"db":   cfg.Database.DBName,
	}).Info("database connected")

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// mysqlTableOptions gives every text column a binary collation. Emails are
// deduplicated byte for byte in Go, and exact filters compare exactly, so the
// unique indexes and WHERE clauses must not fold case the way the utf8mb4
// default collation does. Search lowercases both sides and is unaffected.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// AutoMigrate creates the catalog tables and their indexes. Tables that
// already exist keep the collation they were created with.
func AutoMigrate(db *gorm.DB) error {
	return migrationSession(db).AutoMigrate(
		&BookModel{},
		&ReviewModel{},
		&WishlistModel{},
		&ReadingStatusModel{},
	)
}

func migrationSession(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Set("gorm:table_options", mysqlTableOptions)
	}
	return db
}

// BookModel is the books table. Membership lists live in their own tables
// and are preloaded when a full book is needed.
type BookModel struct {
	ID              uint                 `gorm:"primaryKey"`
	Title           string               `gorm:"index:idx_books_search;size:255;not null;comment:title"`
	Author          string               `gorm:"index:idx_books_search;size:255;not null;comment:author"`
	Genre           string               `gorm:"index;size:64;not null;comment:genre from the closed set"`
	PublicationDate string               `gorm:"size:32;not null;comment:publication date as given"`
	Reviews         []ReviewModel        `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Wishlist        []WishlistModel      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Statuses        []ReadingStatusModel `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"index"`
	UpdatedAt       time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// ReviewModel keeps reviews in insertion order through the auto-increment id.
type ReviewModel struct {
	ID        uint   `gorm:"primaryKey"`
	BookID    uint   `gorm:"index;not null"`
	Email     string `gorm:"size:255;not null"`
	Comment   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (ReviewModel) TableName() string {
	return "book_reviews"
}

// WishlistModel is one wishlist membership. The unique index makes the
// wishlist a set.
type WishlistModel struct {
	ID     uint   `gorm:"primaryKey"`
	BookID uint   `gorm:"uniqueIndex:uk_wishlist_book_email;not null"`
	Email  string `gorm:"uniqueIndex:uk_wishlist_book_email;size:255;not null"`
}

func (WishlistModel) TableName() string {
	return "book_wishlists"
}

// ReadingStatusModel holds at most one status per (book, email), which is
// what keeps read_soon, currently_reading and finished disjoint.
type ReadingStatusModel struct {
	ID     uint   `gorm:"primaryKey"`
	BookID uint   `gorm:"uniqueIndex:uk_status_book_email;not null"`
	Email  string `gorm:"uniqueIndex:uk_status_book_email;size:255;not null"`
	Status string `gorm:"size:32;not null;comment:read_soon/currently_reading/finished"`
}

func (ReadingStatusModel) TableName() string {
	return "book_reading_statuses"
}
