package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// BookCache implements book.Cache on Redis.
//
// Key: <prefix><id>, value: the book as JSON, expiring after the configured
// TTL. Invalidate does not delete the key; it overwrites it with a tombstone
// that lives for TombstoneTTL, and Set only writes when the key is absent
// (SET NX). A reader that loaded a row before a concurrent write committed
// therefore cannot put the old row back after the writer invalidated it.
// Every call goes through a circuit breaker: once Redis has failed
// enough times in a row the cache answers with ErrRedisError immediately
// and the caller falls back to MySQL without waiting on a dial timeout.
type BookCache struct {
	client       redis.Cmdable
	prefix       string
	ttl          time.Duration
	tombstoneTTL time.Duration
	breaker      *circuitbreaker.CircuitBreaker
}

var _ book.Cache = (*BookCache)(nil)

const (
	breakerName = "redis_book_cache"
	tombstone   = "-"
)

func NewBookCache(client redis.Cmdable, cfg config.CacheConfig) *BookCache {
	cb := circuitbreaker.NewCircuitBreaker(breakerName, circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(cfg.BreakerFailures),
		// a miss is a healthy answer
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, redis.Nil) },
	})
	cb.SetStateChangeCallback(func(name string, _, to circuitbreaker.State) {
		metrics.SetBreakerState(name, int(to))
	})

	tombstoneTTL := cfg.TombstoneTTL
	if tombstoneTTL <= 0 {
		tombstoneTTL = 10 * time.Second
	}

	return &BookCache{
		client:       client,
		prefix:       cfg.KeyPrefix,
		ttl:          cfg.BookTTL,
		tombstoneTTL: tombstoneTTL,
		breaker:      cb,
	}
}

func (c *BookCache) key(id uint) string {
	return c.prefix + strconv.FormatUint(uint64(id), 10)
}

func (c *BookCache) Get(ctx context.Context, id uint) (*book.Book, error) {
	var data []byte
	err := c.execute(func() error {
		var err error
		data, err = c.client.Get(ctx, c.key(id)).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache(metrics.CacheMiss)
		return nil, nil
	}
	if err != nil {
		metrics.ObserveCache(metrics.CacheError)
		return nil, apperrors.ErrRedisError.WithCause(err)
	}

	if string(data) == tombstone {
		metrics.ObserveCache(metrics.CacheMiss)
		return nil, nil
	}

	var cached cachedBook
	if err := json.Unmarshal(data, &cached); err != nil {
		// unreadable value: a miss that expires with its TTL
		metrics.ObserveCache(metrics.CacheMiss)
		return nil, nil
	}
	metrics.ObserveCache(metrics.CacheHit)
	return cached.toEntity(), nil
}

func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	data, err := json.Marshal(fromEntity(b))
	if err != nil {
		return apperrors.Wrap(err, "encode cached book failed")
	}
	// a present key is either a fresh copy or a tombstone; neither is replaced
	err = c.execute(func() error {
		return c.client.SetNX(ctx, c.key(b.ID), data, c.ttl).Err()
	})
	if err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

func (c *BookCache) Invalidate(ctx context.Context, id uint) error {
	err := c.execute(func() error {
		return c.client.Set(ctx, c.key(id), tombstone, c.tombstoneTTL).Err()
	})
	if err != nil {
		return apperrors.ErrRedisError.WithCause(err)
	}
	return nil
}

// execute runs fn through the breaker and counts the outcome.
func (c *BookCache) execute(fn func() error) error {
	err := c.breaker.Execute(fn)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		metrics.ObserveBreaker(breakerName, metrics.ResultRejected)
	case err == nil, errors.Is(err, redis.Nil):
		metrics.ObserveBreaker(breakerName, metrics.ResultSuccess)
	default:
		metrics.ObserveBreaker(breakerName, metrics.ResultFailure)
	}
	return err
}

// cachedBook is the JSON layout stored in Redis. It is kept apart from the
// domain entity so the entity needs no serialisation tags.
type cachedBook struct {
	ID               uint           `json:"id"`
	Title            string         `json:"title"`
	Author           string         `json:"author"`
	Genre            string         `json:"genre"`
	PublicationDate  string         `json:"publication_date"`
	Reviews          []cachedReview `json:"reviews"`
	Wishlist         []string       `json:"wishlist"`
	ReadSoon         []string       `json:"read_soon"`
	CurrentlyReading []string       `json:"currently_reading"`
	Finished         []string       `json:"finished"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type cachedReview struct {
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

func fromEntity(b *book.Book) cachedBook {
	reviews := make([]cachedReview, len(b.Reviews))
	for i, r := range b.Reviews {
		reviews[i] = cachedReview{Email: r.Email, Comment: r.Comment}
	}
	return cachedBook{
		ID:               b.ID,
		Title:            b.Title,
		Author:           b.Author,
		Genre:            string(b.Genre),
		PublicationDate:  b.PublicationDate,
		Reviews:          reviews,
		Wishlist:         b.Wishlist,
		ReadSoon:         b.ReadSoon,
		CurrentlyReading: b.CurrentlyReading,
		Finished:         b.Finished,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func (cb cachedBook) toEntity() *book.Book {
	reviews := make([]book.Review, len(cb.Reviews))
	for i, r := range cb.Reviews {
		reviews[i] = book.Review{Email: r.Email, Comment: r.Comment}
	}
	return &book.Book{
		ID:               cb.ID,
		Title:            cb.Title,
		Author:           cb.Author,
		Genre:            book.Genre(cb.Genre),
		PublicationDate:  cb.PublicationDate,
		Reviews:          reviews,
		Wishlist:         nonNil(cb.Wishlist),
		ReadSoon:         nonNil(cb.ReadSoon),
		CurrentlyReading: nonNil(cb.CurrentlyReading),
		Finished:         nonNil(cb.Finished),
		CreatedAt:        cb.CreatedAt,
		UpdatedAt:        cb.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
