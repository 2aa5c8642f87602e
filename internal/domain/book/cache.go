package book

import "context"

// Cache holds fully loaded books by id.
//
// Get returns (nil, nil) on a miss. Errors from a cache never decide the
// outcome of an operation; callers log them and fall back to the store.
// Set is a fill after a store read: it must not replace what Invalidate left
// behind, or a read racing a write could cache the row from before the write.
type Cache interface {
	Get(ctx context.Context, id uint) (*Book, error)
	Set(ctx context.Context, book *Book) error
	Invalidate(ctx context.Context, id uint) error
}

// NopCache never hits. Used when caching is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, uint) (*Book, error) { return nil, nil }
func (NopCache) Set(context.Context, *Book) error         { return nil }
func (NopCache) Invalidate(context.Context, uint) error   { return nil }
