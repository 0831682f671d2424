package repository

import (
	"context"
	"time"
)

// CacheEntry is one row of the local key/value cache.
type CacheEntry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// CacheRepo persists opaque JSON values by key.
type CacheRepo interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) ([]CacheEntry, error)
}
