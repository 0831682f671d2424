package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/daoban/internal/db"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/repository"
)

// Cache keys in the local key/value table.
const (
	KeySession  = "daoban-session"
	KeyDocument = "daoban-shift-data"
)

// Cache is the local durable mirror of the session and user document.
type Cache interface {
	LoadSession(ctx context.Context) (domain.Session, bool, error)
	SaveSession(ctx context.Context, s domain.Session) error
	LoadDocument(ctx context.Context) (domain.DocumentPatch, bool, error)
	SaveDocument(ctx context.Context, doc domain.Document) error
	Purge(ctx context.Context) error
	Entries(ctx context.Context) ([]repository.CacheEntry, error)
}

// LocalCache implements Cache on the SQLite kv_cache table.
type LocalCache struct {
	repo repository.CacheRepo
	uow  db.UnitOfWork
}

// NewLocalCache creates a LocalCache. uow scopes Purge so both keys are
// removed together.
func NewLocalCache(repo repository.CacheRepo, uow db.UnitOfWork) *LocalCache {
	return &LocalCache{repo: repo, uow: uow}
}

func (c *LocalCache) LoadSession(ctx context.Context) (domain.Session, bool, error) {
	entry, err := c.repo.Get(ctx, KeySession)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var s domain.Session
	if err := json.Unmarshal(entry.Value, &s); err != nil {
		return domain.Session{}, false, fmt.Errorf("decoding cached session: %w", err)
	}
	return s, true, nil
}

func (c *LocalCache) SaveSession(ctx context.Context, s domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return c.repo.Put(ctx, KeySession, data)
}

func (c *LocalCache) LoadDocument(ctx context.Context) (domain.DocumentPatch, bool, error) {
	entry, err := c.repo.Get(ctx, KeyDocument)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.DocumentPatch{}, false, nil
	}
	if err != nil {
		return domain.DocumentPatch{}, false, err
	}
	patch, err := domain.DecodeDocumentPatch(entry.Value)
	if err != nil {
		return domain.DocumentPatch{}, false, fmt.Errorf("decoding cached document: %w", err)
	}
	return patch, true, nil
}

func (c *LocalCache) SaveDocument(ctx context.Context, doc domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return c.repo.Put(ctx, KeyDocument, data)
}

// Purge deletes the session and the document mirror atomically.
func (c *LocalCache) Purge(ctx context.Context) error {
	return c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteCacheRepo(tx).Delete(ctx, KeySession, KeyDocument); err != nil {
			return fmt.Errorf("purging local cache: %w", err)
		}
		return nil
	})
}

// Entries lists every cached row, ordered by key.
func (c *LocalCache) Entries(ctx context.Context) ([]repository.CacheEntry, error) {
	return c.repo.List(ctx)
}
