// Package bunstore keeps documents in a single SQL table through bun. Rows
// hold the exact bytes the other backends store as files.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

// DefaultCollection namespaces post documents inside the shared table.
const DefaultCollection = "posts"

type documentModel struct {
	bun.BaseModel `bun:"table:blog_documents,alias:bd"`

	Collection string    `bun:"collection,pk"`
	Key        string    `bun:"doc_key,pk"`
	Body       []byte    `bun:"body"`
	Revision   string    `bun:"revision,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// Backend implements storage.Backend for one collection of the table.
type Backend struct {
	db         *bun.DB
	collection string
	now        func() time.Time
}

var (
	_ storage.Backend            = (*Backend)(nil)
	_ storage.CapabilityReporter = (*Backend)(nil)
)

// NewBackend binds a backend to db and collection (DefaultCollection when empty).
func NewBackend(db *bun.DB, collection string) (*Backend, error) {
	if db == nil {
		return nil, errors.New("bunstore: database is required")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}
	return &Backend{db: db, collection: collection, now: func() time.Time { return time.Now().UTC() }}, nil
}

// EnsureSchema creates the documents table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*documentModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (b *Backend) Read(ctx context.Context, key string) (*storage.Object, error) {
	if _, err := storage.CleanKey(key); err != nil {
		return nil, err
	}
	var model documentModel
	err := b.db.NewSelect().
		Model(&model).
		Where("collection = ?", b.collection).
		Where("doc_key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &storage.Object{Key: model.Key, Data: model.Body, Revision: model.Revision}, nil
}

func (b *Backend) List(ctx context.Context) ([]string, error) {
	keys := []string{}
	err := b.db.NewSelect().
		Model((*documentModel)(nil)).
		Column("doc_key").
		Where("collection = ?", b.collection).
		Order("doc_key ASC").
		Scan(ctx, &keys)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Write upserts the row. With opts.Revision set the update only applies when
// the stored revision still matches.
func (b *Backend) Write(ctx context.Context, key string, data []byte, opts storage.WriteOptions) (*storage.Object, error) {
	if _, err := storage.CleanKey(key); err != nil {
		return nil, err
	}
	model := documentModel{
		Collection: b.collection,
		Key:        key,
		Body:       append([]byte(nil), data...),
		Revision:   storage.Digest(data),
		UpdatedAt:  b.now(),
	}

	if opts.Revision != "" {
		res, err := b.db.NewUpdate().
			Model(&model).
			Column("body", "revision", "updated_at").
			Where("collection = ?", b.collection).
			Where("doc_key = ?", key).
			Where("revision = ?", opts.Revision).
			Exec(ctx)
		if err != nil {
			return nil, err
		}
		if n, err := res.RowsAffected(); err != nil {
			return nil, err
		} else if n == 0 {
			return nil, storage.ErrConflict
		}
		return &storage.Object{Key: key, Data: model.Body, Revision: model.Revision}, nil
	}

	_, err := b.db.NewInsert().
		Model(&model).
		On("CONFLICT (collection, doc_key) DO UPDATE").
		Set("body = EXCLUDED.body").
		Set("revision = EXCLUDED.revision").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &storage.Object{Key: key, Data: model.Body, Revision: model.Revision}, nil
}

func (b *Backend) Delete(ctx context.Context, key string, opts storage.WriteOptions) error {
	if _, err := storage.CleanKey(key); err != nil {
		return err
	}
	query := b.db.NewDelete().
		Model((*documentModel)(nil)).
		Where("collection = ?", b.collection).
		Where("doc_key = ?", key)
	if opts.Revision != "" {
		query = query.Where("revision = ?", opts.Revision)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if opts.Revision == "" {
		return storage.ErrNotFound
	}
	if _, err := b.Read(ctx, key); err != nil {
		return err
	}
	return storage.ErrConflict
}

// Capabilities reports the backend features.
func (b *Backend) Capabilities() storage.Capabilities {
	return storage.Capabilities{Name: "bun", ConditionalPut: true}
}
