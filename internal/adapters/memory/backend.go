// Package memory provides an in-process storage.Backend for tests and the
// "memory" runtime mode.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

// Backend keeps documents in a map guarded by an RWMutex.
type Backend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var (
	_ storage.Backend            = (*Backend)(nil)
	_ storage.CapabilityReporter = (*Backend)(nil)
)

// New returns an empty backend.
func New() *Backend {
	return &Backend{docs: map[string][]byte{}}
}

func (b *Backend) Read(ctx context.Context, key string) (*storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := storage.CleanKey(key); err != nil {
		return nil, err
	}
	b.mu.RLock()
	data, ok := b.docs[key]
	b.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{Key: key, Data: slices.Clone(data), Revision: storage.Digest(data)}, nil
}

// List returns keys in lexical order.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	keys := make([]string, 0, len(b.docs))
	for key := range b.docs {
		keys = append(keys, key)
	}
	b.mu.RUnlock()
	sort.Strings(keys)
	return keys, nil
}

func (b *Backend) Write(ctx context.Context, key string, data []byte, opts storage.WriteOptions) (*storage.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := storage.CleanKey(key); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	current, exists := b.docs[key]
	if err := storage.CheckRevision(storage.Digest(current), exists, opts.Revision); err != nil {
		return nil, err
	}
	b.docs[key] = slices.Clone(data)
	return &storage.Object{Key: key, Data: slices.Clone(data), Revision: storage.Digest(data)}, nil
}

func (b *Backend) Delete(ctx context.Context, key string, opts storage.WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := storage.CleanKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	current, exists := b.docs[key]
	if !exists {
		return storage.ErrNotFound
	}
	if err := storage.CheckRevision(storage.Digest(current), exists, opts.Revision); err != nil {
		return err
	}
	delete(b.docs, key)
	return nil
}

// Put seeds a raw document, bypassing revision checks. Intended for tests.
func (b *Backend) Put(key string, data []byte) {
	b.mu.Lock()
	b.docs[key] = slices.Clone(data)
	b.mu.Unlock()
}

// Capabilities reports the backend features.
func (b *Backend) Capabilities() storage.Capabilities {
	return storage.Capabilities{Name: "memory", ConditionalPut: true}
}
