// Package github stores documents as files in a GitHub repository through
// the Contents API. Every write or delete becomes one commit.
package github

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

// Backend implements storage.Backend on top of a RepositoryClient, keeping
// every key under a fixed repository directory.
type Backend struct {
	client RepositoryClient
	dir    string
}

var (
	_ storage.Backend            = (*Backend)(nil)
	_ storage.CapabilityReporter = (*Backend)(nil)
)

// NewBackend returns a backend storing files under dir (e.g. "content/blog").
func NewBackend(client RepositoryClient, dir string) (*Backend, error) {
	if client == nil {
		return nil, errors.New("github backend: repository client is required")
	}
	return &Backend{client: client, dir: strings.Trim(path.Clean("/"+dir), "/")}, nil
}

func (b *Backend) Read(ctx context.Context, key string) (*storage.Object, error) {
	filePath, err := b.path(key)
	if err != nil {
		return nil, err
	}
	file, err := b.client.GetFile(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return &storage.Object{Key: key, Data: file.Content, Revision: file.SHA}, nil
}

func (b *Backend) List(ctx context.Context) ([]string, error) {
	return b.client.ListDirectory(ctx, b.dir)
}

// Write creates or updates the file. Without opts.Revision the current SHA is
// looked up first so the write replaces whatever is stored.
func (b *Backend) Write(ctx context.Context, key string, data []byte, opts storage.WriteOptions) (*storage.Object, error) {
	filePath, err := b.path(key)
	if err != nil {
		return nil, err
	}

	sha := opts.Revision
	if sha == "" {
		existing, err := b.client.GetFile(ctx, filePath)
		switch {
		case err == nil:
			sha = existing.SHA
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, err
		}
	}

	message := opts.Message
	if message == "" {
		message = "Create " + key
		if sha != "" {
			message = "Update " + key
		}
	}

	file, err := b.client.PutFile(ctx, filePath, data, message, sha)
	if err != nil {
		return nil, err
	}
	return &storage.Object{Key: key, Data: data, Revision: file.SHA}, nil
}

// Delete removes the file, looking up its SHA when opts.Revision is empty.
func (b *Backend) Delete(ctx context.Context, key string, opts storage.WriteOptions) error {
	filePath, err := b.path(key)
	if err != nil {
		return err
	}

	sha := opts.Revision
	if sha == "" {
		existing, err := b.client.GetFile(ctx, filePath)
		if err != nil {
			return err
		}
		sha = existing.SHA
	}

	message := opts.Message
	if message == "" {
		message = "Delete " + key
	}
	return b.client.DeleteFile(ctx, filePath, message, sha)
}

// Capabilities reports the backend features.
func (b *Backend) Capabilities() storage.Capabilities {
	return storage.Capabilities{Name: "github", Versioned: true, ConditionalPut: true}
}

func (b *Backend) path(key string) (string, error) {
	if _, err := storage.CleanKey(key); err != nil {
		return "", err
	}
	if b.dir == "" {
		return key, nil
	}
	return b.dir + "/" + key, nil
}
