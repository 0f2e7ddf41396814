// Package filesystem stores documents as files in a single directory on the
// host. It backs the "local" runtime mode used during development.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

const (
	defaultDirPerm  os.FileMode = 0o755
	defaultFilePerm os.FileMode = 0o644
)

// Config configures a filesystem backend.
type Config struct {
	// Dir is the directory holding the documents. It is created on first write.
	Dir string
	// Pattern filters List results (glob on the base name). Empty lists every file.
	Pattern string
}

// Backend implements storage.Backend over a directory.
type Backend struct {
	dir     string
	pattern string
}

var (
	_ storage.Backend            = (*Backend)(nil)
	_ storage.CapabilityReporter = (*Backend)(nil)
)

// New returns a backend rooted at cfg.Dir.
func New(cfg Config) (*Backend, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, errors.New("filesystem backend: directory is required")
	}
	if cfg.Pattern != "" {
		if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
			return nil, fmt.Errorf("filesystem backend: invalid pattern %q: %w", cfg.Pattern, err)
		}
	}
	return &Backend{dir: filepath.Clean(dir), pattern: cfg.Pattern}, nil
}

// Dir returns the root directory.
func (b *Backend) Dir() string {
	return b.dir
}

func (b *Backend) Read(ctx context.Context, key string) (*storage.Object, error) {
	path, err := b.path(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mapError(err)
	}
	return &storage.Object{Key: key, Data: data, Revision: storage.Digest(data)}, nil
}

// List returns the regular files in the directory, sorted by name. A
// directory that does not exist yet is treated as empty.
func (b *Backend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("filesystem backend: list %s: %w", b.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if b.pattern != "" {
			if ok, _ := filepath.Match(b.pattern, name); !ok {
				continue
			}
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

// Write ensures the directory exists and replaces the file atomically via a
// temporary file and rename.
func (b *Backend) Write(ctx context.Context, key string, data []byte, opts storage.WriteOptions) (*storage.Object, error) {
	path, err := b.path(ctx, key)
	if err != nil {
		return nil, err
	}
	if opts.Revision != "" {
		current, readErr := os.ReadFile(path)
		exists := readErr == nil
		if readErr != nil && !errors.Is(readErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("filesystem backend: read %s: %w", key, readErr)
		}
		if err := storage.CheckRevision(storage.Digest(current), exists, opts.Revision); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(b.dir, defaultDirPerm); err != nil {
		return nil, fmt.Errorf("filesystem backend: create %s: %w", b.dir, err)
	}

	tmp, err := os.CreateTemp(b.dir, "."+key+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("filesystem backend: write %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("filesystem backend: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("filesystem backend: write %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, defaultFilePerm); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("filesystem backend: chmod %s: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("filesystem backend: rename %s: %w", key, err)
	}

	return &storage.Object{Key: key, Data: data, Revision: storage.Digest(data)}, nil
}

func (b *Backend) Delete(ctx context.Context, key string, opts storage.WriteOptions) error {
	path, err := b.path(ctx, key)
	if err != nil {
		return err
	}
	if opts.Revision != "" {
		current, readErr := os.ReadFile(path)
		if readErr != nil {
			return mapError(readErr)
		}
		if err := storage.CheckRevision(storage.Digest(current), true, opts.Revision); err != nil {
			return err
		}
	}
	if err := os.Remove(path); err != nil {
		return mapError(err)
	}
	return nil
}

// Capabilities reports the backend features.
func (b *Backend) Capabilities() storage.Capabilities {
	return storage.Capabilities{Name: "filesystem", ConditionalPut: true}
}

func (b *Backend) path(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := storage.CleanKey(key); err != nil {
		return "", err
	}
	return filepath.Join(b.dir, key), nil
}

func mapError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("filesystem backend: %w", err)
}
