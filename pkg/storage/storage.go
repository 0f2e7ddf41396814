package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document exists under the requested key.
	ErrNotFound = errors.New("storage: document not found")
	// ErrConflict is returned when a backend rejects a write because the
	// supplied revision no longer matches the stored document.
	ErrConflict = errors.New("storage: revision conflict")
	// ErrInvalidKey is returned for keys that are empty or escape the backend root.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Backend persists opaque documents addressed by flat keys (e.g. "hello.mdx").
// Implementations cover the local filesystem, the GitHub Contents API, a SQL
// table and an in-memory map; the post store only ever sees this contract.
type Backend interface {
	// Read returns the document stored under key or ErrNotFound.
	Read(ctx context.Context, key string) (*Object, error)
	// List returns every key currently stored, in backend order.
	List(ctx context.Context) ([]string, error)
	// Write creates or replaces the document under key.
	Write(ctx context.Context, key string, data []byte, opts WriteOptions) (*Object, error)
	// Delete removes the document under key. Missing keys yield ErrNotFound.
	Delete(ctx context.Context, key string, opts WriteOptions) error
}

// Object is a stored document plus the revision marker assigned by the backend.
// Revision is the blob SHA for GitHub, a content digest elsewhere.
type Object struct {
	Key      string
	Data     []byte
	Revision string
}

// WriteOptions carries per-call annotations. Message is used as the commit
// message by version-controlled backends and ignored by the rest.
type WriteOptions struct {
	Message string
	// Revision, when set, makes the write conditional on the stored revision.
	Revision string
}

// CapabilityReporter exposes optional backend features so callers can make
// runtime decisions (e.g. whether commit messages are recorded).
type CapabilityReporter interface {
	Capabilities() Capabilities
}

// Capabilities documents optional behaviours supported by a backend.
type Capabilities struct {
	Name           string
	Versioned      bool
	ConditionalPut bool
}

// Mode selects which backend a process uses. It is fixed at startup.
type Mode string

const (
	ModeLocal    Mode = "local"
	ModeGitHub   Mode = "github"
	ModeDatabase Mode = "database"
	ModeMemory   Mode = "memory"
)

// Valid reports whether the mode names a known backend.
func (m Mode) Valid() bool {
	switch m {
	case ModeLocal, ModeGitHub, ModeDatabase, ModeMemory:
		return true
	default:
		return false
	}
}
