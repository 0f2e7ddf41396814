package blogstore

import (
	"context"

	postscmd "github.com/goliatone/go-blogstore/internal/commands/posts"
	"github.com/goliatone/go-blogstore/internal/di"
	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/internal/posts"
	"github.com/goliatone/go-blogstore/pkg/storage"
)

// Post is a stored blog entry, either an OriginalPost or an ExternalPost.
type Post = posts.Post

// OriginalPost is a post written in-house; its body is the article.
type OriginalPost = posts.OriginalPost

// ExternalPost links to an article elsewhere; its body is commentary.
type ExternalPost = posts.ExternalPost

// Metadata holds the header fields shared by both post variants.
type Metadata = posts.Metadata

// Record is the flat, form-friendly shape of a post.
type Record = posts.Record

// PostType discriminates the post variants.
type PostType = posts.Type

// ListOptions selects raw Markdown or rendered HTML bodies.
type ListOptions = posts.ListOptions

// PostStore exports the content store.
type PostStore = *posts.Store

// MediaService exports the image upload service.
type MediaService = *media.Service

// Asset describes a stored image.
type Asset = media.Asset

// CommandHandlers exports the guarded save, delete and upload handlers.
type CommandHandlers = *postscmd.HandlerSet

// Capabilities documents optional backend behaviours.
type Capabilities = storage.Capabilities

// Mode selects the storage backend.
type Mode = storage.Mode

const (
	TypeOriginal = posts.TypeOriginal
	TypeExternal = posts.TypeExternal

	ModeLocal    = storage.ModeLocal
	ModeGitHub   = storage.ModeGitHub
	ModeDatabase = storage.ModeDatabase
	ModeMemory   = storage.ModeMemory
)

// WithAdminSecret attaches the caller's admin secret to ctx for the command handlers.
func WithAdminSecret(ctx context.Context, secret string) context.Context {
	return postscmd.WithAdminSecret(ctx, secret)
}

// Module represents the top level blog store runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a blog store using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the content store.
func (m *Module) Posts() PostStore {
	return m.container.PostStore()
}

// Media returns the image service, or nil when no image location is configured.
func (m *Module) Media() MediaService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MediaService()
}

// Commands returns the guarded command handlers.
func (m *Module) Commands() CommandHandlers {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommandHandlers()
}

// Capabilities reports what the active post backend supports.
func (m *Module) Capabilities() Capabilities {
	return m.container.Capabilities()
}

// ListAll returns every post newest first. Bodies are rendered to HTML unless
// ListOptions{Raw: true} is passed.
func (m *Module) ListAll(ctx context.Context, opts ...ListOptions) []Post {
	return m.Posts().ListAll(ctx, listOptions(opts))
}

// GetBySlug returns the post stored under slug. Bodies are rendered to HTML
// unless ListOptions{Raw: true} is passed.
func (m *Module) GetBySlug(ctx context.Context, slug string, opts ...ListOptions) (Post, bool) {
	return m.Posts().GetBySlug(ctx, slug, listOptions(opts))
}

func listOptions(opts []ListOptions) ListOptions {
	if len(opts) == 0 {
		return ListOptions{}
	}
	return opts[len(opts)-1]
}

// Save creates or replaces post and reports success.
func (m *Module) Save(ctx context.Context, post Post) bool {
	return m.Posts().Save(ctx, post)
}

// Delete removes the post stored under slug and reports success.
func (m *Module) Delete(ctx context.Context, slug string) bool {
	return m.Posts().Delete(ctx, slug)
}

// SaveImage stores an uploaded image and returns its public path.
func (m *Module) SaveImage(ctx context.Context, data []byte, filename string) (string, bool) {
	service := m.Media()
	if service == nil {
		return "", false
	}
	return service.SaveImage(ctx, data, filename)
}

// Close releases connections and files opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// ToRecord flattens post into a Record.
func ToRecord(post Post) Record {
	return posts.ToRecord(post)
}
