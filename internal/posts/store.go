package posts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blogstore/internal/logging"
	"github.com/goliatone/go-blogstore/pkg/interfaces"
	"github.com/goliatone/go-blogstore/pkg/storage"
)

// ListOptions selects how post bodies are returned. With Raw unset the body
// field carries rendered HTML instead of Markdown.
type ListOptions struct {
	Raw bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped documents and failed writes.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMarkdownParser sets the renderer used when ListOptions.Raw is false.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(s *Store) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// Store reads and writes posts through a single storage.Backend chosen at
// construction. It performs no locking: concurrent writers to the same slug
// race and the last write wins.
type Store struct {
	backend storage.Backend
	parser  interfaces.MarkdownParser
	logger  interfaces.Logger
}

// NewStore builds a store over backend. Without WithMarkdownParser rendered
// reads return the raw Markdown unchanged.
func NewStore(backend storage.Backend, opts ...Option) *Store {
	if backend == nil {
		panic("posts: backend is required")
	}
	s := &Store{
		backend: backend,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns every valid post, newest first. It never fails: when the
// backend cannot be listed the error is logged and an empty slice returned.
func (s *Store) ListAll(ctx context.Context, opts ListOptions) []Post {
	posts, err := s.List(ctx, opts)
	if err != nil {
		s.logger.Error("posts.list.failed", "error", err)
		return []Post{}
	}
	return posts
}

// GetBySlug returns the post with slug, or false when it does not exist or
// the backend cannot be reached.
func (s *Store) GetBySlug(ctx context.Context, slug string, opts ListOptions) (Post, bool) {
	post, err := s.Get(ctx, slug, opts)
	if err != nil {
		if !IsNotFound(err) {
			logging.WithPostContext(s.logger, slug, "", "get").Error("posts.get.failed", "error", err)
		}
		return nil, false
	}
	return post, true
}

// Save writes post and reports whether the write succeeded. Failures are
// logged, never returned.
func (s *Store) Save(ctx context.Context, post Post) bool {
	if err := s.Put(ctx, post); err != nil {
		slug := ""
		if post != nil {
			slug = post.Meta().Slug
		}
		logging.WithPostContext(s.logger, slug, "", "save").Error("posts.save.failed", "error", err)
		return false
	}
	return true
}

// Delete removes the post stored under slug and reports success. Deleting a
// missing post is a failure.
func (s *Store) Delete(ctx context.Context, slug string) bool {
	if err := s.Remove(ctx, slug); err != nil {
		logging.WithPostContext(s.logger, slug, "", "delete").Error("posts.delete.failed", "error", err)
		return false
	}
	return true
}

// List is the error-returning form of ListAll. Individual documents that
// cannot be read, decoded or rendered are skipped and logged.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Post, error) {
	keys, err := s.backend.List(ctx)
	if err != nil {
		return nil, storageError(err, "", "list posts")
	}

	out := make([]Post, 0, len(keys))
	for _, key := range keys {
		if !IsPostKey(key) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, storageError(err, "", "list posts")
		}
		post, err := s.load(ctx, key, opts)
		if err != nil {
			logging.WithPostContext(s.logger, "", key, "list").Warn("posts.list.skipped", "error", err)
			continue
		}
		out = append(out, post)
	}

	sortNewestFirst(out)
	return out, nil
}

// Get is the error-returning form of GetBySlug. The document stored under
// the slug's own key is tried first; when it is absent or belongs to another
// slug every post is scanned, matching on the frontmatter slug. When two
// documents share a slug the one under the slug's own key wins.
func (s *Store) Get(ctx context.Context, slug string, opts ListOptions) (Post, error) {
	key, err := keyFor(slug)
	if err != nil {
		return nil, err
	}

	post, err := s.load(ctx, key, opts)
	if err == nil && post.Meta().Slug == slug {
		return post, nil
	}
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil, storageError(err, slug, "get post")
	}

	all, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	for _, candidate := range all {
		if candidate.Meta().Slug == slug {
			return candidate, nil
		}
	}
	return nil, notFoundError(slug)
}

// Put creates or replaces the document for post. The current revision is
// read first so version-controlled backends can record an update against it
// and reject the write if the document changed in between.
func (s *Store) Put(ctx context.Context, post Post) error {
	if post == nil {
		return invalidError(ErrNilPost, "save post")
	}
	if !post.Kind().Valid() {
		return invalidError(fmt.Errorf("posts: unknown post type %q", post.Kind()), "save post")
	}
	slug := post.Meta().Slug
	key, err := keyFor(slug)
	if err != nil {
		return err
	}

	data, err := Encode(post)
	if err != nil {
		return invalidError(err, "encode post")
	}

	writeOpts := storage.WriteOptions{Message: "Create blog post: " + slug}
	existing, err := s.backend.Read(ctx, key)
	switch {
	case err == nil:
		writeOpts.Message = "Update blog post: " + slug
		writeOpts.Revision = existing.Revision
	case errors.Is(err, storage.ErrNotFound):
	default:
		return storageError(err, slug, "read post revision")
	}

	if _, err := s.backend.Write(ctx, key, data, writeOpts); err != nil {
		return storageError(err, slug, "write post")
	}
	logging.WithPostContext(s.logger, slug, key, "save").Debug("posts.save.completed", "message", writeOpts.Message)
	return nil
}

// Remove deletes the document for slug. A missing document yields a
// not-found error.
func (s *Store) Remove(ctx context.Context, slug string) error {
	key, err := keyFor(slug)
	if err != nil {
		return err
	}

	existing, err := s.backend.Read(ctx, key)
	if err != nil {
		return storageError(err, slug, "read post revision")
	}

	err = s.backend.Delete(ctx, key, storage.WriteOptions{
		Message:  "Delete blog post: " + slug,
		Revision: existing.Revision,
	})
	if err != nil {
		return storageError(err, slug, "delete post")
	}
	logging.WithPostContext(s.logger, slug, key, "delete").Debug("posts.delete.completed")
	return nil
}

// Backend exposes the underlying storage backend.
func (s *Store) Backend() storage.Backend {
	return s.backend
}

func (s *Store) load(ctx context.Context, key string, opts ListOptions) (Post, error) {
	obj, err := s.backend.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	post, err := Decode(obj.Data)
	if err != nil {
		return nil, err
	}
	if opts.Raw {
		return post, nil
	}
	return s.render(post)
}

func (s *Store) render(post Post) (Post, error) {
	if s.parser == nil {
		return post, nil
	}
	html, err := s.parser.Parse([]byte(post.Body()))
	if err != nil {
		return nil, err
	}
	return post.withBody(string(html)), nil
}

func keyFor(slug string) (string, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" || trimmed != slug || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return "", invalidError(fmt.Errorf("%w: %q", ErrInvalidSlug, slug), "derive storage key")
	}
	return Key(slug), nil
}

// sortNewestFirst orders by date descending; equal dates fall back to slug
// ascending so listings are stable across backends.
func sortNewestFirst(list []Post) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Meta(), list[j].Meta()
		if cmp := compareDates(a.Date, b.Date); cmp != 0 {
			return cmp > 0
		}
		return a.Slug < b.Slug
	})
}

func compareDates(a, b string) int {
	ta, errA := parseDate(a)
	tb, errB := parseDate(b)
	if errA == nil && errB == nil {
		return ta.Compare(tb)
	}
	return strings.Compare(a, b)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
