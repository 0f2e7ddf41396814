package postscmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-blogstore/internal/commands"
	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/internal/posts"
	"github.com/goliatone/go-blogstore/pkg/interfaces"
)

const (
	saveOperation   = "posts.save"
	deleteOperation = "posts.delete"
	uploadOperation = "media.upload_image"
)

var (
	_ command.Commander[SavePostCommand]    = (*SavePostHandler)(nil)
	_ command.Commander[DeletePostCommand]  = (*DeletePostHandler)(nil)
	_ command.Commander[UploadImageCommand] = (*UploadImageHandler)(nil)
)

// PostStore is the slice of posts.Store the handlers depend on.
type PostStore interface {
	Get(ctx context.Context, slug string, opts posts.ListOptions) (posts.Post, error)
	Put(ctx context.Context, post posts.Post) error
	Remove(ctx context.Context, slug string) error
}

// ImageUploader stores image uploads.
type ImageUploader interface {
	Upload(ctx context.Context, input media.UploadInput) (*media.Asset, error)
}

// SavePostHandler creates or updates posts on behalf of an administrator.
type SavePostHandler struct {
	inner *commands.Handler[SavePostCommand]
}

// NewSavePostHandler creates a handler bound to store. A nil guard rejects every caller.
func NewSavePostHandler(store PostStore, guard interfaces.AuthGuard, logger interfaces.Logger, opts ...commands.HandlerOption[SavePostCommand]) *SavePostHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SavePostCommand) error {
		if !isAdmin(ctx, guard) {
			return unauthorizedError()
		}

		post, err := msg.Post.Post()
		if err != nil {
			return err
		}

		existing, err := store.Get(ctx, msg.Post.Slug, posts.ListOptions{Raw: true})
		switch {
		case err == nil:
			if existing.Kind() != post.Kind() {
				return typeImmutableError(msg.Post.Slug, string(existing.Kind()), string(post.Kind()))
			}
		case posts.IsNotFound(err):
		default:
			return err
		}

		return store.Put(ctx, post)
	}

	handlerOpts := []commands.HandlerOption[SavePostCommand]{
		commands.WithLogger[SavePostCommand](baseLogger),
		commands.WithOperation[SavePostCommand](saveOperation),
		commands.WithMessageFields(func(msg SavePostCommand) map[string]any {
			return map[string]any{
				"slug": msg.Post.Slug,
				"type": string(msg.Post.Type),
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SavePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SavePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SavePostCommand].
func (h *SavePostHandler) Execute(ctx context.Context, msg SavePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeletePostHandler removes posts on behalf of an administrator.
type DeletePostHandler struct {
	inner *commands.Handler[DeletePostCommand]
}

// NewDeletePostHandler creates a handler bound to store. A nil guard rejects every caller.
func NewDeletePostHandler(store PostStore, guard interfaces.AuthGuard, logger interfaces.Logger, opts ...commands.HandlerOption[DeletePostCommand]) *DeletePostHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DeletePostCommand) error {
		if !isAdmin(ctx, guard) {
			return unauthorizedError()
		}
		return store.Remove(ctx, msg.Slug)
	}

	handlerOpts := []commands.HandlerOption[DeletePostCommand]{
		commands.WithLogger[DeletePostCommand](baseLogger),
		commands.WithOperation[DeletePostCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeletePostCommand) map[string]any {
			return map[string]any{"slug": msg.Slug}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeletePostCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeletePostHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeletePostCommand].
func (h *DeletePostHandler) Execute(ctx context.Context, msg DeletePostCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UploadImageHandler stores images on behalf of an administrator.
type UploadImageHandler struct {
	inner *commands.Handler[UploadImageCommand]
}

// NewUploadImageHandler creates a handler bound to uploader. A nil guard rejects every caller.
func NewUploadImageHandler(uploader ImageUploader, guard interfaces.AuthGuard, logger interfaces.Logger, opts ...commands.HandlerOption[UploadImageCommand]) *UploadImageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg UploadImageCommand) error {
		if !isAdmin(ctx, guard) {
			return unauthorizedError()
		}
		asset, err := uploader.Upload(ctx, media.UploadInput{Data: msg.Data, Filename: msg.Filename})
		if err != nil {
			return err
		}
		if msg.OnStored != nil {
			msg.OnStored(asset)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[UploadImageCommand]{
		commands.WithLogger[UploadImageCommand](baseLogger),
		commands.WithOperation[UploadImageCommand](uploadOperation),
		commands.WithMessageFields(func(msg UploadImageCommand) map[string]any {
			fields := map[string]any{"size": len(msg.Data)}
			if msg.Filename != "" {
				fields["filename"] = msg.Filename
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UploadImageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UploadImageHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UploadImageCommand].
func (h *UploadImageHandler) Execute(ctx context.Context, msg UploadImageCommand) error {
	return h.inner.Execute(ctx, msg)
}

func isAdmin(ctx context.Context, guard interfaces.AuthGuard) bool {
	return guard != nil && guard.IsAdmin(ctx)
}
