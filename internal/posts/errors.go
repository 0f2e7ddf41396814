package posts

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

const (
	TextCodePostNotFound      = "POST_NOT_FOUND"
	TextCodePostInvalid       = "POST_INVALID"
	TextCodePostConflict      = "POST_CONFLICT"
	TextCodePostStorageFailed = "POST_STORAGE_FAILED"
	TextCodePostCanceled      = "POST_CONTEXT_CANCELED"
)

var (
	// ErrPostNotFound is the source of every not-found error returned by Store.
	ErrPostNotFound = errors.New("posts: post not found")
	// ErrInvalidSlug is returned when a slug cannot be turned into a storage key.
	ErrInvalidSlug = errors.New("posts: invalid slug")
	// ErrNilPost is returned by Put when no post is supplied.
	ErrNilPost = errors.New("posts: post is nil")
)

func notFoundError(slug string) error {
	return goerrors.Wrap(ErrPostNotFound, goerrors.CategoryNotFound, "post not found").
		WithTextCode(TextCodePostNotFound).
		WithMetadata(map[string]any{"slug": slug})
}

func invalidError(err error, message string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithTextCode(TextCodePostInvalid)
}

// storageError maps backend failures onto error categories so callers can
// tell a missing document from a conflict or an unreachable backend.
func storageError(err error, slug, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return notFoundError(slug)
	case errors.Is(err, storage.ErrConflict):
		return goerrors.Wrap(err, goerrors.CategoryConflict, message).
			WithTextCode(TextCodePostConflict).
			WithMetadata(map[string]any{"slug": slug})
	case errors.Is(err, storage.ErrInvalidKey):
		return invalidError(err, message)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryOperation, message).
			WithTextCode(TextCodePostCanceled)
	default:
		return goerrors.Wrap(err, goerrors.CategoryExternal, message).
			WithTextCode(TextCodePostStorageFailed).
			WithMetadata(map[string]any{"slug": slug})
	}
}

// IsNotFound reports whether err signals a missing post.
func IsNotFound(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryNotFound)
}

// IsConflict reports whether err signals a revision conflict.
func IsConflict(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryConflict)
}
