package postscmd

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeUnauthorized      = "COMMAND_UNAUTHORIZED"
	textCodePostTypeImmutable = "POST_TYPE_IMMUTABLE"
)

var (
	// ErrUnauthorized is returned when the caller is not an administrator.
	ErrUnauthorized = errors.New("posts command: admin access required")
	// ErrPostTypeImmutable is returned when an update would change a post's type.
	ErrPostTypeImmutable = errors.New("posts command: post type cannot change")
)

func unauthorizedError() error {
	return goerrors.Wrap(ErrUnauthorized, goerrors.CategoryAuth, "admin access required").
		WithTextCode(textCodeUnauthorized)
}

func typeImmutableError(slug string, stored, requested string) error {
	return goerrors.Wrap(ErrPostTypeImmutable, goerrors.CategoryValidation, "post type cannot change").
		WithTextCode(textCodePostTypeImmutable).
		WithMetadata(map[string]any{
			"slug":           slug,
			"stored_type":    stored,
			"requested_type": requested,
		})
}
