package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidMessage = "BLOGSTORE_COMMAND_INVALID"
	textCodeCanceled       = "BLOGSTORE_COMMAND_CANCELED"
	textCodeTimeout        = "BLOGSTORE_COMMAND_TIMEOUT"
	textCodeFailed         = "BLOGSTORE_COMMAND_FAILED"
)

// invalidMessageError tags a message that failed Validate before any storage call.
func invalidMessageError(msgType string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid "+msgType+" message").
		WithTextCode(textCodeInvalidMessage).
		WithMetadata(map[string]any{"command": msgType})
}

// executionError tags failures coming out of a handler. Errors already
// carrying a category (store, media, guard) pass through untouched so their
// text codes reach the caller.
func executionError(msgType string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}

	category, message, code := goerrors.CategoryCommand, msgType+" failed", textCodeFailed
	switch {
	case errors.Is(err, context.Canceled):
		message, code = msgType+" cancelled", textCodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		message, code = msgType+" timed out", textCodeTimeout
	}
	return goerrors.Wrap(err, category, message).
		WithTextCode(code).
		WithMetadata(map[string]any{"command": msgType})
}

// rejected reports whether err is the caller's fault rather than a storage failure.
func rejected(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation) ||
		goerrors.IsCategory(err, goerrors.CategoryAuth)
}
