package media

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeMediaInvalid       = "MEDIA_INVALID"
	TextCodeMediaStorageFailed = "MEDIA_STORAGE_FAILED"
)

var (
	// ErrEmptyUpload is returned when an upload carries no bytes.
	ErrEmptyUpload = errors.New("media: upload is empty")
	// ErrUnsupportedType is returned for payloads that are not a supported image format.
	ErrUnsupportedType = errors.New("media: unsupported content type")
	// ErrCorruptImage is returned when the payload sniffs as an image but cannot be decoded.
	ErrCorruptImage = errors.New("media: image cannot be decoded")
)

func invalidError(err error, message string, metadata map[string]any) error {
	wrapped := goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithTextCode(TextCodeMediaInvalid)
	if len(metadata) > 0 {
		wrapped = wrapped.WithMetadata(metadata)
	}
	return wrapped
}

func storageError(err error, filename string) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "failed to store image").
		WithTextCode(TextCodeMediaStorageFailed).
		WithMetadata(map[string]any{"filename": filename})
}
