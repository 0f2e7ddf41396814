package postscmd

import (
	"errors"

	"github.com/goliatone/go-blogstore/internal/logging"
	"github.com/goliatone/go-blogstore/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterPostCommands.
type HandlerSet struct {
	Save   *SavePostHandler
	Delete *DeletePostHandler
	Upload *UploadImageHandler
}

// All returns the handlers as a slice, skipping absent ones.
func (s *HandlerSet) All() []any {
	if s == nil {
		return nil
	}
	out := make([]any, 0, 3)
	if s.Save != nil {
		out = append(out, s.Save)
	}
	if s.Delete != nil {
		out = append(out, s.Delete)
	}
	if s.Upload != nil {
		out = append(out, s.Upload)
	}
	return out
}

// RegisterPostCommands builds the post and image handlers and registers them
// with reg when one is supplied. uploader may be nil, in which case no upload
// handler is built.
func RegisterPostCommands(reg CommandRegistry, store PostStore, uploader ImageUploader, guard interfaces.AuthGuard, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if store == nil {
		return nil, errors.New("posts command registration: store is nil")
	}

	logger := logging.CommandLogger(provider, "posts")
	set := &HandlerSet{
		Save:   NewSavePostHandler(store, guard, logger),
		Delete: NewDeletePostHandler(store, guard, logger),
	}
	if uploader != nil {
		set.Upload = NewUploadImageHandler(uploader, guard, logging.CommandLogger(provider, "media"))
	}

	if reg != nil {
		for _, handler := range set.All() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
