package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-blogstore/pkg/interfaces"
)

const (
	rootModule     = "blogstore"
	postsModule    = "blogstore.posts"
	mediaModule    = "blogstore.media"
	storageModule  = "blogstore.storage"
	commandsModule = "blogstore.commands"
)

const (
	fieldPostSlug   = "slug"
	fieldPostKey    = "key"
	fieldPostAction = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field so entries can be filtered per module.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PostsLogger returns the logger namespace reserved for the post store.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// MediaLogger returns the logger namespace reserved for image uploads.
func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

// StorageLogger returns the logger namespace reserved for storage backends.
func StorageLogger(provider interfaces.LoggerProvider, backend string) interfaces.Logger {
	logger := ModuleLogger(provider, storageModule)
	if trimmed := strings.TrimSpace(backend); trimmed != "" {
		return WithFields(logger, map[string]any{"backend": trimmed})
	}
	return logger
}

// CommandLogger returns a logger for the handlers of one command group,
// named e.g. blogstore.commands.posts.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		return ModuleLogger(provider, commandsModule)
	}
	logger := ModuleLogger(provider, commandsModule+"."+group)
	return WithFields(logger, map[string]any{"component": "command"})
}

// WithFields attaches structured fields when logger implements
// interfaces.FieldsLogger and returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithPostContext enriches logger with the slug, storage key and action of a
// post operation. Empty values are ignored.
func WithPostContext(logger interfaces.Logger, slug, key, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		fields[fieldPostSlug] = trimmed
	}
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		fields[fieldPostKey] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldPostAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
