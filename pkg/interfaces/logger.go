package interfaces

import "context"

// Logger is the leveled logger every blog store package writes through.
// Its method set matches github.com/goliatone/go-logger loggers.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by module name (blogstore.posts,
// blogstore.storage, ...).
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can bind structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
