package di

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-blogstore/pkg/interfaces"
	"github.com/goliatone/go-blogstore/pkg/storage"
)

// backendProxy logs every backend call with its duration. Expected outcomes
// such as a missing key are logged at debug, everything else at warn.
type backendProxy struct {
	inner  storage.Backend
	logger interfaces.Logger
	clock  func() time.Time
}

var (
	_ storage.Backend            = (*backendProxy)(nil)
	_ storage.CapabilityReporter = (*backendProxy)(nil)
)

func newBackendProxy(inner storage.Backend, logger interfaces.Logger) *backendProxy {
	return &backendProxy{inner: inner, logger: logger, clock: time.Now}
}

func (p *backendProxy) Read(ctx context.Context, key string) (*storage.Object, error) {
	started := p.clock()
	obj, err := p.inner.Read(ctx, key)
	p.observe("storage.read", started, err, "key", key)
	return obj, err
}

func (p *backendProxy) List(ctx context.Context) ([]string, error) {
	started := p.clock()
	keys, err := p.inner.List(ctx)
	p.observe("storage.list", started, err, "count", len(keys))
	return keys, err
}

func (p *backendProxy) Write(ctx context.Context, key string, data []byte, opts storage.WriteOptions) (*storage.Object, error) {
	started := p.clock()
	obj, err := p.inner.Write(ctx, key, data, opts)
	p.observe("storage.write", started, err, "key", key, "size", len(data), "message", opts.Message)
	return obj, err
}

func (p *backendProxy) Delete(ctx context.Context, key string, opts storage.WriteOptions) error {
	started := p.clock()
	err := p.inner.Delete(ctx, key, opts)
	p.observe("storage.delete", started, err, "key", key, "message", opts.Message)
	return err
}

// Capabilities forwards to the wrapped backend when it reports any.
func (p *backendProxy) Capabilities() storage.Capabilities {
	if reporter, ok := p.inner.(storage.CapabilityReporter); ok {
		return reporter.Capabilities()
	}
	return storage.Capabilities{Name: "unknown"}
}

func (p *backendProxy) observe(event string, started time.Time, err error, args ...any) {
	args = append(args, "duration_ms", p.clock().Sub(started).Milliseconds())
	switch {
	case err == nil:
		p.logger.Debug(event, args...)
	case errors.Is(err, storage.ErrNotFound):
		p.logger.Debug(event+".missing", args...)
	default:
		p.logger.Warn(event+".failed", append(args, "error", err)...)
	}
}
