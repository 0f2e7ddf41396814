package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v66/github"
	"github.com/uptrace/bun"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/goliatone/go-blogstore/internal/adapters/bunstore"
	"github.com/goliatone/go-blogstore/internal/adapters/filesystem"
	"github.com/goliatone/go-blogstore/internal/adapters/github"
	"github.com/goliatone/go-blogstore/internal/adapters/memory"
	postscmd "github.com/goliatone/go-blogstore/internal/commands/posts"
	"github.com/goliatone/go-blogstore/internal/logging"
	"github.com/goliatone/go-blogstore/internal/logging/console"
	"github.com/goliatone/go-blogstore/internal/logging/gologger"
	"github.com/goliatone/go-blogstore/internal/markdown"
	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/internal/posts"
	"github.com/goliatone/go-blogstore/internal/runtimeconfig"
	"github.com/goliatone/go-blogstore/pkg/interfaces"
	"github.com/goliatone/go-blogstore/pkg/storage"
)

const openTimeout = 15 * time.Second

// Container wires the blog store for one storage mode. The backend is chosen
// once, from Config.Mode, and never changes for the lifetime of the container.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	markdownParser interfaces.MarkdownParser
	guard          interfaces.AuthGuard
	registry       postscmd.CommandRegistry

	postsBackend  storage.Backend
	imagesBackend storage.Backend
	bunDB         *bun.DB
	repoClient    github.RepositoryClient

	store    *posts.Store
	media    *media.Service
	handlers *postscmd.HandlerSet

	closers []func() error
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithLogWriter redirects console log output, e.g. to a buffer in tests.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		c.logWriter = w
	}
}

// WithMarkdownParser overrides the goldmark renderer.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.markdownParser = parser
	}
}

// WithAuthGuard overrides the guard derived from Config.Auth.
func WithAuthGuard(guard interfaces.AuthGuard) Option {
	return func(c *Container) {
		c.guard = guard
	}
}

// WithCommandRegistry registers the command handlers with reg as they are built.
func WithCommandRegistry(reg postscmd.CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithBackend supplies the post backend directly, bypassing Config.Mode.
func WithBackend(backend storage.Backend) Option {
	return func(c *Container) {
		c.postsBackend = backend
	}
}

// WithImageBackend supplies the image backend directly, bypassing Config.Mode.
func WithImageBackend(backend storage.Backend) Option {
	return func(c *Container) {
		c.imagesBackend = backend
	}
}

// WithBunDB reuses an existing database in database mode. The container does
// not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepositoryClient replaces the go-github client in github mode.
func WithRepositoryClient(client github.RepositoryClient) Option {
	return func(c *Container) {
		c.repoClient = client
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if c.markdownParser == nil {
		parserCfg := cfg.Markdown.Parser
		c.markdownParser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			Extensions: append([]string(nil), parserCfg.Extensions...),
			Sanitize:   parserCfg.Sanitize,
			HardWraps:  parserCfg.HardWraps,
			SafeMode:   parserCfg.SafeMode,
		})
	}

	if err := c.configureBackends(); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.configureGuard()

	c.store = posts.NewStore(c.postsBackend,
		posts.WithLogger(logging.PostsLogger(c.loggerProvider)),
		posts.WithMarkdownParser(c.markdownParser),
	)
	var uploader postscmd.ImageUploader
	if c.imagesBackend != nil {
		c.media = media.NewService(c.imagesBackend,
			media.WithLogger(logging.MediaLogger(c.loggerProvider)),
			media.WithPublicPrefix(cfg.Media.PublicPrefix),
		)
		uploader = c.media
	}

	handlers, err := postscmd.RegisterPostCommands(c.registry, c.store, uploader, c.guard, c.loggerProvider)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.handlers = handlers

	logging.ModuleLogger(c.loggerProvider, "blogstore").Info("container.configured",
		"mode", string(cfg.StorageMode()),
		"backend", backendName(c.postsBackend),
		"media", c.media != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		writer := c.logWriter
		if writer == nil {
			writer = os.Stderr
		}
		if file := strings.TrimSpace(cfg.File); file != "" {
			rotating := &lumberjack.Logger{Filename: file, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
			c.closers = append(c.closers, rotating.Close)
			writer = io.MultiWriter(writer, rotating)
		}
		level := console.ParseLevel(cfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{Writer: writer, MinLevel: &level})
	}
	return nil
}

func (c *Container) configureBackends() error {
	if c.postsBackend == nil {
		var err error
		switch c.Config.StorageMode() {
		case storage.ModeMemory:
			err = c.memoryBackends()
		case storage.ModeLocal:
			err = c.localBackends()
		case storage.ModeGitHub:
			err = c.githubBackends()
		case storage.ModeDatabase:
			err = c.databaseBackends()
		default:
			err = fmt.Errorf("di: unsupported storage mode %q", c.Config.Mode)
		}
		if err != nil {
			return err
		}
	}

	name := backendName(c.postsBackend)
	c.postsBackend = newBackendProxy(c.postsBackend, logging.StorageLogger(c.loggerProvider, name))
	if c.imagesBackend != nil {
		c.imagesBackend = newBackendProxy(c.imagesBackend, logging.StorageLogger(c.loggerProvider, backendName(c.imagesBackend)))
	}
	return nil
}

func (c *Container) memoryBackends() error {
	c.postsBackend = memory.New()
	if c.imagesBackend == nil {
		c.imagesBackend = memory.New()
	}
	return nil
}

func (c *Container) localBackends() error {
	local := c.Config.Local
	backend, err := filesystem.New(filesystem.Config{Dir: local.ContentDir, Pattern: "*" + posts.FileExtension})
	if err != nil {
		return err
	}
	c.postsBackend = backend

	if c.imagesBackend == nil && strings.TrimSpace(local.ImageDir) != "" {
		images, err := filesystem.New(filesystem.Config{Dir: local.ImageDir})
		if err != nil {
			return err
		}
		c.imagesBackend = images
	}
	return nil
}

func (c *Container) githubBackends() error {
	cfg := c.Config.GitHub
	client := c.repoClient
	if client == nil {
		api := gh.NewClient(nil).WithAuthToken(cfg.Token)
		if base := strings.TrimSpace(cfg.APIBaseURL); base != "" {
			if !strings.HasSuffix(base, "/") {
				base += "/"
			}
			parsed, err := url.Parse(base)
			if err != nil {
				return fmt.Errorf("di: github api base url: %w", err)
			}
			api.BaseURL = parsed
		}
		contentsCfg := github.ContentsConfig{Owner: cfg.Owner, Repo: cfg.Repo, Branch: cfg.Branch}
		if cfg.CommitterName != "" && cfg.CommitterEmail != "" {
			contentsCfg.Committer = &github.Committer{Name: cfg.CommitterName, Email: cfg.CommitterEmail}
		}
		contents, err := github.NewContentsClient(api, contentsCfg)
		if err != nil {
			return err
		}
		client = contents
	}

	backend, err := github.NewBackend(client, cfg.ContentPath)
	if err != nil {
		return err
	}
	c.postsBackend = backend

	if c.imagesBackend == nil && strings.TrimSpace(cfg.ImagePath) != "" {
		images, err := github.NewBackend(client, cfg.ImagePath)
		if err != nil {
			return err
		}
		c.imagesBackend = images
	}
	return nil
}

func (c *Container) databaseBackends() error {
	cfg := c.Config.Database
	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	db := c.bunDB
	if db == nil {
		opened, err := bunstore.Open(ctx, bunstore.Config{Driver: cfg.Driver, DSN: cfg.DSN})
		if err != nil {
			return err
		}
		c.closers = append(c.closers, opened.Close)
		db = opened
	} else if err := bunstore.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("di: ensure blog documents table: %w", err)
	}
	c.bunDB = db

	backend, err := bunstore.NewBackend(db, cfg.PostsCollection)
	if err != nil {
		return err
	}
	c.postsBackend = backend

	if c.imagesBackend == nil {
		collection := strings.TrimSpace(cfg.ImagesCollection)
		if collection == "" {
			collection = "images"
		}
		images, err := bunstore.NewBackend(db, collection)
		if err != nil {
			return err
		}
		c.imagesBackend = images
	}
	return nil
}

func (c *Container) configureGuard() {
	if c.guard != nil {
		return
	}
	if secret := c.Config.Auth.AdminSecret; strings.TrimSpace(secret) != "" {
		c.guard = postscmd.NewStaticSecretGuard(secret)
		return
	}
	logging.ModuleLogger(c.loggerProvider, "blogstore").Warn("auth.guard.trusted",
		"reason", "no admin secret configured",
	)
	c.guard = postscmd.TrustedGuard{}
}

// LoggerProvider returns the provider used by every module.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// PostStore returns the post store bound to the configured backend.
func (c *Container) PostStore() *posts.Store {
	return c.store
}

// MediaService returns the image service, or nil when no image location is configured.
func (c *Container) MediaService() *media.Service {
	return c.media
}

// CommandHandlers returns the save, delete and upload handlers.
func (c *Container) CommandHandlers() *postscmd.HandlerSet {
	return c.handlers
}

// AuthGuard returns the guard the handlers check.
func (c *Container) AuthGuard() interfaces.AuthGuard {
	return c.guard
}

// Capabilities reports the post backend's features.
func (c *Container) Capabilities() storage.Capabilities {
	if reporter, ok := c.postsBackend.(storage.CapabilityReporter); ok {
		return reporter.Capabilities()
	}
	return storage.Capabilities{}
}

// Close releases resources the container opened itself.
func (c *Container) Close() error {
	var errs error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, c.closers[i]())
	}
	c.closers = nil
	return errs
}

func backendName(backend storage.Backend) string {
	if reporter, ok := backend.(storage.CapabilityReporter); ok {
		return reporter.Capabilities().Name
	}
	return "custom"
}
