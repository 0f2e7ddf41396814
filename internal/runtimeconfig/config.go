package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

var ErrModeInvalid = errors.New("blogstore config: storage mode is invalid")
var ErrLocalContentDirRequired = errors.New("blogstore config: local content directory is required in local mode")
var ErrGitHubRepositoryRequired = errors.New("blogstore config: github owner and repo are required in github mode")
var ErrGitHubTokenRequired = errors.New("blogstore config: github token is required in github mode")
var ErrDatabaseDSNRequired = errors.New("blogstore config: database dsn is required in database mode")
var ErrDatabaseDriverUnknown = errors.New("blogstore config: database driver is invalid")
var ErrLoggingProviderRequired = errors.New("blogstore config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("blogstore config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("blogstore config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("blogstore config: logging format is invalid")

// Config selects the storage backend and carries the settings of every mode.
// Only the section matching Mode is read at startup.
type Config struct {
	Mode     storage.Mode   `mapstructure:"mode"`
	Local    LocalConfig    `mapstructure:"local"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Database DatabaseConfig `mapstructure:"database"`
	Media    MediaConfig    `mapstructure:"media"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// LocalConfig points the filesystem backend at host directories.
type LocalConfig struct {
	ContentDir string `mapstructure:"content_dir"`
	ImageDir   string `mapstructure:"image_dir"`
}

// GitHubConfig selects the repository posts and images are committed to.
type GitHubConfig struct {
	Owner          string `mapstructure:"owner"`
	Repo           string `mapstructure:"repo"`
	Branch         string `mapstructure:"branch"`
	Token          string `mapstructure:"token"`
	ContentPath    string `mapstructure:"content_path"`
	ImagePath      string `mapstructure:"image_path"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	CommitterName  string `mapstructure:"committer_name"`
	CommitterEmail string `mapstructure:"committer_email"`
}

// DatabaseConfig configures the bun backend.
type DatabaseConfig struct {
	Driver           string `mapstructure:"driver"`
	DSN              string `mapstructure:"dsn"`
	PostsCollection  string `mapstructure:"posts_collection"`
	ImagesCollection string `mapstructure:"images_collection"`
}

// MediaConfig controls the public paths handed out for uploads.
type MediaConfig struct {
	PublicPrefix string `mapstructure:"public_prefix"`
}

// MarkdownConfig captures renderer behaviour for non-raw reads.
type MarkdownConfig struct {
	Parser MarkdownParserConfig `mapstructure:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string `mapstructure:"extensions"`
	Sanitize   bool     `mapstructure:"sanitize"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
	// File, when set, also writes console output to a rotated log file.
	File string `mapstructure:"file"`
}

// AuthConfig holds the shared admin secret. When empty every caller is
// trusted, which only suits single-user local setups.
type AuthConfig struct {
	AdminSecret string `mapstructure:"admin_secret"`
}

// DefaultConfig returns defaults for local development.
func DefaultConfig() Config {
	return Config{
		Mode: storage.ModeLocal,
		Local: LocalConfig{
			ContentDir: "content/blog",
			ImageDir:   "public/images/blog",
		},
		GitHub: GitHubConfig{
			Branch:      "main",
			ContentPath: "content/blog",
			ImagePath:   "public/images/blog",
		},
		Database: DatabaseConfig{
			Driver:           "sqlite3",
			DSN:              "file:blogstore.db?cache=shared",
			PostsCollection:  "posts",
			ImagesCollection: "images",
		},
		Media: MediaConfig{
			PublicPrefix: "/images/blog",
		},
		Markdown: MarkdownConfig{
			Parser: MarkdownParserConfig{
				Extensions: []string{"gfm", "footnote", "typographer"},
			},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate checks that the section required by Mode is usable.
func (cfg Config) Validate() error {
	mode := storage.Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrModeInvalid, cfg.Mode)
	}

	switch mode {
	case storage.ModeLocal:
		if strings.TrimSpace(cfg.Local.ContentDir) == "" {
			return ErrLocalContentDirRequired
		}
	case storage.ModeGitHub:
		if strings.TrimSpace(cfg.GitHub.Owner) == "" || strings.TrimSpace(cfg.GitHub.Repo) == "" {
			return ErrGitHubRepositoryRequired
		}
		if strings.TrimSpace(cfg.GitHub.Token) == "" {
			return ErrGitHubTokenRequired
		}
	case storage.ModeDatabase:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
		if driver := strings.TrimSpace(cfg.Database.Driver); driver != "" && !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, driver)
		}
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// StorageMode returns Mode normalised for comparisons.
func (cfg Config) StorageMode() storage.Mode {
	return storage.Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedDriver(driver string) bool {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3", "pgx", "postgres", "postgresql":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
