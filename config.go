package blogstore

import "github.com/goliatone/go-blogstore/internal/runtimeconfig"

var (
	ErrModeInvalid              = runtimeconfig.ErrModeInvalid
	ErrLocalContentDirRequired  = runtimeconfig.ErrLocalContentDirRequired
	ErrGitHubRepositoryRequired = runtimeconfig.ErrGitHubRepositoryRequired
	ErrGitHubTokenRequired      = runtimeconfig.ErrGitHubTokenRequired
	ErrDatabaseDSNRequired      = runtimeconfig.ErrDatabaseDSNRequired
	ErrDatabaseDriverUnknown    = runtimeconfig.ErrDatabaseDriverUnknown
	ErrLoggingProviderRequired  = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown   = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	LocalConfig          = runtimeconfig.LocalConfig
	GitHubConfig         = runtimeconfig.GitHubConfig
	DatabaseConfig       = runtimeconfig.DatabaseConfig
	MediaConfig          = runtimeconfig.MediaConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
	AuthConfig           = runtimeconfig.AuthConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
