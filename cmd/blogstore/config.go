package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-blogstore"
)

const envPrefix = "BLOGSTORE"

// settings is the resolved runtime configuration plus the caller's admin
// secret, which is a credential presented to the guard rather than config.
type settings struct {
	Config blogstore.Config
	Secret string
}

// loadSettings layers defaults, the optional config file, BLOGSTORE_* env vars
// and persistent flags, in that order of precedence.
func loadSettings(cmd *cobra.Command, cfgFile string) (settings, error) {
	v := viper.New()
	setDefaults(v, blogstore.DefaultConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("blogstore")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := v.BindEnv("secret"); err != nil {
		return settings{}, err
	}
	for _, name := range []string{"mode", "secret"} {
		if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
			v.Set(name, flag.Value.String())
		}
	}

	cfg := blogstore.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}
	return settings{Config: cfg, Secret: v.GetString("secret")}, nil
}

func setDefaults(v *viper.Viper, cfg blogstore.Config) {
	defaults := map[string]any{
		"mode":                       string(cfg.Mode),
		"local.content_dir":          cfg.Local.ContentDir,
		"local.image_dir":            cfg.Local.ImageDir,
		"github.owner":               cfg.GitHub.Owner,
		"github.repo":                cfg.GitHub.Repo,
		"github.branch":              cfg.GitHub.Branch,
		"github.token":               cfg.GitHub.Token,
		"github.content_path":        cfg.GitHub.ContentPath,
		"github.image_path":          cfg.GitHub.ImagePath,
		"github.api_base_url":        cfg.GitHub.APIBaseURL,
		"github.committer_name":      cfg.GitHub.CommitterName,
		"github.committer_email":     cfg.GitHub.CommitterEmail,
		"database.driver":            cfg.Database.Driver,
		"database.dsn":               cfg.Database.DSN,
		"database.posts_collection":  cfg.Database.PostsCollection,
		"database.images_collection": cfg.Database.ImagesCollection,
		"media.public_prefix":        cfg.Media.PublicPrefix,
		"markdown.parser.extensions": cfg.Markdown.Parser.Extensions,
		"markdown.parser.sanitize":   cfg.Markdown.Parser.Sanitize,
		"markdown.parser.hard_wraps": cfg.Markdown.Parser.HardWraps,
		"markdown.parser.safe_mode":  cfg.Markdown.Parser.SafeMode,
		"logging.provider":           cfg.Logging.Provider,
		"logging.level":              cfg.Logging.Level,
		"logging.format":             cfg.Logging.Format,
		"logging.add_source":         cfg.Logging.AddSource,
		"logging.focus":              cfg.Logging.Focus,
		"logging.file":               cfg.Logging.File,
		"auth.admin_secret":          cfg.Auth.AdminSecret,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
