package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blogstore"
	postscmd "github.com/goliatone/go-blogstore/internal/commands/posts"
	"github.com/goliatone/go-blogstore/internal/logging"
)

var moduleBuilder = func(cfg blogstore.Config) (*blogstore.Module, error) {
	return blogstore.New(cfg)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("blogstore: %v", err)
	}
}

// app carries state shared by the subcommands of a single invocation.
type app struct {
	out         io.Writer
	cfgFile     string
	module      *blogstore.Module
	secret      string
	unsubscribe func()
}

func run(args []string, out io.Writer) error {
	a := &app{out: out}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogstore",
		Short:         "Manage blog posts and images",
		Long:          "blogstore reads and writes .mdx blog posts on the local filesystem, a GitHub repository or a SQL database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./blogstore.yaml)")
	flags.String("mode", "", "storage mode: local, github, database or memory")
	flags.String("secret", "", "admin secret presented to the command guard")

	root.AddCommand(
		a.listCommand(),
		a.getCommand(),
		a.saveCommand(),
		a.deleteCommand(),
		a.uploadImageCommand(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	s, err := loadSettings(cmd, a.cfgFile)
	if err != nil {
		return err
	}
	module, err := moduleBuilder(s.Config)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	a.module = module
	a.secret = s.Secret
	a.unsubscribe = postscmd.Subscribe(module.Commands())
	return nil
}

func (a *app) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.module != nil {
		if err := a.module.Close(); err != nil {
			log.Printf("blogstore: close: %v", err)
		}
	}
}

// adminContext attaches the caller's secret for the guarded commands and
// tags their log entries with the invoked subcommand.
func (a *app) adminContext(cmd *cobra.Command) context.Context {
	ctx := logging.ContextWithFields(cmd.Context(), map[string]any{"cli_command": cmd.Name()})
	return blogstore.WithAdminSecret(ctx, a.secret)
}
