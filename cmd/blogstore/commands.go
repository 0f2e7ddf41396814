package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-slug"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blogstore"
	postscmd "github.com/goliatone/go-blogstore/internal/commands/posts"
	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/internal/posts"
)

func (a *app) listCommand() *cobra.Command {
	var raw, asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every post, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.module.Posts().List(cmd.Context(), blogstore.ListOptions{Raw: raw})
			if err != nil {
				return err
			}
			if asJSON {
				records := make([]blogstore.Record, 0, len(list))
				for _, post := range list {
					records = append(records, blogstore.ToRecord(post))
				}
				return writeJSON(a, records)
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tTYPE\tSLUG\tTITLE")
			for _, post := range list {
				meta := post.Meta()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", meta.Date, post.Kind(), meta.Slug, meta.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "return Markdown bodies instead of rendered HTML")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print posts as JSON records")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	var raw bool
	var format string
	cmd := &cobra.Command{
		Use:   "get <slug>",
		Short: "Print a single post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post, err := a.module.Posts().Get(cmd.Context(), args[0], blogstore.ListOptions{Raw: raw || format == "mdx"})
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(a, blogstore.ToRecord(post))
			case "yaml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(blogstore.ToRecord(post)); err != nil {
					return err
				}
				return enc.Close()
			case "mdx":
				data, err := posts.Encode(post)
				if err != nil {
					return err
				}
				_, err = a.out.Write(data)
				return err
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "return the Markdown body instead of rendered HTML")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml or mdx")
	return cmd
}

func (a *app) saveCommand() *cobra.Command {
	var file string
	var record blogstore.Record
	var postType string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update a post",
		Long: `save reads a post from --file (.mdx, .json or .yaml) and/or flags.
Flags override values read from the file. When no slug is given one is
derived from the title.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := blogstore.Record{}
			if file != "" {
				loaded, err := readRecord(file)
				if err != nil {
					return err
				}
				base = loaded
			}
			record.Type = blogstore.PostType(postType)
			merged, err := mergeRecord(base, record, cmd.Flags())
			if err != nil {
				return err
			}

			if err := dispatcher.Dispatch(a.adminContext(cmd), postscmd.SavePostCommand{Post: merged}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "saved %s\n", posts.Key(merged.Slug))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&file, "file", "", "read the post from a .mdx, .json or .yaml file")
	flags.StringVar(&postType, "type", string(blogstore.TypeOriginal), "post type: original or external")
	flags.StringVar(&record.Title, "title", "", "post title")
	flags.StringVar(&record.Slug, "slug", "", "post slug (derived from the title when empty)")
	flags.StringVar(&record.Date, "date", "", "publication date as YYYY-MM-DD (defaults to today)")
	flags.StringVar(&record.Excerpt, "excerpt", "", "short summary")
	flags.StringVar(&record.FeaturedImage, "featured-image", "", "public path of the featured image")
	flags.StringVar(&record.Category, "category", "", "category name")
	flags.StringSliceVar(&record.Tags, "tags", nil, "comma separated tags")
	flags.BoolVar(&record.Featured, "featured", false, "mark the post as featured")
	flags.StringVar(&record.Content, "content", "", "Markdown body of an original post")
	flags.StringVar(&record.ExternalURL, "external-url", "", "link target of an external post")
	flags.StringVar(&record.Commentary, "commentary", "", "Markdown commentary of an external post")
	flags.StringVar(&record.SourceName, "source-name", "", "publication an external post links to")
	flags.StringVar(&record.SourceAuthor, "source-author", "", "author of the linked article")
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dispatcher.Dispatch(a.adminContext(cmd), postscmd.DeletePostCommand{Slug: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", posts.Key(args[0]))
			return nil
		},
	}
}

func (a *app) uploadImageCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "upload-image <path>",
		Short: "Store an image and print its public path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if handlers := a.module.Commands(); handlers == nil || handlers.Upload == nil {
				return errors.New("image storage is not configured for this mode")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			if name == "" {
				name = filepath.Base(args[0])
			}

			msg := postscmd.UploadImageCommand{
				Data:     data,
				Filename: name,
				OnStored: func(asset *media.Asset) {
					fmt.Fprintln(a.out, asset.Path)
				},
			}
			return dispatcher.Dispatch(a.adminContext(cmd), msg)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "filename to store the image under (defaults to the file's name)")
	return cmd
}

func writeJSON(a *app, value any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func readRecord(path string) (blogstore.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return blogstore.Record{}, fmt.Errorf("read post file: %w", err)
	}

	var record blogstore.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mdx", ".md":
		post, err := posts.Decode(data)
		if err != nil {
			return blogstore.Record{}, fmt.Errorf("decode %s: %w", path, err)
		}
		record = blogstore.ToRecord(post)
	case ".json":
		if err := json.Unmarshal(data, &record); err != nil {
			return blogstore.Record{}, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &record); err != nil {
			return blogstore.Record{}, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return blogstore.Record{}, fmt.Errorf("unsupported post file %q", path)
	}
	return record, nil
}

// mergeRecord applies every flag the caller set on top of base, then fills
// the slug and date when they are still empty.
func mergeRecord(base, flags blogstore.Record, set *pflag.FlagSet) (blogstore.Record, error) {
	changed := func(name string) bool {
		flag := set.Lookup(name)
		return flag != nil && flag.Changed
	}

	if changed("type") || base.Type == "" {
		base.Type = flags.Type
	}
	overrides := []struct {
		flag string
		dst  *string
		src  string
	}{
		{"title", &base.Title, flags.Title},
		{"slug", &base.Slug, flags.Slug},
		{"date", &base.Date, flags.Date},
		{"excerpt", &base.Excerpt, flags.Excerpt},
		{"featured-image", &base.FeaturedImage, flags.FeaturedImage},
		{"category", &base.Category, flags.Category},
		{"content", &base.Content, flags.Content},
		{"external-url", &base.ExternalURL, flags.ExternalURL},
		{"commentary", &base.Commentary, flags.Commentary},
		{"source-name", &base.SourceName, flags.SourceName},
		{"source-author", &base.SourceAuthor, flags.SourceAuthor},
	}
	for _, o := range overrides {
		if changed(o.flag) {
			*o.dst = o.src
		}
	}
	if changed("tags") {
		base.Tags = flags.Tags
	}
	if changed("featured") {
		base.Featured = flags.Featured
	}

	if strings.TrimSpace(base.Slug) == "" {
		derived, err := slug.Normalize(base.Title)
		if err != nil {
			return blogstore.Record{}, fmt.Errorf("derive slug from title: %w", err)
		}
		base.Slug = derived
	}
	if strings.TrimSpace(base.Date) == "" {
		base.Date = time.Now().Format("2006-01-02")
	}
	return base, nil
}
