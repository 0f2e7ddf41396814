package posts

import (
	"fmt"
	"slices"
)

// Type discriminates the two post variants. It is fixed when a post is
// created and never changed by later saves.
type Type string

const (
	TypeOriginal Type = "original"
	TypeExternal Type = "external"
)

// Valid reports whether t names a known variant.
func (t Type) Valid() bool {
	return t == TypeOriginal || t == TypeExternal
}

// Post is implemented by *OriginalPost and *ExternalPost only.
type Post interface {
	Kind() Type
	Meta() Metadata
	// Body returns the Markdown (or rendered HTML) body of the variant.
	Body() string
	// withBody returns a copy of the post with its body replaced.
	withBody(body string) Post
}

// Metadata holds the attributes shared by every post variant.
type Metadata struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Date          string   `json:"date"`
	Excerpt       string   `json:"excerpt,omitempty"`
	FeaturedImage string   `json:"featuredImage,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
}

// OriginalPost is an article written for the site.
type OriginalPost struct {
	Metadata
	Content string `json:"content"`
}

func (p *OriginalPost) Kind() Type     { return TypeOriginal }
func (p *OriginalPost) Meta() Metadata { return p.Metadata }
func (p *OriginalPost) Body() string   { return p.Content }

func (p *OriginalPost) withBody(body string) Post {
	clone := *p
	clone.Tags = slices.Clone(p.Tags)
	clone.Content = body
	return &clone
}

// ExternalPost links to an article published elsewhere, with commentary.
type ExternalPost struct {
	Metadata
	ExternalURL  string `json:"externalUrl"`
	Commentary   string `json:"commentary"`
	SourceName   string `json:"sourceName,omitempty"`
	SourceAuthor string `json:"sourceAuthor,omitempty"`
}

func (p *ExternalPost) Kind() Type     { return TypeExternal }
func (p *ExternalPost) Meta() Metadata { return p.Metadata }
func (p *ExternalPost) Body() string   { return p.Commentary }

func (p *ExternalPost) withBody(body string) Post {
	clone := *p
	clone.Tags = slices.Clone(p.Tags)
	clone.Commentary = body
	return &clone
}

// Record is the flat, JSON-friendly shape of a post used by the CLI and by
// admin forms. Exactly one of Content/Commentary is meaningful per Type.
type Record struct {
	Type          Type     `json:"type" yaml:"type"`
	Title         string   `json:"title" yaml:"title"`
	Slug          string   `json:"slug" yaml:"slug"`
	Date          string   `json:"date" yaml:"date"`
	Excerpt       string   `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	FeaturedImage string   `json:"featuredImage,omitempty" yaml:"featuredImage,omitempty"`
	Category      string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Featured      bool     `json:"featured,omitempty" yaml:"featured,omitempty"`
	Content       string   `json:"content,omitempty" yaml:"content,omitempty"`
	ExternalURL   string   `json:"externalUrl,omitempty" yaml:"externalUrl,omitempty"`
	Commentary    string   `json:"commentary,omitempty" yaml:"commentary,omitempty"`
	SourceName    string   `json:"sourceName,omitempty" yaml:"sourceName,omitempty"`
	SourceAuthor  string   `json:"sourceAuthor,omitempty" yaml:"sourceAuthor,omitempty"`
}

// ToRecord flattens post. A nil post yields the zero Record.
func ToRecord(post Post) Record {
	switch p := post.(type) {
	case *OriginalPost:
		return Record{
			Type:          TypeOriginal,
			Title:         p.Title,
			Slug:          p.Slug,
			Date:          p.Date,
			Excerpt:       p.Excerpt,
			FeaturedImage: p.FeaturedImage,
			Category:      p.Category,
			Tags:          slices.Clone(p.Tags),
			Featured:      p.Featured,
			Content:       p.Content,
		}
	case *ExternalPost:
		return Record{
			Type:          TypeExternal,
			Title:         p.Title,
			Slug:          p.Slug,
			Date:          p.Date,
			Excerpt:       p.Excerpt,
			FeaturedImage: p.FeaturedImage,
			Category:      p.Category,
			Tags:          slices.Clone(p.Tags),
			Featured:      p.Featured,
			ExternalURL:   p.ExternalURL,
			Commentary:    p.Commentary,
			SourceName:    p.SourceName,
			SourceAuthor:  p.SourceAuthor,
		}
	default:
		return Record{}
	}
}

// Post converts the record into its variant. Fields that do not belong to
// the record's type are dropped.
func (r Record) Post() (Post, error) {
	meta := Metadata{
		Title:         r.Title,
		Slug:          r.Slug,
		Date:          r.Date,
		Excerpt:       r.Excerpt,
		FeaturedImage: r.FeaturedImage,
		Category:      r.Category,
		Tags:          slices.Clone(r.Tags),
		Featured:      r.Featured,
	}
	switch r.Type {
	case TypeOriginal:
		return &OriginalPost{Metadata: meta, Content: r.Content}, nil
	case TypeExternal:
		return &ExternalPost{
			Metadata:     meta,
			ExternalURL:  r.ExternalURL,
			Commentary:   r.Commentary,
			SourceName:   r.SourceName,
			SourceAuthor: r.SourceAuthor,
		}, nil
	default:
		return nil, fmt.Errorf("posts: unknown post type %q", r.Type)
	}
}
