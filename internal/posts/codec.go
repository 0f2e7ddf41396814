package posts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blogstore/internal/markdown"
)

// FileExtension is appended to a slug to form the storage key.
const FileExtension = ".mdx"

const dateLayout = "2006-01-02"

// Key derives the storage key for slug.
func Key(slug string) string {
	return slug + FileExtension
}

// IsPostKey reports whether key names a post document.
func IsPostKey(key string) bool {
	return strings.HasSuffix(key, FileExtension) && len(key) > len(FileExtension)
}

// Encode serializes post as a frontmatter document. Empty optional values are
// omitted from the header and the body is never written as a header key.
func Encode(post Post) ([]byte, error) {
	if post == nil {
		return nil, fmt.Errorf("posts: encode nil post")
	}
	meta := post.Meta()
	fields := []markdown.Field{
		{Key: "type", Value: string(post.Kind())},
		{Key: "title", Value: omitEmpty(meta.Title)},
		{Key: "slug", Value: omitEmpty(meta.Slug)},
		{Key: "date", Value: omitEmpty(meta.Date)},
		{Key: "excerpt", Value: omitEmpty(meta.Excerpt)},
		{Key: "featuredImage", Value: omitEmpty(meta.FeaturedImage)},
		{Key: "category", Value: omitEmpty(meta.Category)},
	}
	if len(meta.Tags) > 0 {
		fields = append(fields, markdown.Field{Key: "tags", Value: meta.Tags})
	}
	if meta.Featured {
		fields = append(fields, markdown.Field{Key: "featured", Value: true})
	}
	if external, ok := post.(*ExternalPost); ok {
		fields = append(fields,
			markdown.Field{Key: "externalUrl", Value: omitEmpty(external.ExternalURL)},
			markdown.Field{Key: "sourceName", Value: omitEmpty(external.SourceName)},
			markdown.Field{Key: "sourceAuthor", Value: omitEmpty(external.SourceAuthor)},
		)
	}
	return markdown.EncodeDocument(fields, []byte(post.Body()))
}

// Decode parses a stored document. Documents missing title, slug, date or a
// known type are rejected with a validation error.
func Decode(data []byte) (Post, error) {
	raw, body, err := markdown.ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}

	h := header{
		Type:          Type(stringValue(raw["type"])),
		Title:         stringValue(raw["title"]),
		Slug:          stringValue(raw["slug"]),
		Date:          stringValue(raw["date"]),
		Excerpt:       stringValue(raw["excerpt"]),
		FeaturedImage: stringValue(raw["featuredImage"]),
		Category:      stringValue(raw["category"]),
		Tags:          stringSlice(raw["tags"]),
		Featured:      boolValue(raw["featured"]),
		ExternalURL:   stringValue(raw["externalUrl"]),
		SourceName:    stringValue(raw["sourceName"]),
		SourceAuthor:  stringValue(raw["sourceAuthor"]),
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	record := Record{
		Type:          h.Type,
		Title:         h.Title,
		Slug:          h.Slug,
		Date:          h.Date,
		Excerpt:       h.Excerpt,
		FeaturedImage: h.FeaturedImage,
		Category:      h.Category,
		Tags:          h.Tags,
		Featured:      h.Featured,
		ExternalURL:   h.ExternalURL,
		SourceName:    h.SourceName,
		SourceAuthor:  h.SourceAuthor,
	}
	if h.Type == TypeExternal {
		record.Commentary = string(body)
	} else {
		record.Content = string(body)
	}
	return record.Post()
}

type header struct {
	Type          Type
	Title         string
	Slug          string
	Date          string
	Excerpt       string
	FeaturedImage string
	Category      string
	Tags          []string
	Featured      bool
	ExternalURL   string
	SourceName    string
	SourceAuthor  string
}

func (h header) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Type, validation.Required, validation.In(TypeOriginal, TypeExternal)),
		validation.Field(&h.Title, validation.Required),
		validation.Field(&h.Slug, validation.Required),
		validation.Field(&h.Date, validation.Required),
	)
}

func omitEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if h, m, sec := v.Clock(); h == 0 && m == 0 && sec == 0 && v.Nanosecond() == 0 {
			return v.Format(dateLayout)
		}
		return v.Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func boolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(v)
		return err == nil && parsed
	default:
		return false
	}
}
