package postscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/internal/posts"
)

const (
	savePostMessageType    = "blogstore.posts.save"
	deletePostMessageType  = "blogstore.posts.delete"
	uploadImageMessageType = "blogstore.media.upload_image"

	// MaxImageBytes caps a single image upload.
	MaxImageBytes = 10 << 20
)

// SavePostCommand creates or updates a post. The record's type must match
// the stored post when the slug already exists.
type SavePostCommand struct {
	Post posts.Record `json:"post"`
}

// Type implements command.Message.
func (SavePostCommand) Type() string { return savePostMessageType }

// Validate checks the fields every stored post needs.
func (cmd SavePostCommand) Validate() error {
	record := cmd.Post
	return validation.ValidateStruct(&record,
		validation.Field(&record.Type, validation.Required, validation.In(posts.TypeOriginal, posts.TypeExternal)),
		validation.Field(&record.Title, validation.Required, validation.By(notBlank("title"))),
		validation.Field(&record.Slug, validation.Required, validation.By(validSlug)),
		validation.Field(&record.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&record.ExternalURL,
			validation.When(record.Type == posts.TypeExternal, validation.Required, is.URL),
		),
	)
}

// DeletePostCommand removes the post stored under Slug.
type DeletePostCommand struct {
	Slug string `json:"slug"`
}

// Type implements command.Message.
func (DeletePostCommand) Type() string { return deletePostMessageType }

// Validate ensures the slug is usable as a storage key.
func (cmd DeletePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Slug, validation.Required, validation.By(validSlug)),
	)
}

// UploadImageCommand stores an image. OnStored receives the stored asset so
// callers can read back the public path.
type UploadImageCommand struct {
	Data     []byte             `json:"-"`
	Filename string             `json:"filename,omitempty"`
	OnStored func(*media.Asset) `json:"-"`
}

// Type implements command.Message.
func (UploadImageCommand) Type() string { return uploadImageMessageType }

// Validate rejects empty and oversized payloads.
func (cmd UploadImageCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Data, validation.Required, validation.Length(1, MaxImageBytes)),
		validation.Field(&cmd.Filename, validation.Length(0, 255)),
	)
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("blogstore.posts."+field+"_blank", field+" cannot be blank")
		}
		return nil
	}
}

func validSlug(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !slug.IsValid(s) {
		return validation.NewError("blogstore.posts.slug_invalid", "slug must contain lowercase letters, digits and hyphens only")
	}
	return nil
}
