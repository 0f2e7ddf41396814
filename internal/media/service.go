// Package media stores binary image uploads next to the posts that reference
// them and hands back the public path to use in a post's featuredImage.
package media

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blogstore/internal/logging"
	"github.com/goliatone/go-blogstore/pkg/interfaces"
	"github.com/goliatone/go-blogstore/pkg/storage"
)

// DefaultPublicPrefix is the URL path images are served under.
const DefaultPublicPrefix = "/images/blog"

// UploadInput is a single image upload. Filename is optional.
type UploadInput struct {
	Data     []byte
	Filename string
}

// Asset describes a stored image.
type Asset struct {
	Filename    string
	Path        string
	ContentType string
	Size        int
	Width       int
	Height      int
	Revision    string
}

// ServiceOption customises the media service behaviour.
type ServiceOption func(*Service)

// WithLogger sets the logger used for rejected and failed uploads.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPublicPrefix sets the URL prefix returned paths start with.
func WithPublicPrefix(prefix string) ServiceOption {
	return func(s *Service) {
		if trimmed := strings.TrimRight(strings.TrimSpace(prefix), "/"); trimmed != "" {
			s.publicPrefix = trimmed
		}
	}
}

// WithClock overrides the time source used for generated filenames.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the unique suffix used for generated filenames.
func WithIDGenerator(next func() string) ServiceOption {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

// Service writes images through an asset backend.
type Service struct {
	backend      storage.Backend
	publicPrefix string
	logger       interfaces.Logger
	now          func() time.Time
	newID        func() string
}

// NewService constructs a media service writing to backend.
func NewService(backend storage.Backend, opts ...ServiceOption) *Service {
	if backend == nil {
		panic("media: backend is required")
	}
	s := &Service{
		backend:      backend,
		publicPrefix: DefaultPublicPrefix,
		logger:       logging.NoOp(),
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveImage stores data and returns its public path. Failures are logged and
// reported as ("", false).
func (s *Service) SaveImage(ctx context.Context, data []byte, filename string) (string, bool) {
	asset, err := s.Upload(ctx, UploadInput{Data: data, Filename: filename})
	if err != nil {
		s.logger.Error("media.upload.failed", "filename", filename, "size", len(data), "error", err)
		return "", false
	}
	return asset.Path, true
}

// Upload validates and stores an image. Without a usable filename one is
// generated as {unix-millis}-{uuid}.{ext}.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*Asset, error) {
	if len(input.Data) == 0 {
		return nil, invalidError(ErrEmptyUpload, "upload is empty", nil)
	}

	contentType := detectContentType(input.Data)
	if !SupportedContentType(contentType) {
		return nil, invalidError(ErrUnsupportedType, "upload is not a supported image", map[string]any{
			"content_type": contentType,
		})
	}
	width, height, err := decodeDimensions(input.Data)
	if err != nil {
		return nil, invalidError(ErrCorruptImage, "image cannot be decoded", map[string]any{
			"content_type": contentType,
			"reason":       err.Error(),
		})
	}

	filename := sanitizeFilename(input.Filename, contentType)
	if filename == "" {
		filename = generatedFilename(s.now().UnixMilli(), s.newID(), contentType)
	}
	if _, err := storage.CleanKey(filename); err != nil {
		return nil, invalidError(err, "invalid image filename", map[string]any{"filename": filename})
	}

	obj, err := s.backend.Write(ctx, filename, input.Data, storage.WriteOptions{
		Message: "Upload image: " + filename,
	})
	if err != nil {
		return nil, storageError(err, filename)
	}

	asset := &Asset{
		Filename:    filename,
		Path:        s.publicPrefix + "/" + filename,
		ContentType: contentType,
		Size:        len(input.Data),
		Width:       width,
		Height:      height,
	}
	if obj != nil {
		asset.Revision = obj.Revision
	}
	s.logger.Info("media.upload.stored", "filename", filename, "content_type", contentType, "size", asset.Size)
	return asset, nil
}
