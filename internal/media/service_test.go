package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blogstore/internal/adapters/memory"
	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/pkg/interfaces"
	"github.com/goliatone/go-blogstore/pkg/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func fixedService(backend storage.Backend, opts ...media.ServiceOption) *media.Service {
	base := []media.ServiceOption{
		media.WithClock(func() time.Time { return time.UnixMilli(1700000000123) }),
		media.WithIDGenerator(func() string { return "0c4f1f9e-7d6b-4b8e-9d4c-1a2b3c4d5e6f" }),
	}
	return media.NewService(backend, append(base, opts...)...)
}

func TestUploadGeneratesFilenameWhenMissing(t *testing.T) {
	backend := memory.New()
	svc := fixedService(backend)

	asset, err := svc.Upload(context.Background(), media.UploadInput{Data: pngBytes(t, 3, 2)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	want := "1700000000123-0c4f1f9e-7d6b-4b8e-9d4c-1a2b3c4d5e6f.png"
	if asset.Filename != want {
		t.Fatalf("expected filename %q, got %q", want, asset.Filename)
	}
	if asset.Path != "/images/blog/"+want {
		t.Fatalf("unexpected path %q", asset.Path)
	}
	if asset.ContentType != "image/png" || asset.Width != 3 || asset.Height != 2 {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if _, err := backend.Read(context.Background(), want); err != nil {
		t.Fatalf("expected image in backend: %v", err)
	}
}

func TestUploadKeepsSanitizedFilename(t *testing.T) {
	backend := memory.New()
	svc := fixedService(backend, media.WithPublicPrefix("/static/img/"))

	asset, err := svc.Upload(context.Background(), media.UploadInput{
		Data:     pngBytes(t, 1, 1),
		Filename: "../../uploads/hero.PNG",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.Filename != "hero.png" {
		t.Fatalf("expected hero.png, got %q", asset.Filename)
	}
	if asset.Path != "/static/img/hero.png" {
		t.Fatalf("unexpected path %q", asset.Path)
	}
}

func TestUploadCorrectsMismatchedExtension(t *testing.T) {
	svc := fixedService(memory.New())

	asset, err := svc.Upload(context.Background(), media.UploadInput{
		Data:     pngBytes(t, 1, 1),
		Filename: "cover.jpg",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.Filename != "cover.png" {
		t.Fatalf("expected extension to follow the detected type, got %q", asset.Filename)
	}
}

func TestUploadRejectsInvalidPayloads(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: media.ErrEmptyUpload},
		{name: "text", data: []byte("hello, not an image"), want: media.ErrUnsupportedType},
		{name: "truncated png", data: []byte("\x89PNG\r\n\x1a\n\x00\x00"), want: media.ErrCorruptImage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			backend := memory.New()
			svc := fixedService(backend)

			_, err := svc.Upload(context.Background(), media.UploadInput{Data: tc.data, Filename: "x.png"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
			keys, _ := backend.List(context.Background())
			if len(keys) != 0 {
				t.Fatalf("expected nothing stored, got %v", keys)
			}
		})
	}
}

type recordingBackend struct {
	storage.Backend
	messages []string
	err      error
}

func (r *recordingBackend) Write(ctx context.Context, key string, data []byte, opts storage.WriteOptions) (*storage.Object, error) {
	r.messages = append(r.messages, opts.Message)
	if r.err != nil {
		return nil, r.err
	}
	return r.Backend.Write(ctx, key, data, opts)
}

func TestUploadUsesCommitMessage(t *testing.T) {
	backend := &recordingBackend{Backend: memory.New()}
	svc := fixedService(backend)

	if _, err := svc.Upload(context.Background(), media.UploadInput{Data: pngBytes(t, 1, 1), Filename: "hero.png"}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(backend.messages) != 1 || backend.messages[0] != "Upload image: hero.png" {
		t.Fatalf("unexpected messages %v", backend.messages)
	}
}

func TestSaveImageReportsFailure(t *testing.T) {
	rec := &recordingLogger{}
	backend := &recordingBackend{Backend: memory.New(), err: errors.New("network down")}
	svc := fixedService(backend, media.WithLogger(rec))

	path, ok := svc.SaveImage(context.Background(), pngBytes(t, 1, 1), "hero.png")
	if ok || path != "" {
		t.Fatalf("expected failure, got %q %v", path, ok)
	}
	if len(rec.errors) != 1 || rec.errors[0] != "media.upload.failed" {
		t.Fatalf("expected failure to be logged, got %v", rec.errors)
	}

	_, err := svc.Upload(context.Background(), media.UploadInput{Data: pngBytes(t, 1, 1)})
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
}

func TestSaveImageReturnsPublicPath(t *testing.T) {
	svc := fixedService(memory.New())

	path, ok := svc.SaveImage(context.Background(), pngBytes(t, 1, 1), "Team Photo.png")
	if !ok {
		t.Fatal("expected SaveImage to succeed")
	}
	if !strings.HasPrefix(path, "/images/blog/") || !strings.HasSuffix(path, ".png") {
		t.Fatalf("unexpected path %q", path)
	}
	if strings.Contains(path, " ") {
		t.Fatalf("expected sanitized filename, got %q", path)
	}
}

type recordingLogger struct {
	errors []string
}

func (r *recordingLogger) Trace(string, ...any)       {}
func (r *recordingLogger) Debug(string, ...any)       {}
func (r *recordingLogger) Info(string, ...any)        {}
func (r *recordingLogger) Warn(string, ...any)        {}
func (r *recordingLogger) Error(msg string, _ ...any) { r.errors = append(r.errors, msg) }
func (r *recordingLogger) Fatal(string, ...any)       {}
func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}
