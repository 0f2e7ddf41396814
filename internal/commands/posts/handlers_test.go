package postscmd

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blogstore/internal/adapters/memory"
	"github.com/goliatone/go-blogstore/internal/logging"
	"github.com/goliatone/go-blogstore/internal/media"
	"github.com/goliatone/go-blogstore/internal/posts"
)

func newStore(t *testing.T) (*memory.Backend, *posts.Store) {
	t.Helper()
	backend := memory.New()
	return backend, posts.NewStore(backend)
}

func originalRecord(slug string) posts.Record {
	return posts.Record{
		Type:    posts.TypeOriginal,
		Title:   "Coping with anxiety",
		Slug:    slug,
		Date:    "2024-03-01",
		Tags:    []string{"anxiety"},
		Content: "# Heading\n\nBody.",
	}
}

func externalRecord(slug string) posts.Record {
	return posts.Record{
		Type:        posts.TypeExternal,
		Title:       "Sleep research roundup",
		Slug:        slug,
		Date:        "2024-04-02",
		ExternalURL: "https://example.com/sleep",
		Commentary:  "Worth a read.",
		SourceName:  "Example Journal",
	}
}

func TestSavePostHandlerCreatesPost(t *testing.T) {
	_, store := newStore(t)
	handler := NewSavePostHandler(store, TrustedGuard{}, logging.NoOp())

	if err := handler.Execute(context.Background(), SavePostCommand{Post: originalRecord("coping")}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	post, ok := store.GetBySlug(context.Background(), "coping", posts.ListOptions{Raw: true})
	if !ok {
		t.Fatal("expected post to be stored")
	}
	if post.Kind() != posts.TypeOriginal || post.Body() != "# Heading\n\nBody." {
		t.Fatalf("unexpected post %#v", post)
	}
}

func TestSavePostHandlerRejectsTypeChange(t *testing.T) {
	_, store := newStore(t)
	handler := NewSavePostHandler(store, TrustedGuard{}, logging.NoOp())
	ctx := context.Background()

	if err := handler.Execute(ctx, SavePostCommand{Post: originalRecord("shared")}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := handler.Execute(ctx, SavePostCommand{Post: externalRecord("shared")})
	if !errors.Is(err, ErrPostTypeImmutable) {
		t.Fatalf("expected ErrPostTypeImmutable, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	post, _ := store.GetBySlug(ctx, "shared", posts.ListOptions{Raw: true})
	if post.Kind() != posts.TypeOriginal {
		t.Fatalf("expected stored type to stay original, got %s", post.Kind())
	}
}

func TestSavePostHandlerAllowsSameTypeUpdate(t *testing.T) {
	backend, store := newStore(t)
	handler := NewSavePostHandler(store, TrustedGuard{}, logging.NoOp())
	ctx := context.Background()

	record := externalRecord("roundup")
	if err := handler.Execute(ctx, SavePostCommand{Post: record}); err != nil {
		t.Fatalf("create: %v", err)
	}
	record.Title = "Sleep research roundup, revised"
	if err := handler.Execute(ctx, SavePostCommand{Post: record}); err != nil {
		t.Fatalf("update: %v", err)
	}

	keys, _ := backend.List(ctx)
	if len(keys) != 1 {
		t.Fatalf("expected a single document, got %v", keys)
	}
	post, _ := store.GetBySlug(ctx, "roundup", posts.ListOptions{Raw: true})
	if post.Meta().Title != "Sleep research roundup, revised" {
		t.Fatalf("unexpected title %q", post.Meta().Title)
	}
}

func TestHandlersRejectNonAdmins(t *testing.T) {
	backend, store := newStore(t)
	guard := NewStaticSecretGuard("s3cret")
	ctx := WithAdminSecret(context.Background(), "wrong")

	save := NewSavePostHandler(store, guard, logging.NoOp())
	err := save.Execute(ctx, SavePostCommand{Post: originalRecord("nope")})
	if !errors.Is(err, ErrUnauthorized) || !goerrors.IsCategory(err, goerrors.CategoryAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}

	del := NewDeletePostHandler(store, nil, logging.NoOp())
	if err := del.Execute(context.Background(), DeletePostCommand{Slug: "nope"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected nil guard to reject, got %v", err)
	}

	keys, _ := backend.List(context.Background())
	if len(keys) != 0 {
		t.Fatalf("expected nothing written, got %v", keys)
	}
}

func TestSavePostHandlerValidation(t *testing.T) {
	_, store := newStore(t)
	handler := NewSavePostHandler(store, TrustedGuard{}, logging.NoOp())

	cases := map[string]func(*posts.Record){
		"missing title":    func(r *posts.Record) { r.Title = "" },
		"blank title":      func(r *posts.Record) { r.Title = "   " },
		"bad slug":         func(r *posts.Record) { r.Slug = "Not A Slug" },
		"path slug":        func(r *posts.Record) { r.Slug = "../etc" },
		"bad date":         func(r *posts.Record) { r.Date = "03/01/2024" },
		"unknown type":     func(r *posts.Record) { r.Type = "draft" },
		"external no url":  func(r *posts.Record) { r.Type = posts.TypeExternal },
		"external bad url": func(r *posts.Record) { r.Type = posts.TypeExternal; r.ExternalURL = "not a url" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			record := originalRecord("valid-slug")
			mutate(&record)
			err := handler.Execute(context.Background(), SavePostCommand{Post: record})
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDeletePostHandler(t *testing.T) {
	_, store := newStore(t)
	save := NewSavePostHandler(store, TrustedGuard{}, logging.NoOp())
	del := NewDeletePostHandler(store, TrustedGuard{}, logging.NoOp())
	ctx := context.Background()

	if err := save.Execute(ctx, SavePostCommand{Post: externalRecord("gone")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := del.Execute(ctx, DeletePostCommand{Slug: "gone"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.GetBySlug(ctx, "gone", posts.ListOptions{}); ok {
		t.Fatal("expected post to be gone")
	}

	err := del.Execute(ctx, DeletePostCommand{Slug: "gone"})
	if !posts.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestUploadImageHandlerReportsAsset(t *testing.T) {
	svc := media.NewService(memory.New())
	handler := NewUploadImageHandler(svc, TrustedGuard{}, logging.NoOp())

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var stored *media.Asset
	err := handler.Execute(context.Background(), UploadImageCommand{
		Data:     buf.Bytes(),
		Filename: "hero.png",
		OnStored: func(asset *media.Asset) { stored = asset },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stored == nil || stored.Path != "/images/blog/hero.png" {
		t.Fatalf("unexpected asset %+v", stored)
	}

	err = handler.Execute(context.Background(), UploadImageCommand{Filename: "empty.png"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty upload, got %v", err)
	}
}

func TestStaticSecretGuard(t *testing.T) {
	guard := NewStaticSecretGuard("s3cret")
	if !guard.IsAdmin(WithAdminSecret(context.Background(), "s3cret")) {
		t.Fatal("expected matching secret to be admin")
	}
	if guard.IsAdmin(context.Background()) {
		t.Fatal("expected missing secret to be rejected")
	}
	if NewStaticSecretGuard("").IsAdmin(WithAdminSecret(context.Background(), "")) {
		t.Fatal("expected empty configured secret to reject everyone")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegisterPostCommands(t *testing.T) {
	_, store := newStore(t)
	reg := &recordingRegistry{}

	set, err := RegisterPostCommands(reg, store, media.NewService(memory.New()), TrustedGuard{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.handlers) != 3 || len(set.All()) != 3 {
		t.Fatalf("expected 3 handlers, got %d", len(reg.handlers))
	}

	set, err = RegisterPostCommands(nil, store, nil, TrustedGuard{}, nil)
	if err != nil {
		t.Fatalf("register without uploader: %v", err)
	}
	if set.Upload != nil {
		t.Fatal("expected no upload handler without an uploader")
	}

	if _, err := RegisterPostCommands(nil, nil, nil, nil, nil); err == nil || !strings.Contains(err.Error(), "store is nil") {
		t.Fatalf("expected store error, got %v", err)
	}
}
