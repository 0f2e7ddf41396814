package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blogstore"
	"github.com/goliatone/go-blogstore/internal/adapters/memory"
	"github.com/goliatone/go-blogstore/internal/di"
)

type stubModule struct {
	posts  *memory.Backend
	images *memory.Backend
	last   blogstore.Config
}

func withStubModule(t *testing.T) *stubModule {
	t.Helper()
	original := moduleBuilder
	stub := &stubModule{posts: memory.New(), images: memory.New()}

	moduleBuilder = func(cfg blogstore.Config) (*blogstore.Module, error) {
		stub.last = cfg
		return blogstore.New(cfg,
			di.WithBackend(stub.posts),
			di.WithImageBackend(stub.images),
			di.WithLogWriter(io.Discard),
		)
	}
	t.Cleanup(func() {
		moduleBuilder = original
	})
	return stub
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestRunSaveFromFlagsThenList(t *testing.T) {
	withStubModule(t)

	out, err := runCLI(t, "save", "--title", "Managing Stress At Work", "--date", "2024-05-01", "--content", "# Breathe")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "saved managing-stress-at-work.mdx") {
		t.Fatalf("expected derived slug in output, got %q", out)
	}

	out, err = runCLI(t, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "2024-05-01") || !strings.Contains(out, "managing-stress-at-work") {
		t.Fatalf("expected post row in list output, got %q", out)
	}
}

func TestRunSaveFromMDXFile(t *testing.T) {
	stub := withStubModule(t)

	path := filepath.Join(t.TempDir(), "post.mdx")
	doc := "---\ntype: external\ntitle: Sleep study\nslug: sleep-study\ndate: \"2024-02-10\"\nexternalUrl: https://example.com/sleep\n---\nInteresting read.\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := runCLI(t, "save", "--file", path, "--category", "research"); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := runCLI(t, "get", "sleep-study", "--raw")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var record blogstore.Record
	if err := json.Unmarshal([]byte(out), &record); err != nil {
		t.Fatalf("decode get output %q: %v", out, err)
	}
	if record.Type != blogstore.TypeExternal || strings.TrimSpace(record.Commentary) != "Interesting read." {
		t.Fatalf("unexpected record %#v", record)
	}
	if record.Category != "research" {
		t.Fatalf("expected flag to override file, got category %q", record.Category)
	}
	if keys, _ := stub.posts.List(t.Context()); len(keys) != 1 || keys[0] != "sleep-study.mdx" {
		t.Fatalf("unexpected stored keys %v", keys)
	}
}

func TestRunSaveFromYAMLFile(t *testing.T) {
	withStubModule(t)

	path := filepath.Join(t.TempDir(), "post.yaml")
	doc := "type: original\ntitle: Gratitude\nslug: gratitude\ndate: \"2024-03-03\"\ncontent: Say thanks.\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := runCLI(t, "save", "--file", path); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := runCLI(t, "get", "gratitude", "--format", "mdx")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.HasPrefix(out, "---\ntype: original\n") || !strings.Contains(out, "Say thanks.") {
		t.Fatalf("unexpected mdx output %q", out)
	}
}

func TestRunSaveRejectsTypeChange(t *testing.T) {
	withStubModule(t)

	if _, err := runCLI(t, "save", "--title", "Walks", "--slug", "walks", "--date", "2024-01-01", "--content", "Go outside."); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := runCLI(t, "save", "--type", "external", "--title", "Walks", "--slug", "walks", "--date", "2024-01-01", "--external-url", "https://example.com")
	if err == nil {
		t.Fatal("expected changing the post type to fail")
	}

	out, err := runCLI(t, "get", "walks", "--raw")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `"type": "original"`) {
		t.Fatalf("expected stored post to stay original, got %q", out)
	}
}

func TestRunDelete(t *testing.T) {
	withStubModule(t)

	if _, err := runCLI(t, "save", "--title", "Temporary", "--date", "2024-01-01", "--content", "x"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if out, err := runCLI(t, "delete", "temporary"); err != nil || !strings.Contains(out, "deleted temporary.mdx") {
		t.Fatalf("delete: out=%q err=%v", out, err)
	}
	if _, err := runCLI(t, "delete", "temporary"); err == nil {
		t.Fatal("expected deleting a missing post to fail")
	}
}

func TestRunRequiresSecretWhenConfigured(t *testing.T) {
	withStubModule(t)
	t.Setenv("BLOGSTORE_AUTH_ADMIN_SECRET", "hunter2")

	if _, err := runCLI(t, "save", "--title", "Locked", "--date", "2024-01-01", "--content", "x"); err == nil {
		t.Fatal("expected save without a secret to fail")
	}
	if _, err := runCLI(t, "get", "locked"); err == nil {
		t.Fatal("expected rejected save to store nothing")
	}
	if _, err := runCLI(t, "--secret", "hunter2", "save", "--title", "Locked", "--date", "2024-01-01", "--content", "x"); err != nil {
		t.Fatalf("expected save with secret to succeed, got %v", err)
	}
}

func TestRunUploadImagePrintsPublicPath(t *testing.T) {
	stub := withStubModule(t)

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(t.TempDir(), "Cover Photo.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := runCLI(t, "upload-image", path)
	if err != nil {
		t.Fatalf("upload-image: %v", err)
	}
	if !strings.HasPrefix(out, "/images/blog/") || !strings.HasSuffix(strings.TrimSpace(out), ".png") {
		t.Fatalf("unexpected upload output %q", out)
	}
	if keys, _ := stub.images.List(t.Context()); len(keys) != 1 {
		t.Fatalf("expected one stored image, got %v", keys)
	}
}

func TestRunModeFlagOverridesConfig(t *testing.T) {
	stub := withStubModule(t)
	t.Setenv("BLOGSTORE_MODE", "local")

	if _, err := runCLI(t, "--mode", "memory", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if stub.last.Mode != blogstore.ModeMemory {
		t.Fatalf("expected memory mode from flag, got %q", stub.last.Mode)
	}
}

func TestRunReadsConfigFile(t *testing.T) {
	stub := withStubModule(t)

	path := filepath.Join(t.TempDir(), "blogstore.yaml")
	cfg := "mode: github\ngithub:\n  owner: acme\n  repo: site\n  token: secret\n  content_path: posts\n"
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCLI(t, "--config", path, "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if stub.last.Mode != blogstore.ModeGitHub {
		t.Fatalf("expected github mode from file, got %q", stub.last.Mode)
	}
	if stub.last.GitHub.Owner != "acme" || stub.last.GitHub.ContentPath != "posts" {
		t.Fatalf("unexpected github config %#v", stub.last.GitHub)
	}
	if stub.last.GitHub.Branch != "main" {
		t.Fatalf("expected default branch to survive, got %q", stub.last.GitHub.Branch)
	}
}
