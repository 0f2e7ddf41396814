package github

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	gh "github.com/google/go-github/v66/github"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

type commit struct {
	method  string
	path    string
	message string
	branch  string
	author  string
}

// contentsServer emulates the subset of the Contents API used by ContentsClient.
type contentsServer struct {
	mu      sync.Mutex
	files   map[string][]byte
	commits []commit
}

func newContentsServer(t *testing.T) (*contentsServer, *gh.Client) {
	t.Helper()
	state := &contentsServer{files: map[string][]byte{}}
	server := httptest.NewServer(http.HandlerFunc(state.serve))
	t.Cleanup(server.Close)

	client := gh.NewClient(nil).WithAuthToken("test-token")
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	client.BaseURL = base
	return state, client
}

func blobSHA(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (s *contentsServer) seed(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
}

func (s *contentsServer) serve(w http.ResponseWriter, r *http.Request) {
	const prefix = "/repos/acme/site/contents/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	path := strings.TrimPrefix(r.URL.Path, prefix)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		s.get(w, path)
	case http.MethodPut:
		s.put(w, r, path)
	case http.MethodDelete:
		s.delete(w, r, path)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method"})
	}
}

func (s *contentsServer) get(w http.ResponseWriter, path string) {
	if data, ok := s.files[path]; ok {
		writeJSON(w, http.StatusOK, fileJSON(path, data, true))
		return
	}

	var entries []map[string]any
	for name, data := range s.files {
		rest, ok := strings.CutPrefix(name, path+"/")
		if !ok {
			continue
		}
		if head, _, nested := strings.Cut(rest, "/"); nested {
			entries = append(entries, map[string]any{"type": "dir", "name": head, "path": path + "/" + head})
			continue
		}
		entries = append(entries, fileJSON(name, data, false))
	}
	if entries == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i]["path"].(string) < entries[j]["path"].(string) })
	writeJSON(w, http.StatusOK, entries)
}

type fileRequest struct {
	Message   string  `json:"message"`
	Content   []byte  `json:"content"`
	SHA       *string `json:"sha"`
	Branch    string  `json:"branch"`
	Committer *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"committer"`
}

func (r fileRequest) author() string {
	if r.Committer == nil {
		return ""
	}
	return r.Committer.Name + " <" + r.Committer.Email + ">"
}

func (s *contentsServer) put(w http.ResponseWriter, r *http.Request, path string) {
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	current, exists := s.files[path]
	switch {
	case exists && req.SHA == nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": `"sha" wasn't supplied.`})
		return
	case exists && *req.SHA != blobSHA(current):
		writeJSON(w, http.StatusConflict, map[string]string{"message": "sha does not match"})
		return
	case !exists && req.SHA != nil:
		writeJSON(w, http.StatusConflict, map[string]string{"message": "sha does not match"})
		return
	}

	s.files[path] = req.Content
	s.commits = append(s.commits, commit{method: http.MethodPut, path: path, message: req.Message, branch: req.Branch, author: req.author()})
	status := http.StatusCreated
	if exists {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"content": fileJSON(path, req.Content, false),
		"commit":  map[string]any{"message": req.Message},
	})
}

func (s *contentsServer) delete(w http.ResponseWriter, r *http.Request, path string) {
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	current, exists := s.files[path]
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	if req.SHA == nil || *req.SHA != blobSHA(current) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "sha does not match"})
		return
	}
	delete(s.files, path)
	s.commits = append(s.commits, commit{method: http.MethodDelete, path: path, message: req.Message, branch: req.Branch})
	writeJSON(w, http.StatusOK, map[string]any{"commit": map[string]any{"message": req.Message}})
}

func fileJSON(path string, data []byte, withContent bool) map[string]any {
	name := path[strings.LastIndex(path, "/")+1:]
	out := map[string]any{
		"type": "file",
		"name": name,
		"path": path,
		"sha":  blobSHA(data),
		"size": len(data),
	}
	if withContent {
		out["encoding"] = "base64"
		out["content"] = base64.StdEncoding.EncodeToString(data)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestContentsClient(t *testing.T) (*contentsServer, *ContentsClient) {
	t.Helper()
	state, client := newContentsServer(t)
	contents, err := NewContentsClient(client, ContentsConfig{Owner: "acme", Repo: "site", Branch: "main"})
	if err != nil {
		t.Fatalf("new contents client: %v", err)
	}
	return state, contents
}

func TestContentsClientGetFile(t *testing.T) {
	state, client := newTestContentsClient(t)
	state.seed("content/blog/hello.mdx", []byte("---\ntitle: Hello\n---\nbody\n"))

	file, err := client.GetFile(context.Background(), "content/blog/hello.mdx")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if string(file.Content) != "---\ntitle: Hello\n---\nbody\n" {
		t.Fatalf("unexpected content %q", file.Content)
	}
	if file.SHA != blobSHA(file.Content) {
		t.Fatalf("unexpected sha %q", file.SHA)
	}

	if _, err := client.GetFile(context.Background(), "content/blog/missing.mdx"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContentsClientListDirectoryKeepsFilesOnly(t *testing.T) {
	state, client := newTestContentsClient(t)
	state.seed("content/blog/a.mdx", []byte("a"))
	state.seed("content/blog/b.mdx", []byte("b"))
	state.seed("content/blog/drafts/c.mdx", []byte("c"))

	names, err := client.ListDirectory(context.Background(), "content/blog")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Join(names, ",") != "a.mdx,b.mdx" {
		t.Fatalf("unexpected names %v", names)
	}

	empty, err := client.ListDirectory(context.Background(), "content/missing")
	if err != nil {
		t.Fatalf("list missing: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty listing, got %v", empty)
	}
}

func TestContentsClientPutCreatesThenUpdates(t *testing.T) {
	state, client := newTestContentsClient(t)
	ctx := context.Background()

	created, err := client.PutFile(ctx, "content/blog/a.mdx", []byte("v1"), "Create blog post: a", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.SHA != blobSHA([]byte("v1")) {
		t.Fatalf("unexpected sha %q", created.SHA)
	}

	if _, err := client.PutFile(ctx, "content/blog/a.mdx", []byte("v2"), "Update blog post: a", created.SHA); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(state.commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(state.commits))
	}
	if state.commits[0].message != "Create blog post: a" || state.commits[1].message != "Update blog post: a" {
		t.Fatalf("unexpected commit messages %+v", state.commits)
	}
	if state.commits[1].branch != "main" {
		t.Fatalf("expected branch main, got %q", state.commits[1].branch)
	}
	if string(state.files["content/blog/a.mdx"]) != "v2" {
		t.Fatalf("unexpected stored content %q", state.files["content/blog/a.mdx"])
	}
}

func TestContentsClientSendsCommitterOnWrites(t *testing.T) {
	state, client := newContentsServer(t)
	contents, err := NewContentsClient(client, ContentsConfig{
		Owner:     "acme",
		Repo:      "site",
		Branch:    "publish",
		Committer: &Committer{Name: "Blog Admin", Email: "admin@example.com"},
	})
	if err != nil {
		t.Fatalf("new contents client: %v", err)
	}

	if _, err := contents.PutFile(context.Background(), "content/blog/a.mdx", []byte("v1"), "Create blog post: a", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(state.commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(state.commits))
	}
	got := state.commits[0]
	if got.message != "Create blog post: a" || got.branch != "publish" {
		t.Fatalf("unexpected commit %+v", got)
	}
	if got.author != "Blog Admin <admin@example.com>" {
		t.Fatalf("expected committer to be sent, got %q", got.author)
	}
}

func TestContentsClientStaleSHAConflicts(t *testing.T) {
	state, client := newTestContentsClient(t)
	state.seed("content/blog/a.mdx", []byte("v1"))

	_, err := client.PutFile(context.Background(), "content/blog/a.mdx", []byte("v2"), "Update", blobSHA([]byte("old")))
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale sha, got %v", err)
	}

	_, err = client.PutFile(context.Background(), "content/blog/a.mdx", []byte("v2"), "Create", "")
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict when creating over existing file, got %v", err)
	}
}

func TestContentsClientDeleteFile(t *testing.T) {
	state, client := newTestContentsClient(t)
	state.seed("content/blog/a.mdx", []byte("v1"))

	if err := client.DeleteFile(context.Background(), "content/blog/a.mdx", "Delete blog post: a", blobSHA([]byte("v1"))); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := state.files["content/blog/a.mdx"]; ok {
		t.Fatal("expected file to be removed")
	}

	err := client.DeleteFile(context.Background(), "content/blog/a.mdx", "Delete blog post: a", blobSHA([]byte("v1")))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewContentsClientValidatesConfig(t *testing.T) {
	if _, err := NewContentsClient(nil, ContentsConfig{Owner: "a", Repo: "b"}); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewContentsClient(gh.NewClient(nil), ContentsConfig{Owner: "a"}); err == nil {
		t.Fatal("expected error for missing repo")
	}
}
