package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"github.com/goliatone/go-blogstore/pkg/storage"
)

// File is a single repository file as returned by the Contents API.
type File struct {
	Path    string
	Content []byte
	SHA     string
}

// RepositoryClient is the slice of a hosted version-control API the backend
// needs. Missing files are reported as storage.ErrNotFound and stale SHAs as
// storage.ErrConflict.
type RepositoryClient interface {
	GetFile(ctx context.Context, path string) (*File, error)
	// ListDirectory returns the names of the files directly under path.
	ListDirectory(ctx context.Context, path string) ([]string, error)
	// PutFile creates the file when sha is empty and updates it otherwise.
	PutFile(ctx context.Context, path string, content []byte, message, sha string) (*File, error)
	DeleteFile(ctx context.Context, path, message, sha string) error
}

// Committer identifies the author recorded on commits.
type Committer struct {
	Name  string
	Email string
}

// ContentsConfig selects the repository and branch the client works against.
type ContentsConfig struct {
	Owner     string
	Repo      string
	Branch    string
	Committer *Committer
}

// ContentsClient implements RepositoryClient with the GitHub Contents API.
type ContentsClient struct {
	repos *gh.RepositoriesService
	cfg   ContentsConfig
}

var _ RepositoryClient = (*ContentsClient)(nil)

// NewContentsClient wraps client. Owner and Repo are required.
func NewContentsClient(client *gh.Client, cfg ContentsConfig) (*ContentsClient, error) {
	if client == nil {
		return nil, errors.New("github client: client is required")
	}
	if strings.TrimSpace(cfg.Owner) == "" || strings.TrimSpace(cfg.Repo) == "" {
		return nil, errors.New("github client: owner and repo are required")
	}
	return &ContentsClient{repos: client.Repositories, cfg: cfg}, nil
}

func (c *ContentsClient) GetFile(ctx context.Context, path string) (*File, error) {
	file, dir, resp, err := c.repos.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path, c.getOptions())
	if err != nil {
		return nil, mapError(resp, err, "get "+path)
	}
	if file == nil {
		if dir != nil {
			return nil, fmt.Errorf("github client: %s is a directory", path)
		}
		return nil, storage.ErrNotFound
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github client: decode %s: %w", path, err)
	}
	return &File{Path: file.GetPath(), Content: []byte(content), SHA: file.GetSHA()}, nil
}

// ListDirectory treats a missing directory as empty.
func (c *ContentsClient) ListDirectory(ctx context.Context, path string) ([]string, error) {
	_, dir, resp, err := c.repos.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path, c.getOptions())
	if err != nil {
		mapped := mapError(resp, err, "list "+path)
		if errors.Is(mapped, storage.ErrNotFound) {
			return []string{}, nil
		}
		return nil, mapped
	}
	names := make([]string, 0, len(dir))
	for _, entry := range dir {
		if entry.GetType() == "file" {
			names = append(names, entry.GetName())
		}
	}
	return names, nil
}

func (c *ContentsClient) PutFile(ctx context.Context, path string, content []byte, message, sha string) (*File, error) {
	opts := c.fileOptions(message, sha)
	opts.Content = content

	var (
		result *gh.RepositoryContentResponse
		resp   *gh.Response
		err    error
	)
	if sha == "" {
		result, resp, err = c.repos.CreateFile(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	} else {
		result, resp, err = c.repos.UpdateFile(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	}
	if err != nil {
		return nil, mapError(resp, err, "put "+path)
	}

	out := &File{Path: path, Content: content}
	if result != nil && result.Content != nil {
		out.SHA = result.Content.GetSHA()
	}
	return out, nil
}

func (c *ContentsClient) DeleteFile(ctx context.Context, path, message, sha string) error {
	_, resp, err := c.repos.DeleteFile(ctx, c.cfg.Owner, c.cfg.Repo, path, c.fileOptions(message, sha))
	if err != nil {
		return mapError(resp, err, "delete "+path)
	}
	return nil
}

func (c *ContentsClient) getOptions() *gh.RepositoryContentGetOptions {
	if c.cfg.Branch == "" {
		return nil
	}
	return &gh.RepositoryContentGetOptions{Ref: c.cfg.Branch}
}

func (c *ContentsClient) fileOptions(message, sha string) *gh.RepositoryContentFileOptions {
	opts := &gh.RepositoryContentFileOptions{Message: gh.String(message)}
	if sha != "" {
		opts.SHA = gh.String(sha)
	}
	if c.cfg.Branch != "" {
		opts.Branch = gh.String(c.cfg.Branch)
	}
	if committer := c.cfg.Committer; committer != nil && committer.Name != "" && committer.Email != "" {
		opts.Committer = &gh.CommitAuthor{Name: gh.String(committer.Name), Email: gh.String(committer.Email)}
	}
	return opts
}

// mapError turns HTTP statuses into storage sentinels. GitHub answers a
// stale SHA with 409 and a create over an existing file with 422.
func mapError(resp *gh.Response, err error, op string) error {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	var apiErr *gh.ErrorResponse
	if status == 0 && errors.As(err, &apiErr) && apiErr.Response != nil {
		status = apiErr.Response.StatusCode
	}

	switch status {
	case http.StatusNotFound:
		return storage.ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("github client: %s: %w: %v", op, storage.ErrConflict, err)
	default:
		return fmt.Errorf("github client: %s: %w", op, err)
	}
}
