package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"n8n-restore/src/backend"
	"n8n-restore/src/credential"
	"n8n-restore/src/errdefs"
)

const defaultBaseURL = "https://api.github.com"

// Config identifies the repository holding backup archives. BaseURL exists
// so tests can point the adapter at an httptest server.
type Config struct {
	Token  credential.Token
	Repo   string // owner/name
	Branch string
	// Dir is the path within the repository that holds archives; empty
	// means the repository root.
	Dir     string
	BaseURL string
	// Timeout bounds each API request and the longest stall the fetch
	// stream tolerates between chunks.
	Timeout time.Duration
	// Concurrency bounds the parallel per-file commit-date lookups during
	// List. Listing order is independent of it: results are re-sorted by
	// creation time before return.
	Concurrency int
}

// Backend lists and downloads backup archives from a fixed repository and
// branch via the REST contents API.
type Backend struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) (*Backend, error) {
	if cfg.Repo == "" || !strings.Contains(cfg.Repo, "/") {
		return nil, fmt.Errorf("github: repository must be owner/name, got %q", cfg.Repo)
	}
	if cfg.Token.Value == "" {
		return nil, fmt.Errorf("github: %w", errdefs.ErrMissingCredential)
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Backend{cfg: cfg, client: &http.Client{}}, nil
}

type contentEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type commitEntry struct {
	Commit struct {
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// List enumerates archive files in the configured directory, then looks up
// each file's last commit date with bounded concurrent requests.
func (b *Backend) List(ctx context.Context) ([]backend.Artifact, error) {
	entries, err := b.listDir(ctx)
	if err != nil {
		return nil, err
	}

	arts := make([]backend.Artifact, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			created, err := b.lastCommitDate(gctx, e.Path)
			if err != nil {
				return err
			}
			arts[i] = backend.Artifact{
				ID:        e.Path,
				Name:      e.Name,
				Backend:   backend.KindGitHub,
				Size:      e.Size,
				CreatedAt: created,
				// The contents API publishes no archive checksum
				// (the blob SHA covers the git object, not the
				// file bytes), so these restores run unverified.
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	backend.SortNewestFirst(arts)
	return arts, nil
}

func (b *Backend) listDir(ctx context.Context) ([]contentEntry, error) {
	var raw []contentEntry
	if err := b.getJSON(ctx, b.contentsURL(b.cfg.Dir), "", &raw); err != nil {
		return nil, err
	}
	var entries []contentEntry
	for _, e := range raw {
		if e.Type != "file" {
			continue
		}
		if !strings.HasSuffix(e.Name, ".tar.gz") && !strings.HasSuffix(e.Name, ".tgz") {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *Backend) lastCommitDate(ctx context.Context, path string) (time.Time, error) {
	q := url.Values{}
	q.Set("path", path)
	q.Set("sha", b.cfg.Branch)
	q.Set("per_page", "1")
	u := fmt.Sprintf("%s/repos/%s/commits?%s", b.cfg.BaseURL, b.cfg.Repo, q.Encode())
	var commits []commitEntry
	if err := b.getJSON(ctx, u, "", &commits); err != nil {
		return time.Time{}, err
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("github: no commits touch %s on %s: %w", path, b.cfg.Branch, errdefs.ErrNotFound)
	}
	return commits[0].Commit.Committer.Date, nil
}

// Fetch streams one archive. The artifact ID is its repository path; the
// raw media type makes the contents endpoint return file bytes directly.
// The stream is stall-guarded: a remote that stops sending fails the read
// with ErrTimeout rather than blocking forever.
func (b *Backend) Fetch(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := b.newRequest(ctx, b.contentsURL(id), "application/vnd.github.raw")
	if err != nil {
		cancel()
		return nil, 0, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		cancel()
		return nil, 0, netErr("github: fetch "+id, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, 0, statusErr("github: fetch "+id, resp.StatusCode)
	}
	return backend.GuardStall(resp.Body, cancel, b.cfg.Timeout), resp.ContentLength, nil
}

func (b *Backend) contentsURL(path string) string {
	u := fmt.Sprintf("%s/repos/%s/contents", b.cfg.BaseURL, b.cfg.Repo)
	if path != "" {
		for _, seg := range strings.Split(path, "/") {
			u += "/" + url.PathEscape(seg)
		}
	}
	return u + "?ref=" + url.QueryEscape(b.cfg.Branch)
}

func (b *Backend) newRequest(ctx context.Context, u, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+b.cfg.Token.Value)
	if accept == "" {
		accept = "application/vnd.github+json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return req, nil
}

func (b *Backend) getJSON(ctx context.Context, u, accept string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()
	req, err := b.newRequest(ctx, u, accept)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return netErr("github: "+u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusErr("github: "+u, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decode response: %w", err)
	}
	return nil
}

func statusErr(op string, code int) error {
	switch code {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: HTTP %d: %w", op, code, errdefs.ErrAuth)
	default:
		return fmt.Errorf("%s: HTTP %d: %w", op, code, errdefs.ErrTransientNetwork)
	}
}

func netErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, errdefs.ErrTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, context.Canceled)
	}
	return fmt.Errorf("%s: %v: %w", op, err, errdefs.ErrTransientNetwork)
}
