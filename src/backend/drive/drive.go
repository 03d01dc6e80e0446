package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"n8n-restore/src/backend"
	"n8n-restore/src/credential"
	"n8n-restore/src/errdefs"
)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// Config carries everything the adapter needs. BaseURL and TokenURL exist
// so tests can point the adapter at an httptest server.
type Config struct {
	Credential credential.OAuth
	FolderID   string
	BaseURL    string
	TokenURL   string
	PageSize   int
	// Timeout bounds each listing request and the longest stall the
	// fetch stream tolerates between chunks. A download may take as long
	// as it keeps moving.
	Timeout time.Duration
	// HTTPClient overrides the OAuth-authenticated client in tests.
	HTTPClient *http.Client
}

// Backend lists and downloads backup archives from a fixed Drive folder.
type Backend struct {
	cfg    Config
	client *http.Client
}

// New validates the config and builds the bearer-token HTTP client.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.FolderID == "" {
		return nil, errors.New("drive: folder id must not be empty")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		var err error
		client, err = cfg.Credential.Client(ctx, cfg.TokenURL)
		if err != nil {
			return nil, err
		}
	}
	return &Backend{cfg: cfg, client: client}, nil
}

type fileResource struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Size           string `json:"size"`
	CreatedTime    string `json:"createdTime"`
	Sha256Checksum string `json:"sha256Checksum"`
}

type fileList struct {
	NextPageToken string         `json:"nextPageToken"`
	Files         []fileResource `json:"files"`
}

// List pages through the folder. Pages are token-chained so they arrive
// serially; the merged result is re-sorted by creation time regardless.
func (b *Backend) List(ctx context.Context) ([]backend.Artifact, error) {
	var arts []backend.Artifact
	pageToken := ""
	for {
		page, err := b.listPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		for _, f := range page.Files {
			art, err := toArtifact(f)
			if err != nil {
				return nil, err
			}
			arts = append(arts, art)
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	backend.SortNewestFirst(arts)
	return arts, nil
}

func (b *Backend) listPage(ctx context.Context, pageToken string) (*fileList, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", b.cfg.FolderID))
	q.Set("fields", "nextPageToken,files(id,name,size,createdTime,sha256Checksum)")
	q.Set("pageSize", strconv.Itoa(b.cfg.PageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.BaseURL+"/files?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, netErr("drive: list files", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusErr("drive: list files", resp.StatusCode)
	}
	var page fileList
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("drive: decode listing: %w", err)
	}
	return &page, nil
}

func toArtifact(f fileResource) (backend.Artifact, error) {
	var size int64
	if f.Size != "" {
		var err error
		if size, err = strconv.ParseInt(f.Size, 10, 64); err != nil {
			return backend.Artifact{}, fmt.Errorf("drive: file %s has bad size %q: %w", f.ID, f.Size, err)
		}
	}
	created, err := time.Parse(time.RFC3339, f.CreatedTime)
	if err != nil {
		return backend.Artifact{}, fmt.Errorf("drive: file %s has bad createdTime %q: %w", f.ID, f.CreatedTime, err)
	}
	return backend.Artifact{
		ID:        f.ID,
		Name:      f.Name,
		Backend:   backend.KindDrive,
		Size:      size,
		CreatedAt: created,
		Checksum:  f.Sha256Checksum,
	}, nil
}

// Fetch streams one archive via alt=media. The stream is single-attempt
// and stall-guarded: a remote that stops sending fails the read with
// ErrTimeout rather than blocking forever, and a broken connection
// surfaces as a read error, never as silent truncation, because the
// caller compares bytes read against the reported size.
func (b *Backend) Fetch(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/files/%s?alt=media", b.cfg.BaseURL, url.PathEscape(id)), nil)
	if err != nil {
		cancel()
		return nil, 0, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		cancel()
		return nil, 0, netErr("drive: fetch "+id, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, 0, statusErr("drive: fetch "+id, resp.StatusCode)
	}
	return backend.GuardStall(resp.Body, cancel, b.cfg.Timeout), resp.ContentLength, nil
}

func statusErr(op string, code int) error {
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
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
	// The oauth2 transport surfaces token-exchange failures through Do.
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%s: token exchange rejected: %w", op, errdefs.ErrAuth)
	}
	return fmt.Errorf("%s: %v: %w", op, err, errdefs.ErrTransientNetwork)
}
