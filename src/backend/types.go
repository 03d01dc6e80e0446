package backend

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"n8n-restore/src/errdefs"
)

// Kind identifies a backup backend. The set is closed; adapters live in
// per-kind subpackages.
type Kind string

const (
	KindDrive  Kind = "drive"  // consumer cloud storage (Google Drive folder)
	KindGitHub Kind = "github" // source-hosting repository
)

// ParseKind validates a backend name from a flag or menu selection.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindDrive:
		return KindDrive, nil
	case KindGitHub:
		return KindGitHub, nil
	}
	return "", fmt.Errorf("unsupported backend %q (expected drive or github)", s)
}

// Artifact is one discrete downloadable backup unit discovered by a listing.
type Artifact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Backend   Kind      `json:"backend"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	// Checksum is the hex sha256 of the archive when the backend publishes
	// one; empty means the restore proceeds unverified.
	Checksum string `json:"checksum,omitempty"`
}

// Backend lists and streams backup artifacts. Listings are finite and
// restartable: calling List again re-fetches from the backend.
type Backend interface {
	// List returns every artifact in the configured location, sorted
	// newest first by CreatedAt.
	List(ctx context.Context) ([]Artifact, error)

	// Fetch streams the content of one artifact. Size is -1 when the
	// backend does not report it. The caller closes the reader.
	Fetch(ctx context.Context, id string) (io.ReadCloser, int64, error)
}

// SortNewestFirst orders artifacts by CreatedAt descending, name ascending
// as a tiebreak. Adapters that fetch listing pages concurrently call this
// before returning so page arrival order never leaks to callers.
func SortNewestFirst(arts []Artifact) {
	sort.Slice(arts, func(i, j int) bool {
		if !arts[i].CreatedAt.Equal(arts[j].CreatedAt) {
			return arts[i].CreatedAt.After(arts[j].CreatedAt)
		}
		return arts[i].Name < arts[j].Name
	})
}

// Select resolves a user-supplied selector (artifact ID or display name)
// against a listing. An empty selector picks the newest artifact.
func Select(arts []Artifact, selector string) (Artifact, error) {
	if len(arts) == 0 {
		return Artifact{}, fmt.Errorf("no backups available: %w", errdefs.ErrNotFound)
	}
	if selector == "" {
		return arts[0], nil
	}
	for _, a := range arts {
		if a.ID == selector || a.Name == selector {
			return a, nil
		}
	}
	return Artifact{}, fmt.Errorf("no backup matching %q: %w", selector, errdefs.ErrNotFound)
}
