package github

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"n8n-restore/src/backend"
	"n8n-restore/src/credential"
	"n8n-restore/src/errdefs"
)

func newTestBackend(t *testing.T, handler http.Handler, concurrency int) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	b, err := New(Config{
		Token:       credential.Token{Value: "tok"},
		Repo:        "acme/server-backups",
		Branch:      "main",
		Dir:         "backups",
		BaseURL:     srv.URL,
		Concurrency: concurrency,
	})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	return b
}

func backupsMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/server-backups/contents/backups", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("ref = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"name":"old.tar.gz","path":"backups/old.tar.gz","type":"file","size":10},
			{"name":"new.tar.gz","path":"backups/new.tar.gz","type":"file","size":20},
			{"name":"notes.txt","path":"backups/notes.txt","type":"file","size":1},
			{"name":"subdir","path":"backups/subdir","type":"dir","size":0}
		]`)
	})
	mux.HandleFunc("/repos/acme/server-backups/commits", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		date := "2024-01-01T00:00:00Z"
		if r.URL.Query().Get("path") == "backups/new.tar.gz" {
			date = "2025-02-03T04:05:06Z"
		}
		io.WriteString(w, `[{"commit":{"committer":{"date":"`+date+`"}}}]`)
	})
	return mux
}

func TestList_FiltersAndSortsByCommitDate(t *testing.T) {
	// Same listing regardless of lookup concurrency.
	for _, concurrency := range []int{1, 4} {
		b := newTestBackend(t, backupsMux(t), concurrency)
		arts, err := b.List(context.Background())
		if err != nil {
			t.Fatalf("concurrency %d: list: %v", concurrency, err)
		}
		if len(arts) != 2 {
			t.Fatalf("concurrency %d: got %d artifacts, want 2", concurrency, len(arts))
		}
		if arts[0].ID != "backups/new.tar.gz" || arts[1].ID != "backups/old.tar.gz" {
			t.Fatalf("concurrency %d: order = %s, %s", concurrency, arts[0].ID, arts[1].ID)
		}
		if arts[0].Backend != backend.KindGitHub {
			t.Fatalf("backend kind = %s", arts[0].Backend)
		}
		if arts[0].Checksum != "" {
			t.Fatalf("github artifacts must be unverified, got checksum %q", arts[0].Checksum)
		}
	}
}

func TestFetch_RawContent(t *testing.T) {
	mux := backupsMux(t)
	mux.HandleFunc("/repos/acme/server-backups/contents/backups/new.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github.raw" {
			t.Errorf("Accept = %q", got)
		}
		io.WriteString(w, "tarball-bytes")
	})
	b := newTestBackend(t, mux, 2)

	rc, _, err := b.Fetch(context.Background(), "backups/new.tar.gz")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "tarball-bytes" {
		t.Fatalf("body = %q", body)
	}
}

func TestFetch_StalledStreamTimesOut(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/server-backups/contents/backups/slow.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		io.WriteString(w, "partial")
		w.(http.Flusher).Flush()
		<-release
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	b, err := New(Config{
		Token:   credential.Token{Value: "tok"},
		Repo:    "acme/server-backups",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	rc, _, err := b.Fetch(context.Background(), "backups/slow.tar.gz")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer rc.Close()
	if _, err := io.ReadAll(rc); !errors.Is(err, errdefs.ErrTimeout) {
		t.Fatalf("read err = %v, want ErrTimeout", err)
	}
}

func TestFetch_NotFound(t *testing.T) {
	b := newTestBackend(t, http.NewServeMux(), 2)
	_, _, err := b.Fetch(context.Background(), "backups/gone.tar.gz")
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Repo: "nodash", Token: credential.Token{Value: "t"}}); err == nil {
		t.Fatal("expected error for repo without owner")
	}
	if _, err := New(Config{Repo: "a/b"}); !errors.Is(err, errdefs.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}
