package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"n8n-restore/src/backend"
	"n8n-restore/src/errdefs"
	"n8n-restore/src/util/progress"
)

// Result describes a downloaded and extracted backup archive.
type Result struct {
	// Root is the directory holding the extracted tree. The archive is
	// rooted at filesystem / so paths inside Root mirror host paths
	// (etc/nginx, root/.n8n, ...).
	Root        string
	ArchivePath string
	// Verified is false when the artifact declared no checksum; the
	// final report carries the flag through.
	Verified bool
}

// Resolve downloads the artifact fully into stagingDir, verifies its
// checksum when one is declared, and extracts it. progressOut may be nil.
func Resolve(ctx context.Context, be backend.Backend, art backend.Artifact, stagingDir string, progressOut io.Writer) (*Result, error) {
	if err := os.MkdirAll(stagingDir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", diskClass(err))
	}
	name := art.Name
	if name == "" {
		name = "backup.tar.gz"
	}
	archivePath := filepath.Join(stagingDir, filepath.Base(name))
	if err := download(ctx, be, art, archivePath, progressOut); err != nil {
		return nil, err
	}

	verified := false
	if art.Checksum != "" {
		if err := verifyChecksum(archivePath, art.Checksum); err != nil {
			return nil, err
		}
		verified = true
	}

	root := filepath.Join(stagingDir, "tree")
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create extraction dir: %w", diskClass(err))
	}
	if err := Extract(archivePath, root); err != nil {
		return nil, err
	}
	return &Result{Root: root, ArchivePath: archivePath, Verified: verified}, nil
}

func download(ctx context.Context, be backend.Backend, art backend.Artifact, dest string, progressOut io.Writer) error {
	body, size, err := be.Fetch(ctx, art.ID)
	if err != nil {
		return err
	}
	defer body.Close()
	if size <= 0 {
		size = art.Size
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, diskClass(err))
	}
	defer f.Close()

	r := progress.NewReader(body, size, art.Name, progressOut)
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("download %s: %v: %w", art.Name, err, netClass(err))
	}
	// A single-attempt fetch must fail cleanly rather than silently
	// truncate: compare against the size the backend reported.
	if size > 0 && r.Count() != size {
		return fmt.Errorf("download %s: got %d of %d bytes: %w", art.Name, r.Count(), size, errdefs.ErrTransientNetwork)
	}
	return nil
}

func verifyChecksum(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("checksum mismatch: got %s want %s: %w", got, want, errdefs.ErrCorruptArchive)
	}
	return nil
}

// Extract unpacks a tar-gzip archive into dest. Every entry path is
// resolved and must stay inside dest; anything escaping it (including via
// symlink targets) fails with UnsafeArchive.
func Extract(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %v: %w", err, errdefs.ErrCorruptArchive)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %v: %w", err, errdefs.ErrCorruptArchive)
		}
		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode)&0o777|0o700); err != nil {
				return diskClass(err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := checkLink(dest, target, hdr.Linkname); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
				return diskClass(err)
			}
			os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return diskClass(err)
			}
		default:
			// Device nodes, fifos etc. have no business in a config
			// backup; skip them.
		}
	}
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return diskClass(err)
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode&0o777)
	if err != nil {
		return diskClass(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", target, diskClass(err))
	}
	return f.Close()
}

// securePath joins an archive entry name onto dest and rejects entries
// that resolve outside it.
func securePath(dest, name string) (string, error) {
	clean := filepath.Clean(strings.TrimPrefix(name, "/"))
	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction dir: %w", name, errdefs.ErrUnsafeArchive)
	}
	return target, nil
}

func checkLink(dest, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("symlink %q has absolute target %q: %w", target, linkname, errdefs.ErrUnsafeArchive)
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	rel, err := filepath.Rel(dest, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("symlink %q target %q escapes extraction dir: %w", target, linkname, errdefs.ErrUnsafeArchive)
	}
	return nil
}

func diskClass(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%v: %w", err, errdefs.ErrDiskFull)
	}
	return err
}

func netClass(err error) error {
	switch {
	case errors.Is(err, errdefs.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return errdefs.ErrTimeout
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.Is(err, syscall.ENOSPC):
		return errdefs.ErrDiskFull
	default:
		return errdefs.ErrTransientNetwork
	}
}
