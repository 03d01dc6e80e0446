package sysops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"n8n-restore/src/errdefs"
)

// Default per-call timeouts. Package installs pull from the network;
// service restarts should settle quickly.
const (
	DefaultInstallTimeout = 10 * time.Minute
	DefaultRestartTimeout = 90 * time.Second
	DefaultCommandTimeout = 2 * time.Minute
)

// AptPackageManager installs packages through apt-get. Installing an
// already-installed package is a no-op, which keeps restore runs
// re-runnable.
type AptPackageManager struct {
	Timeout time.Duration
}

func (m AptPackageManager) Install(ctx context.Context, name string) error {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultInstallTimeout
	}
	env := append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	return runHostCommand(ctx, timeout, env, "apt-get", "install", "-y", name)
}

// SystemdServiceManager restarts services through systemctl.
type SystemdServiceManager struct {
	Timeout time.Duration
}

func (m SystemdServiceManager) Restart(ctx context.Context, name string) error {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultRestartTimeout
	}
	return runHostCommand(ctx, timeout, nil, "systemctl", "restart", name)
}

// ShellRunner executes one-off commands via sh -c.
type ShellRunner struct {
	Timeout time.Duration
}

func (r ShellRunner) Run(ctx context.Context, command string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return runHostCommand(ctx, timeout, nil, "sh", "-c", command)
}

func runHostCommand(ctx context.Context, timeout time.Duration, env []string, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if env != nil {
		cmd.Env = env
	}
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s %v: %w", name, args, errdefs.ErrTimeout)
	}
	msg := bytes.TrimSpace(stderr.Bytes())
	if len(msg) > 0 {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, msg)
	}
	return fmt.Errorf("%s %v: %w", name, args, err)
}

// OSFilePlacer copies files and directory trees from the extracted backup
// onto the live filesystem, overwriting existing content.
type OSFilePlacer struct{}

func (OSFilePlacer) Place(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return copyTree(ctx, src, dst)
	}
	return copyFile(src, dst, info.Mode())
}

func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		if d.Type()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			os.Remove(target)
			return os.Symlink(link, target)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// RealHost wires the production collaborators.
func RealHost() Host {
	return Host{
		Packages: AptPackageManager{},
		Services: SystemdServiceManager{},
		Files:    OSFilePlacer{},
		Runner:   ShellRunner{},
	}
}
