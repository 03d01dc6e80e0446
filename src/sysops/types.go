package sysops

import "context"

// Narrow interfaces over the host tools the executor drives. Keeping them
// small keeps the orchestration logic testable without a real host.

// PackageManager installs OS packages. Install is a no-op for packages
// that are already present.
type PackageManager interface {
	Install(ctx context.Context, name string) error
}

// ServiceManager restarts system services.
type ServiceManager interface {
	Restart(ctx context.Context, name string) error
}

// FilePlacer copies a restored file or directory tree from the staging
// area onto its destination path, overwriting what is there.
type FilePlacer interface {
	Place(ctx context.Context, src, dst string) error
}

// CommandRunner executes one-off host commands (firewall reload,
// certificate renewal) as discrete steps.
type CommandRunner interface {
	Run(ctx context.Context, command string) error
}

// Host bundles the collaborators the executor needs.
type Host struct {
	Packages PackageManager
	Services ServiceManager
	Files    FilePlacer
	Runner   CommandRunner
}
