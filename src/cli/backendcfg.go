package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"n8n-restore/src/backend"
	"n8n-restore/src/backend/drive"
	"n8n-restore/src/backend/github"
	"n8n-restore/src/credential"
)

// Backend location inputs. Like credentials these come from the
// environment or a prompt, never from hard-coded values.
const (
	EnvBackend      = "RESTORE_BACKEND"
	EnvBackup       = "RESTORE_BACKUP"
	EnvDriveFolder  = "RESTORE_DRIVE_FOLDER_ID"
	EnvGitHubRepo   = "RESTORE_GITHUB_REPO"
	EnvGitHubBranch = "RESTORE_GITHUB_BRANCH"
	EnvGitHubDir    = "RESTORE_GITHUB_DIR"
	EnvManifest     = "RESTORE_MANIFEST"
)

// resolveBackendKind picks the backend from a flag value, falling back to
// the environment.
func resolveBackendKind(flagValue string) (backend.Kind, error) {
	v := flagValue
	if v == "" {
		v = os.Getenv(EnvBackend)
	}
	if v == "" {
		return "", fmt.Errorf("no backend selected: pass --backend or set %s (drive or github)", EnvBackend)
	}
	return backend.ParseKind(v)
}

// openBackend resolves the credential for the chosen backend and builds
// its adapter. The returned credential is held only for this session.
func openBackend(ctx context.Context, kind backend.Kind, src credential.Source, in io.Reader, out io.Writer) (backend.Backend, credential.Credential, error) {
	cred, err := credential.Resolve(kind, src, in, out)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case backend.KindDrive:
		folder := os.Getenv(EnvDriveFolder)
		if folder == "" {
			return nil, nil, fmt.Errorf("drive backend needs %s", EnvDriveFolder)
		}
		be, err := drive.New(ctx, drive.Config{
			Credential: cred.(credential.OAuth),
			FolderID:   folder,
		})
		if err != nil {
			return nil, nil, err
		}
		return be, cred, nil
	case backend.KindGitHub:
		repo := os.Getenv(EnvGitHubRepo)
		if repo == "" {
			return nil, nil, fmt.Errorf("github backend needs %s (owner/name)", EnvGitHubRepo)
		}
		be, err := github.New(github.Config{
			Token:  cred.(credential.Token),
			Repo:   repo,
			Branch: os.Getenv(EnvGitHubBranch),
			Dir:    os.Getenv(EnvGitHubDir),
		})
		if err != nil {
			return nil, nil, err
		}
		return be, cred, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend %q", kind)
}

// credentialSource maps --yes/non-interactive use to env-only resolution.
func credentialSource(opts globalOptions) credential.Source {
	if opts.Yes {
		return credential.SourceEnv
	}
	return credential.SourceAuto
}
