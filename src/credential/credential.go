package credential

import (
	"fmt"
	"io"
	"os"

	"n8n-restore/src/backend"
	"n8n-restore/src/errdefs"
)

// Environment variables consulted by Resolve. Credentials are never read
// from files and never written anywhere by this package.
const (
	EnvDriveClientID     = "RESTORE_DRIVE_CLIENT_ID"
	EnvDriveClientSecret = "RESTORE_DRIVE_CLIENT_SECRET"
	EnvDriveRefreshToken = "RESTORE_DRIVE_REFRESH_TOKEN"
	EnvGitHubToken       = "RESTORE_GITHUB_TOKEN"
)

// Source selects where Resolve looks for credential material.
type Source int

const (
	// SourceEnv reads environment variables only.
	SourceEnv Source = iota
	// SourcePrompt asks interactively only.
	SourcePrompt
	// SourceAuto reads the environment first and prompts for anything
	// missing.
	SourceAuto
)

// Credential is the secret material for one backend session. Exactly one
// credential is active per session; it lives in memory only.
type Credential interface {
	// Redacted returns a printable description without secret material.
	Redacted() string
}

// OAuth is the client_id/client_secret/refresh_token triplet used by the
// cloud-storage backend.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

func (o OAuth) Redacted() string {
	return fmt.Sprintf("oauth client %s (secret and refresh token withheld)", o.ClientID)
}

func (o OAuth) validate() error {
	switch {
	case o.ClientID == "":
		return fmt.Errorf("oauth client id is empty: %w", errdefs.ErrMissingCredential)
	case o.ClientSecret == "":
		return fmt.Errorf("oauth client secret is empty: %w", errdefs.ErrMissingCredential)
	case o.RefreshToken == "":
		return fmt.Errorf("oauth refresh token is empty: %w", errdefs.ErrMissingCredential)
	}
	return nil
}

// Token is a plain access token, used by the source-hosting backend.
type Token struct {
	Value string
}

func (t Token) Redacted() string { return "access token (withheld)" }

// Resolve produces the credential for a backend from the environment, an
// interactive prompt, or both. in/out are the prompt's terminal; they are
// unused for SourceEnv.
func Resolve(kind backend.Kind, src Source, in io.Reader, out io.Writer) (Credential, error) {
	switch kind {
	case backend.KindDrive:
		return resolveOAuth(src, in, out)
	case backend.KindGitHub:
		return resolveToken(src, in, out)
	}
	return nil, fmt.Errorf("no credential scheme for backend %q: %w", kind, errdefs.ErrMissingCredential)
}

func resolveOAuth(src Source, in io.Reader, out io.Writer) (Credential, error) {
	var cred OAuth
	if src == SourceEnv || src == SourceAuto {
		cred = OAuth{
			ClientID:     os.Getenv(EnvDriveClientID),
			ClientSecret: os.Getenv(EnvDriveClientSecret),
			RefreshToken: os.Getenv(EnvDriveRefreshToken),
		}
	}
	if src == SourceEnv {
		if err := cred.validate(); err != nil {
			return nil, err
		}
		return cred, nil
	}
	var err error
	if cred.ClientID == "" {
		if cred.ClientID, err = promptLine(in, out, "OAuth client ID"); err != nil {
			return nil, err
		}
	}
	if cred.ClientSecret == "" {
		if cred.ClientSecret, err = promptSecret(in, out, "OAuth client secret"); err != nil {
			return nil, err
		}
	}
	if cred.RefreshToken == "" {
		if cred.RefreshToken, err = promptSecret(in, out, "OAuth refresh token"); err != nil {
			return nil, err
		}
	}
	if err := cred.validate(); err != nil {
		return nil, err
	}
	return cred, nil
}

func resolveToken(src Source, in io.Reader, out io.Writer) (Credential, error) {
	tok := ""
	if src == SourceEnv || src == SourceAuto {
		tok = os.Getenv(EnvGitHubToken)
	}
	if tok == "" && src != SourceEnv {
		var err error
		if tok, err = promptSecret(in, out, "Access token"); err != nil {
			return nil, err
		}
	}
	if tok == "" {
		return nil, fmt.Errorf("access token is empty (set %s): %w", EnvGitHubToken, errdefs.ErrMissingCredential)
	}
	return Token{Value: tok}, nil
}
