package errdefs

import (
	"context"
	"errors"
)

// Sentinel errors for the failure categories the orchestrator distinguishes.
// Wrap them with fmt.Errorf("...: %w", ...) so callers can classify with
// errors.Is while still seeing the full context in the message.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrAuth              = errors.New("authentication failed")
	ErrNotFound          = errors.New("not found")
	ErrTransientNetwork  = errors.New("transient network error")
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrUnsafeArchive     = errors.New("unsafe archive")
	ErrDiskFull          = errors.New("disk full")
	ErrTimeout           = errors.New("operation timed out")

	// ErrRequiredActionFailed marks a restore run aborted because a
	// required plan action failed.
	ErrRequiredActionFailed = errors.New("required restore action failed")
)

// Exit codes reported by the CLI. Scripts key off these to tell a failed
// restore apart from bad credentials or a flaky network.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitRestore = 2
	ExitAuth    = 3
	ExitNetwork = 4
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrRequiredActionFailed):
		return ExitRestore
	case errors.Is(err, ErrMissingCredential), errors.Is(err, ErrAuth):
		return ExitAuth
	case errors.Is(err, ErrTransientNetwork), errors.Is(err, ErrTimeout):
		return ExitNetwork
	default:
		return ExitFailure
	}
}

// Hint returns a one-line remediation hint for known failure categories,
// or "" when there is nothing useful to say.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "set the backend credential environment variables or rerun with --prompt"
	case errors.Is(err, ErrAuth):
		return "check that the token or OAuth triplet is current; refresh tokens can be revoked"
	case errors.Is(err, ErrTransientNetwork), errors.Is(err, ErrTimeout):
		return "check connectivity to the backup backend and rerun"
	case errors.Is(err, ErrDiskFull):
		return "free space in the staging directory and rerun"
	}
	return ""
}

// IsTimeout reports whether err is a deadline expiry from any layer.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
