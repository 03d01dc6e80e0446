package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"n8n-restore/src/errdefs"
)

// NewRootCmd returns the root cobra command for the n8n-restore CLI.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "n8n-restore",
		Short:         "Restore an n8n application host from a remote backup",
		Long:          "Rebuilds a wiped n8n host: reinstalls base packages, restores configuration and application data from a Drive or GitHub backup, and restarts services.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	addGlobalFlags(cmd)

	cmd.AddCommand(newMenuCmd(stdin, stdout, stderr))
	cmd.AddCommand(newListCmd(stdin, stdout, stderr))
	cmd.AddCommand(newRestoreCmd(stdin, stdout, stderr))
	cmd.AddCommand(newCredentialsCmd(stdin, stdout, stderr))
	cmd.AddCommand(newPackagesCmd(stdin, stdout, stderr))
	cmd.AddCommand(newVersionCmd(stdout))

	return cmd
}

// Execute runs the CLI with the process stdio and maps the error taxonomy
// to exit codes: 2 required-action failure, 3 credential/auth, 4 network,
// 1 anything else. Interrupt and SIGTERM cancel the run's context; a
// restore in flight stops at the next action boundary and still prints
// its partial report.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if hint := errdefs.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		return errdefs.ExitCode(err)
	}
	return errdefs.ExitOK
}
