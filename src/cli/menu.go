package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// menuChoice is one entry of the interactive menu. The same operations are
// reachable non-interactively through the subcommands and environment
// variables, for scripted use.
type menuChoice int

const (
	choiceRestoreMinimal menuChoice = iota + 1
	choiceRestoreFull
	choiceListBackups
	choiceCredentials
	choicePackages
	choiceExit
)

var menuEntries = []struct {
	choice menuChoice
	label  string
}{
	{choiceRestoreMinimal, "Restore configuration and services (minimal)"},
	{choiceRestoreFull, "Restore everything: packages, configuration, services (full)"},
	{choiceListBackups, "List available backups"},
	{choiceCredentials, "Set up and validate credentials only"},
	{choicePackages, "Install base packages only"},
	{choiceExit, "Exit"},
}

func parseMenuChoice(s string) (menuChoice, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > len(menuEntries) {
		return 0, fmt.Errorf("invalid selection %q (expected 1-%d)", strings.TrimSpace(s), len(menuEntries))
	}
	return menuChoice(n), nil
}

func newMenuCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var backendName string
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Interactive disaster-recovery menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := getGlobalOptions(cmd)
			reader := bufio.NewReader(stdin)
			for {
				fmt.Fprintln(stdout)
				fmt.Fprintln(stdout, "n8n host recovery")
				for _, e := range menuEntries {
					fmt.Fprintf(stdout, "  %d) %s\n", e.choice, e.label)
				}
				fmt.Fprint(stdout, "Select: ")
				line, err := reader.ReadString('\n')
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				choice, err := parseMenuChoice(line)
				if err != nil {
					fmt.Fprintln(stderr, err)
					continue
				}
				if choice == choiceExit {
					return nil
				}
				if err := dispatchMenuChoice(cmd, choice, opts, backendName, reader, stdout, stderr); err != nil {
					// The menu keeps running after a failed operation;
					// the user may fix credentials and retry.
					fmt.Fprintln(stderr, "error:", err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "Backup backend: drive|github (default $"+EnvBackend+")")
	return cmd
}

func dispatchMenuChoice(cmd *cobra.Command, choice menuChoice, opts globalOptions, backendName string, stdin io.Reader, stdout, stderr io.Writer) error {
	ctx := cmd.Context()
	switch choice {
	case choiceRestoreMinimal, choiceRestoreFull:
		kind, err := resolveBackendKind(backendName)
		if err != nil {
			return err
		}
		return runRestore(ctx, restoreOptions{
			global:  opts,
			kind:    kind,
			minimal: choice == choiceRestoreMinimal,
			output:  "table",
		}, stdin, stdout, stderr)
	case choiceListBackups:
		return runList(ctx, opts, backendName, "table", stdin, stdout, stderr)
	case choiceCredentials:
		return runCredentials(ctx, opts, backendName, true, stdin, stdout, stderr)
	case choicePackages:
		return runPackages(ctx, opts, "", stdin, stdout, stderr)
	}
	return fmt.Errorf("unhandled menu choice %d", choice)
}
