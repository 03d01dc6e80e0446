package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"n8n-restore/src/restore"
)

func newPackagesCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Install the base packages from a manifest, nothing else",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPackages(cmd.Context(), getGlobalOptions(cmd), manifestPath, stdin, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Package manifest path (default $"+EnvManifest+")")
	return cmd
}

func runPackages(ctx context.Context, opts globalOptions, manifestPath string, stdin io.Reader, stdout, stderr io.Writer) error {
	log := newLogger(stderr, opts.Verbose)

	path := manifestPath
	if path == "" {
		path = os.Getenv(EnvManifest)
	}
	if path == "" {
		return fmt.Errorf("no manifest: pass --manifest or set %s", EnvManifest)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	pkgs, err := restore.ParseManifest(f)
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Fprintln(stdout, "manifest lists no packages")
		return nil
	}

	plan := restore.NewPlanner().PlanPackagesOnly(pkgs)
	renderPlan(stdout, plan)
	if opts.DryRun {
		return nil
	}
	ok, err := confirm(opts, stdin, stdout, fmt.Sprintf("Install %d packages?", len(pkgs)))
	if err != nil || !ok {
		return err
	}

	exec := restore.Executor{Host: newHost(), Log: log}
	report := exec.Execute(ctx, plan)
	return report.RenderTable(stdout)
}
