package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"n8n-restore/src/archive"
	"n8n-restore/src/backend"
	"n8n-restore/src/errdefs"
	"n8n-restore/src/restore"
	"n8n-restore/src/session"
	"n8n-restore/src/sysops"
)

// newHost builds the production collaborators; tests swap it for fakes.
var newHost = sysops.RealHost

func newRestoreCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var backendName, backup, manifestPath, output string
	var postCmds []string
	var minimal bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore packages, configuration, and services from a backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := getGlobalOptions(cmd)
			kind, err := resolveBackendKind(backendName)
			if err != nil {
				return err
			}
			return runRestore(cmd.Context(), restoreOptions{
				global:       opts,
				kind:         kind,
				backup:       backup,
				manifestPath: manifestPath,
				minimal:      minimal,
				output:       output,
				postCmds:     postCmds,
			}, stdin, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "Backup backend: drive|github (default $"+EnvBackend+")")
	cmd.Flags().StringVar(&backup, "backup", "", "Backup to restore, by ID or name (default $"+EnvBackup+", else newest)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Package manifest path (default: root/packages.txt inside the backup)")
	cmd.Flags().BoolVar(&minimal, "minimal", false, "Restore configuration and services only, skip package installs")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Report format: table|json")
	cmd.Flags().StringArrayVar(&postCmds, "post-cmd", nil, "Host command to run after services restart (repeatable, e.g. firewall or certificate steps)")
	return cmd
}

type restoreOptions struct {
	global       globalOptions
	kind         backend.Kind
	backup       string
	manifestPath string
	minimal      bool
	output       string
	postCmds     []string
}

// runRestore drives the whole pipeline: credential -> listing -> selection
// -> fetch -> extract -> plan -> execute -> report.
func runRestore(ctx context.Context, opts restoreOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	log := newLogger(stderr, opts.global.Verbose)

	sess, err := session.New(opts.global.Staging, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	be, _, err := openBackend(ctx, opts.kind, credentialSource(opts.global), stdin, stderr)
	if err != nil {
		return err
	}
	log.WithField("backend", opts.kind).Info("backend session established")

	arts, err := be.List(ctx)
	if err != nil {
		return err
	}
	selector := opts.backup
	if selector == "" {
		selector = os.Getenv(EnvBackup)
	}
	art, err := backend.Select(arts, selector)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"backup":  art.Name,
		"created": art.CreatedAt,
		"size":    art.Size,
	}).Info("selected backup")

	res, err := archive.Resolve(ctx, be, art, sess.StagingDir, stderr)
	if err != nil {
		return err
	}
	if !res.Verified {
		log.Warn("backup carries no checksum; restoring unverified")
	}

	var pkgs []string
	if !opts.minimal {
		path := opts.manifestPath
		if path == "" {
			path = filepath.Join(res.Root, restore.ManifestPath)
		}
		if pkgs, err = restore.LoadManifest(path); err != nil {
			return err
		}
		if len(pkgs) == 0 {
			log.Warn("no package manifest in backup; skipping package installs")
		}
	}

	planner := restore.NewPlanner()
	planner.PostCommands = opts.postCmds
	plan := planner.Plan(res.Root, pkgs)
	placements := 0
	for _, a := range plan {
		if a.Kind == restore.PlaceFile {
			placements++
		}
	}
	if placements == 0 {
		return fmt.Errorf("backup contains none of the allow-listed configuration paths: %w", errdefs.ErrNotFound)
	}
	renderPlan(stdout, plan)
	if opts.global.DryRun {
		return nil
	}
	ok, err := confirm(opts.global, stdin, stdout,
		fmt.Sprintf("Execute %d restoration actions against this host?", len(plan)))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	exec := restore.Executor{Host: newHost(), Log: log}
	report := exec.Execute(ctx, plan)
	report.Unverified = !res.Verified

	if err := renderReport(stdout, report, opts.output); err != nil {
		return err
	}
	if report.Status == restore.StatusAborted {
		return fmt.Errorf("restore aborted after %d of %d actions: %w",
			len(report.Results), len(plan), errdefs.ErrRequiredActionFailed)
	}
	return nil
}

func renderPlan(w io.Writer, plan []restore.Action) {
	fmt.Fprintf(w, "Restoration plan (%d actions):\n", len(plan))
	for i, a := range plan {
		req := ""
		if !a.Required {
			req = "  (failure tolerated)"
		}
		fmt.Fprintf(w, "  %2d. %s%s\n", i+1, a, req)
	}
}

func renderReport(w io.Writer, report *restore.Report, output string) error {
	switch output {
	case "json":
		return report.RenderJSON(w)
	case "table", "":
		return report.RenderTable(w)
	default:
		return fmt.Errorf("unsupported --output: %s", output)
	}
}
