package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"n8n-restore/src/backend"
)

func newListCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var backendName, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available backups in a backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), getGlobalOptions(cmd), backendName, output, stdin, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "Backup backend: drive|github (default $"+EnvBackend+")")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func runList(ctx context.Context, opts globalOptions, backendName, output string, stdin io.Reader, stdout, stderr io.Writer) error {
	kind, err := resolveBackendKind(backendName)
	if err != nil {
		return err
	}
	be, _, err := openBackend(ctx, kind, credentialSource(opts), stdin, stderr)
	if err != nil {
		return err
	}
	arts, err := be.List(ctx)
	if err != nil {
		return err
	}
	switch output {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(arts)
	case "table", "":
		return renderArtifacts(stdout, arts)
	default:
		return fmt.Errorf("unsupported --output: %s", output)
	}
}

func renderArtifacts(w io.Writer, arts []backend.Artifact) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBACKEND\tSIZE\tCREATED\tVERIFIABLE")
	for _, a := range arts {
		verifiable := "no"
		if a.Checksum != "" {
			verifiable = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			a.ID, a.Name, a.Backend, a.Size, a.CreatedAt.Format(time.RFC3339), verifiable)
	}
	return tw.Flush()
}
