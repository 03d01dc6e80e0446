package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// addGlobalFlags adds persistent flags shared by every subcommand.
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("dry-run", false, "Show the restoration plan without executing it")
	cmd.PersistentFlags().BoolP("yes", "y", false, "Assume 'yes' to prompts and run non-interactively")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("staging", "", "Staging directory for downloads and extraction (default /var/tmp/n8n-restore)")
}

type globalOptions struct {
	DryRun  bool
	Yes     bool
	Verbose bool
	Staging string
}

func getGlobalOptions(cmd *cobra.Command) globalOptions {
	flags := cmd.Root().PersistentFlags()
	dry, _ := flags.GetBool("dry-run")
	yes, _ := flags.GetBool("yes")
	verbose, _ := flags.GetBool("verbose")
	staging, _ := flags.GetString("staging")
	return globalOptions{DryRun: dry, Yes: yes, Verbose: verbose, Staging: staging}
}

// newLogger builds the run logger. Logs go to stderr so stdout stays clean
// for tables and JSON.
func newLogger(stderr io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false, FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
