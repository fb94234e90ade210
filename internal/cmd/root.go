// Package cmd implements the tdiff command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tdiff/tdiff/internal/config"
	"github.com/tdiff/tdiff/pkg/logging"
)

// New creates the root command with all subcommands attached.
func New(version string) *cobra.Command {
	var configFile string
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "tdiff",
		Short:         "Reconcile versioned table snapshots and report differences",
		Long: `tdiff pulls grouped, versioned records from a relational source,
diffs consecutive versions within each group, and renders an annotated
report of additions, removals, and field-level changes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			*cfg = *loaded
			logging.Configure(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default .tdiff.yaml)")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("subject", "", "reconciliation subject (e.g. customer number)")
	flags.String("as-of", "", "as-of date substituted into the preparation script (YYYY-MM-DD)")
	flags.String("output-dir", "", "directory for reports and snapshots")
	flags.StringSlice("formats", nil, "report formats (csv, html)")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("subject", flags.Lookup("subject"))
	_ = viper.BindPFlag("as_of", flags.Lookup("as-of"))
	_ = viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = viper.BindPFlag("formats", flags.Lookup("formats"))

	root.AddCommand(newRunCmd(cfg))

	return root
}
