package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmholla/triagebot/internal/log"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "triagebot",
		Short: "GitHub issue triage pipeline for test-focused contributions",
		Long: `Scans a repository's open issues, applies rule filters and LLM
classification to find workable test-focused issues, and maintains the
results in a Google Sheets ledger.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Initialize(opts.Verbosity, os.Stderr)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")

	// Register subcommands
	rootCmd.AddCommand(NewCmdInit(opts))
	rootCmd.AddCommand(NewCmdUpdate(opts))
	rootCmd.AddCommand(NewCmdRetriage(opts))
	rootCmd.AddCommand(NewCmdPicks(opts))
	rootCmd.AddCommand(NewCmdBalance())
	rootCmd.AddCommand(NewCmdCheck())
	rootCmd.AddCommand(NewCmdGuide())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
