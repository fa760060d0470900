package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmholla/triagebot/internal/output"
)

// NewCmdUpdate creates the update command.
func NewCmdUpdate(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Process new issues and flag changed ones for re-triage",
		Long: `Fetches recently updated issues, runs the full filter and classify
flow over ones the ledger has never seen, and flags rows whose GitHub
state meaningfully changed (new labels or a newer updated timestamp)
for re-triage. Meant to run daily.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.MaxPages, "max-pages", 3, "Pages of 100 issues to fetch")

	return cmd
}

func runUpdate(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, true)
	if err != nil {
		return err
	}

	stats, err := p.engine.Update(ctx, opts.MaxPages)
	if err != nil {
		return err
	}

	output.PrintUpdateSummary(os.Stdout, stats)
	return nil
}
