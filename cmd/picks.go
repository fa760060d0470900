package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmholla/triagebot/internal/output"
	"github.com/jmholla/triagebot/internal/triage"
	"github.com/jmholla/triagebot/internal/tui"
)

// NewCmdPicks creates the picks command.
func NewCmdPicks(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picks",
		Short: "Show the best issues to work on next",
		Long: `Scores the workable ledger rows (skill match, difficulty, test focus,
scope clarity) and shows the highest-ranked ones. In a terminal this
opens an interactive browser; pipe the output or pass --tui=false for
a plain table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPicks(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Number of picks to show (0 = all)")
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable interactive browser (default: auto-detect)")

	return cmd
}

func runPicks(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	// Reading the ledger needs no LLM.
	p, err := buildPipeline(ctx, false)
	if err != nil {
		return err
	}

	rows, err := p.store.Rows(ctx)
	if err != nil {
		return err
	}
	picks := triage.RankPicks(rows, opts.Limit)

	if shouldUseTUI(opts) {
		return tui.RunPicks(picks)
	}

	output.PrintPicks(os.Stdout, picks)
	return nil
}
