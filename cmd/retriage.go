package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewCmdRetriage creates the retriage command.
func NewCmdRetriage(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "retriage",
		Short: "Re-classify every row flagged by update",
		Long: `Fetches the current state of each issue flagged as needing re-triage,
re-runs the rule filter and the LLM (with the previous assessment as
context), and overwrites the row. Issues that fail to fetch are
skipped and stay flagged for the next run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRetriage(cmd)
		},
	}
}

func runRetriage(cmd *cobra.Command) error {
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, true)
	if err != nil {
		return err
	}

	count, err := p.engine.RetriageFlagged(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nRe-triaged %s issues.\n", color.GreenString("%d", count))
	return nil
}
