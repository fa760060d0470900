package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmholla/triagebot/internal/output"
	"github.com/jmholla/triagebot/internal/triage"
)

// NewCmdInit creates the init command.
func NewCmdInit(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the spreadsheet and run the initial triage",
		Long: `Creates the ledger worksheets if needed, fetches open issues, runs
the rule filter and LLM classification over new ones, and writes the
results. Issues already in the ledger are left untouched, so init is
safe to re-run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.MaxPages, "max-pages", 5, "Pages of 100 issues to fetch")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Fetch every open issue (overrides --max-pages)")
	cmd.Flags().BoolVar(&opts.NoClassify, "no-classify", false, "Skip LLM classification")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Compute everything, write nothing")

	return cmd
}

func runInit(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	p, err := buildPipeline(ctx, !opts.NoClassify)
	if err != nil {
		return err
	}

	if !opts.DryRun {
		if err := p.store.Setup(ctx); err != nil {
			return err
		}
	}

	maxPages := opts.MaxPages
	if opts.All {
		maxPages = 0
	}

	stats, err := p.engine.InitialTriage(ctx, triage.InitialOptions{
		MaxPages: maxPages,
		Classify: !opts.NoClassify,
		DryRun:   opts.DryRun,
	})
	if err != nil {
		return err
	}

	output.PrintInitialSummary(os.Stdout, stats, opts.DryRun)
	return nil
}
