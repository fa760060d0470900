package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jmholla/triagebot/config"
	"github.com/jmholla/triagebot/internal/classify"
	"github.com/jmholla/triagebot/internal/ghsource"
	"github.com/jmholla/triagebot/internal/sheets"
)

// NewCmdCheck creates the check command.
func NewCmdCheck() *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Aliases: []string{"test"},
		Short:   "Verify configuration and connectivity",
		Long: `Checks that every required credential is configured and that GitHub,
OpenRouter, and the spreadsheet are all reachable. Run this once after
setup and whenever something stops working.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd)
		},
	}
}

func runCheck(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ok := color.GreenString("ok")
	failed := 0
	report := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Printf("  %-14s %s  %v\n", name, color.RedString("failed"), err)
			return
		}
		fmt.Printf("  %-14s %s\n", name, ok)
	}

	fmt.Println("Configuration:")
	report("credentials", cfg.Require(
		config.EnvGitHubToken,
		config.EnvOpenRouterKey,
		config.EnvSpreadsheetID,
	))
	fmt.Printf("  %-14s %s\n", "repository", cfg.Repo)

	fmt.Println("\nConnectivity:")

	var githubErr error
	if cfg.GitHubToken == "" {
		githubErr = fmt.Errorf("no token")
	} else if source, err := ghsource.NewClient(cfg.GitHubToken, cfg.Repo); err != nil {
		githubErr = err
	} else if _, err := source.OpenIssues(ctx, 1); err != nil {
		githubErr = err
	}
	report("github", githubErr)

	var llmErr error
	if cfg.OpenRouterKey == "" {
		llmErr = fmt.Errorf("no API key")
	} else {
		client := classify.NewClient(cfg.OpenRouterKey, cfg.Model)
		_, _, _, llmErr = client.Balance(ctx)
	}
	report("openrouter", llmErr)

	var sheetErr error
	if cfg.SpreadsheetID == "" {
		sheetErr = fmt.Errorf("no spreadsheet id")
	} else if store, err := sheets.Open(ctx, cfg.CredentialsFile, cfg.SpreadsheetID); err != nil {
		sheetErr = err
	} else if _, err := store.Rows(ctx); err != nil {
		sheetErr = err
	}
	report("spreadsheet", sheetErr)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	fmt.Println("\nEverything looks good.")
	return nil
}
