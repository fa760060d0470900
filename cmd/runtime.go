package cmd

import (
	"context"
	"fmt"

	"github.com/jmholla/triagebot/config"
	"github.com/jmholla/triagebot/internal/classify"
	"github.com/jmholla/triagebot/internal/ghsource"
	"github.com/jmholla/triagebot/internal/log"
	"github.com/jmholla/triagebot/internal/sheets"
	"github.com/jmholla/triagebot/internal/triage"
)

// pipeline bundles the assembled collaborators for the triage commands.
type pipeline struct {
	cfg    *config.Config
	store  *sheets.Store
	engine *triage.Engine
}

// buildPipeline loads configuration and wires the issue source, classifier,
// and ledger store into an engine. needLLM controls whether the OpenRouter
// key is required; commands that never classify skip it.
func buildPipeline(ctx context.Context, needLLM bool) (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	required := []string{config.EnvGitHubToken, config.EnvSpreadsheetID}
	if needLLM {
		required = append(required, config.EnvOpenRouterKey)
	}
	if err := cfg.Require(required...); err != nil {
		return nil, err
	}

	source, err := ghsource.NewClient(cfg.GitHubToken, cfg.Repo)
	if err != nil {
		return nil, err
	}
	log.Info("issue source ready", "repo", cfg.Repo)

	classifier := classify.NewClient(cfg.OpenRouterKey, cfg.Model)

	store, err := sheets.Open(ctx, cfg.CredentialsFile, cfg.SpreadsheetID)
	if err != nil {
		return nil, err
	}

	engine := triage.NewEngine(source, classifier, store, cfg.BuildFilter(), func(line string) {
		fmt.Println(line)
	})

	return &pipeline{cfg: cfg, store: store, engine: engine}, nil
}
