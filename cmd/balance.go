package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jmholla/triagebot/config"
	"github.com/jmholla/triagebot/internal/classify"
)

// NewCmdBalance creates the balance command.
func NewCmdBalance() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show remaining OpenRouter credits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBalance(cmd)
		},
	}
}

func runBalance(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Require(config.EnvOpenRouterKey); err != nil {
		return err
	}

	client := classify.NewClient(cfg.OpenRouterKey, cfg.Model)
	remaining, used, display, err := client.Balance(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("OpenRouter credits: %s\n", color.GreenString(display))
	fmt.Printf("  used:      $%.4f\n", used)
	if remaining >= 0 {
		fmt.Printf("  remaining: $%.4f\n", remaining)
	}
	return nil
}
