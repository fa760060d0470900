package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewCmdGuide creates the guide command.
func NewCmdGuide() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Print the day-to-day workflow",
		Run: func(cmd *cobra.Command, args []string) {
			printGuide()
		},
	}
}

func printGuide() {
	heading := color.New(color.Bold, color.FgCyan)
	cmdStyle := color.New(color.FgGreen)

	heading.Println("Getting started")
	fmt.Printf("  1. Copy .env.example to .env and fill in %s, %s,\n", "GITHUB_TOKEN", "OPENROUTER_API_KEY")
	fmt.Printf("     and %s. Put the service account key in service-account.json.\n", "SPREADSHEET_ID")
	fmt.Printf("  2. Run %s to verify everything is reachable.\n", cmdStyle.Sprint("triagebot check"))
	fmt.Printf("  3. Run %s to build the ledger.\n", cmdStyle.Sprint("triagebot init"))
	fmt.Println()

	heading.Println("Daily loop")
	fmt.Printf("  %s   pull in new issues, flag changed ones\n", cmdStyle.Sprint("triagebot update  "))
	fmt.Printf("  %s re-classify whatever update flagged\n", cmdStyle.Sprint("triagebot retriage"))
	fmt.Printf("  %s    browse the best issues to pick up\n", cmdStyle.Sprint("triagebot picks   "))
	fmt.Println()

	heading.Println("Working an issue")
	fmt.Println("  Set the Current Status cell by hand as you go:")
	fmt.Println("    In Progress  you started working on it")
	fmt.Println("    PR Opened    you opened a pull request")
	fmt.Println("    Completed    the PR merged")
	fmt.Println("    Skipped      you looked and decided against it")
	fmt.Println()
	fmt.Println("  Rows you mark this way drop out of picks and stay untouched by")
	fmt.Println("  the pipeline. The Manual Confidence column is also yours; the")
	fmt.Println("  pipeline preserves it across re-triage.")
	fmt.Println()

	heading.Println("Costs")
	fmt.Printf("  Classification uses a cheap model; %s shows remaining credits.\n", cmdStyle.Sprint("triagebot balance"))
}
