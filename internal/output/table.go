// Package output renders the non-interactive terminal output: the picks
// table and the run summaries.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/jmholla/triagebot/internal/format"
	"github.com/jmholla/triagebot/internal/triage"
)

const picksTitleWidth = 60

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

func colorDifficulty(d string) string {
	switch d {
	case "Low":
		return color.GreenString(d)
	case "Medium":
		return color.YellowString(d)
	case "High", "Beyond":
		return color.RedString(d)
	default:
		return d
	}
}

func colorSkill(s string) string {
	switch s {
	case "Yes":
		return color.GreenString(s)
	case "Maybe":
		return color.YellowString(s)
	default:
		return s
	}
}

// PrintPicks renders the ranked picks as a table.
func PrintPicks(w io.Writer, picks []triage.Pick) {
	if len(picks) == 0 {
		fmt.Fprintln(w, "Nothing workable in the ledger. Run update first.")
		return
	}

	bold := color.New(color.Bold)
	bold.Fprintf(w, "Top %d picks:\n\n", len(picks))

	for i, pick := range picks {
		row := pick.Row
		title := format.Truncate(row.Title, picksTitleWidth)

		fmt.Fprintf(w, "  %2d. [%s] #%d %s\n",
			i+1,
			color.CyanString("%d pts", pick.Score),
			row.Number,
			hyperlink(title, row.URL),
		)
		fmt.Fprintf(w, "      %s %s  %s %s",
			dim("difficulty:"), colorDifficulty(row.Difficulty),
			dim("skill:"), colorSkill(row.SkillMatch),
		)
		if row.TestFocused == "Yes" {
			fmt.Fprintf(w, "  %s", color.GreenString("test-focused"))
		}
		fmt.Fprintln(w)
		if row.Reason != "" {
			fmt.Fprintf(w, "      %s\n", dim(row.Reason))
		}
		fmt.Fprintln(w)
	}
}

// PrintInitialSummary renders the counters from an initial triage run.
func PrintInitialSummary(w io.Writer, stats triage.InitialStats, dryRun bool) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, "\nInitial triage complete:")

	fmt.Fprintf(w, "  Open issues fetched:   %d\n", stats.TotalFetched)
	fmt.Fprintf(w, "  New to the ledger:     %d\n", stats.NewIssues)
	fmt.Fprintf(w, "  Passed rule filters:   %d\n", stats.PassedFilters)
	fmt.Fprintf(w, "  Auto-candidates:       %s\n", color.CyanString("%d", stats.AutoCandidates))
	fmt.Fprintf(w, "  Classified by LLM:     %d\n", stats.Classified)
	if dryRun {
		fmt.Fprintf(w, "  Written to ledger:     %s\n", color.YellowString("0 (dry run)"))
	} else {
		fmt.Fprintf(w, "  Written to ledger:     %s\n", color.GreenString("%d", stats.Written))
	}
}

// PrintUpdateSummary renders the counters from an update cycle.
func PrintUpdateSummary(w io.Writer, stats triage.UpdateStats) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, "\nUpdate complete:")

	fmt.Fprintf(w, "  New issues processed:  %s\n", color.GreenString("%d", stats.NewIssues))
	fmt.Fprintf(w, "  Flagged for re-triage: %s\n", color.YellowString("%d", stats.ChangedIssues))
	if stats.ChangedIssues > 0 {
		fmt.Fprintf(w, "\nRun %s to refresh the flagged rows.\n", color.CyanString("triagebot retriage"))
	}
}

func dim(s string) string {
	return color.New(color.Faint).Sprint(strings.TrimSpace(s))
}
