package tui

import (
	"fmt"
	"strings"

	"github.com/jmholla/triagebot/internal/format"
	"github.com/jmholla/triagebot/internal/triage"
)

// Column widths for the picks table
const (
	colRank       = 4
	colScore      = 5
	colIssue      = 7
	colDifficulty = 10
	colSkill      = 6
)

// detailLines is the vertical space reserved for the detail box and status.
const detailLines = 9

// renderPicksView renders the complete picks browser
func renderPicksView(m PicksModel) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Top Picks (%d)", len(m.picks))))
	b.WriteString("\n\n")

	if len(m.picks) == 0 {
		b.WriteString(emptyStyle.Render("Nothing workable in the ledger.\nRun the update command, then come back."))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	titleWidth := m.windowWidth - colRank - colScore - colIssue - colDifficulty - colSkill - 12
	if titleWidth < 20 {
		titleWidth = 20
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"  %-*s  %-*s  %-*s  %-*s  %-*s  %s",
		colRank, "#",
		colScore, "Score",
		colIssue, "Issue",
		colDifficulty, "Difficulty",
		colSkill, "Skill",
		"Title",
	)))
	b.WriteString("\n")

	availableHeight := m.windowHeight - 6
	if m.showDetail {
		availableHeight -= detailLines
	}
	if availableHeight < 3 {
		availableHeight = 3
	}
	start, end := scrollWindow(m.cursor, len(m.picks), availableHeight)

	for i := start; i < end; i++ {
		b.WriteString(renderPickRow(m.picks[i], i, i == m.cursor, titleWidth))
		b.WriteString("\n")
	}

	if m.showDetail {
		b.WriteString(renderDetail(m.picks[m.cursor]))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderPickRow(pick triage.Pick, rank int, selected bool, titleWidth int) string {
	row := pick.Row
	line := fmt.Sprintf(
		"  %-*d  %-*s  %-*s  %-*s  %-*s  %s",
		colRank, rank+1,
		colScore, scoreStyle.Render(fmt.Sprintf("%d", pick.Score)),
		colIssue, fmt.Sprintf("#%d", row.Number),
		colDifficulty, difficultyStyle(row.Difficulty).Render(format.PadRight(row.Difficulty, colDifficulty)),
		colSkill, row.SkillMatch,
		format.Truncate(row.Title, titleWidth),
	)
	if selected {
		return selectedStyle.Render("▸" + line[1:])
	}
	return line
}

func renderDetail(pick triage.Pick) string {
	row := pick.Row
	var b strings.Builder

	b.WriteString(detailLabelStyle.Render("Labels: "))
	b.WriteString(strings.Join(row.Labels, ", "))
	b.WriteString("\n")

	b.WriteString(detailLabelStyle.Render("Summary: "))
	b.WriteString(row.Summary)
	b.WriteString("\n")

	b.WriteString(detailLabelStyle.Render("Reason: "))
	b.WriteString(row.Reason)
	b.WriteString("\n")

	if row.RiskFlags != "" {
		b.WriteString(detailLabelStyle.Render("Risks: "))
		b.WriteString(row.RiskFlags)
		b.WriteString("\n")
	}

	b.WriteString(detailLabelStyle.Render("URL: "))
	b.WriteString(dimStyle.Render(row.URL))

	return detailBoxStyle.Render(b.String())
}

// scrollWindow determines which picks to show based on cursor position
func scrollWindow(cursor, total, viewHeight int) (start, end int) {
	if total <= viewHeight {
		return 0, total
	}

	start = cursor - viewHeight/2
	if start < 0 {
		start = 0
	}

	end = start + viewHeight
	if end > total {
		end = total
		start = end - viewHeight
		if start < 0 {
			start = 0
		}
	}

	return start, end
}
