package triage

import (
	"sort"
	"strings"

	"github.com/jmholla/triagebot/internal/model"
)

// Pick is one ranked entry in the top-picks report.
type Pick struct {
	Row   model.Row
	Score int
}

// RankPicks scores workable ledger rows and returns the best limit of them,
// highest score first. Rows already being worked (or ruled out by skill or
// difficulty) are excluded. limit <= 0 returns everything eligible.
func RankPicks(rows []model.Row, limit int) []Pick {
	var picks []Pick
	for _, row := range rows {
		switch row.Status {
		case model.StatusInProgress, model.StatusPROpened, model.StatusCompleted, model.StatusSkipped:
			continue
		}
		if row.SkillMatch != "Yes" && row.SkillMatch != "Maybe" {
			continue
		}
		if row.Difficulty == "High" {
			continue
		}
		picks = append(picks, Pick{Row: row, Score: scoreRow(row)})
	}

	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Score > picks[j].Score
	})

	if limit > 0 && len(picks) > limit {
		picks = picks[:limit]
	}
	return picks
}

func scoreRow(row model.Row) int {
	score := 0
	if row.SkillMatch == "Yes" {
		score += 3
	}
	switch row.Difficulty {
	case "Low":
		score += 2
	case "Medium":
		score += 1
	}
	if row.TestFocused == "Yes" {
		score += 2
	}
	if row.ScopeClarity == "Clear" {
		score += 1
	}
	if strings.Contains(row.Title, "[Flaky Test]") {
		score += 3
	}
	return score
}
