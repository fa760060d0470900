package triage

import (
	"github.com/jmholla/triagebot/internal/format"
	"github.com/jmholla/triagebot/internal/model"
)

// Project derives the Active Candidates view from ledger rows. Deterministic
// and order-preserving: rows come out in ledger order, unranked. The picks
// report ranks a near-identical predicate separately; the two views are kept
// apart on purpose.
func Project(rows []model.Row) []model.ProjectionRow {
	out := make([]model.ProjectionRow, 0, len(rows))
	for _, row := range rows {
		if !isActiveCandidate(row) {
			continue
		}
		out = append(out, model.ProjectionRow{
			Number:     row.Number,
			Title:      row.Title,
			URL:        row.URL,
			Difficulty: row.Difficulty,
			SkillMatch: row.SkillMatch,
			Summary:    format.Clip(row.Summary, maxSummaryChars),
			Reason:     row.Reason,
		})
	}
	return out
}

// isActiveCandidate is the three-clause membership predicate for the Active
// Candidates view.
func isActiveCandidate(row model.Row) bool {
	switch row.Status {
	case model.StatusNew, model.StatusCandidate, "":
	default:
		return false
	}

	if row.SkillMatch != "Yes" && row.SkillMatch != "Maybe" {
		return false
	}

	return row.Difficulty != "High" && row.Difficulty != "Beyond"
}
