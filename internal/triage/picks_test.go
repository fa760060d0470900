package triage

import (
	"testing"

	"github.com/jmholla/triagebot/internal/model"
)

func TestScoreRow(t *testing.T) {
	tests := []struct {
		name string
		row  model.Row
		want int
	}{
		{
			name: "everything maxed",
			row: model.Row{
				Title:        "[Flaky Test] editor canvas snapshot",
				SkillMatch:   "Yes",
				Difficulty:   "Low",
				TestFocused:  "Yes",
				ScopeClarity: "Clear",
			},
			want: 11,
		},
		{
			name: "maybe match, medium, vague",
			row: model.Row{
				SkillMatch:   "Maybe",
				Difficulty:   "Medium",
				TestFocused:  "No",
				ScopeClarity: "Vague",
			},
			want: 1,
		},
		{
			name: "flaky marker alone",
			row:  model.Row{Title: "[Flaky Test] something"},
			want: 3,
		},
		{
			name: "nothing scores",
			row:  model.Row{SkillMatch: "Maybe"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreRow(tt.row); got != tt.want {
				t.Errorf("scoreRow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRankPicks(t *testing.T) {
	rows := []model.Row{
		{Number: 1, Status: model.StatusCandidate, SkillMatch: "Yes", Difficulty: "Low", TestFocused: "Yes", ScopeClarity: "Clear"}, // 8
		{Number: 2, Status: model.StatusNew, SkillMatch: "Maybe", Difficulty: "Medium"},                                             // 1
		{Number: 3, Status: model.StatusInProgress, SkillMatch: "Yes", Difficulty: "Low"},                                           // already worked
		{Number: 4, Status: model.StatusCandidate, SkillMatch: "No", Difficulty: "Low"},                                             // skill ruled out
		{Number: 5, Status: model.StatusCandidate, SkillMatch: "Yes", Difficulty: "High"},                                           // too hard
		{Number: 6, Status: model.StatusRetriaged, SkillMatch: "Yes", Difficulty: "Medium", TestFocused: "Yes"},                     // 6
	}

	picks := RankPicks(rows, 0)
	if len(picks) != 3 {
		t.Fatalf("got %d picks, want 3", len(picks))
	}
	wantOrder := []int{1, 6, 2}
	for i, want := range wantOrder {
		if picks[i].Row.Number != want {
			t.Errorf("picks[%d] = #%d, want #%d", i, picks[i].Row.Number, want)
		}
	}
	if picks[0].Score != 8 || picks[1].Score != 6 || picks[2].Score != 1 {
		t.Errorf("scores = [%d %d %d], want [8 6 1]", picks[0].Score, picks[1].Score, picks[2].Score)
	}
}

func TestRankPicksLimit(t *testing.T) {
	rows := []model.Row{
		{Number: 1, Status: model.StatusCandidate, SkillMatch: "Yes", Difficulty: "Low"},
		{Number: 2, Status: model.StatusCandidate, SkillMatch: "Yes", Difficulty: "Medium"},
		{Number: 3, Status: model.StatusCandidate, SkillMatch: "Maybe", Difficulty: "Low"},
	}

	if got := RankPicks(rows, 2); len(got) != 2 {
		t.Errorf("limit 2 returned %d picks", len(got))
	}
	if got := RankPicks(rows, 10); len(got) != 3 {
		t.Errorf("limit above population returned %d picks", len(got))
	}
	if got := RankPicks(nil, 5); len(got) != 0 {
		t.Errorf("empty ledger returned %d picks", len(got))
	}
}

func TestRankPicksStableOnTies(t *testing.T) {
	rows := []model.Row{
		{Number: 7, Status: model.StatusCandidate, SkillMatch: "Yes", Difficulty: "Low"},
		{Number: 8, Status: model.StatusCandidate, SkillMatch: "Yes", Difficulty: "Low"},
	}

	picks := RankPicks(rows, 0)
	if picks[0].Row.Number != 7 || picks[1].Row.Number != 8 {
		t.Errorf("tied rows reordered: [#%d #%d]", picks[0].Row.Number, picks[1].Row.Number)
	}
}
