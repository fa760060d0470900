package model

// Status is the workflow state of a ledger row. The pipeline writes New,
// Candidate, Filtered, and Re-triaged; the remaining values are set by hand
// in the spreadsheet as the contributor works an issue.
type Status string

const (
	StatusNew        Status = "New"
	StatusCandidate  Status = "Candidate"
	StatusInProgress Status = "In Progress"
	StatusPROpened   Status = "PR Opened"
	StatusCompleted  Status = "Completed"
	StatusSkipped    Status = "Skipped"
	StatusFiltered   Status = "Filtered"
	StatusRetriaged  Status = "Re-triaged"
)

// Row is the persisted unit of truth: one ledger row per issue number.
// Writes are upserts keyed by Number; there is never more than one row per id.
type Row struct {
	Number int
	Title  string
	URL    string
	Labels []string
	Status Status

	// Latest classification, empty until first classified.
	Difficulty   string
	SkillMatch   string
	ScopeClarity string
	TestFocused  string
	RiskFlags    string
	Reason       string
	Summary      string

	// ManualConfidence is reserved for human edits and is carried forward
	// across upserts rather than overwritten.
	ManualConfidence string

	LastCheckedAt   string
	GitHubUpdatedAt string
	NeedsRetriage   bool
	AutoCandidate   bool
	PositiveSignals string
}

// LabelSet returns the row's stored labels as a set.
func (r Row) LabelSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Labels))
	for _, l := range r.Labels {
		set[l] = struct{}{}
	}
	return set
}

// ProjectionRow is one entry in the derived Active Candidates view. The
// projection is recomputed wholesale from ledger rows and never mutated
// independently.
type ProjectionRow struct {
	Number     int
	Title      string
	URL        string
	Difficulty string
	SkillMatch string
	Summary    string
	Reason     string
}
