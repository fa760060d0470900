package triage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmholla/triagebot/internal/classify"
	"github.com/jmholla/triagebot/internal/filter"
	"github.com/jmholla/triagebot/internal/model"
)

// fakeSource serves canned issues and comments.
type fakeSource struct {
	open     []model.Issue
	byNumber map[int]model.Issue
	fetchErr map[int]error

	mu           sync.Mutex
	commentCalls []int
}

func (f *fakeSource) OpenIssues(_ context.Context, _ int) ([]model.Issue, error) {
	return f.open, nil
}

func (f *fakeSource) Issue(_ context.Context, number int) (model.Issue, error) {
	if err := f.fetchErr[number]; err != nil {
		return model.Issue{}, err
	}
	issue, ok := f.byNumber[number]
	if !ok {
		return model.Issue{}, fmt.Errorf("no such issue #%d", number)
	}
	return issue, nil
}

func (f *fakeSource) Comments(_ context.Context, number, _ int) ([]model.Comment, error) {
	f.mu.Lock()
	f.commentCalls = append(f.commentCalls, number)
	f.mu.Unlock()
	return []model.Comment{{Author: "alice", Body: "ping"}}, nil
}

// fakeClassifier returns canned classifications and records what it saw.
type fakeClassifier struct {
	results map[int]classify.Classification

	mu       sync.Mutex
	previous map[int]*classify.Previous
	seen     map[int]model.Issue
}

func (f *fakeClassifier) Classify(_ context.Context, issue model.Issue, previous *classify.Previous) classify.Classification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.previous == nil {
		f.previous = make(map[int]*classify.Previous)
	}
	if f.seen == nil {
		f.seen = make(map[int]model.Issue)
	}
	f.previous[issue.Number] = previous
	f.seen[issue.Number] = issue

	if c, ok := f.results[issue.Number]; ok {
		return c
	}
	return classify.Classification{
		Difficulty:   "Low",
		SkillMatch:   "Yes",
		ScopeClarity: "Clear",
		TestFocused:  "Yes",
	}
}

// fakeStore is an in-memory ledger with upsert semantics.
type fakeStore struct {
	rows       []model.Row
	projection []model.ProjectionRow
	replaced   int
	marked     []int
}

func (f *fakeStore) Rows(_ context.Context) ([]model.Row, error) {
	out := make([]model.Row, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeStore) Upsert(_ context.Context, row model.Row) error {
	for i, r := range f.rows {
		if r.Number == row.Number {
			f.rows[i] = row
			return nil
		}
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeStore) MarkNeedsRetriage(_ context.Context, numbers []int) error {
	f.marked = append(f.marked, numbers...)
	for _, n := range numbers {
		for i := range f.rows {
			if f.rows[i].Number == n {
				f.rows[i].NeedsRetriage = true
			}
		}
	}
	return nil
}

func (f *fakeStore) ReplaceProjection(_ context.Context, rows []model.ProjectionRow) error {
	f.projection = rows
	f.replaced++
	return nil
}

func (f *fakeStore) row(t *testing.T, number int) model.Row {
	t.Helper()
	for _, r := range f.rows {
		if r.Number == number {
			return r
		}
	}
	t.Fatalf("no ledger row for #%d", number)
	return model.Row{}
}

func newTestEngine(source *fakeSource, classifier *fakeClassifier, store *fakeStore) *Engine {
	e := NewEngine(source, classifier, store, filter.Default(), nil)
	e.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

// candidateIssue has enough positive signals to be an auto-candidate.
func candidateIssue(number int) model.Issue {
	return model.Issue{
		Number:    number,
		Title:     fmt.Sprintf("Add unit test coverage for block parser (%d)", number),
		URL:       fmt.Sprintf("https://github.com/o/r/issues/%d", number),
		Labels:    []string{"Needs Tests"},
		UpdatedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC),
	}
}

// plainIssue passes the filter with a single signal (not a candidate).
func plainIssue(number int) model.Issue {
	return model.Issue{
		Number:    number,
		Title:     fmt.Sprintf("Improve color picker contrast (%d)", number),
		URL:       fmt.Sprintf("https://github.com/o/r/issues/%d", number),
		Labels:    []string{"[Type] Bug"},
		UpdatedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC),
	}
}

func TestInitialTriage(t *testing.T) {
	blocked := model.Issue{Number: 3, Title: "Big refactor", Labels: []string{"[Status] Blocked"}}
	known := candidateIssue(4)

	source := &fakeSource{open: []model.Issue{candidateIssue(1), plainIssue(2), blocked, known}}
	classifier := &fakeClassifier{}
	store := &fakeStore{rows: []model.Row{{Number: 4, Status: model.StatusCandidate}}}
	e := newTestEngine(source, classifier, store)

	stats, err := e.InitialTriage(context.Background(), InitialOptions{MaxPages: 1, Classify: true})
	if err != nil {
		t.Fatalf("InitialTriage: %v", err)
	}

	want := InitialStats{
		TotalFetched:   4,
		NewIssues:      3,
		PassedFilters:  2,
		AutoCandidates: 1,
		Classified:     1,
		Written:        2,
	}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	cand := store.row(t, 1)
	if cand.Status != model.StatusCandidate {
		t.Errorf("candidate status = %q", cand.Status)
	}
	if cand.Difficulty != "Low" || cand.SkillMatch != "Yes" {
		t.Errorf("candidate classification not merged: %+v", cand)
	}
	if !cand.AutoCandidate {
		t.Error("candidate row lost its auto-candidate flag")
	}
	if cand.LastCheckedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("LastCheckedAt = %q", cand.LastCheckedAt)
	}

	if got := store.row(t, 2); got.Status != model.StatusFiltered || got.Difficulty != "" {
		t.Errorf("non-candidate row = %+v, want Filtered with no classification", got)
	}

	for _, r := range store.rows {
		if r.Number == 3 {
			t.Error("filter-failed issue must not be written at all")
		}
	}

	if store.replaced != 1 {
		t.Errorf("projection replaced %d times, want 1", store.replaced)
	}
	if len(store.projection) != 1 || store.projection[0].Number != 1 {
		t.Errorf("projection = %+v, want just issue #1", store.projection)
	}
}

func TestInitialTriageIsIdempotent(t *testing.T) {
	source := &fakeSource{open: []model.Issue{candidateIssue(1), plainIssue(2)}}
	store := &fakeStore{}
	e := newTestEngine(source, &fakeClassifier{}, store)

	if _, err := e.InitialTriage(context.Background(), InitialOptions{Classify: true}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	rowsAfterFirst := len(store.rows)

	stats, err := e.InitialTriage(context.Background(), InitialOptions{Classify: true})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.NewIssues != 0 || stats.Written != 0 {
		t.Errorf("second run stats = %+v, want zero new and zero written", stats)
	}
	if len(store.rows) != rowsAfterFirst {
		t.Errorf("row count changed %d -> %d on identical rerun", rowsAfterFirst, len(store.rows))
	}
}

func TestInitialTriageSkillMatchNoOverride(t *testing.T) {
	source := &fakeSource{open: []model.Issue{candidateIssue(1)}}
	classifier := &fakeClassifier{results: map[int]classify.Classification{
		1: {Difficulty: "Low", SkillMatch: "No", ScopeClarity: "Clear", TestFocused: "Yes"},
	}}
	store := &fakeStore{}
	e := newTestEngine(source, classifier, store)

	if _, err := e.InitialTriage(context.Background(), InitialOptions{Classify: true}); err != nil {
		t.Fatal(err)
	}

	if got := store.row(t, 1); got.Status != model.StatusFiltered {
		t.Errorf("status = %q, want Filtered: the LLM's No overrides the rule signal", got.Status)
	}
}

func TestInitialTriageErrorClassificationKeepsCandidate(t *testing.T) {
	errCls := classify.Classification{
		Difficulty:    classify.ValueError,
		SkillMatch:    classify.ValueError,
		ScopeClarity:  classify.ValueError,
		TestFocused:   classify.ValueError,
		RiskFlags:     []string{"completion request: boom"},
		OneLineReason: "Classification failed: completion request: boom",
		Err:           "completion request: boom",
	}
	source := &fakeSource{open: []model.Issue{candidateIssue(1)}}
	store := &fakeStore{}
	e := newTestEngine(source, &fakeClassifier{results: map[int]classify.Classification{1: errCls}}, store)

	stats, err := e.InitialTriage(context.Background(), InitialOptions{Classify: true})
	if err != nil {
		t.Fatalf("a bad classification must not abort the batch: %v", err)
	}
	if stats.Written != 1 {
		t.Errorf("Written = %d, want 1", stats.Written)
	}

	got := store.row(t, 1)
	if got.Status != model.StatusCandidate {
		t.Errorf("status = %q, want Candidate (Error is not No)", got.Status)
	}
	if got.Difficulty != classify.ValueError || got.RiskFlags != "completion request: boom" {
		t.Errorf("error sentinels not persisted: %+v", got)
	}
}

func TestInitialTriageDryRun(t *testing.T) {
	source := &fakeSource{open: []model.Issue{candidateIssue(1), plainIssue(2)}}
	store := &fakeStore{}
	e := newTestEngine(source, &fakeClassifier{}, store)

	stats, err := e.InitialTriage(context.Background(), InitialOptions{Classify: true, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Written != 0 {
		t.Errorf("Written = %d, want 0 in dry-run", stats.Written)
	}
	if len(store.rows) != 0 || store.replaced != 0 {
		t.Errorf("dry-run wrote rows=%d projections=%d", len(store.rows), store.replaced)
	}
	if stats.Classified != 1 {
		t.Errorf("Classified = %d, want 1: dry-run still classifies", stats.Classified)
	}
}

func TestInitialTriageNoClassify(t *testing.T) {
	source := &fakeSource{open: []model.Issue{candidateIssue(1)}}
	classifier := &fakeClassifier{}
	store := &fakeStore{}
	e := newTestEngine(source, classifier, store)

	stats, err := e.InitialTriage(context.Background(), InitialOptions{Classify: false})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Classified != 0 {
		t.Errorf("Classified = %d, want 0", stats.Classified)
	}
	if len(classifier.seen) != 0 {
		t.Error("classifier called despite Classify=false")
	}
	if got := store.row(t, 1); got.Status != model.StatusCandidate || got.Difficulty != "" {
		t.Errorf("row = %+v, want unclassified Candidate", got)
	}
}

func TestInitialTriageFetchesCommentsForCandidates(t *testing.T) {
	withComments := candidateIssue(1)
	withComments.CommentsCount = 3
	without := candidateIssue(2)

	source := &fakeSource{open: []model.Issue{withComments, without}}
	classifier := &fakeClassifier{}
	store := &fakeStore{}
	e := newTestEngine(source, classifier, store)

	if _, err := e.InitialTriage(context.Background(), InitialOptions{Classify: true}); err != nil {
		t.Fatal(err)
	}

	if len(source.commentCalls) != 1 || source.commentCalls[0] != 1 {
		t.Errorf("comment fetches = %v, want just #1", source.commentCalls)
	}
	if got := classifier.seen[1]; len(got.RecentComments) != 1 {
		t.Errorf("classifier saw %d comments for #1, want 1", len(got.RecentComments))
	}
	if got := classifier.seen[2]; len(got.RecentComments) != 0 {
		t.Errorf("classifier saw %d comments for #2, want 0", len(got.RecentComments))
	}
}

func TestHasMeaningfulChange(t *testing.T) {
	base := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	storedRow := model.Row{
		Number:          1,
		Labels:          []string{"A", "B"},
		GitHubUpdatedAt: base.Format(time.RFC3339),
	}

	tests := []struct {
		name  string
		issue model.Issue
		want  bool
	}{
		{
			name:  "nothing changed",
			issue: model.Issue{UpdatedAt: base, Labels: []string{"A", "B"}},
			want:  false,
		},
		{
			name:  "label order is irrelevant",
			issue: model.Issue{UpdatedAt: base, Labels: []string{"B", "A"}},
			want:  false,
		},
		{
			name:  "only comment count drifted",
			issue: model.Issue{UpdatedAt: base, Labels: []string{"A", "B"}, CommentsCount: 42},
			want:  false,
		},
		{
			name:  "updated_at moved",
			issue: model.Issue{UpdatedAt: base.Add(time.Hour), Labels: []string{"A", "B"}},
			want:  true,
		},
		{
			name:  "label added",
			issue: model.Issue{UpdatedAt: base, Labels: []string{"A", "B", "C"}},
			want:  true,
		},
		{
			name:  "label swapped",
			issue: model.Issue{UpdatedAt: base, Labels: []string{"A", "C"}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasMeaningfulChange(tt.issue, storedRow); got != tt.want {
				t.Errorf("hasMeaningfulChange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	base := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	changed := candidateIssue(10)
	changed.UpdatedAt = base.Add(2 * time.Hour)
	unchanged := plainIssue(11)

	source := &fakeSource{open: []model.Issue{changed, unchanged, candidateIssue(12)}}
	classifier := &fakeClassifier{}
	store := &fakeStore{rows: []model.Row{
		{Number: 10, Status: model.StatusCandidate, Labels: changed.Labels, GitHubUpdatedAt: base.Format(time.RFC3339)},
		{Number: 11, Status: model.StatusFiltered, Labels: unchanged.Labels, GitHubUpdatedAt: base.Format(time.RFC3339)},
	}}
	e := newTestEngine(source, classifier, store)

	stats, err := e.Update(context.Background(), 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if stats.NewIssues != 1 || stats.ChangedIssues != 1 {
		t.Errorf("stats = %+v, want 1 new and 1 changed", stats)
	}
	if len(store.marked) != 1 || store.marked[0] != 10 {
		t.Errorf("marked = %v, want [10]", store.marked)
	}

	// The changed row is only flagged; its other fields stay untouched.
	if got := store.row(t, 10); !got.NeedsRetriage || got.Status != model.StatusCandidate {
		t.Errorf("changed row = %+v, want flagged with status intact", got)
	}

	// The new issue went through the full classify flow.
	if got := store.row(t, 12); got.Status != model.StatusCandidate || got.Difficulty != "Low" {
		t.Errorf("new row = %+v", got)
	}

	if store.replaced != 1 {
		t.Errorf("projection replaced %d times, want 1", store.replaced)
	}
}

func TestRetriageFlagged(t *testing.T) {
	fresh := candidateIssue(20)
	source := &fakeSource{
		byNumber: map[int]model.Issue{20: fresh},
		fetchErr: map[int]error{21: errors.New("503 from tracker")},
	}
	classifier := &fakeClassifier{}
	store := &fakeStore{rows: []model.Row{
		{Number: 20, Status: model.StatusCandidate, Difficulty: "Medium", SkillMatch: "Maybe", NeedsRetriage: true},
		{Number: 21, Status: model.StatusCandidate, NeedsRetriage: true},
		{Number: 22, Status: model.StatusCompleted},
	}}
	e := newTestEngine(source, classifier, store)

	count, err := e.RetriageFlagged(context.Background())
	if err != nil {
		t.Fatalf("RetriageFlagged: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (fetch failure is skipped, not fatal)", count)
	}

	got := store.row(t, 20)
	if got.Status != model.StatusRetriaged {
		t.Errorf("status = %q, want Re-triaged", got.Status)
	}
	if got.NeedsRetriage {
		t.Error("re-triage must clear the flag")
	}

	prev := classifier.previous[20]
	if prev == nil || prev.Difficulty != "Medium" || prev.SkillMatch != "Maybe" {
		t.Errorf("previous classification not surfaced: %+v", prev)
	}

	// The failed fetch leaves #21 untouched and still flagged.
	if got := store.row(t, 21); !got.NeedsRetriage || got.Status != model.StatusCandidate {
		t.Errorf("skipped row = %+v, want untouched", got)
	}
	if _, called := classifier.previous[21]; called {
		t.Error("classifier must not run for an issue that failed to fetch")
	}
}
