package triage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmholla/triagebot/internal/classify"
	"github.com/jmholla/triagebot/internal/filter"
	"github.com/jmholla/triagebot/internal/format"
	"github.com/jmholla/triagebot/internal/log"
	"github.com/jmholla/triagebot/internal/model"
)

const (
	// classifyWorkers bounds the classification fan-out during initial
	// triage. Fixed: balances wall time against LLM rate limits.
	classifyWorkers = 5

	// maxRecentComments caps how many comments are fetched per candidate.
	maxRecentComments = 5

	maxTitleChars   = 100
	maxSummaryChars = 200

	progressEvery = 10
)

// ProgressFunc receives human-facing progress lines. May be nil.
type ProgressFunc func(line string)

// Engine drives the reconciliation pipeline against its collaborators. All
// ledger writes happen on the calling goroutine; only classification fans
// out, and each worker's output targets a distinct issue number.
type Engine struct {
	source     IssueSource
	classifier Classifier
	store      LedgerStore
	filter     *filter.Filter

	onProgress ProgressFunc
	now        func() time.Time
}

// NewEngine creates an Engine. onProgress may be nil.
func NewEngine(source IssueSource, classifier Classifier, store LedgerStore, f *filter.Filter, onProgress ProgressFunc) *Engine {
	return &Engine{
		source:     source,
		classifier: classifier,
		store:      store,
		filter:     f,
		onProgress: onProgress,
		now:        time.Now,
	}
}

func (e *Engine) progress(line string) {
	if e.onProgress != nil {
		e.onProgress(line)
	}
}

// InitialOptions configures an initial triage run.
type InitialOptions struct {
	MaxPages int  // pages of 100 issues; 0 = all
	Classify bool // run LLM classification over auto-candidates
	DryRun   bool // compute everything, write nothing
}

// InitialStats summarizes an initial triage run.
type InitialStats struct {
	TotalFetched   int
	NewIssues      int
	PassedFilters  int
	AutoCandidates int
	Classified     int
	Written        int
}

// filtered pairs an issue with its rule-filter result.
type filtered struct {
	issue model.Issue
	res   filter.Result
}

// outcome is one processed issue ready to be written.
type outcome struct {
	issue  model.Issue
	res    filter.Result
	cls    *classify.Classification
	status model.Status
}

// InitialTriage fetches open issues and processes every issue the ledger has
// not seen: rule filter, bounded-concurrency classification of
// auto-candidates, then idempotent upserts and a projection rebuild. Issues
// already present in the ledger are skipped entirely; issues that fail the
// filter are counted but never written.
func (e *Engine) InitialTriage(ctx context.Context, opts InitialOptions) (InitialStats, error) {
	var stats InitialStats

	e.progress(fmt.Sprintf("Fetching issues (max %d pages)...", opts.MaxPages))
	issues, err := e.source.OpenIssues(ctx, opts.MaxPages)
	if err != nil {
		return stats, err
	}
	stats.TotalFetched = len(issues)
	e.progress(fmt.Sprintf("Fetched %d open issues (excluding PRs)", len(issues)))

	rows, err := e.store.Rows(ctx)
	if err != nil {
		return stats, err
	}
	existing := indexRows(rows)

	var newIssues []model.Issue
	for _, issue := range issues {
		if _, ok := existing[issue.Number]; !ok {
			newIssues = append(newIssues, issue)
		}
	}
	stats.NewIssues = len(newIssues)
	e.progress(fmt.Sprintf("Found %d new issues to process", len(newIssues)))

	var candidates, nonCandidates []filtered
	for _, issue := range newIssues {
		res := e.filter.Apply(issue)
		if !res.Passed {
			log.Debug("filtered out", "issue", issue.Number, "reason", res.ExcludeReason)
			continue
		}
		if res.AutoCandidate {
			candidates = append(candidates, filtered{issue, res})
		} else {
			nonCandidates = append(nonCandidates, filtered{issue, res})
		}
	}
	stats.PassedFilters = len(candidates) + len(nonCandidates)
	stats.AutoCandidates = len(candidates)
	e.progress(fmt.Sprintf("  %d issues passed filters, %d auto-candidates", stats.PassedFilters, stats.AutoCandidates))

	var results []outcome
	if opts.Classify && len(candidates) > 0 {
		e.progress(fmt.Sprintf("Classifying %d candidates...", len(candidates)))
		classified, err := e.classifyAll(ctx, candidates)
		if err != nil {
			return stats, err
		}
		results = classified
		stats.Classified = len(classified)
	} else {
		// Classification disabled: candidates keep their Candidate status
		// so they still land in the ledger.
		for _, c := range candidates {
			results = append(results, outcome{issue: c.issue, res: c.res, status: model.StatusCandidate})
		}
	}

	for _, nc := range nonCandidates {
		results = append(results, outcome{issue: nc.issue, res: nc.res, status: model.StatusFiltered})
	}

	if opts.DryRun || len(results) == 0 {
		return stats, nil
	}

	e.progress(fmt.Sprintf("Writing %d issues to the ledger...", len(results)))
	for i, r := range results {
		row := e.buildRow(r.issue, r.cls, r.res, r.status)
		if err := e.store.Upsert(ctx, row); err != nil {
			return stats, fmt.Errorf("upsert #%d: %w", r.issue.Number, err)
		}
		stats.Written++
		if (i+1)%progressEvery == 0 {
			e.progress(fmt.Sprintf("  written %d/%d...", i+1, len(results)))
		}
	}

	if err := e.refreshProjection(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// classifyAll fans candidate classification out over a bounded worker pool.
// Results come back in completion order; that only affects log ordering
// since every upsert targets a distinct issue number.
func (e *Engine) classifyAll(ctx context.Context, candidates []filtered) ([]outcome, error) {
	results := make([]outcome, 0, len(candidates))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(classifyWorkers)

	for _, cand := range candidates {
		g.Go(func() error {
			issue := cand.issue
			if issue.CommentsCount > 0 {
				comments, err := e.source.Comments(gctx, issue.Number, maxRecentComments)
				if err != nil {
					return fmt.Errorf("comments for #%d: %w", issue.Number, err)
				}
				issue.RecentComments = comments
			}

			cls := e.classifier.Classify(gctx, issue, nil)
			status := model.StatusCandidate
			if !cls.Failed() && cls.SkillMatch == "No" {
				// The model's negative skill signal overrides the
				// rule-based auto-candidate signal.
				status = model.StatusFiltered
			}

			mu.Lock()
			results = append(results, outcome{issue: issue, res: cand.res, cls: &cls, status: status})
			done++
			n := done
			mu.Unlock()

			e.progress(fmt.Sprintf("  [%d/%d] #%d: %s", n, len(candidates), issue.Number, format.Truncate(issue.Title, 50)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateStats summarizes an update cycle.
type UpdateStats struct {
	NewIssues     int
	ChangedIssues int
}

// Update runs the differential cycle: flag meaningfully changed issues for
// re-triage and run the full filter → classify → upsert flow over issues
// the ledger has never seen.
func (e *Engine) Update(ctx context.Context, maxPages int) (UpdateStats, error) {
	var stats UpdateStats

	e.progress("Fetching recent issues...")
	issues, err := e.source.OpenIssues(ctx, maxPages)
	if err != nil {
		return stats, err
	}

	rows, err := e.store.Rows(ctx)
	if err != nil {
		return stats, err
	}
	existing := indexRows(rows)

	var newIssues []model.Issue
	var changed []int
	for _, issue := range issues {
		row, ok := existing[issue.Number]
		if !ok {
			newIssues = append(newIssues, issue)
			continue
		}
		if hasMeaningfulChange(issue, row) {
			changed = append(changed, issue.Number)
		}
	}
	stats.NewIssues = len(newIssues)
	stats.ChangedIssues = len(changed)
	e.progress(fmt.Sprintf("Found %d new, %d changed issues", len(newIssues), len(changed)))

	if len(changed) > 0 {
		if err := e.store.MarkNeedsRetriage(ctx, changed); err != nil {
			return stats, err
		}
		e.progress(fmt.Sprintf("Marked %d issues for re-triage", len(changed)))
	}

	for _, issue := range newIssues {
		res := e.filter.Apply(issue)
		if !res.Passed {
			continue
		}

		var cls *classify.Classification
		status := model.StatusFiltered
		if res.AutoCandidate {
			c := e.classifier.Classify(ctx, issue, nil)
			cls = &c
			status = model.StatusCandidate
			if !c.Failed() && c.SkillMatch == "No" {
				status = model.StatusFiltered
			}
			e.progress(fmt.Sprintf("  classified #%d: %s", issue.Number, format.Truncate(issue.Title, 50)))
		}

		row := e.buildRow(issue, cls, res, status)
		if err := e.store.Upsert(ctx, row); err != nil {
			return stats, fmt.Errorf("upsert #%d: %w", issue.Number, err)
		}
	}

	if err := e.refreshProjection(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// RetriageFlagged re-evaluates every row flagged needs-retriage: fresh fetch,
// fresh rule filter, classification with the previous assessment as context,
// then an overwrite upsert as Re-triaged (which clears the flag). A fetch
// failure skips that issue and keeps the batch going. Returns the number of
// issues actually re-triaged.
func (e *Engine) RetriageFlagged(ctx context.Context) (int, error) {
	rows, err := e.store.Rows(ctx)
	if err != nil {
		return 0, err
	}

	var flagged []model.Row
	for _, row := range rows {
		if row.NeedsRetriage {
			flagged = append(flagged, row)
		}
	}
	e.progress(fmt.Sprintf("Found %d issues needing re-triage", len(flagged)))

	count := 0
	for _, old := range flagged {
		e.progress(fmt.Sprintf("Re-triaging #%d...", old.Number))

		issue, err := e.source.Issue(ctx, old.Number)
		if err != nil {
			log.Warn("retriage fetch failed, skipping", "issue", old.Number, "error", err)
			e.progress(fmt.Sprintf("  error fetching #%d, skipped", old.Number))
			continue
		}

		cls := e.classifier.Classify(ctx, issue, &classify.Previous{
			Difficulty: old.Difficulty,
			SkillMatch: old.SkillMatch,
		})
		// Labels may have changed, so the rule filter runs again too.
		res := e.filter.Apply(issue)

		row := e.buildRow(issue, &cls, res, model.StatusRetriaged)
		if err := e.store.Upsert(ctx, row); err != nil {
			return count, fmt.Errorf("upsert #%d: %w", issue.Number, err)
		}
		count++
	}

	if err := e.refreshProjection(ctx); err != nil {
		return count, err
	}
	return count, nil
}

// RefreshProjection recomputes the Active Candidates view from the current
// ledger contents.
func (e *Engine) RefreshProjection(ctx context.Context) error {
	return e.refreshProjection(ctx)
}

func (e *Engine) refreshProjection(ctx context.Context) error {
	rows, err := e.store.Rows(ctx)
	if err != nil {
		return err
	}
	if err := e.store.ReplaceProjection(ctx, Project(rows)); err != nil {
		return fmt.Errorf("replace projection: %w", err)
	}
	return nil
}

// buildRow assembles the full ledger row for an upsert. The upsert is a
// whole-row overwrite, so NeedsRetriage resets to false here and stays false
// unless a later update cycle flags the row again.
func (e *Engine) buildRow(issue model.Issue, cls *classify.Classification, res filter.Result, status model.Status) model.Row {
	row := model.Row{
		Number:          issue.Number,
		Title:           format.Clip(issue.Title, maxTitleChars),
		URL:             issue.URL,
		Labels:          issue.Labels,
		Status:          status,
		LastCheckedAt:   e.now().UTC().Format(time.RFC3339),
		GitHubUpdatedAt: issue.UpdatedAt.UTC().Format(time.RFC3339),
		AutoCandidate:   res.AutoCandidate,
		PositiveSignals: strings.Join(res.PositiveSignals, ", "),
	}

	if cls != nil {
		row.Difficulty = cls.Difficulty
		row.SkillMatch = cls.SkillMatch
		row.ScopeClarity = cls.ScopeClarity
		row.TestFocused = cls.TestFocused
		row.RiskFlags = strings.Join(cls.RiskFlags, ", ")
		row.Reason = cls.OneLineReason
		row.Summary = cls.Summary
	}

	return row
}

// hasMeaningfulChange reports whether a fresh snapshot differs from the
// stored row in a way that warrants re-triage: the tracker's updated_at
// timestamp moved, or the label set changed. Everything else (comment counts,
// body edits reflected in updated_at anyway) is ignored.
func hasMeaningfulChange(issue model.Issue, row model.Row) bool {
	if issue.UpdatedAt.UTC().Format(time.RFC3339) != row.GitHubUpdatedAt {
		return true
	}

	fresh := issue.LabelSet()
	stored := row.LabelSet()
	if len(fresh) != len(stored) {
		return true
	}
	for l := range fresh {
		if _, ok := stored[l]; !ok {
			return true
		}
	}
	return false
}

func indexRows(rows []model.Row) map[int]model.Row {
	index := make(map[int]model.Row, len(rows))
	for _, row := range rows {
		index[row.Number] = row
	}
	return index
}
