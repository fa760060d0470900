// Package triage implements the reconciliation pipeline: diffing fetched
// issues against the persisted ledger, driving the filter → classify → upsert
// flow, and recomputing the Active Candidates projection.
package triage

import (
	"context"

	"github.com/jmholla/triagebot/internal/classify"
	"github.com/jmholla/triagebot/internal/model"
)

// IssueSource fetches issue snapshots from the tracker. Implementations must
// exclude pull requests and surface transport failures as errors.
type IssueSource interface {
	// OpenIssues returns open issues sorted most-recently-updated first.
	// maxPages bounds pagination; 0 means fetch everything.
	OpenIssues(ctx context.Context, maxPages int) ([]model.Issue, error)

	// Issue fetches a single issue by number.
	Issue(ctx context.Context, number int) (model.Issue, error)

	// Comments returns up to max of the issue's newest comments, newest first.
	Comments(ctx context.Context, number, max int) ([]model.Comment, error)
}

// Classifier produces a Classification for an issue. It must never fail with
// an error: bad completions come back as error Classifications.
type Classifier interface {
	Classify(ctx context.Context, issue model.Issue, previous *classify.Previous) classify.Classification
}

// LedgerStore persists triage rows keyed by issue number.
//
// Rows must reflect every prior Upsert (read-after-write consistency) since
// new-vs-existing detection depends on it. Upsert is insert-or-overwrite;
// there is never more than one row per issue number.
type LedgerStore interface {
	// Rows returns all ledger rows in ledger order.
	Rows(ctx context.Context) ([]model.Row, error)

	// Upsert inserts the row, or overwrites the existing row with the same
	// issue number.
	Upsert(ctx context.Context, row model.Row) error

	// MarkNeedsRetriage flags the given issue numbers for re-triage.
	MarkNeedsRetriage(ctx context.Context, numbers []int) error

	// ReplaceProjection replaces the Active Candidates view wholesale.
	ReplaceProjection(ctx context.Context, rows []model.ProjectionRow) error
}
