// Package model defines the core data types shared across the triage pipeline.
package model

import "time"

// Truncation limits applied when snapshotting GitHub data.
const (
	MaxBodyChars    = 2000
	MaxCommentChars = 500
)

// TruncationMarker is appended to bodies cut at MaxBodyChars.
const TruncationMarker = "... [truncated]"

// Issue is an immutable snapshot of a GitHub issue at fetch time.
// A new fetch of the same number supersedes (never mutates) the old snapshot.
type Issue struct {
	Number         int
	Title          string
	URL            string
	Labels         []string
	Body           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Assignee       string
	CommentsCount  int
	RecentComments []Comment
}

// LabelSet returns the issue's labels as a set.
func (i Issue) LabelSet() map[string]struct{} {
	set := make(map[string]struct{}, len(i.Labels))
	for _, l := range i.Labels {
		set[l] = struct{}{}
	}
	return set
}

// HasLabel reports whether the issue carries the exact label name.
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Comment is a snapshot of an issue comment.
type Comment struct {
	Author       string
	Body         string
	CreatedAt    time.Time
	IsMaintainer bool
}
