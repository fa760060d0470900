// Package filter implements the rule-based pass/fail and auto-candidate
// checks applied to every issue before any LLM call.
package filter

import (
	"fmt"
	"strings"

	"github.com/jmholla/triagebot/internal/model"
)

// autoCandidateThreshold is the number of positive signals required before an
// issue is queued for LLM classification.
const autoCandidateThreshold = 2

// Result is the outcome of applying the filter to a single issue.
// ExcludeReason is set only when Passed is false; PositiveSignals is only
// populated for passing issues.
type Result struct {
	Passed          bool
	AutoCandidate   bool
	ExcludeReason   string
	PositiveSignals []string
}

// Filter holds the rule lists. All matching is side-effect free; Apply never
// performs I/O.
type Filter struct {
	ExcludeLabels     []string
	PositiveLabels    []string
	HighValuePatterns []string
	PositiveKeywords  []string
}

// Default returns a Filter with the built-in rule lists, tuned for the
// WordPress/gutenberg label taxonomy.
func Default() *Filter {
	return &Filter{
		ExcludeLabels: []string{
			"blocker",
			"[Status] Blocked",
			"[Priority] High",
			"Needs Design",
			"Needs Design Feedback",
			"[Status] Stale",
		},
		PositiveLabels: []string{
			"Needs Tests",
			"Good First Issue",
			"good first issue",
			"[Type] Bug",
			"[Type] Enhancement",
			"JavaScript",
			"TypeScript",
			"[Block]",
			"[Package]",
			"Unit Tests",
			"e2e Tests",
			"[Type] Automated Testing",
		},
		HighValuePatterns: []string{
			"[Flaky Test]",
			"Good First Issue",
			"good first issue",
		},
		PositiveKeywords: []string{
			"test",
			"tests",
			"testing",
			"block",
			"blocks",
			"typescript",
			"javascript",
			"unit test",
			"e2e",
			"snapshot",
		},
	}
}

// Apply runs the rule filter over a single issue.
//
// Excluded labels are matched exactly (case-sensitive) and take precedence
// over every positive signal. Passing issues collect signals from three
// sources: high-value patterns (case-insensitive against the title, exact
// against labels), positive label substrings (case-insensitive, first match
// per entry), and keywords (substrings of the lowercased title plus body).
func (f *Filter) Apply(issue model.Issue) Result {
	labels := issue.LabelSet()
	titleLower := strings.ToLower(issue.Title)
	bodyLower := strings.ToLower(issue.Body)

	for _, excl := range f.ExcludeLabels {
		if _, ok := labels[excl]; ok {
			return Result{
				Passed:        false,
				AutoCandidate: false,
				ExcludeReason: fmt.Sprintf("Excluded label: %s", excl),
			}
		}
	}

	var signals []string

	for _, pattern := range f.HighValuePatterns {
		if strings.Contains(titleLower, strings.ToLower(pattern)) || issue.HasLabel(pattern) {
			signals = append(signals, fmt.Sprintf("High-value: %s", pattern))
		}
	}

	for _, pos := range f.PositiveLabels {
		posLower := strings.ToLower(pos)
		for _, label := range issue.Labels {
			if strings.Contains(strings.ToLower(label), posLower) {
				signals = append(signals, fmt.Sprintf("Label: %s", label))
				break
			}
		}
	}

	text := titleLower + " " + bodyLower
	for _, kw := range f.PositiveKeywords {
		if strings.Contains(text, kw) {
			signals = append(signals, fmt.Sprintf("Keyword: %s", kw))
		}
	}

	return Result{
		Passed:          true,
		AutoCandidate:   len(signals) >= autoCandidateThreshold,
		PositiveSignals: signals,
	}
}

// IsHighValue reports whether the issue matches a high-value pattern in its
// title or labels (exact match in both cases).
func (f *Filter) IsHighValue(issue model.Issue) bool {
	for _, pattern := range f.HighValuePatterns {
		if strings.Contains(issue.Title, pattern) || issue.HasLabel(pattern) {
			return true
		}
	}
	return false
}
