package classify

import (
	"fmt"
	"strings"

	"github.com/jmholla/triagebot/internal/format"
	"github.com/jmholla/triagebot/internal/model"
)

const (
	maxPromptComments     = 5
	maxCommentPromptChars = 300
)

const systemPrompt = `You triage GitHub issues for an individual contributor who is strongest in
JavaScript/TypeScript and test-focused work, and who wants small, well-scoped
issues they can fix and verify on their own.

Evaluate the issue and respond with ONLY a JSON object containing:
- "difficulty": "Low", "Medium", or "High" — effort for a competent outside contributor
- "skill_match": "Yes", "Maybe", or "No" — fit for JS/TS and testing skills
- "scope_clarity": "Clear", "Somewhat Clear", or "Unclear" — how well-defined the work is
- "risk_flags": array of strings naming risks (architectural changes, breaking changes,
  contentious discussion, needs maintainer decision); empty array if none
- "test_focused": "Yes", "No", or "Unclear" — whether the fix centers on tests
- "one_line_reason": one sentence on why this is or is not a good pick
- "summary": 2-3 sentences describing the underlying problem

No markdown fencing, no commentary, JSON only.`

// buildUserPrompt renders the issue snapshot for the model. When previous is
// set a re-triage block is appended so the model treats this as a
// re-evaluation of a changed issue.
func buildUserPrompt(issue model.Issue, previous *Previous) string {
	labels := "None"
	if len(issue.Labels) > 0 {
		labels = strings.Join(issue.Labels, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", issue.Title)
	fmt.Fprintf(&sb, "Labels: %s\n", labels)
	fmt.Fprintf(&sb, "Recent comments:\n%s\n", renderComments(issue.RecentComments))
	fmt.Fprintf(&sb, "\nBody:\n%s\n", issue.Body)

	if previous != nil {
		prevDifficulty := previous.Difficulty
		if prevDifficulty == "" {
			prevDifficulty = ValueUnknown
		}
		prevMatch := previous.SkillMatch
		if prevMatch == "" {
			prevMatch = ValueUnknown
		}
		fmt.Fprintf(&sb, "\nThis issue changed since it was last evaluated. The previous assessment "+
			"was difficulty %q with skill match %q. Re-evaluate it from scratch against the "+
			"current data above; do not anchor on the previous answer.\n", prevDifficulty, prevMatch)
	}

	return sb.String()
}

func renderComments(comments []model.Comment) string {
	if len(comments) == 0 {
		return "None"
	}
	if len(comments) > maxPromptComments {
		comments = comments[:maxPromptComments]
	}

	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		prefix := ""
		if c.IsMaintainer {
			prefix = "[MAINTAINER] "
		}
		body := format.Clip(c.Body, maxCommentPromptChars)
		lines = append(lines, fmt.Sprintf("- %s%s: %s", prefix, c.Author, body))
	}
	return strings.Join(lines, "\n")
}
