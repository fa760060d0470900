// Package classify calls an OpenAI-compatible completion API (OpenRouter) to
// classify issues, returning results as values rather than errors so a bad
// response for one issue never aborts a batch.
package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmholla/triagebot/internal/format"
)

// Sentinel values for classification enum fields.
const (
	ValueUnknown = "Unknown"
	ValueError   = "Error"
)

// Classification is the structured result of one LLM classification attempt.
//
// A Classification is either clean (Err empty, enums drawn from their valid
// value sets) or an error result (Err set, every enum collapsed to "Error",
// RiskFlags holding exactly the error message) — never a mix.
type Classification struct {
	Difficulty    string   `json:"difficulty"`
	SkillMatch    string   `json:"skill_match"`
	ScopeClarity  string   `json:"scope_clarity"`
	TestFocused   string   `json:"test_focused"`
	RiskFlags     []string `json:"risk_flags"`
	OneLineReason string   `json:"one_line_reason"`
	Summary       string   `json:"summary"`

	Err string `json:"-"`
}

// Failed reports whether this is an error result.
func (c Classification) Failed() bool {
	return c.Err != ""
}

// errorResult builds the error-sentinel Classification for msg.
func errorResult(msg string) Classification {
	return Classification{
		Difficulty:    ValueError,
		SkillMatch:    ValueError,
		ScopeClarity:  ValueError,
		TestFocused:   ValueError,
		RiskFlags:     []string{msg},
		OneLineReason: fmt.Sprintf("Classification failed: %s", msg),
		Err:           msg,
	}
}

// parseResponse decodes a model completion into a Classification. Markdown
// code fences are stripped first; anything that still fails to decode becomes
// an error result rather than a Go error.
func parseResponse(raw string) Classification {
	content := strings.TrimSpace(raw)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	var c Classification
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		snippet := format.Clip(raw, 200)
		return errorResult(fmt.Sprintf("JSON parse error: %v. Raw: %s", err, snippet))
	}

	if c.Difficulty == "" {
		c.Difficulty = ValueUnknown
	}
	if c.SkillMatch == "" {
		c.SkillMatch = ValueUnknown
	}
	if c.ScopeClarity == "" {
		c.ScopeClarity = ValueUnknown
	}
	if c.TestFocused == "" {
		c.TestFocused = ValueUnknown
	}
	return c
}
