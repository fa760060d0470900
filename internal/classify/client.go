package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jmholla/triagebot/internal/model"
)

const (
	openRouterBaseURL    = "https://openrouter.ai/api/v1"
	openRouterCreditsURL = "https://openrouter.ai/api/v1/credits"

	// DefaultModel is cheap and reasons well enough for triage work.
	DefaultModel = "deepseek/deepseek-chat"

	requestTimeout = 30 * time.Second
	maxTokens      = 500
	temperature    = 0.1
)

// Previous carries the prior classification surfaced to the model during
// re-triage so it knows this is a re-evaluation.
type Previous struct {
	Difficulty string
	SkillMatch string
}

// Client classifies issues through OpenRouter's chat completion API.
type Client struct {
	api    *openai.Client
	apiKey string
	model  string
	http   *http.Client
}

// NewClient creates a classifier client. An empty model selects DefaultModel.
func NewClient(apiKey, llmModel string) *Client {
	if llmModel == "" {
		llmModel = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  llmModel,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Classify runs one classification attempt for an issue. It never returns a
// Go error: transport failures and malformed completions are folded into an
// error Classification so callers can treat the outcome as plain data.
func (c *Client) Classify(ctx context.Context, issue model.Issue, previous *Previous) Classification {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(issue, previous)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("completion request: %v", err))
	}
	if len(resp.Choices) == 0 {
		return errorResult("completion returned no choices")
	}
	return parseResponse(resp.Choices[0].Message.Content)
}

// creditsResponse mirrors OpenRouter's GET /credits payload.
type creditsResponse struct {
	Data struct {
		TotalCredits float64 `json:"total_credits"`
		TotalUsage   float64 `json:"total_usage"`
	} `json:"data"`
}

// Balance fetches the remaining OpenRouter credit balance. go-openai has no
// binding for the credits endpoint, so this talks to it directly.
func (c *Client) Balance(ctx context.Context) (remaining, used float64, display string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openRouterCreditsURL, nil)
	if err != nil {
		return 0, 0, "", fmt.Errorf("build credits request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, "", fmt.Errorf("fetch credits: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, "", fmt.Errorf("fetch credits: unexpected status %s", resp.Status)
	}

	var credits creditsResponse
	if err := json.NewDecoder(resp.Body).Decode(&credits); err != nil {
		return 0, 0, "", fmt.Errorf("decode credits response: %w", err)
	}

	balance := credits.Data.TotalCredits
	used = credits.Data.TotalUsage
	remaining = balance - used
	display = fmt.Sprintf("Balance: $%.4f | Used: $%.4f | Remaining: $%.4f", balance, used, remaining)
	return remaining, used, display, nil
}
