package llm

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/pkg/anthropic"
)

const providerAnthropic = "Anthropic"

// Anthropic completes prompts with the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic wraps an Anthropic client.
func NewAnthropic(client anthropic.Client, model string, maxTokens int64) *Anthropic {
	if model == "" {
		model = anthropic.DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Anthropic{client: client, model: model, maxTokens: maxTokens}
}

// Name implements Completer.
func (a *Anthropic) Name() string { return "anthropic" }

// Complete implements Completer. The Messages API has no JSON mode; JSON
// requests rely on the prompt alone.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    req.System,
		Messages:  []anthropic.Message{{Role: "user", Content: req.User}},
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return "", apperr.Provider(providerAnthropic, apiErr.StatusCode, apiErr.Body)
		}
		return "", eris.Wrap(err, "llm: anthropic")
	}

	resp.Usage.LogCost(a.model, req.Action)
	return resp.Text(), nil
}
