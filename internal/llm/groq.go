package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/pkg/groq"
)

const providerGroq = "Groq"

// Groq completes prompts with Groq's OpenAI-compatible chat API.
type Groq struct {
	client groq.Client
}

// NewGroq wraps a Groq client. The model is the client's default.
func NewGroq(client groq.Client) *Groq {
	return &Groq{client: client}
}

// Name implements Completer.
func (g *Groq) Name() string { return "groq" }

// Complete implements Completer. A reply without choices is malformed; a
// choice with empty content yields "".
func (g *Groq) Complete(ctx context.Context, req Request) (string, error) {
	chat := groq.ChatCompletionRequest{
		Messages: []groq.Message{
			{Role: "system", Content: groq.Content(req.System)},
			{Role: "user", Content: groq.Content(req.User)},
		},
	}
	if req.JSON {
		chat.ResponseFormat = &groq.ResponseFormat{Type: "json_object"}
	}

	start := time.Now()
	resp, err := g.client.ChatCompletion(ctx, chat)
	if err != nil {
		return "", mapGroqError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.MalformedResponse(providerGroq, errors.New("response has no choices"))
	}

	zap.L().Info("llm: completion",
		zap.String("provider", "groq"),
		zap.String("model", resp.Model),
		zap.String("action", req.Action),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return string(resp.Choices[0].Message.Content), nil
}

func mapGroqError(err error) error {
	var apiErr *groq.APIError
	if errors.As(err, &apiErr) {
		return apperr.Provider(providerGroq, apiErr.StatusCode, apiErr.Body)
	}
	var decErr *groq.DecodeError
	if errors.As(err, &decErr) {
		return apperr.MalformedResponse(providerGroq, decErr.Err)
	}
	return eris.Wrap(err, "llm: groq")
}
