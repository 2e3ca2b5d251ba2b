// Package llm sends one system+user prompt to a language-model provider and
// returns the raw text of the reply.
package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/pkg/anthropic"
	"github.com/sells-group/site-analyzer/pkg/groq"
)

// Request is a single completion request.
type Request struct {
	Action string // for logging and cost attribution
	System string
	User   string
	JSON   bool // ask the provider for a JSON object reply
}

// Completer performs exactly one provider call per Complete. It never retries.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the completer selected by llm.provider. A missing key is
// reported per call as MissingCredential.
func New(cfg *config.Config) (Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGroq:
		if cfg.Groq.Key == "" {
			return &unavailable{name: config.ProviderGroq, credential: "GROQ_API_KEY"}, nil
		}
		client := groq.NewClient(cfg.Groq.Key,
			groq.WithBaseURL(cfg.Groq.BaseURL),
			groq.WithModel(cfg.Groq.Model),
		)
		return NewGroq(client), nil
	case config.ProviderAnthropic:
		if cfg.Anthropic.Key == "" {
			return &unavailable{name: config.ProviderAnthropic, credential: "ANTHROPIC_API_KEY"}, nil
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return NewAnthropic(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}
}

type unavailable struct {
	name       string
	credential string
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) Complete(context.Context, Request) (string, error) {
	return "", apperr.MissingCredential(u.credential)
}
