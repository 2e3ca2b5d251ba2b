package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/analysis"
	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/crawl"
	"github.com/sells-group/site-analyzer/internal/dispatch"
	"github.com/sells-group/site-analyzer/internal/llm"
	"github.com/sells-group/site-analyzer/internal/prompt"
	"github.com/sells-group/site-analyzer/internal/session"
)

// appEnv holds the providers and services shared by every command.
type appEnv struct {
	Crawler    crawl.Crawler
	Completer  llm.Completer
	Analyzer   *analysis.Analyzer
	Dispatcher *dispatch.Dispatcher
	Store      *session.Store
	Sessions   *session.Service
}

// newAppEnv is swapped in tests.
var newAppEnv = initApp

// initApp constructs provider clients once from config. Missing API keys are
// not fatal here; they surface on the first call that needs them.
func initApp(c *config.Config) (*appEnv, error) {
	crawler, err := crawl.New(c)
	if err != nil {
		return nil, err
	}
	completer, err := llm.New(c)
	if err != nil {
		return nil, err
	}
	return buildAppEnv(c, crawler, completer)
}

func buildAppEnv(c *config.Config, crawler crawl.Crawler, completer llm.Completer) (*appEnv, error) {
	prompts, err := prompt.Default()
	if err != nil {
		return nil, err
	}

	analyzer := analysis.New(completer, prompts, c.Analysis.MaxChars)
	store := session.NewStore(time.Duration(c.Session.TTLMinutes) * time.Minute)

	zap.L().Debug("providers ready",
		zap.String("crawler", crawler.Name()),
		zap.String("llm", completer.Name()),
		zap.Strings("actions", analyzer.Actions()),
	)

	return &appEnv{
		Crawler:    crawler,
		Completer:  completer,
		Analyzer:   analyzer,
		Dispatcher: dispatch.New(crawler, analyzer, c.Crawl.PageLimit),
		Store:      store,
		Sessions:   session.NewService(store, crawler, analyzer, c.Crawl.PageLimit),
	}, nil
}
