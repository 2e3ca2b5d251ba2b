// Package dispatch routes {action, payload} requests to the crawl provider
// or to one analysis action.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/analysis"
	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/crawl"
)

// ActionCrawl starts a crawl of payload.url.
const ActionCrawl = "crawlWebsite"

// Request is the body of an action call. Payload is decoded per action.
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type crawlPayload struct {
	URL string `json:"url"`
}

type analysisPayload struct {
	Markdown string `json:"markdown"`
}

// Dispatcher validates a request's payload and runs its action. It never
// calls a provider for a request that fails validation.
type Dispatcher struct {
	crawler   crawl.Crawler
	analyzer  *analysis.Analyzer
	pageLimit int
}

// New creates a Dispatcher.
func New(crawler crawl.Crawler, analyzer *analysis.Analyzer, pageLimit int) *Dispatcher {
	return &Dispatcher{crawler: crawler, analyzer: analyzer, pageLimit: pageLimit}
}

// Actions lists every action the dispatcher accepts.
func (d *Dispatcher) Actions() []string {
	return append([]string{ActionCrawl}, d.analyzer.Actions()...)
}

// Dispatch runs one action. Crawls return the crawl result; Markdown
// analyses return {summary}; structured analyses return the result object.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (any, error) {
	log := zap.L().With(zap.String("action", req.Action))

	switch {
	case req.Action == ActionCrawl:
		var p crawlPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		target, err := crawl.ValidateURL(p.URL)
		if err != nil {
			return nil, err
		}
		log.Debug("dispatch: crawl", zap.String("url", target))
		return d.crawler.Crawl(ctx, target, crawl.Options{Limit: d.pageLimit})

	case d.analyzer.Has(req.Action):
		var p analysisPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return nil, err
		}
		log.Debug("dispatch: analyze", zap.Int("chars", len(p.Markdown)))
		res, err := d.analyzer.Run(ctx, req.Action, p.Markdown)
		if err != nil {
			return nil, err
		}
		return res.Payload(), nil

	default:
		return nil, apperr.UnknownAction()
	}
}

// decodePayload treats an absent or null payload as empty so the missing
// field is reported by name.
func decodePayload(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return apperr.InvalidRequest("payload must be an object with string fields", err)
	}
	return nil
}
