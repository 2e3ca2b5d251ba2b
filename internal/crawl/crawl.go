// Package crawl turns a URL into an ordered list of markdown pages using a
// third-party crawl provider.
package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/pkg/firecrawl"
	"github.com/sells-group/site-analyzer/pkg/jina"
)

// Options tunes a single crawl. A zero Limit uses the crawler's default.
type Options struct {
	Limit int
}

// Crawler fetches a site and returns its pages in crawl order. An empty page
// list is a successful result.
type Crawler interface {
	Crawl(ctx context.Context, rawURL string, opts Options) (*model.CrawlResult, error)
	Name() string
}

// ValidateURL checks that raw is an absolute http(s) URL with a host and
// returns it trimmed. Nothing is fetched.
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", apperr.MissingField("url")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", apperr.InvalidURL(raw)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", apperr.InvalidURL(raw)
	}
	if u.Hostname() == "" {
		return "", apperr.InvalidURL(raw)
	}
	return trimmed, nil
}

// New builds the crawler selected by crawl.provider. A missing Firecrawl key
// is not an error here; the returned crawler reports it on every call.
func New(cfg *config.Config) (Crawler, error) {
	switch cfg.Crawl.Provider {
	case config.ProviderFirecrawl:
		if cfg.Firecrawl.Key == "" {
			return &unavailable{name: config.ProviderFirecrawl, credential: "FIRECRAWL_API_KEY"}, nil
		}
		client := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		return NewFirecrawl(client, cfg.Crawl.PageLimit,
			firecrawl.WithPollInterval(time.Duration(cfg.Crawl.PollIntervalSecs)*time.Second),
			firecrawl.WithPollCap(time.Duration(cfg.Crawl.PollCapSecs)*time.Second),
			firecrawl.WithPollTimeout(time.Duration(cfg.Crawl.TimeoutSecs)*time.Second),
		), nil
	case config.ProviderJina:
		return NewJina(jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))), nil
	default:
		return nil, eris.Errorf("crawl: unknown provider %q", cfg.Crawl.Provider)
	}
}

// unavailable stands in for a provider whose credential is not configured.
type unavailable struct {
	name       string
	credential string
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) Crawl(_ context.Context, rawURL string, _ Options) (*model.CrawlResult, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return nil, apperr.MissingCredential(u.credential)
}
