package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/pkg/firecrawl"
)

// providerFirecrawl is the name used in error messages.
const providerFirecrawl = "Firecrawl"

// DefaultPageLimit caps the pages requested per crawl.
const DefaultPageLimit = 10

// Firecrawl crawls a site through the Firecrawl crawl API and waits for the
// job to finish. A limit of one page uses the scrape endpoint instead.
type Firecrawl struct {
	client   firecrawl.Client
	limit    int
	pollOpts []firecrawl.PollOption
}

// NewFirecrawl creates a Firecrawl crawler. A non-positive limit falls back
// to DefaultPageLimit.
func NewFirecrawl(client firecrawl.Client, limit int, pollOpts ...firecrawl.PollOption) *Firecrawl {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &Firecrawl{client: client, limit: limit, pollOpts: pollOpts}
}

// Name implements Crawler.
func (f *Firecrawl) Name() string { return "firecrawl" }

// Crawl implements Crawler.
func (f *Firecrawl) Crawl(ctx context.Context, rawURL string, opts Options) (*model.CrawlResult, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	limit := f.limit
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	log := zap.L().With(zap.String("provider", "firecrawl"), zap.String("url", target))
	start := time.Now()

	var result *model.CrawlResult
	if limit == 1 {
		result, err = f.scrapeOne(ctx, target)
	} else {
		result, err = f.crawl(ctx, target, limit)
	}
	if err != nil {
		log.Warn("crawl: failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, mapFirecrawlError(err)
	}

	log.Info("crawl: completed",
		zap.Int("pages", len(result.Data)),
		zap.Int("limit", limit),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func (f *Firecrawl) crawl(ctx context.Context, target string, limit int) (*model.CrawlResult, error) {
	status, err := firecrawl.CrawlAndWait(ctx, f.client, firecrawl.CrawlRequest{
		URL:           target,
		Limit:         limit,
		ScrapeOptions: &firecrawl.ScrapeOptions{Formats: []string{firecrawl.FormatMarkdown}},
	}, f.pollOpts...)
	if err != nil {
		return nil, err
	}

	pages := make([]model.CrawledPage, 0, len(status.Data))
	for _, p := range status.Data {
		pages = append(pages, toPage(p))
	}
	return &model.CrawlResult{
		Success: true,
		Status:  status.Status,
		Total:   status.Total,
		Data:    pages,
		Source:  "firecrawl",
	}, nil
}

func (f *Firecrawl) scrapeOne(ctx context.Context, target string) (*model.CrawlResult, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     target,
		Formats: []string{firecrawl.FormatMarkdown},
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperr.Provider(providerFirecrawl, 0, "scrape of "+target+" was not successful")
	}
	return &model.CrawlResult{
		Success: true,
		Status:  firecrawl.StatusCompleted,
		Total:   1,
		Data:    []model.CrawledPage{toPage(resp.Data)},
		Source:  "firecrawl",
	}, nil
}

func toPage(p firecrawl.PageData) model.CrawledPage {
	return model.CrawledPage{
		Markdown: p.Markdown,
		Metadata: model.PageMetadata{
			Title:       p.Metadata.Title,
			Description: p.Metadata.Description,
			Language:    p.Metadata.Language,
			SourceURL:   p.Metadata.SourceURL,
			StatusCode:  p.Metadata.StatusCode,
		},
	}
}

// mapFirecrawlError classifies client errors. Anything unrecognised (network
// failures, deadlines) stays unclassified.
func mapFirecrawlError(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}

	var apiErr *firecrawl.APIError
	if errors.As(err, &apiErr) {
		return apperr.Provider(providerFirecrawl, apiErr.StatusCode, apiErr.Body)
	}
	var decErr *firecrawl.DecodeError
	if errors.As(err, &decErr) {
		return apperr.MalformedResponse(providerFirecrawl, decErr.Err)
	}
	var jobErr *firecrawl.JobFailedError
	if errors.As(err, &jobErr) {
		return apperr.Provider(providerFirecrawl, 0, "crawl job "+jobErr.ID+" "+jobErr.Status)
	}
	return eris.Wrap(err, "crawl: firecrawl")
}
