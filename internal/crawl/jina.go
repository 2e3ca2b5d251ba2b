package crawl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/pkg/jina"
)

const providerJina = "Jina"

// Jina reads a single page through the Jina Reader API. It ignores
// Options.Limit: the reader never follows links.
type Jina struct {
	client jina.Client
}

// NewJina creates a Jina crawler.
func NewJina(client jina.Client) *Jina {
	return &Jina{client: client}
}

// Name implements Crawler.
func (j *Jina) Name() string { return "jina" }

// Crawl implements Crawler.
func (j *Jina) Crawl(ctx context.Context, rawURL string, _ Options) (*model.CrawlResult, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := j.client.Read(ctx, target)
	if err != nil {
		zap.L().Warn("crawl: failed",
			zap.String("provider", "jina"),
			zap.String("url", target),
			zap.Error(err),
		)
		return nil, mapJinaError(err)
	}

	result := &model.CrawlResult{
		Success: true,
		Status:  "completed",
		Data:    []model.CrawledPage{},
		Source:  "jina",
	}
	if strings.TrimSpace(resp.Data.Content) != "" {
		sourceURL := resp.Data.URL
		if sourceURL == "" {
			sourceURL = target
		}
		result.Data = append(result.Data, model.CrawledPage{
			Markdown: resp.Data.Content,
			Metadata: model.PageMetadata{
				Title:       resp.Data.Title,
				Description: resp.Data.Description,
				SourceURL:   sourceURL,
				StatusCode:  resp.Code,
			},
		})
	}
	result.Total = len(result.Data)

	zap.L().Info("crawl: completed",
		zap.String("provider", "jina"),
		zap.String("url", target),
		zap.Int("pages", result.Total),
		zap.Int("tokens", resp.Data.Usage.Tokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

func mapJinaError(err error) error {
	var apiErr *jina.APIError
	if errors.As(err, &apiErr) {
		return apperr.Provider(providerJina, apiErr.StatusCode, apiErr.Body)
	}
	var decErr *jina.DecodeError
	if errors.As(err, &decErr) {
		return apperr.MalformedResponse(providerJina, decErr.Err)
	}
	return eris.Wrap(err, "crawl: jina")
}
