package crawl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/pkg/firecrawl"
	firecrawlmocks "github.com/sells-group/site-analyzer/pkg/firecrawl/mocks"
)

func fastPoll() []firecrawl.PollOption {
	return []firecrawl.PollOption{
		firecrawl.WithPollInterval(time.Millisecond),
		firecrawl.WithPollCap(2 * time.Millisecond),
		firecrawl.WithPollTimeout(time.Second),
	}
}

func crawlRequest(url string, limit int) firecrawl.CrawlRequest {
	return firecrawl.CrawlRequest{
		URL:           url,
		Limit:         limit,
		ScrapeOptions: &firecrawl.ScrapeOptions{Formats: []string{"markdown"}},
	}
}

func TestFirecrawl_Name(t *testing.T) {
	t.Parallel()
	c := NewFirecrawl(firecrawlmocks.NewMockClient(t), 0)
	assert.Equal(t, "firecrawl", c.Name())
	assert.Equal(t, DefaultPageLimit, c.limit)
}

func TestFirecrawl_Crawl_Success(t *testing.T) {
	t.Parallel()
	client := firecrawlmocks.NewMockClient(t)
	c := NewFirecrawl(client, 10, fastPoll()...)

	client.On("Crawl", mock.Anything, crawlRequest("https://acme.com", 10)).
		Return(&firecrawl.CrawlResponse{Success: true, ID: "crawl-1"}, nil).Once()
	client.On("GetCrawlStatus", mock.Anything, "crawl-1").
		Return(&firecrawl.CrawlStatusResponse{Status: firecrawl.StatusScraping}, nil).Once()
	client.On("GetCrawlStatus", mock.Anything, "crawl-1").
		Return(&firecrawl.CrawlStatusResponse{
			Status: firecrawl.StatusCompleted,
			Total:  2,
			Data: []firecrawl.PageData{
				{Markdown: "# Home", Metadata: firecrawl.Metadata{Title: "Acme", Language: "en", SourceURL: "https://acme.com", StatusCode: 200}},
				{Markdown: "# About", Metadata: firecrawl.Metadata{Title: "About Acme", Description: "Who we are"}},
			},
		}, nil).Once()

	result, err := c.Crawl(context.Background(), " https://acme.com ", Options{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "firecrawl", result.Source)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "# Home", result.Data[0].Markdown)
	assert.Equal(t, "Acme", result.Data[0].Metadata.Title)
	assert.Equal(t, "en", result.Data[0].Metadata.Language)
	assert.Equal(t, 200, result.Data[0].Metadata.StatusCode)
	assert.Equal(t, "Who we are", result.Data[1].Metadata.Description)
}

func TestFirecrawl_Crawl_LimitOverride(t *testing.T) {
	t.Parallel()
	client := firecrawlmocks.NewMockClient(t)
	c := NewFirecrawl(client, 10, fastPoll()...)

	client.On("Crawl", mock.Anything, crawlRequest("https://acme.com", 3)).
		Return(&firecrawl.CrawlResponse{Success: true, ID: "crawl-2"}, nil)
	client.On("GetCrawlStatus", mock.Anything, "crawl-2").
		Return(&firecrawl.CrawlStatusResponse{Status: firecrawl.StatusCompleted}, nil)

	result, err := c.Crawl(context.Background(), "https://acme.com", Options{Limit: 3})
	require.NoError(t, err)
	assert.NotNil(t, result.Data, "empty crawl is an empty list, not null")
	assert.Empty(t, result.Data)
	assert.True(t, result.Success)
}

func TestFirecrawl_Crawl_SinglePageUsesScrape(t *testing.T) {
	t.Parallel()
	client := firecrawlmocks.NewMockClient(t)
	c := NewFirecrawl(client, 1)

	client.On("Scrape", mock.Anything, firecrawl.ScrapeRequest{
		URL:     "https://acme.com/pricing",
		Formats: []string{"markdown"},
	}).Return(&firecrawl.ScrapeResponse{
		Success: true,
		Data:    firecrawl.PageData{Markdown: "# Pricing", Metadata: firecrawl.Metadata{Title: "Pricing"}},
	}, nil)

	result, err := c.Crawl(context.Background(), "https://acme.com/pricing", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Pricing", result.Data[0].Metadata.Title)
}

func TestFirecrawl_Crawl_ScrapeNotSuccessful(t *testing.T) {
	t.Parallel()
	client := firecrawlmocks.NewMockClient(t)
	c := NewFirecrawl(client, 1)

	client.On("Scrape", mock.Anything, mock.Anything).Return(&firecrawl.ScrapeResponse{Success: false}, nil)

	_, err := c.Crawl(context.Background(), "https://acme.com", Options{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))
}

func TestFirecrawl_Crawl_InvalidURLMakesNoCall(t *testing.T) {
	t.Parallel()
	client := firecrawlmocks.NewMockClient(t)
	c := NewFirecrawl(client, 10)

	for _, raw := range []string{"", "acme.com", "mailto:a@b.c"} {
		_, err := c.Crawl(context.Background(), raw, Options{})
		require.Error(t, err)
		ae, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, 400, ae.HTTPStatus())
	}
	client.AssertNotCalled(t, "Crawl", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "Scrape", mock.Anything, mock.Anything)
}

func TestFirecrawl_Crawl_Errors(t *testing.T) {
	tests := []struct {
		name       string
		crawlErr   error
		statusResp *firecrawl.CrawlStatusResponse
		statusErr  error
		wantKind   apperr.Kind
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "provider 500 on start",
			crawlErr:   &firecrawl.APIError{StatusCode: 500, Body: `{"error":"boom"}`},
			wantKind:   apperr.KindProviderError,
			wantStatus: 500,
			wantMsg:    `Firecrawl API error (500): {"error":"boom"}`,
		},
		{
			name:       "provider 402 while polling",
			statusErr:  &firecrawl.APIError{StatusCode: 402, Body: "payment required"},
			wantKind:   apperr.KindProviderError,
			wantStatus: 402,
		},
		{
			name:      "undecodable status",
			statusErr: &firecrawl.DecodeError{Body: "<html>", Err: errors.New("invalid character '<'")},
			wantKind:  apperr.KindMalformedResponse,
		},
		{
			name:       "job failed",
			statusResp: &firecrawl.CrawlStatusResponse{Status: firecrawl.StatusFailed},
			wantKind:   apperr.KindProviderError,
			wantMsg:    "Firecrawl API error: crawl job crawl-3 failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := firecrawlmocks.NewMockClient(t)
			c := NewFirecrawl(client, 10, fastPoll()...)

			if tt.crawlErr != nil {
				client.On("Crawl", mock.Anything, mock.Anything).Return(nil, tt.crawlErr)
			} else {
				client.On("Crawl", mock.Anything, mock.Anything).
					Return(&firecrawl.CrawlResponse{Success: true, ID: "crawl-3"}, nil)
				client.On("GetCrawlStatus", mock.Anything, "crawl-3").Return(tt.statusResp, tt.statusErr)
			}

			_, err := c.Crawl(context.Background(), "https://acme.com", Options{})
			require.Error(t, err)

			ae, ok := apperr.As(err)
			require.True(t, ok, "got unclassified %v", err)
			assert.Equal(t, tt.wantKind, ae.Kind)
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, ae.StatusCode)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, ae.Error())
			}
		})
	}
}

func TestFirecrawl_Crawl_TransportErrorUnclassified(t *testing.T) {
	t.Parallel()
	client := firecrawlmocks.NewMockClient(t)
	c := NewFirecrawl(client, 10, fastPoll()...)

	client.On("Crawl", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	_, err := c.Crawl(context.Background(), "https://acme.com", Options{})
	require.Error(t, err)
	_, ok := apperr.As(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection refused")
}
