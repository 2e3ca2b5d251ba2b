package firecrawl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient implements Client for testing poll functions.
type mockClient struct {
	crawlFunc       func(ctx context.Context, req CrawlRequest) (*CrawlResponse, error)
	crawlStatusFunc func(ctx context.Context, id string) (*CrawlStatusResponse, error)
}

func (m *mockClient) Crawl(ctx context.Context, req CrawlRequest) (*CrawlResponse, error) {
	if m.crawlFunc == nil {
		return nil, nil
	}
	return m.crawlFunc(ctx, req)
}

func (m *mockClient) GetCrawlStatus(ctx context.Context, id string) (*CrawlStatusResponse, error) {
	return m.crawlStatusFunc(ctx, id)
}

func (m *mockClient) Scrape(context.Context, ScrapeRequest) (*ScrapeResponse, error) {
	return nil, nil
}

func TestPollCrawl_CompletesImmediately(t *testing.T) {
	mock := &mockClient{
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			return &CrawlStatusResponse{
				Status: StatusCompleted,
				Total:  1,
				Data:   []PageData{{Markdown: "# Home", Metadata: Metadata{Title: "Home"}}},
			}, nil
		},
	}

	resp, err := PollCrawl(context.Background(), mock, "crawl-123",
		WithPollInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Len(t, resp.Data, 1)
}

func TestPollCrawl_CompletesAfterRetries(t *testing.T) {
	var calls atomic.Int32
	mock := &mockClient{
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			n := calls.Add(1)
			if n < 3 {
				return &CrawlStatusResponse{Status: StatusScraping}, nil
			}
			return &CrawlStatusResponse{
				Status: StatusCompleted,
				Total:  2,
				Data: []PageData{
					{Markdown: "# Home"},
					{Markdown: "# About"},
				},
			}, nil
		},
	}

	resp, err := PollCrawl(context.Background(), mock, "crawl-456",
		WithPollInterval(10*time.Millisecond),
		WithPollCap(20*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPollCrawl_Timeout(t *testing.T) {
	mock := &mockClient{
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			return &CrawlStatusResponse{Status: StatusScraping}, nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := PollCrawl(ctx, mock, "crawl-timeout",
		WithPollInterval(10*time.Millisecond),
		WithPollCap(20*time.Millisecond),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollCrawl_Failed(t *testing.T) {
	for _, status := range []string{StatusFailed, StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			mock := &mockClient{
				crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
					return &CrawlStatusResponse{Status: status}, nil
				},
			}

			_, err := PollCrawl(context.Background(), mock, "crawl-fail",
				WithPollInterval(10*time.Millisecond),
			)
			require.Error(t, err)
			var jobErr *JobFailedError
			require.ErrorAs(t, err, &jobErr)
			assert.Equal(t, "crawl-fail", jobErr.ID)
			assert.Equal(t, status, jobErr.Status)
		})
	}
}

func TestPollCrawl_ErrorPropagation(t *testing.T) {
	mock := &mockClient{
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			return nil, &APIError{StatusCode: 500, Body: "server error"}
		},
	}

	_, err := PollCrawl(context.Background(), mock, "crawl-err",
		WithPollInterval(10*time.Millisecond),
	)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
}

func TestPollCrawl_DefaultTimeout(t *testing.T) {
	mock := &mockClient{
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			return &CrawlStatusResponse{Status: StatusScraping}, nil
		},
	}

	_, err := PollCrawl(context.Background(), mock, "crawl-default-timeout",
		WithPollInterval(5*time.Millisecond),
		WithPollCap(10*time.Millisecond),
		WithPollTimeout(50*time.Millisecond),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCrawlAndWait(t *testing.T) {
	var polledID string
	mock := &mockClient{
		crawlFunc: func(ctx context.Context, req CrawlRequest) (*CrawlResponse, error) {
			assert.Equal(t, "https://example.com", req.URL)
			return &CrawlResponse{Success: true, ID: "crawl-789"}, nil
		},
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			polledID = id
			return &CrawlStatusResponse{Status: StatusCompleted, Data: []PageData{}}, nil
		},
	}

	resp, err := CrawlAndWait(context.Background(), mock, CrawlRequest{URL: "https://example.com"},
		WithPollInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, "crawl-789", polledID)
	assert.Empty(t, resp.Data)
}

func TestCrawlAndWait_NotAccepted(t *testing.T) {
	mock := &mockClient{
		crawlFunc: func(ctx context.Context, req CrawlRequest) (*CrawlResponse, error) {
			return &CrawlResponse{Success: false}, nil
		},
		crawlStatusFunc: func(ctx context.Context, id string) (*CrawlStatusResponse, error) {
			t.Fatal("status should not be polled")
			return nil, nil
		},
	}

	_, err := CrawlAndWait(context.Background(), mock, CrawlRequest{URL: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not accepted")
}
