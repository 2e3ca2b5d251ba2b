package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-analyzer/internal/analysis"
	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/crawl"
	crawlmocks "github.com/sells-group/site-analyzer/internal/crawl/mocks"
	"github.com/sells-group/site-analyzer/internal/llm"
	llmmocks "github.com/sells-group/site-analyzer/internal/llm/mocks"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/prompt"
)

type fixture struct {
	d         *Dispatcher
	crawler   *crawlmocks.MockCrawler
	completer *llmmocks.MockCompleter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	prompts, err := prompt.Default()
	require.NoError(t, err)

	crawler := crawlmocks.NewMockCrawler(t)
	completer := llmmocks.NewMockCompleter(t)
	completer.On("Name").Return("groq").Maybe()

	return fixture{
		d:         New(crawler, analysis.New(completer, prompts, 6000), 10),
		crawler:   crawler,
		completer: completer,
	}
}

func req(action, payload string) Request {
	r := Request{Action: action}
	if payload != "" {
		r.Payload = json.RawMessage(payload)
	}
	return r
}

func TestActions(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{
		"crawlWebsite",
		"summarizeWebsite",
		"competitorPowerScore",
		"stealableIdeas",
		"fakeAIDetector",
		"analyzeContent",
	}, f.d.Actions())
}

func TestDispatch_Crawl(t *testing.T) {
	f := newFixture(t)
	want := &model.CrawlResult{
		Success: true,
		Status:  "completed",
		Total:   1,
		Data:    []model.CrawledPage{{Markdown: "# Home"}},
		Source:  "firecrawl",
	}
	f.crawler.On("Crawl", mock.Anything, "https://acme.com", crawl.Options{Limit: 10}).Return(want, nil).Once()

	got, err := f.d.Dispatch(context.Background(), req("crawlWebsite", `{"url":" https://acme.com "}`))
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestDispatch_Analysis(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Action == "summarizeWebsite"
	})).Return("## Report", nil).Once()

	got, err := f.d.Dispatch(context.Background(), req("summarizeWebsite", `{"markdown":"# Acme"}`))
	require.NoError(t, err)
	assert.Equal(t, &model.ReportResult{Summary: "## Report"}, got)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"## Report"}`, string(body))
}

func TestDispatch_Structured(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).
		Return(`{"summary":"s","keyPoints":["k"],"entities":["e"],"sentiment":"neutral"}`, nil).Once()

	got, err := f.d.Dispatch(context.Background(), req("analyzeContent", `{"markdown":"text"}`))
	require.NoError(t, err)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary":"s","keyPoints":["k"],"entities":["e"],"sentiment":"neutral"}`, string(body))
}

func TestDispatch_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantKind apperr.Kind
		wantMsg  string
	}{
		{"unknown action", req("bogus", `{}`), apperr.KindUnknownAction, "Unknown action"},
		{"empty action", req("", `{}`), apperr.KindUnknownAction, "Unknown action"},
		{"crawl without payload", req("crawlWebsite", ""), apperr.KindMissingField, "url is required"},
		{"crawl with null payload", req("crawlWebsite", "null"), apperr.KindMissingField, "url is required"},
		{"crawl with empty url", req("crawlWebsite", `{"url":""}`), apperr.KindMissingField, "url is required"},
		{"crawl with bad url", req("crawlWebsite", `{"url":"not a url"}`), apperr.KindInvalidURL, ""},
		{"crawl with numeric url", req("crawlWebsite", `{"url":42}`), apperr.KindInvalidRequest, ""},
		{"crawl with array payload", req("crawlWebsite", `["https://acme.com"]`), apperr.KindInvalidRequest, ""},
		{"analysis without markdown", req("summarizeWebsite", `{}`), apperr.KindMissingField, "markdown is required"},
		{"analysis with blank markdown", req("fakeAIDetector", `{"markdown":"  \n "}`), apperr.KindMissingField, "markdown is required"},
		{"structured without markdown", req("analyzeContent", ""), apperr.KindMissingField, "markdown is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.d.Dispatch(context.Background(), tt.req)
			require.Error(t, err)
			ae, ok := apperr.As(err)
			require.True(t, ok, "unclassified: %v", err)
			assert.Equal(t, tt.wantKind, ae.Kind)
			assert.Equal(t, 400, ae.HTTPStatus())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, ae.Error())
			}

			f.crawler.AssertNotCalled(t, "Crawl", mock.Anything, mock.Anything, mock.Anything)
			f.completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatch_ProviderError(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).
		Return("", apperr.Provider("Groq", 500, "internal")).Once()

	_, err := f.d.Dispatch(context.Background(), req("stealableIdeas", `{"markdown":"x"}`))
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindProviderError, ae.Kind)
	assert.Equal(t, 500, ae.HTTPStatus())
	assert.Equal(t, 500, ae.StatusCode)
	assert.Equal(t, "internal", ae.Body)
}

func TestDispatch_EmptyCrawlIsSuccess(t *testing.T) {
	f := newFixture(t)
	f.crawler.On("Crawl", mock.Anything, "https://empty.example", mock.Anything).
		Return(&model.CrawlResult{Success: true, Status: "completed", Data: []model.CrawledPage{}}, nil).Once()

	got, err := f.d.Dispatch(context.Background(), req("crawlWebsite", `{"url":"https://empty.example"}`))
	require.NoError(t, err)
	assert.Empty(t, got.(*model.CrawlResult).Data)
}
