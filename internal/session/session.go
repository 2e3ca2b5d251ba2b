// Package session keeps per-user crawl and analysis state in memory.
package session

import (
	"sync"
	"time"

	"github.com/sells-group/site-analyzer/internal/analysis"
	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/model"
)

// State is a session's position in the crawl → analyze lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateCrawling      State = "crawling"
	StateCrawled       State = "crawled"
	StateCrawlError    State = "crawl_error"
	StateAnalyzing     State = "analyzing"
	StateAnalyzed      State = "analyzed"
	StateAnalysisError State = "analysis_error"
)

// Busy reports whether an operation is in flight.
func (s State) Busy() bool {
	return s == StateCrawling || s == StateAnalyzing
}

// NoContentToAnalyze is the message returned when analysis is requested
// before a crawl produced any text.
const NoContentToAnalyze = "No content to analyze. Please crawl a website first."

// Snapshot is a point-in-time copy of a session, safe to serialize.
type Snapshot struct {
	ID          string               `json:"id"`
	State       State                `json:"state"`
	URL         string               `json:"url,omitempty"`
	Title       string               `json:"title,omitempty"`
	Pages       []model.PageMetadata `json:"pages,omitempty"`
	CleanedText string               `json:"cleanedText,omitempty"`
	Analysis    *analysis.Result     `json:"analysis,omitempty"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// Session is one user's state. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	id          string
	state       State
	url         string
	title       string
	pages       []model.PageMetadata
	cleanedText string
	analysis    *analysis.Result
	errMsg      string
	createdAt   time.Time
	updatedAt   time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{id: id, state: StateIdle, createdAt: now, updatedAt: now}
}

// Snapshot copies the session under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	var pages []model.PageMetadata
	if len(s.pages) > 0 {
		pages = make([]model.PageMetadata, len(s.pages))
		copy(pages, s.pages)
	}
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		URL:         s.url,
		Title:       s.title,
		Pages:       pages,
		CleanedText: s.cleanedText,
		Analysis:    s.analysis,
		Error:       s.errMsg,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

// beginCrawl moves to crawling and drops everything derived from the
// previous crawl.
func (s *Session) beginCrawl(url string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy() {
		return apperr.PreconditionNotMet("session is busy: " + string(s.state))
	}
	s.state = StateCrawling
	s.url = url
	s.title = ""
	s.pages = nil
	s.cleanedText = ""
	s.analysis = nil
	s.errMsg = ""
	s.updatedAt = now
	return nil
}

// finishCrawl records a crawl outcome. result is ignored when err is set.
func (s *Session) finishCrawl(result *model.CrawlResult, cleaned string, err error, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateCrawlError
		s.errMsg = apperr.Message(err)
	} else {
		s.state = StateCrawled
		s.title = result.FirstMetadata().Title
		s.pages = pageMetadata(result)
		s.cleanedText = cleaned
	}
	s.updatedAt = now
	return s.snapshotLocked()
}

// beginAnalysis moves to analyzing and returns the text to analyze.
func (s *Session) beginAnalysis(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy() {
		return "", apperr.PreconditionNotMet("session is busy: " + string(s.state))
	}
	if s.cleanedText == "" {
		return "", apperr.PreconditionNotMet(NoContentToAnalyze)
	}
	s.state = StateAnalyzing
	s.analysis = nil
	s.errMsg = ""
	s.updatedAt = now
	return s.cleanedText, nil
}

func (s *Session) finishAnalysis(res *analysis.Result, err error, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateAnalysisError
		s.errMsg = apperr.Message(err)
	} else {
		s.state = StateAnalyzed
		s.analysis = res
	}
	s.updatedAt = now
	return s.snapshotLocked()
}

func pageMetadata(result *model.CrawlResult) []model.PageMetadata {
	if result == nil {
		return nil
	}
	pages := make([]model.PageMetadata, 0, len(result.Data))
	for _, p := range result.Data {
		pages = append(pages, p.Metadata)
	}
	return pages
}

func (s *Session) lastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Busy()
}
