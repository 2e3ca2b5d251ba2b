package session

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/analysis"
	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/crawl"
	"github.com/sells-group/site-analyzer/internal/sanitize"
)

// errAborted is recorded when an operation unwinds without reporting an
// outcome, so the session does not stay busy.
var errAborted = eris.New("operation aborted")

// Service drives sessions through crawl and analysis.
type Service struct {
	store     *Store
	crawler   crawl.Crawler
	analyzer  *analysis.Analyzer
	pageLimit int
}

// NewService creates a Service.
func NewService(store *Store, crawler crawl.Crawler, analyzer *analysis.Analyzer, pageLimit int) *Service {
	return &Service{store: store, crawler: crawler, analyzer: analyzer, pageLimit: pageLimit}
}

// Create starts a new session.
func (s *Service) Create() Snapshot {
	return s.store.Create().Snapshot()
}

// Get returns a session snapshot.
func (s *Service) Get(id string) (Snapshot, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Delete ends a session.
func (s *Service) Delete(id string) error {
	return s.store.Delete(id)
}

// Crawl crawls rawURL for the session and stores the cleaned text. An
// invalid URL is rejected without touching the session. On provider failure
// the session moves to crawl_error and the error is returned with the
// snapshot.
func (s *Service) Crawl(ctx context.Context, id, rawURL string) (Snapshot, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	target, err := crawl.ValidateURL(rawURL)
	if err != nil {
		return sess.Snapshot(), err
	}
	if err := sess.beginCrawl(target, s.store.now()); err != nil {
		return sess.Snapshot(), err
	}
	finished := false
	defer func() {
		if !finished {
			sess.finishCrawl(nil, "", errAborted, s.store.now())
		}
	}()

	result, err := s.crawler.Crawl(ctx, target, crawl.Options{Limit: s.pageLimit})
	if err != nil {
		finished = true
		zap.L().Warn("session: crawl failed", zap.String("session", id), zap.Error(err))
		return sess.finishCrawl(nil, "", err, s.store.now()), err
	}

	cleaned := sanitize.Clean(result.Markdown())
	finished = true
	snap := sess.finishCrawl(result, cleaned, nil, s.store.now())
	zap.L().Info("session: crawl complete",
		zap.String("session", id),
		zap.String("url", target),
		zap.String("title", snap.Title),
		zap.Int("pages", len(snap.Pages)),
	)
	return snap, nil
}

// Analyze runs action over the session's cleaned text.
func (s *Service) Analyze(ctx context.Context, id, action string) (Snapshot, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	if !s.analyzer.Has(action) {
		return sess.Snapshot(), apperr.UnknownAction()
	}
	text, err := sess.beginAnalysis(s.store.now())
	if err != nil {
		return sess.Snapshot(), err
	}
	finished := false
	defer func() {
		if !finished {
			sess.finishAnalysis(nil, errAborted, s.store.now())
		}
	}()

	res, err := s.analyzer.Run(ctx, action, text)
	finished = true
	if err != nil {
		zap.L().Warn("session: analysis failed",
			zap.String("session", id),
			zap.String("action", action),
			zap.Error(err),
		)
	}
	return sess.finishAnalysis(res, err, s.store.now()), err
}
