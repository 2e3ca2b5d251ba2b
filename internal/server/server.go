// Package server exposes the action dispatcher and session API over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/dispatch"
	"github.com/sells-group/site-analyzer/internal/session"
)

// Dispatcher runs one {action, payload} request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.Request) (any, error)
	Actions() []string
}

// Sessions is the session API the server drives.
type Sessions interface {
	Create() session.Snapshot
	Get(id string) (session.Snapshot, error)
	Delete(id string) error
	Crawl(ctx context.Context, id, rawURL string) (session.Snapshot, error)
	Analyze(ctx context.Context, id, action string) (session.Snapshot, error)
}

// Server holds the handler dependencies.
type Server struct {
	dispatcher Dispatcher
	sessions   Sessions
	cfg        config.ServerConfig
	limiters   *clientLimiters
}

// New creates a Server. Each client IP gets its own rate limit; a zero
// rate disables throttling.
func New(cfg config.ServerConfig, dispatcher Dispatcher, sessions Sessions) *Server {
	s := &Server{dispatcher: dispatcher, sessions: sessions, cfg: cfg}
	if cfg.RateLimit > 0 {
		s.limiters = newClientLimiters(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.throttle)

		r.Get("/actions", s.listActions)
		r.Post("/actions", s.handleAction)
		r.Post("/groq", s.handleAction)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Post("/crawl", s.crawlSession)
				r.Post("/analyze", s.analyzeSession)
			})
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
