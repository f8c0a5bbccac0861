package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/casewright/pkg/usecase"
	"github.com/secmon-lab/casewright/pkg/utils/logging"
)

// DefaultMaxUploadSize bounds the multipart body of an ingest request
const DefaultMaxUploadSize int64 = 32 << 20

type Server struct {
	router        *chi.Mux
	session       *usecase.Session
	maxUploadSize int64
}

type Options func(*Server)

func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		s.maxUploadSize = size
	}
}

func New(session *usecase.Session, opts ...Options) (*Server, error) {
	if session == nil {
		return nil, goerr.New("session is required")
	}

	r := chi.NewRouter()
	s := &Server{
		router:        r,
		session:       session,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxUploadSize <= 0 {
		return nil, goerr.New("max upload size must be positive", goerr.V("max_upload_size", s.maxUploadSize))
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.statusHandler)
		r.With(limitBody(s.maxUploadSize)).Post("/ingest", s.ingestHandler)
		r.With(limitBody(jsonBodyLimit)).Post("/test-cases", s.testCasesHandler)
		r.With(limitBody(jsonBodyLimit)).Post("/scripts", s.scriptsHandler)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
