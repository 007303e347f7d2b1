package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/retailops/smartchain/decision/contract"
)

// Config configures the HTTP surface.
type Config struct {
	Addr string `split_words:"true" default:":8000"`
}

// Pipelines is the decision surface the server exposes. Satisfied by
// *pipeline.Service.
type Pipelines interface {
	Restock(ctx context.Context, in contractx.RestockInput) (contractx.Decision, error)
	Markdown(ctx context.Context, in contractx.MarkdownInput) (contractx.Decision, error)
	Liquidate(ctx context.Context) (contractx.EmailStatus, error)
}

// Server routes the three decision endpoints to the pipeline service.
type Server struct {
	router    *chi.Mux
	pipelines Pipelines
}

func New(pipelines Pipelines) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		pipelines: pipelines,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Post("/predict-restock", s.handlePredictRestock)
	s.router.Post("/optimize-markdown", s.handleOptimizeMarkdown)
	s.router.Post("/liquidate", s.handleLiquidate)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request handled")
	})
}
