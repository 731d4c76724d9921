// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the dashboard over HTTP: the password gate, the
// prediction page API, and the data analysis page API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdiddy/taurus/internal/logger"
	"github.com/pdiddy/taurus/internal/session"
	"github.com/pdiddy/taurus/pkg/types"
)

// Predictor runs predictions and describes its input schema.
// *pipeline.Pipeline implements it.
type Predictor interface {
	session.Predictor
	Schema() types.FeatureSchema
}

// Dataset answers the data analysis queries. *dataset.Store implements it.
type Dataset interface {
	Rows(ctx context.Context) ([]types.Sample, error)
	Columns(ctx context.Context) ([]string, error)
	Composition(ctx context.Context) ([]types.MaterialCount, error)
	Box(ctx context.Context, x, y string) (types.BoxSeries, error)
	Scatter(ctx context.Context, columns ...string) (types.ScatterSeries, error)
}

// Deps are the collaborators the server needs. Dataset may be nil, in which
// case the analysis endpoints report the dataset as unavailable.
type Deps struct {
	Config    types.ServerConfig
	Predictor Predictor
	Sessions  *session.Store
	Dataset   Dataset
	Logger    *logger.Logger
}

// Server is a thin wrapper over chi and http.Server.
type Server struct {
	deps Deps
	mux  *chi.Mux
	srv  *http.Server
}

// New builds the router and the underlying http.Server.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Named("http")
	}
	s := &Server{deps: deps, mux: chi.NewRouter()}
	s.routes()
	s.srv = &http.Server{
		Addr:              deps.Config.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: deps.Config.ReadHeaderTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	m := s.mux
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(requestLogger(s.deps.Logger))
	m.Use(accessLog)
	m.Use(chimw.Recoverer)
	if len(s.deps.Config.AllowedOrigins) > 0 {
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.deps.Config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}))
	}
	m.Use(chimw.Heartbeat("/healthz"))

	m.Route("/api", func(r chi.Router) {
		r.Use(chimw.NoCache)
		r.Use(s.withSession)

		r.Get("/session", s.handleSessionStatus)
		r.Post("/session", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/predict/schema", s.handlePredictSchema)
			r.Post("/predict", s.handlePredict)
			r.Get("/predict/last", s.handlePredictLast)

			r.Get("/dataset/rows", s.handleDatasetRows)
			r.Get("/dataset/columns", s.handleDatasetColumns)
			r.Get("/dataset/composition", s.handleDatasetComposition)
			r.Get("/dataset/box", s.handleDatasetBox)
			r.Get("/dataset/scatter", s.handleDatasetScatter)
		})
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := s.deps.Logger
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("http listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("http shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
