// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pdiddy/taurus/internal/dataset"
	"github.com/pdiddy/taurus/internal/httputil"
	"github.com/pdiddy/taurus/internal/logger"
	"github.com/pdiddy/taurus/internal/pipeline"
	"github.com/pdiddy/taurus/internal/session"
	"github.com/pdiddy/taurus/pkg/types"
)

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
}

type predictRequest struct {
	RawMaterial string              `json:"raw_material" validate:"required"`
	Features    types.FeatureVector `json:"features"`
}

type predictResponse struct {
	Result types.PredictionResult `json:"result"`
	Rows   []types.ResultRow      `json:"rows"`
}

func bindError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.RespondError(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	httputil.RespondOK(w, r, sessionResponse{Authenticated: sess.Authenticated()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		bindError(w, r, err)
		return
	}

	sess := sessionFrom(r.Context())
	if !s.deps.Sessions.Authenticate(sess, req.Password) {
		logger.C(r.Context()).Warn().Msg("dashboard password rejected")
		httputil.RespondError(w, r, http.StatusUnauthorized, "wrong_password", session.MsgWrongPassword)
		return
	}
	s.setSessionCookie(w, sess)
	logger.C(r.Context()).Info().Msg("session authenticated")
	httputil.RespondOK(w, r, sessionResponse{Authenticated: true, Message: session.MsgAuthenticated})
}

func (s *Server) handlePredictSchema(w http.ResponseWriter, r *http.Request) {
	httputil.RespondOK(w, r, s.deps.Predictor.Schema())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		bindError(w, r, err)
		return
	}
	if unknown := req.Features.Unknown(); len(unknown) > 0 {
		sort.Strings(unknown)
		bindError(w, r, fmt.Errorf("unknown features: %s", strings.Join(unknown, ", ")))
		return
	}

	sess := sessionFrom(r.Context())
	result, err := sess.Predict(r.Context(), s.deps.Predictor, req.RawMaterial, req.Features.Values())
	if err != nil {
		logger.C(r.Context()).Warn().Err(err).Str("code", pipeline.Code(err)).Msg("prediction failed")
		httputil.RespondError(w, r, http.StatusUnprocessableEntity, pipeline.Code(err), pipeline.UserMessage(err))
		return
	}
	httputil.RespondOK(w, r, predictResponse{Result: result, Rows: pipeline.Format(result)})
}

func (s *Server) handlePredictLast(w http.ResponseWriter, r *http.Request) {
	result, ok := sessionFrom(r.Context()).Last()
	if !ok {
		httputil.RespondError(w, r, http.StatusNotFound, "no_result", "no prediction yet")
		return
	}
	httputil.RespondOK(w, r, predictResponse{Result: result, Rows: pipeline.Format(result)})
}

// datasetOr writes 503 and returns false when no dataset is loaded.
func (s *Server) datasetOr(w http.ResponseWriter, r *http.Request) bool {
	if s.deps.Dataset == nil {
		httputil.RespondError(w, r, http.StatusServiceUnavailable, "no_dataset", "dataset not loaded")
		return false
	}
	return true
}

func (s *Server) datasetError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, dataset.ErrUnknownColumn) {
		httputil.RespondError(w, r, http.StatusBadRequest, "unknown_column", err.Error())
		return
	}
	logger.C(r.Context()).Error().Err(err).Msg("dataset query failed")
	httputil.RespondError(w, r, http.StatusInternalServerError, "internal", "dataset query failed")
}

func (s *Server) handleDatasetRows(w http.ResponseWriter, r *http.Request) {
	if !s.datasetOr(w, r) {
		return
	}
	rows, err := s.deps.Dataset.Rows(r.Context())
	if err != nil {
		s.datasetError(w, r, err)
		return
	}
	httputil.RespondOK(w, r, rows)
}

func (s *Server) handleDatasetColumns(w http.ResponseWriter, r *http.Request) {
	if !s.datasetOr(w, r) {
		return
	}
	cols, err := s.deps.Dataset.Columns(r.Context())
	if err != nil {
		s.datasetError(w, r, err)
		return
	}
	httputil.RespondOK(w, r, cols)
}

func (s *Server) handleDatasetComposition(w http.ResponseWriter, r *http.Request) {
	if !s.datasetOr(w, r) {
		return
	}
	counts, err := s.deps.Dataset.Composition(r.Context())
	if err != nil {
		s.datasetError(w, r, err)
		return
	}
	httputil.RespondOK(w, r, counts)
}

func (s *Server) handleDatasetBox(w http.ResponseWriter, r *http.Request) {
	if !s.datasetOr(w, r) {
		return
	}
	q := r.URL.Query()
	x, y := q.Get("x"), q.Get("y")
	if x == "" || y == "" {
		bindError(w, r, errors.New("x and y are required"))
		return
	}
	series, err := s.deps.Dataset.Box(r.Context(), x, y)
	if err != nil {
		s.datasetError(w, r, err)
		return
	}
	httputil.RespondOK(w, r, series)
}

func (s *Server) handleDatasetScatter(w http.ResponseWriter, r *http.Request) {
	if !s.datasetOr(w, r) {
		return
	}
	q := r.URL.Query()
	x, y := q.Get("x"), q.Get("y")
	if x == "" || y == "" {
		bindError(w, r, errors.New("x and y are required"))
		return
	}
	cols := []string{x, y}
	if z := q.Get("z"); z != "" {
		cols = append(cols, z)
	}
	series, err := s.deps.Dataset.Scatter(r.Context(), cols...)
	if err != nil {
		s.datasetError(w, r, err)
		return
	}
	httputil.RespondOK(w, r, series)
}
