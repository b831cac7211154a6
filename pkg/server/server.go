// Package server exposes the feature pipeline as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helmcode/gherkin-ai/pkg/analyzer"
	"github.com/helmcode/gherkin-ai/pkg/features"
	"github.com/helmcode/gherkin-ai/pkg/metrics"
	"github.com/helmcode/gherkin-ai/pkg/model"
	"github.com/helmcode/gherkin-ai/pkg/store"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Service is the feature workflow the handlers call. *features.Service
// implements it.
type Service interface {
	CreateFeature(ctx context.Context, req model.FeatureRequest) (*features.CreateResult, error)
	Reanalyze(ctx context.Context, id string) (*model.Analysis, error)
	AnalyzeQuality(ctx context.Context, content, title string) (*model.QualityReport, error)
	AnalyzeComplexity(ctx context.Context, content string) (*model.ComplexityReport, error)
	SuggestTitles(ctx context.Context, story string) (model.TitleSuggestions, error)
	GetFeature(ctx context.Context, id string) (*model.Feature, error)
	ListFeatures(ctx context.Context, limit int) ([]model.Feature, error)
}

type Server struct {
	service Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(service Service, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{service: service, metrics: m, logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/features", s.createFeature)
	mux.HandleFunc("GET /api/features", s.listFeatures)
	mux.HandleFunc("GET /api/features/{id}", s.getFeature)
	mux.HandleFunc("POST /api/features/{id}/analyze", s.reanalyze)
	mux.HandleFunc("POST /api/features/analyze", s.analyzeQuality)
	mux.HandleFunc("POST /api/features/complexity", s.analyzeComplexity)
	mux.HandleFunc("POST /api/titles/suggest", s.suggestTitles)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", s.metrics.Handler())

	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type createFeatureRequest struct {
	Title         string `json:"title"`
	Story         string `json:"story"`
	ScenarioCount int    `json:"scenarioCount"`
}

func (s *Server) createFeature(w http.ResponseWriter, r *http.Request) {
	var req createFeatureRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.service.CreateFeature(r.Context(), model.FeatureRequest{
		Title:         req.Title,
		Story:         req.Story,
		ScenarioCount: req.ScenarioCount,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type listFeaturesResponse struct {
	Features []model.Feature `json:"features"`
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListFeatures(r.Context(), 0)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Feature{}
	}
	writeJSON(w, http.StatusOK, listFeaturesResponse{Features: list})
}

func (s *Server) getFeature(w http.ResponseWriter, r *http.Request) {
	f, err := s.service.GetFeature(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) reanalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.service.Reanalyze(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type analyzeRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

func (s *Server) analyzeQuality(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.service.AnalyzeQuality(r.Context(), req.Content, req.Title)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) analyzeComplexity(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.service.AnalyzeComplexity(r.Context(), req.Content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type suggestTitlesRequest struct {
	Story string `json:"story"`
}

type suggestTitlesResponse struct {
	Titles model.TitleSuggestions `json:"titles"`
}

func (s *Server) suggestTitles(w http.ResponseWriter, r *http.Request) {
	var req suggestTitlesRequest
	if !s.decode(w, r, &req) {
		return
	}
	titles, err := s.service.SuggestTitles(r.Context(), req.Story)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if titles == nil {
		titles = model.TitleSuggestions{}
	}
	writeJSON(w, http.StatusOK, suggestTitlesResponse{Titles: titles})
}

// Error response helpers

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps validation errors to 400, unknown features to 404
// and everything else to 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analyzer.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Feature not found")
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
