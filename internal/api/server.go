package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"subtrans/internal/logging"
	"subtrans/internal/services"
	"subtrans/internal/translate"
)

// Server hosts the daemon's HTTP API.
type Server struct {
	engine *translate.Engine
	logger *slog.Logger
	http   *http.Server
}

// NewServer builds a server bound to addr.
func NewServer(addr string, engine *translate.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	server := &Server{
		engine: engine,
		logger: logger.With(logging.String(logging.FieldComponent, "api")),
	}
	server.http = &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

// Router returns the HTTP handler. Exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(requestIDContext)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.handleCreateJob)
			r.Get("/", s.handleListJobs)
			r.Get("/{jobID}", s.handleGetJob)
			r.Post("/{jobID}/segments/{segmentID}", s.handleUpdateSegment)
			r.Post("/{jobID}/approve", s.handleApprove)
			r.Post("/{jobID}/cancel", s.handleCancel)
		})
	})
	return r
}

// requestIDContext carries chi's request id in the services context so error
// logs can be correlated with the originating request.
func requestIDContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestID(r.Context(), chimiddleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ListenAndServe blocks serving the API until the listener fails or Shutdown
// is called.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))
	err = s.http.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.engine.Metrics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"total_jobs":  metrics.TotalJobs,
		"active_jobs": metrics.ActiveJobs,
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "create_job", "malformed request body", err))
		return
	}

	job, err := s.engine.TranslateFile(r.Context(), req.FileID, req.toSegments(), req.UseExistingTranslations)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var jobs []*translate.Job
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		jobs, err = s.engine.ListJobsByStatus(r.Context(), translate.Status(status))
	} else {
		jobs, err = s.engine.ListJobs(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*translate.Job{}
	}
	s.writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateSegment(w http.ResponseWriter, r *http.Request) {
	var req updateSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "update_segment", "malformed request body", err))
		return
	}

	job, err := s.engine.UpdateSegment(r.Context(), chi.URLParam(r, "jobID"), chi.URLParam(r, "segmentID"), req.Translation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Approve(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	job, err := s.engine.Cancel(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.engine.Metrics(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, viewSettings(s.engine.Settings()))
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "update_config", "malformed request body", err))
		return
	}

	settings := s.engine.Settings()
	payload.applyTo(&settings)
	if err := validateSettings(settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.engine.UpdateSettings(settings)

	s.logger.Info("runtime configuration updated",
		logging.String("provider", settings.Provider),
		logging.String("model", settings.Model))
	s.writeJSON(w, http.StatusOK, viewSettings(settings))
}

func validateSettings(settings translate.Settings) error {
	switch {
	case settings.Provider != "anthropic" && settings.Provider != "openai":
		return services.Wrap(services.ErrValidation, "api", "update_config", "unsupported provider", nil)
	case settings.Model == "":
		return services.Wrap(services.ErrValidation, "api", "update_config", "model must not be empty", nil)
	case settings.RequestsPerMinute <= 0:
		return services.Wrap(services.ErrValidation, "api", "update_config", "requests_per_minute must be positive", nil)
	case settings.ChunkSize <= 0:
		return services.Wrap(services.ErrValidation, "api", "update_config", "chunk_size must be positive", nil)
	case settings.MaxPromptTokens <= 0:
		return services.Wrap(services.ErrValidation, "api", "update_config", "max_prompt_tokens must be positive", nil)
	case settings.MaxRetries < 0:
		return services.Wrap(services.ErrValidation, "api", "update_config", "max_retries must not be negative", nil)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		status = http.StatusTooManyRequests
	}
	if status == http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.logger).Error("request failed", logging.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
