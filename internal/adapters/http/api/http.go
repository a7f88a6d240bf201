// Package api declares the JSON contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/okian/trainer/internal/domain/contract"
	"github.com/okian/trainer/internal/domain/model"
	"github.com/okian/trainer/internal/domain/types"
	"github.com/okian/trainer/pkg/logger"
)

const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Present(ctx context.Context, domain string, c contract.Contract) (types.Presentation, error)
	Submit(ctx context.Context, sub types.Submission, who types.Learner) (types.Outcome, error)
	Summary(ctx context.Context, c contract.Contract) (types.Summary, error)
	Recent(ctx context.Context) ([]model.AnswerEvent, error)
	SetContract(ctx context.Context, h types.ContractHolder, c contract.Contract) error
	Ready(ctx context.Context) error
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler   *HealthHandler
	metricsHandler  http.Handler
	trainerHandler  *TrainerHandler
	answerHandler   *AnswerHandler
	summaryHandler  *SummaryHandler
	contractHandler *ContractHandler

	origins []string
	logger  logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call /api.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets the logger handlers report failures to.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		origins: []string{"*"},
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(deps)
	s.metricsHandler = NewMetricsHandler()
	s.trainerHandler = NewTrainerHandler(deps, s.logger)
	s.answerHandler = NewAnswerHandler(deps, s.logger)
	s.summaryHandler = NewSummaryHandler(deps, s.logger)
	s.contractHandler = NewContractHandler(deps)
	return s
}

// Register attaches all JSON and operational routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Method(http.MethodGet, "/metrics", s.metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: !slices.Contains(s.origins, "*"),
			MaxAge:           300,
		}))
		r.Get("/trainer/{domain}", MetricsMiddleware(s.trainerHandler.HandleGetQuestion, "api_trainer"))
		r.Post("/answers", MetricsMiddleware(s.answerHandler.HandlePostAnswer, "api_answers"))
		r.Get("/summary", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "api_summary"))
		r.Get("/contract", MetricsMiddleware(s.contractHandler.HandleGetContract, "api_contract"))
		r.Put("/contract", MetricsMiddleware(s.contractHandler.HandlePutContract, "api_contract"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// StatusFor maps an error kind to the status code and error code the API
// reports it with.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, model.ErrPersistence):
		return http.StatusInternalServerError, "persistence"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeKindError(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	writeError(w, status, code, err)
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
