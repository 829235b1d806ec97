// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/playervalue/internal/app"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/types"
)

// maxBodyBytes caps request bodies; a full batch of players fits well below it.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Estimate(ctx context.Context, raw *player.RawPlayerInput) (types.Estimate, error)
	EstimateBatch(ctx context.Context, raws []*player.RawPlayerInput) ([]types.BatchItem, error)

	// Read operations expose the form catalogue.
	Teams() []string
	Positions() []types.PositionInfo
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	teamsHandler     *TeamsHandler
	positionsHandler *PositionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		predictHandler:   NewPredictHandler(deps),
		teamsHandler:     NewTeamsHandler(deps),
		positionsHandler: NewPositionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict/batch", MetricsMiddleware(s.predictHandler.HandlePredictBatch, "predict_batch"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleGetTeams, "teams"))
	mux.HandleFunc("/positions", MetricsMiddleware(s.positionsHandler.HandleGetPositions, "positions"))
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

// writeServiceError maps an error returned by the service to its HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	code := service.Code(err)
	writeError(w, statusFor(code), code, err)
}

func statusFor(code string) int {
	switch code {
	case service.CodeInvalidInput, service.CodeUnknownSkill:
		return http.StatusBadRequest
	case service.CodeUnknownTeam:
		return http.StatusUnprocessableEntity
	case service.CodeBatchTooLarge:
		return http.StatusRequestEntityTooLarge
	case service.CodeInference:
		return http.StatusBadGateway
	case service.CodeUnavailable:
		return http.StatusServiceUnavailable
	case service.CodeCanceled:
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a single JSON document into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
