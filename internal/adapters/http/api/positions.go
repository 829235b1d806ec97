package api

import (
	"net/http"

	"github.com/okian/playervalue/internal/domain/types"
)

// PositionsDependencies defines the interface for the position catalogue.
type PositionsDependencies interface {
	Positions() []types.PositionInfo
}

// PositionsHandler lists the position categories and their skill keys.
type PositionsHandler struct {
	deps PositionsDependencies
}

// NewPositionsHandler creates a new positions handler.
func NewPositionsHandler(deps PositionsDependencies) *PositionsHandler {
	return &PositionsHandler{deps: deps}
}

// HandleGetPositions handles GET /positions requests.
func (h *PositionsHandler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": h.deps.Positions()})
}
