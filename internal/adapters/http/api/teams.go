package api

import "net/http"

// TeamsDependencies defines the interface for the team catalogue.
type TeamsDependencies interface {
	Teams() []string
}

// TeamsHandler handles team catalogue requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type teamsResponse struct {
	Teams []string `json:"teams"`
	Count int      `json:"count"`
}

// HandleGetTeams handles GET /teams requests.
func (h *TeamsHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	teams := h.deps.Teams()
	if teams == nil {
		teams = []string{}
	}
	writeJSON(w, http.StatusOK, teamsResponse{Teams: teams, Count: len(teams)})
}
