package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/playervalue/internal/app"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/types"
)

// statusClientClosedRequest is the de facto status for a request the client
// abandoned before the estimate finished.
const statusClientClosedRequest = 499

// EstimateDependencies defines the interface for estimate dependencies
type EstimateDependencies interface {
	Estimate(ctx context.Context, raw *player.RawPlayerInput) (types.Estimate, error)
	EstimateBatch(ctx context.Context, raws []*player.RawPlayerInput) ([]types.BatchItem, error)
}

// batchLimiter is implemented by dependencies that cap batch sizes.
type batchLimiter interface {
	MaxBatchSize() int
}

// playerRequest mirrors the OpenAPI schema for one player.
type playerRequest struct {
	Position                string             `json:"position"`
	Age                     int                `json:"age"`
	Team                    string             `json:"team"`
	PreferredFoot           string             `json:"preferred_foot"`
	Wage                    float64            `json:"wage"`
	YearsLeft               int                `json:"years_left"`
	HeightCM                float64            `json:"height_cm"`
	WeightKG                float64            `json:"weight_kg"`
	Acceleration            int                `json:"acceleration"`
	SprintSpeed             int                `json:"sprint_speed"`
	Agility                 int                `json:"agility"`
	Balance                 int                `json:"balance"`
	Stamina                 int                `json:"stamina"`
	Strength                int                `json:"strength"`
	InternationalReputation int                `json:"international_reputation"`
	OnLoan                  bool               `json:"on_loan"`
	Skills                  map[string]float64 `json:"skills"`
}

// toInput resolves the loosely typed request into a RawPlayerInput. Skill
// ratings are checked here since the typed variants cannot carry fractions;
// other range checks are left to the service.
func (p playerRequest) toInput() (*player.RawPlayerInput, error) {
	pos, err := player.ParsePosition(p.Position)
	if err != nil {
		return nil, err
	}
	foot, err := player.ParseFoot(p.PreferredFoot)
	if err != nil {
		return nil, err
	}
	skills, err := player.ParseSkills(pos, p.Skills)
	if err != nil {
		return nil, err
	}
	return &player.RawPlayerInput{
		Position:                pos,
		Age:                     p.Age,
		Team:                    p.Team,
		Foot:                    foot,
		Wage:                    p.Wage,
		YearsLeft:               p.YearsLeft,
		Height:                  p.HeightCM,
		Weight:                  p.WeightKG,
		Acceleration:            p.Acceleration,
		SprintSpeed:             p.SprintSpeed,
		Agility:                 p.Agility,
		Balance:                 p.Balance,
		Stamina:                 p.Stamina,
		Strength:                p.Strength,
		InternationalReputation: p.InternationalReputation,
		OnLoan:                  p.OnLoan,
		Skills:                  skills,
	}, nil
}

type batchRequest struct {
	Players []playerRequest `json:"players"`
}

type batchResponse struct {
	Items []types.BatchItem `json:"items"`
}

// PredictHandler handles estimate requests
type PredictHandler struct {
	deps EstimateDependencies
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(deps EstimateDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req playerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	est, err := h.deps.Estimate(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// HandlePredictBatch handles POST /predict/batch requests. Players that cannot
// be decoded fail in their own slot; the rest are estimated together.
func (h *PredictHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if bl, ok := h.deps.(batchLimiter); ok && len(req.Players) > bl.MaxBatchSize() {
		writeError(w, http.StatusRequestEntityTooLarge, service.CodeBatchTooLarge, service.ErrBatchTooLarge)
		return
	}

	items := make([]types.BatchItem, len(req.Players))
	raws := make([]*player.RawPlayerInput, 0, len(req.Players))
	slots := make([]int, 0, len(req.Players))
	for i, p := range req.Players {
		in, err := p.toInput()
		if err != nil {
			items[i] = types.BatchItem{Index: i, Error: &types.Problem{Code: service.Code(err), Message: err.Error()}}
			continue
		}
		raws = append(raws, in)
		slots = append(slots, i)
	}

	if len(raws) > 0 {
		results, err := h.deps.EstimateBatch(r.Context(), raws)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		for j, res := range results {
			res.Index = slots[j]
			items[slots[j]] = res
		}
	}
	writeJSON(w, http.StatusOK, batchResponse{Items: items})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err)
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", err)
}
