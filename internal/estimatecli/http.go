package estimatecli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/types"
)

// playerRequest mirrors the service's POST /predict body.
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

func newPlayerRequest(in *player.RawPlayerInput) playerRequest {
	var skills map[string]float64
	if in.Skills != nil {
		skills = in.Skills.Ratings()
	}
	return playerRequest{
		Position:                string(in.Position),
		Age:                     in.Age,
		Team:                    in.Team,
		PreferredFoot:           string(in.Foot),
		Wage:                    in.Wage,
		YearsLeft:               in.YearsLeft,
		HeightCM:                in.Height,
		WeightKG:                in.Weight,
		Acceleration:            in.Acceleration,
		SprintSpeed:             in.SprintSpeed,
		Agility:                 in.Agility,
		Balance:                 in.Balance,
		Stamina:                 in.Stamina,
		Strength:                in.Strength,
		InternationalReputation: in.InternationalReputation,
		OnLoan:                  in.OnLoan,
		Skills:                  skills,
	}
}

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Estimate posts in to the service and decodes the estimate.
func (c *HTTPClient) Estimate(ctx context.Context, in *player.RawPlayerInput) (types.Estimate, error) {
	body, err := json.Marshal(newPlayerRequest(in))
	if err != nil {
		return types.Estimate{}, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return types.Estimate{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return types.Estimate{}, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return types.Estimate{}, fmt.Errorf("%w: read body: %v", ErrRemote, err)
	}

	if resp.StatusCode != http.StatusOK {
		var problem types.Problem
		if json.Unmarshal(data, &problem) == nil && problem.Code != "" {
			return types.Estimate{}, fmt.Errorf("%w: %d %s: %s", ErrRemote, resp.StatusCode, problem.Code, problem.Message)
		}
		return types.Estimate{}, fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}

	var est types.Estimate
	if err := json.Unmarshal(data, &est); err != nil {
		return types.Estimate{}, fmt.Errorf("%w: decode estimate: %v", ErrRemote, err)
	}
	return est, nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
