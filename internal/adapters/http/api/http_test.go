package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/playervalue/internal/adapters/http/api"
	"github.com/okian/playervalue/internal/adapters/regression"
	service "github.com/okian/playervalue/internal/app"
	"github.com/okian/playervalue/internal/domain/encoding"
	"github.com/okian/playervalue/internal/domain/features"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/types"
	"github.com/okian/playervalue/internal/domain/valuation"
	"github.com/okian/playervalue/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// failingModel rejects every row.
type failingModel struct{}

func (failingModel) Predict([]features.Vector) ([]float64, error) {
	return nil, fmt.Errorf("backend unavailable")
}

// mockDependencies records what the handlers pass through.
type mockDependencies struct {
	estimate    types.Estimate
	estimateErr error
	batchErr    error
	received    []*player.RawPlayerInput
	teams       []string
}

func (m *mockDependencies) Estimate(_ context.Context, raw *player.RawPlayerInput) (types.Estimate, error) {
	m.received = append(m.received, raw)
	return m.estimate, m.estimateErr
}

func (m *mockDependencies) EstimateBatch(_ context.Context, raws []*player.RawPlayerInput) ([]types.BatchItem, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	m.received = append(m.received, raws...)
	out := make([]types.BatchItem, len(raws))
	for i, raw := range raws {
		est := types.Estimate{Team: raw.Team, Position: string(raw.Position)}
		out[i] = types.BatchItem{Index: i, Estimate: &est}
	}
	return out, nil
}

func (m *mockDependencies) Teams() []string { return m.teams }

func (m *mockDependencies) Positions() []types.PositionInfo {
	return []types.PositionInfo{{Name: "Goalkeeper", Skills: player.SkillNames(player.Goalkeeper)}}
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

const goalkeeperJSON = `{
  "position": "Goalkeeper",
  "age": 30,
  "team": "Manchester City",
  "preferred_foot": "Right",
  "wage": 270000,
  "years_left": 3,
  "height_cm": 181,
  "weight_kg": 70,
  "acceleration": 78,
  "sprint_speed": 76,
  "agility": 82,
  "balance": 80,
  "stamina": 90,
  "strength": 74,
  "international_reputation": 5,
  "on_loan": false,
  "skills": {"gk_diving": 80, "gk_handling": 78, "gk_reflexes": 85}
}`

func newMux(deps api.Dependencies, stats api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{teams: []string{"Arsenal", "Manchester City"}}
		mux := newMux(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})

		Convey("Then the health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "playervalue_estimator")
		})

		Convey("Then the stats endpoint returns JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then teams are listed with a count", func() {
			w := do(mux, http.MethodGet, "/teams", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var body struct {
				Teams []string `json:"teams"`
				Count int      `json:"count"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body.Teams, ShouldResemble, []string{"Arsenal", "Manchester City"})
			So(body.Count, ShouldEqual, 2)
		})

		Convey("Then positions carry their skill keys", func() {
			w := do(mux, http.MethodGet, "/positions", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"gk_reflexes"`)
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodGet, "/predict", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/teams", "{}").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodDelete, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPredictHandler(t *testing.T) {
	Convey("Given the predict endpoint over mocked dependencies", t, func() {
		deps := &mockDependencies{estimate: types.Estimate{RequestID: "r-1", ValueMillions: 40.5, Display: "€40.50 million"}}
		mux := newMux(deps, &mockStatsProvider{})

		Convey("When posting a valid goalkeeper", func() {
			w := do(mux, http.MethodPost, "/predict", goalkeeperJSON)

			Convey("Then the request is decoded into a raw input", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.received, ShouldHaveLength, 1)
				in := deps.received[0]
				So(in.Position, ShouldEqual, player.Goalkeeper)
				So(in.Foot, ShouldEqual, player.Right)
				So(in.Height, ShouldEqual, 181)
				So(in.Skills, ShouldResemble, player.GoalkeeperSkills{Diving: 80, Handling: 78, Reflexes: 85})
			})

			Convey("And the estimate is returned", func() {
				var est types.Estimate
				So(json.Unmarshal(w.Body.Bytes(), &est), ShouldBeNil)
				So(est.RequestID, ShouldEqual, "r-1")
				So(est.Display, ShouldEqual, "€40.50 million")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/predict", "{nope")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the body carries an unknown field", func() {
			w := do(mux, http.MethodPost, "/predict", `{"position":"Forward","shirt":9}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the position is unknown", func() {
			body := strings.Replace(goalkeeperJSON, `"Goalkeeper"`, `"Striker"`, 1)
			w := do(mux, http.MethodPost, "/predict", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, service.CodeInvalidInput)
			So(deps.received, ShouldBeEmpty)
		})

		Convey("When a skill belongs to another position", func() {
			body := strings.Replace(goalkeeperJSON, `"gk_diving"`, `"finishing"`, 1)
			w := do(mux, http.MethodPost, "/predict", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, service.CodeUnknownSkill)
		})

		Convey("When a supplied skill rating is zero, fractional or truncatable", func() {
			for _, rating := range []string{"0", "0.5", "85.9"} {
				body := strings.Replace(goalkeeperJSON, `"gk_diving": 80`, `"gk_diving": `+rating, 1)
				w := do(mux, http.MethodPost, "/predict", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, service.CodeInvalidInput)
				So(decodeError(w)["message"], ShouldContainSubstring, "gk_diving")
			}
			So(deps.received, ShouldBeEmpty)
		})
	})

	Convey("Given dependencies that fail", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("lookup: %w", encoding.ErrUnknownTeam), http.StatusUnprocessableEntity, service.CodeUnknownTeam},
			{fmt.Errorf("%w: 12", player.ErrInvalidInput), http.StatusBadRequest, service.CodeInvalidInput},
			{fmt.Errorf("%w: extra", features.ErrFeatureMismatch), http.StatusInternalServerError, service.CodeFeatureMismatch},
			{fmt.Errorf("%w: boom", valuation.ErrInference), http.StatusBadGateway, service.CodeInference},
			{service.ErrNotStarted, http.StatusServiceUnavailable, service.CodeUnavailable},
		}
		for _, c := range cases {
			mux := newMux(&mockDependencies{estimateErr: c.err}, &mockStatsProvider{})
			w := do(mux, http.MethodPost, "/predict", goalkeeperJSON)
			So(w.Code, ShouldEqual, c.status)
			So(decodeError(w)["code"], ShouldEqual, c.code)
		}
	})
}

func TestPredictBatchHandler(t *testing.T) {
	Convey("Given the batch endpoint over mocked dependencies", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps, &mockStatsProvider{})

		Convey("When one of three players cannot be decoded", func() {
			bad := strings.Replace(goalkeeperJSON, `"Right"`, `"Both"`, 1)
			arsenal := strings.Replace(goalkeeperJSON, "Manchester City", "Arsenal", 1)
			body := fmt.Sprintf(`{"players":[%s,%s,%s]}`, goalkeeperJSON, bad, arsenal)

			w := do(mux, http.MethodPost, "/predict/batch", body)

			Convey("Then each slot keeps its index", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Items []types.BatchItem `json:"items"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Items, ShouldHaveLength, 3)
				So(resp.Items[0].Estimate.Team, ShouldEqual, "Manchester City")
				So(resp.Items[1].Index, ShouldEqual, 1)
				So(resp.Items[1].Error.Code, ShouldEqual, service.CodeInvalidInput)
				So(resp.Items[2].Index, ShouldEqual, 2)
				So(resp.Items[2].Estimate.Team, ShouldEqual, "Arsenal")
				So(deps.received, ShouldHaveLength, 2)
			})
		})

		Convey("When the batch is empty", func() {
			w := do(mux, http.MethodPost, "/predict/batch", `{"players":[]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"items":[]`)
		})

		Convey("When the service rejects the batch size", func() {
			deps.batchErr = fmt.Errorf("%w: 200 items", service.ErrBatchTooLarge)
			w := do(mux, http.MethodPost, "/predict/batch", fmt.Sprintf(`{"players":[%s]}`, goalkeeperJSON))
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(decodeError(w)["code"], ShouldEqual, service.CodeBatchTooLarge)
		})
	})
}

func TestServer_EndToEnd(t *testing.T) {
	Convey("Given the API over a real service", t, func() {
		model, err := regression.New(regression.Artifact{
			Kind:         regression.KindLinear,
			Features:     features.Names(),
			Contract:     features.BuilderContract,
			Intercept:    math.Log(40),
			Coefficients: map[string]float64{features.TeamEncoded: 0},
		})
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithTable(encoding.New(map[string]float64{"Manchester City": 5})),
			service.WithPredictor(valuation.NewPredictor(model)),
			service.WithMaxBatchSize(2),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, svc)

		Convey("When predicting the default goalkeeper", func() {
			w := do(mux, http.MethodPost, "/predict", goalkeeperJSON)
			So(w.Code, ShouldEqual, http.StatusOK)

			var est types.Estimate
			So(json.Unmarshal(w.Body.Bytes(), &est), ShouldBeNil)
			So(est.Display, ShouldEqual, "€40.00 million")
			So(est.PositionScore, ShouldAlmostEqual, 81.0, 1e-9)
		})

		Convey("When the team is not in the table", func() {
			body := strings.Replace(goalkeeperJSON, "Manchester City", "Atlantis FC", 1)
			w := do(mux, http.MethodPost, "/predict", body)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("When the batch exceeds the configured limit", func() {
			body := fmt.Sprintf(`{"players":[%s,%s,%s]}`, goalkeeperJSON, goalkeeperJSON, goalkeeperJSON)
			w := do(mux, http.MethodPost, "/predict/batch", body)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When the stats are read after an estimate", func() {
			_ = do(mux, http.MethodPost, "/predict", goalkeeperJSON)
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Body.String(), ShouldContainSubstring, `"estimates":1`)
		})
	})

	Convey("Given a service whose model fails", t, func() {
		svc := service.New(
			service.WithTable(encoding.New(map[string]float64{"Manchester City": 5})),
			service.WithPredictor(valuation.NewPredictor(failingModel{})),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		w := do(newMux(svc, svc), http.MethodPost, "/predict", goalkeeperJSON)
		So(w.Code, ShouldEqual, http.StatusBadGateway)
		So(decodeError(w)["code"], ShouldEqual, service.CodeInference)
	})
}
