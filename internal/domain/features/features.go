// Package features builds the fixed, name-addressed feature vector consumed by
// the market value regression model.
package features

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/playervalue/internal/domain/encoding"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/scoring"
)

// Feature names expected by the model.
const (
	Age                     = "Age"
	Foot                    = "foot"
	Wage                    = "Wage"
	Height                  = "Height_cm"
	Weight                  = "Weight_kg"
	Acceleration            = "Acceleration"
	SprintSpeed             = "Sprint speed"
	Agility                 = "Agility"
	Balance                 = "Balance"
	Stamina                 = "Stamina"
	Strength                = "Strength"
	InternationalReputation = "International reputation"
	OnLoan                  = "On Loan"
	TeamEncoded             = "Team_encoded"
	YearsLeft               = "Years left"
	ForwardScore            = "Forward Score"
	MidfielderScore         = "Midfielder Score"
	DefenderScore           = "Defender Score"
	GoalkeeperScore         = "Goalkeeper Score"
	IsDefender              = "Position Category_Defender"
	IsForward               = "Position Category_Forward"
	IsGoalkeeper            = "Position Category_Goalkeeper"
	IsMidfielder            = "Position Category_Midfielder"
)

var names = []string{
	Age, Foot, Wage, Height, Weight,
	Acceleration, SprintSpeed, Agility, Balance, Stamina, Strength,
	InternationalReputation, OnLoan, TeamEncoded, YearsLeft,
	ForwardScore, MidfielderScore, DefenderScore, GoalkeeperScore,
	IsDefender, IsForward, IsGoalkeeper, IsMidfielder,
}

// Count is the number of features in every vector.
const Count = 23

// Names returns the feature names in canonical order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

var scoreFeature = map[player.Position]string{
	player.Forward:    ForwardScore,
	player.Midfielder: MidfielderScore,
	player.Defender:   DefenderScore,
	player.Goalkeeper: GoalkeeperScore,
}

var indicatorFeature = map[player.Position]string{
	player.Forward:    IsForward,
	player.Midfielder: IsMidfielder,
	player.Defender:   IsDefender,
	player.Goalkeeper: IsGoalkeeper,
}

// Contract is the training-time agreement between the builder and a model
// artifact. A model trained under a different contract predicts silently wrong
// values, so the two are compared at startup.
type Contract struct {
	Version         string `koanf:"version" json:"version"`
	WageTransform   string `koanf:"wage_transform" json:"wage_transform"`
	TargetTransform string `koanf:"target_transform" json:"target_transform"`
}

// BuilderContract is the contract Build implements.
var BuilderContract = Contract{Version: "v1", WageTransform: "log1p", TargetTransform: "log"}

// Equal reports whether both sides agree on every term.
func (c Contract) Equal(o Contract) bool {
	return c.Version == o.Version && c.WageTransform == o.WageTransform && c.TargetTransform == o.TargetTransform
}

func (c Contract) String() string {
	return fmt.Sprintf("%s(wage=%s,target=%s)", c.Version, c.WageTransform, c.TargetTransform)
}

// Vector maps feature names to values.
type Vector map[string]float64

// Validate checks that v carries exactly the expected names.
func Validate(v Vector) error {
	var missing, extra []string
	for _, n := range names {
		if _, ok := v[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(v)+len(missing) != len(names) {
		expected := make(map[string]struct{}, len(names))
		for _, n := range names {
			expected[n] = struct{}{}
		}
		for n := range v {
			if _, ok := expected[n]; !ok {
				extra = append(extra, n)
			}
		}
		sort.Strings(extra)
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	var b strings.Builder
	if len(missing) > 0 {
		fmt.Fprintf(&b, " missing %q", missing)
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, " extra %q", extra)
	}
	return fmt.Errorf("%w:%s", ErrFeatureMismatch, b.String())
}

// Build maps raw attributes onto the feature vector. It has no side effects;
// the team table is only read.
func Build(raw *player.RawPlayerInput, table *encoding.Table) (Vector, error) {
	team, err := table.Lookup(raw.Team)
	if err != nil {
		return nil, err
	}
	if !raw.Position.Valid() {
		return nil, fmt.Errorf("%w: unknown position %q", ErrFeatureMismatch, raw.Position)
	}
	if raw.Skills != nil && raw.Skills.Position() != raw.Position {
		return nil, fmt.Errorf("%w: %s skills for a %s", ErrFeatureMismatch, raw.Skills.Position(), raw.Position)
	}

	v := make(Vector, Count)
	v[Age] = float64(raw.Age)
	v[Foot] = flag(raw.Foot == player.Right)
	v[Wage] = math.Log1p(raw.Wage)
	v[Height] = raw.Height
	v[Weight] = raw.Weight
	v[Acceleration] = float64(raw.Acceleration)
	v[SprintSpeed] = float64(raw.SprintSpeed)
	v[Agility] = float64(raw.Agility)
	v[Balance] = float64(raw.Balance)
	v[Stamina] = float64(raw.Stamina)
	v[Strength] = float64(raw.Strength)
	v[InternationalReputation] = float64(raw.InternationalReputation)
	v[OnLoan] = flag(raw.OnLoan)
	v[TeamEncoded] = team
	v[YearsLeft] = float64(raw.YearsLeft)

	score := scoring.PositionScore(raw.Skills)
	for _, p := range player.Positions {
		active := p == raw.Position
		v[scoreFeature[p]] = 0
		if active {
			v[scoreFeature[p]] = score
		}
		v[indicatorFeature[p]] = flag(active)
	}

	if err := Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
