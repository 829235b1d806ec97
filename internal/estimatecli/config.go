package estimatecli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/playervalue/internal/domain/player"
)

// Config holds configuration for one CLI estimate.
type Config struct {
	BaseURL          string        // Base URL of a running service; empty estimates locally
	TeamEncodingPath string        // Team table used in local mode
	ModelPath        string        // Model artifact used in local mode
	Timeout          time.Duration // HTTP request timeout
	JSON             bool          // Print the full estimate as JSON
	Verbose          bool          // Enable debug logging

	Position                string
	Age                     int
	Team                    string
	Foot                    string
	Wage                    float64
	YearsLeft               int
	Height                  float64
	Weight                  float64
	Acceleration            int
	SprintSpeed             int
	Agility                 int
	Balance                 int
	Stamina                 int
	Strength                int
	InternationalReputation int
	OnLoan                  bool
	Skills                  SkillFlag
}

// SkillFlag collects repeated -skill name=rating flags. Skills left unset fall
// back to the form defaults of the chosen position.
type SkillFlag map[string]float64

func (s SkillFlag) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, s[k]))
	}
	return strings.Join(parts, ",")
}

// Set parses one name=rating pair.
func (s SkillFlag) Set(v string) error {
	name, rating, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: skill %q must look like name=rating", ErrUsage, v)
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(rating), 64)
	if err != nil {
		return fmt.Errorf("%w: skill %q: %v", ErrUsage, v, err)
	}
	s[strings.TrimSpace(name)] = r
	return nil
}

// formSkills are the slider defaults of the original collection form.
var formSkills = map[player.Position]map[string]float64{
	player.Forward:    {"crossing": 75, "finishing": 82, "dribbling": 88, "ball_control": 85, "volleys": 78},
	player.Midfielder: {"vision": 94, "long_passing": 93, "short_passing": 92, "composure": 88},
	player.Defender:   {"defensive_awareness": 82, "standing_tackle": 85, "interceptions": 83, "aggression": 75},
	player.Goalkeeper: {"gk_diving": 80, "gk_handling": 78, "gk_reflexes": 85},
}

// DefaultConfig returns the form defaults: a 30 year old Manchester City
// midfielder on €270,000 a week.
func DefaultConfig() *Config {
	return &Config{
		TeamEncodingPath:        "assets/team_target_encoding.json",
		ModelPath:               "assets/model.yaml",
		Timeout:                 defaultTimeout,
		Position:                string(player.Midfielder),
		Age:                     30,
		Team:                    "Manchester City",
		Foot:                    string(player.Right),
		Wage:                    270_000,
		YearsLeft:               3,
		Height:                  181,
		Weight:                  70,
		Acceleration:            78,
		SprintSpeed:             76,
		Agility:                 82,
		Balance:                 80,
		Stamina:                 90,
		Strength:                74,
		InternationalReputation: 5,
		Skills:                  SkillFlag{},
	}
}

// Input resolves the configuration into a validated RawPlayerInput.
func (c *Config) Input() (*player.RawPlayerInput, error) {
	pos, err := player.ParsePosition(c.Position)
	if err != nil {
		return nil, err
	}
	foot, err := player.ParseFoot(c.Foot)
	if err != nil {
		return nil, err
	}
	ratings := make(map[string]float64, len(formSkills[pos]))
	for k, v := range formSkills[pos] {
		ratings[k] = v
	}
	for k, v := range c.Skills {
		ratings[k] = v
	}
	skills, err := player.ParseSkills(pos, ratings)
	if err != nil {
		return nil, err
	}
	in := &player.RawPlayerInput{
		Position:                pos,
		Age:                     c.Age,
		Team:                    c.Team,
		Foot:                    foot,
		Wage:                    c.Wage,
		YearsLeft:               c.YearsLeft,
		Height:                  c.Height,
		Weight:                  c.Weight,
		Acceleration:            c.Acceleration,
		SprintSpeed:             c.SprintSpeed,
		Agility:                 c.Agility,
		Balance:                 c.Balance,
		Stamina:                 c.Stamina,
		Strength:                c.Strength,
		InternationalReputation: c.InternationalReputation,
		OnLoan:                  c.OnLoan,
		Skills:                  skills,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return in, nil
}
