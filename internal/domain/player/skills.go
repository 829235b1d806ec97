package player

import (
	"fmt"
	"math"
	"sort"
)

// Skills is the position-specific set of skill ratings. Exactly one variant
// exists per position category. A rating of zero means the rating was not
// supplied and is left out of Ratings.
type Skills interface {
	Position() Position
	Ratings() map[string]float64
}

// ForwardSkills are the ratings collected for forwards.
type ForwardSkills struct {
	Crossing    int
	Finishing   int
	Dribbling   int
	BallControl int
	Volleys     int
}

// Position implements Skills.
func (ForwardSkills) Position() Position { return Forward }

// Ratings implements Skills.
func (s ForwardSkills) Ratings() map[string]float64 {
	return supplied(map[string]int{
		"crossing":     s.Crossing,
		"finishing":    s.Finishing,
		"dribbling":    s.Dribbling,
		"ball_control": s.BallControl,
		"volleys":      s.Volleys,
	})
}

// MidfielderSkills are the ratings collected for midfielders.
type MidfielderSkills struct {
	Vision       int
	LongPassing  int
	ShortPassing int
	Composure    int
}

// Position implements Skills.
func (MidfielderSkills) Position() Position { return Midfielder }

// Ratings implements Skills.
func (s MidfielderSkills) Ratings() map[string]float64 {
	return supplied(map[string]int{
		"vision":        s.Vision,
		"long_passing":  s.LongPassing,
		"short_passing": s.ShortPassing,
		"composure":     s.Composure,
	})
}

// DefenderSkills are the ratings collected for defenders.
type DefenderSkills struct {
	DefensiveAwareness int
	StandingTackle     int
	Interceptions      int
	Aggression         int
}

// Position implements Skills.
func (DefenderSkills) Position() Position { return Defender }

// Ratings implements Skills.
func (s DefenderSkills) Ratings() map[string]float64 {
	return supplied(map[string]int{
		"defensive_awareness": s.DefensiveAwareness,
		"standing_tackle":     s.StandingTackle,
		"interceptions":       s.Interceptions,
		"aggression":          s.Aggression,
	})
}

// GoalkeeperSkills are the ratings collected for goalkeepers.
type GoalkeeperSkills struct {
	Diving   int
	Handling int
	Reflexes int
}

// Position implements Skills.
func (GoalkeeperSkills) Position() Position { return Goalkeeper }

// Ratings implements Skills.
func (s GoalkeeperSkills) Ratings() map[string]float64 {
	return supplied(map[string]int{
		"gk_diving":   s.Diving,
		"gk_handling": s.Handling,
		"gk_reflexes": s.Reflexes,
	})
}

func supplied(in map[string]int) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if v != 0 {
			out[k] = float64(v)
		}
	}
	return out
}

var skillNames = map[Position][]string{
	Forward:    {"crossing", "finishing", "dribbling", "ball_control", "volleys"},
	Midfielder: {"vision", "long_passing", "short_passing", "composure"},
	Defender:   {"defensive_awareness", "standing_tackle", "interceptions", "aggression"},
	Goalkeeper: {"gk_diving", "gk_handling", "gk_reflexes"},
}

// SkillNames returns the fixed skill keys of a position, in form order.
func SkillNames(p Position) []string {
	names := skillNames[p]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// ParseSkills converts a loosely keyed rating map into the variant for p.
// Keys outside the position's skill set fail with ErrUnknownSkill; absent
// keys are treated as not supplied. A supplied rating must be a whole number
// within [MinRating, MaxRating].
func ParseSkills(p Position, ratings map[string]float64) (Skills, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidInput, p)
	}
	allowed := make(map[string]struct{}, len(skillNames[p]))
	for _, name := range skillNames[p] {
		allowed[name] = struct{}{}
	}
	var unknown []string
	for k := range ratings {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %v not valid for %s", ErrUnknownSkill, unknown, p)
	}
	for _, name := range skillNames[p] {
		v, ok := ratings[name]
		if !ok {
			continue
		}
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %s=%v is not a whole rating", ErrInvalidInput, name, v)
		}
		if err := checkRange(name, v, MinRating, MaxRating); err != nil {
			return nil, err
		}
	}
	get := func(k string) int { return int(ratings[k]) }

	switch p {
	case Forward:
		return ForwardSkills{
			Crossing:    get("crossing"),
			Finishing:   get("finishing"),
			Dribbling:   get("dribbling"),
			BallControl: get("ball_control"),
			Volleys:     get("volleys"),
		}, nil
	case Midfielder:
		return MidfielderSkills{
			Vision:       get("vision"),
			LongPassing:  get("long_passing"),
			ShortPassing: get("short_passing"),
			Composure:    get("composure"),
		}, nil
	case Defender:
		return DefenderSkills{
			DefensiveAwareness: get("defensive_awareness"),
			StandingTackle:     get("standing_tackle"),
			Interceptions:      get("interceptions"),
			Aggression:         get("aggression"),
		}, nil
	default:
		return GoalkeeperSkills{
			Diving:   get("gk_diving"),
			Handling: get("gk_handling"),
			Reflexes: get("gk_reflexes"),
		}, nil
	}
}
