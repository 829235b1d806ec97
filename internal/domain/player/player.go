// Package player describes the raw attributes a caller supplies for a single
// market value estimate.
package player

import (
	"fmt"
	"strings"
)

// Position is the active position category of a player.
type Position string

// Position categories.
const (
	Forward    Position = "Forward"
	Midfielder Position = "Midfielder"
	Defender   Position = "Defender"
	Goalkeeper Position = "Goalkeeper"
)

// Positions lists every position category in display order.
var Positions = []Position{Forward, Midfielder, Defender, Goalkeeper}

// Valid reports whether p is one of the known categories.
func (p Position) Valid() bool {
	switch p {
	case Forward, Midfielder, Defender, Goalkeeper:
		return true
	}
	return false
}

// ParsePosition resolves a position name case-insensitively.
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown position %q", ErrInvalidInput, s)
}

// Foot is the preferred foot.
type Foot string

// Preferred foot values.
const (
	Right Foot = "Right"
	Left  Foot = "Left"
)

// ParseFoot resolves a foot name case-insensitively.
func ParseFoot(s string) (Foot, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(Right)):
		return Right, nil
	case strings.EqualFold(strings.TrimSpace(s), string(Left)):
		return Left, nil
	}
	return "", fmt.Errorf("%w: unknown preferred foot %q", ErrInvalidInput, s)
}

// Bounds of the collection form the model was trained against.
const (
	MinAge        = 16
	MaxAge        = 45
	MinWage       = 500
	MaxWage       = 440_000
	MaxYearsLeft  = 10
	MinHeight     = 150
	MaxHeight     = 220
	MinWeight     = 50
	MaxWeight     = 120
	MinRating     = 1
	MaxRating     = 100
	MinReputation = 1
	MaxReputation = 5
)

// RawPlayerInput holds the attributes for one estimate.
type RawPlayerInput struct {
	Position                Position
	Age                     int
	Team                    string
	Foot                    Foot
	Wage                    float64 // euro per week
	YearsLeft               int
	Height                  float64 // cm
	Weight                  float64 // kg
	Acceleration            int
	SprintSpeed             int
	Agility                 int
	Balance                 int
	Stamina                 int
	Strength                int
	InternationalReputation int
	OnLoan                  bool
	Skills                  Skills
}

// Validate checks the input against the collection form bounds. It does not
// resolve the team; that happens against the encoding table.
func (in *RawPlayerInput) Validate() error {
	if !in.Position.Valid() {
		return fmt.Errorf("%w: unknown position %q", ErrInvalidInput, in.Position)
	}
	if strings.TrimSpace(in.Team) == "" {
		return fmt.Errorf("%w: missing team", ErrInvalidInput)
	}
	if in.Foot != Right && in.Foot != Left {
		return fmt.Errorf("%w: unknown preferred foot %q", ErrInvalidInput, in.Foot)
	}
	if err := checkRange("age", float64(in.Age), MinAge, MaxAge); err != nil {
		return err
	}
	if err := checkRange("wage", in.Wage, MinWage, MaxWage); err != nil {
		return err
	}
	if err := checkRange("years_left", float64(in.YearsLeft), 0, MaxYearsLeft); err != nil {
		return err
	}
	if err := checkRange("height_cm", in.Height, MinHeight, MaxHeight); err != nil {
		return err
	}
	if err := checkRange("weight_kg", in.Weight, MinWeight, MaxWeight); err != nil {
		return err
	}
	ratings := []struct {
		name  string
		value int
	}{
		{"acceleration", in.Acceleration},
		{"sprint_speed", in.SprintSpeed},
		{"agility", in.Agility},
		{"balance", in.Balance},
		{"stamina", in.Stamina},
		{"strength", in.Strength},
	}
	for _, r := range ratings {
		if err := checkRange(r.name, float64(r.value), MinRating, MaxRating); err != nil {
			return err
		}
	}
	if err := checkRange("international_reputation", float64(in.InternationalReputation), MinReputation, MaxReputation); err != nil {
		return err
	}
	if in.Skills == nil {
		return nil
	}
	if in.Skills.Position() != in.Position {
		return fmt.Errorf("%w: %s skills supplied for a %s", ErrInvalidInput, in.Skills.Position(), in.Position)
	}
	for name, v := range in.Skills.Ratings() {
		if err := checkRange(name, v, MinRating, MaxRating); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrInvalidInput, field, v, lo, hi)
	}
	return nil
}
