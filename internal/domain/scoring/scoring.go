// Package scoring summarises position-specific skill ratings into the single
// position score the regression model consumes.
package scoring

import "github.com/okian/playervalue/internal/domain/player"

// Aggregate returns the arithmetic mean of the ratings. An empty mapping
// yields 0 so a position whose skills could not be collected degrades to a
// neutral score instead of failing the estimate.
func Aggregate(ratings map[string]float64) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, v := range ratings {
		sum += v
	}
	return sum / float64(len(ratings))
}

// PositionScore dispatches over the active skills variant. A nil variant
// scores 0.
func PositionScore(skills player.Skills) float64 {
	if skills == nil {
		return 0
	}
	return Aggregate(skills.Ratings())
}
