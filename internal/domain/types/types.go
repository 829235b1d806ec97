// Package types contains common types used across the application
package types

import "errors"

// ErrResourceLoad marks a startup resource (team table, model artifact) that is
// missing or malformed. It is fatal at startup.
var ErrResourceLoad = errors.New("resource load failed")

// Estimate is the read shape returned for one market value estimate
type Estimate struct {
	RequestID     string  `json:"request_id"`
	Position      string  `json:"position"`
	Team          string  `json:"team"`
	PositionScore float64 `json:"position_score"`
	Raw           float64 `json:"raw"`
	ValueMillions float64 `json:"value_millions"`
	Display       string  `json:"display"`
}

// BatchItem is one slot of a batch estimate; exactly one of Estimate or Error is set
type BatchItem struct {
	Index    int       `json:"index"`
	Estimate *Estimate `json:"estimate,omitempty"`
	Error    *Problem  `json:"error,omitempty"`
}

// Problem describes a failed estimate
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PositionInfo describes one position category and the skill keys it accepts
type PositionInfo struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}
