package player

import "errors"

// Sentinel error kinds for player input.
var (
	ErrInvalidInput = errors.New("invalid player input")
	ErrUnknownSkill = errors.New("unknown skill for position")
)
