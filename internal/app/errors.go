package service

import (
	"context"
	"errors"

	"github.com/okian/playervalue/internal/domain/encoding"
	"github.com/okian/playervalue/internal/domain/features"
	"github.com/okian/playervalue/internal/domain/player"
	"github.com/okian/playervalue/internal/domain/types"
	"github.com/okian/playervalue/internal/domain/valuation"
)

var (
	// ErrNotStarted is returned when estimating before Start succeeded.
	ErrNotStarted = errors.New("service not started")
	// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
)

// Error codes reported to callers and used as metric labels.
const (
	CodeInvalidInput    = "invalid_input"
	CodeUnknownSkill    = "unknown_skill"
	CodeUnknownTeam     = "unknown_team"
	CodeFeatureMismatch = "feature_mismatch"
	CodeInference       = "inference_error"
	CodeBatchTooLarge   = "batch_too_large"
	CodeUnavailable     = "unavailable"
	CodeCanceled        = "canceled"
	CodeInternal        = "internal_error"
)

// Code classifies err into one of the error codes above.
func Code(err error) string {
	switch {
	case errors.Is(err, player.ErrUnknownSkill):
		return CodeUnknownSkill
	case errors.Is(err, player.ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, encoding.ErrUnknownTeam):
		return CodeUnknownTeam
	case errors.Is(err, features.ErrFeatureMismatch):
		return CodeFeatureMismatch
	case errors.Is(err, valuation.ErrInference):
		return CodeInference
	case errors.Is(err, ErrBatchTooLarge):
		return CodeBatchTooLarge
	case errors.Is(err, ErrNotStarted), errors.Is(err, types.ErrResourceLoad):
		return CodeUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeInternal
	}
}
