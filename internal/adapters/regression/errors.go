package regression

import (
	"errors"

	"github.com/okian/playervalue/internal/domain/types"
)

// Sentinel error kinds for the model artifact.
var (
	ErrResourceLoad = types.ErrResourceLoad
	ErrRowShape     = errors.New("row does not match model features")
)
