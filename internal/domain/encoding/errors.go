package encoding

import (
	"errors"

	"github.com/okian/playervalue/internal/domain/types"
)

// Sentinel error kinds for the team encoding table.
var (
	ErrResourceLoad = types.ErrResourceLoad
	ErrUnknownTeam  = errors.New("unknown team")
)
