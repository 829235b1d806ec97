package features

import "errors"

// ErrFeatureMismatch reports a vector whose names differ from the set the
// regression model expects.
var ErrFeatureMismatch = errors.New("feature mismatch")
