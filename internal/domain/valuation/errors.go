package valuation

import "errors"

// ErrInference reports that the regression model rejected a vector or
// produced no usable output.
var ErrInference = errors.New("inference failed")
