package estimatecli

import "errors"

var (
	// ErrUsage marks malformed command line input.
	ErrUsage = errors.New("invalid usage")
	// ErrRemote marks a failed call to a running service.
	ErrRemote = errors.New("remote estimate failed")
)
