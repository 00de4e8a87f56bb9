package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownCode = errors.New("unknown product code")
	ErrSuperseded  = errors.New("catalog load superseded by a newer one")
	ErrNotStarted  = errors.New("service not started")
)
