package statestore

import "errors"

// Sentinel kinds for state store errors.
var (
	ErrNotFound = errors.New("state key not found")
	ErrOpen     = errors.New("open state store")
)
