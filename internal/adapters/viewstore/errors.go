package viewstore

import "errors"

// Sentinel kinds for view store errors.
var (
	ErrEmptyCode = errors.New("empty product code")
	ErrConnect   = errors.New("connect view store")
)
