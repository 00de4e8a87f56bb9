package game

import "errors"

var (
	// ErrNotIdle is returned when a pick arrives after one was already made.
	ErrNotIdle = errors.New("game: a candidate was already picked")
	// ErrBadIndex is returned when the pick does not name a candidate.
	ErrBadIndex = errors.New("game: candidate index out of range")
	// ErrNotRevealing is returned when the reveal fires outside the revealing phase.
	ErrNotRevealing = errors.New("game: not revealing")
)
