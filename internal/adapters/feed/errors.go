package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrNotConfigured     = errors.New("feed url not configured")
	ErrFetch             = errors.New("fetch feed")
	ErrTooLarge          = errors.New("feed exceeds size limit")
	ErrParse             = errors.New("parse feed")
	ErrUnsupportedFormat = errors.New("unsupported feed format")
)
