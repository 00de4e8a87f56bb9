package interaction

import "errors"

// ErrNoLink is returned by RecordClick for a product without a destination.
var ErrNoLink = errors.New("product has no link")
