package model

import "time"

// Click is a product click handed to the background task runner.
type Click struct {
	ID       string    // idempotency id; generated when the client sends none
	Session  string    // session that clicked
	Code     string    // product code as it appears in the catalog
	Name     string
	Category string
	URL      string // normalized outbound URL
	At       time.Time
}
