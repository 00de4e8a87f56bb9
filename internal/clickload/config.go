package clickload

import "time"

// Config holds the load test settings.
type Config struct {
	BaseURL  string        // Base URL of the service
	Clicks   int           // Unique clicks to submit
	Replays  int           // Extra submissions that reuse an earlier click id
	Codes    int           // Top entries the clicks are spread over
	Workers  int           // Concurrent clients, each with its own session
	Timeout  time.Duration // HTTP request timeout
	Settle   time.Duration // How long to wait for the counters to catch up
	Interval time.Duration // Poll interval while settling

	AdminToken string // Bearer token for the refresh call, when the server requires one
}

// Stats holds the outcome of a run.
type Stats struct {
	Submitted  int            `json:"submitted"`
	Accepted   int            `json:"accepted"`
	Failed     int            `json:"failed"`
	Expected   map[string]int `json:"expected"`
	Observed   map[string]int `json:"observed"`
	Mismatched []string       `json:"mismatched"`
	Duration   time.Duration  `json:"duration"`
}

type entry struct {
	Code  string `json:"code"`
	Views int64  `json:"views"`
}

type lookupResponse struct {
	Found bool   `json:"found"`
	Entry *entry `json:"entry"`
}

type click struct {
	id   string
	code string
}

const (
	defaultClicks   = 1000
	defaultCodes    = 5
	defaultWorkers  = 8
	defaultTimeout  = 10 * time.Second
	defaultSettle   = 30 * time.Second
	defaultInterval = 500 * time.Millisecond
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.Clicks <= 0 {
		out.Clicks = defaultClicks
	}
	if out.Replays < 0 {
		out.Replays = 0
	}
	if out.Codes <= 0 {
		out.Codes = defaultCodes
	}
	if out.Workers <= 0 {
		out.Workers = defaultWorkers
	}
	if out.Timeout <= 0 {
		out.Timeout = defaultTimeout
	}
	if out.Settle <= 0 {
		out.Settle = defaultSettle
	}
	if out.Interval <= 0 {
		out.Interval = defaultInterval
	}
	return out
}
