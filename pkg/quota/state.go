// Package quota observes the Canvas request-cost throttle. Canvas reports
// the remaining quota of the calling token in X-Rate-Limit-Remaining and the
// cost of the last request in X-Request-Cost. This package only records and
// reports those values; it never delays or blocks a request.
package quota

import (
	"time"
)

// Response headers carrying quota information.
const (
	HeaderRemaining   = "X-Rate-Limit-Remaining"
	HeaderRequestCost = "X-Request-Cost"
)

// DefaultWarnThreshold is the remaining quota below which a warning is logged.
// Canvas buckets start at 700.
const DefaultWarnThreshold = 100

// State is the last observed quota of a token.
type State struct {
	// Remaining is the quota left in the bucket.
	Remaining float64 `json:"remaining"`

	// LastCost is the cost Canvas charged for the most recent request.
	LastCost float64 `json:"last_cost"`

	// LastUpdate is when the headers were observed. Zero if never.
	LastUpdate time.Time `json:"last_update"`

	// Observed is false until a response carried the remaining header.
	Observed bool `json:"observed"`
}

// IsStale returns true if the state is older than maxAge or never observed.
func (s State) IsStale(maxAge time.Duration) bool {
	return !s.Observed || time.Since(s.LastUpdate) > maxAge
}

// IsLow returns true if the remaining quota is below threshold.
func (s State) IsLow(threshold float64) bool {
	return s.Observed && s.Remaining < threshold
}
