// internal/pipeline/parse-intent/models.go
package parseintent

import "smartshop-search/internal/models"

// Outcome tags a parse result.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
)

// Result is either Ok(intent) or Fallback(neutral intent) with the reason.
type Result struct {
	Intent  models.SearchIntent
	Outcome Outcome
	Err     error
}

// IsFallback reports whether the neutral intent was substituted.
func (r Result) IsFallback() bool {
	return r.Outcome == OutcomeFallback
}
