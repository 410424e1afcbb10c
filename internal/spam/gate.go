package spam

import (
	"fmt"
	"time"

	"inkwell/domain"
	"inkwell/internal/ratelimit"
)

// Reason identifies which check rejected a submission. Reasons exist
// for logs and tests only; the public response collapses all of them
// into domain.ErrCommentRejected.
type Reason int

const (
	ReasonHoneypot Reason = iota + 1
	ReasonTooFast
	ReasonRateLimited
)

func (r Reason) String() string {
	switch r {
	case ReasonHoneypot:
		return "honeypot"
	case ReasonTooFast:
		return "too_fast"
	case ReasonRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Rejection wraps domain.ErrCommentRejected with the internal reason.
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s (%s)", domain.ErrCommentRejected.Error(), r.Reason)
}

func (r *Rejection) Unwrap() error {
	return domain.ErrCommentRejected
}

// Policy holds the gate thresholds.
type Policy struct {
	RateLimit   int           // max submissions per client address
	RateWindow  time.Duration // trailing window for RateLimit
	MinFormTime time.Duration // minimum time between form render and submit
}

func DefaultPolicy() Policy {
	return Policy{
		RateLimit:   5,
		RateWindow:  5 * time.Minute,
		MinFormTime: 3 * time.Second,
	}
}

// Gate decides whether a submission attempt is abusive before it
// reaches persistence.
type Gate struct {
	limiter *ratelimit.Limiter
	policy  Policy
	now     func() time.Time
}

func NewGate(limiter *ratelimit.Limiter, policy Policy) *Gate {
	return &Gate{
		limiter: limiter,
		policy:  policy,
		now:     time.Now,
	}
}

// Evaluate runs the checks in order, short-circuiting on the first
// failure. Only the rate-limit check has a side effect (recording the
// attempt), and it runs only after the honeypot and timing checks pass,
// so a bot caught by either never burns its address's budget.
func (g *Gate) Evaluate(honeypot string, formTimestamp int64, clientAddr string) error {
	if honeypot != "" {
		return &Rejection{Reason: ReasonHoneypot}
	}

	// A missing timestamp reads as a form that was never rendered.
	elapsed := g.now().Sub(time.Unix(formTimestamp, 0))
	if formTimestamp <= 0 || elapsed < g.policy.MinFormTime {
		return &Rejection{Reason: ReasonTooFast}
	}

	if !g.limiter.TryConsume(clientAddr, g.policy.RateLimit, g.policy.RateWindow) {
		return &Rejection{Reason: ReasonRateLimited}
	}

	return nil
}
