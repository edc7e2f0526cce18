package debate

import (
	"context"
	"strings"

	"github.com/zblgg/ai-debate-tool/internal/logging"
)

// AcceptPolicy decides whether a successful attempt is substantive enough to
// accept. Some backends return terse acknowledgments or error text with a
// success status; those must trigger fallback like any other failure.
type AcceptPolicy struct {
	MinLength      int    // accepted text must be strictly longer than this
	SentinelPrefix string // text starting with this prefix is rejected
}

// Acceptable reports whether the outcome ends the fallback chain.
func (p AcceptPolicy) Acceptable(o Outcome) bool {
	if o.Kind != OutcomeSuccess {
		return false
	}
	if p.SentinelPrefix != "" && strings.HasPrefix(o.Text, p.SentinelPrefix) {
		return false
	}
	return len(o.Text) > p.MinLength
}

// Resolver tries an agent's candidates in order until one is accepted.
type Resolver struct {
	invoker Invoker
	policy  AcceptPolicy
	log     *logging.Logger
}

// NewResolver creates a resolver using the given invoker and policy.
func NewResolver(invoker Invoker, policy AcceptPolicy, log *logging.Logger) *Resolver {
	return &Resolver{
		invoker: invoker,
		policy:  policy,
		log:     log.WithComponent("resolver"),
	}
}

// Resolve walks the agent's chain in configured order and returns the first
// accepted text. Exhaustion is an ordinary value, never an error: one agent's
// total failure must not block its siblings or the phases that follow.
func (r *Resolver) Resolve(ctx context.Context, agent Agent, prompt string) Result {
	for i, cand := range agent.Chain {
		outcome := r.invoker.Invoke(ctx, cand, prompt)
		if r.policy.Acceptable(outcome) {
			r.log.Info("candidate accepted", map[string]interface{}{
				"agent":   agent.Name,
				"model":   cand.Model,
				"attempt": i + 1,
			})
			return Accepted(outcome.Text)
		}
		r.log.Warn("candidate rejected", map[string]interface{}{
			"agent":   agent.Name,
			"model":   cand.Model,
			"attempt": i + 1,
			"outcome": outcome.Kind.String(),
		})
	}
	r.log.Error("all candidates exhausted", map[string]interface{}{
		"agent":      agent.Name,
		"chain_size": len(agent.Chain),
	})
	return Exhausted(agent.Name)
}
