package debate

import "time"

// Agent is one logical debate participant with an ordered fallback chain.
// Agents are built once from configuration and never mutated afterwards.
type Agent struct {
	Name  string
	Chain []Candidate
}

// Candidate is one concrete backend in an agent's fallback chain.
type Candidate struct {
	Model   string
	Timeout time.Duration
	Role    string // chat role for the request, default "user"
}

// OutcomeKind classifies a single invocation attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means the backend returned generated text.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeTransportFailure means the request never completed
	// (network error or candidate timeout).
	OutcomeTransportFailure
	// OutcomeMalformedResponse means the exchange completed but the payload
	// was not usable (non-success status or missing generated message).
	OutcomeMalformedResponse
)

// String returns the outcome kind label used in logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransportFailure:
		return "transport_failure"
	case OutcomeMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of invoking one candidate once.
type Outcome struct {
	Kind   OutcomeKind
	Text   string // generated text, set only on success
	Reason string // failure diagnostic, bounded to diagnosticLimit
}

// Success builds a successful outcome carrying generated text.
func Success(text string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Text: text}
}

// TransportFailure builds an outcome for a request that never completed.
func TransportFailure(reason string) Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Reason: truncate(reason, diagnosticLimit)}
}

// MalformedResponse builds an outcome for an unusable backend payload.
func MalformedResponse(reason string) Outcome {
	return Outcome{Kind: OutcomeMalformedResponse, Reason: truncate(reason, diagnosticLimit)}
}

// Result is an agent-level resolution: either accepted text from some
// candidate, or the exhaustion of the whole chain. The distinction stays
// typed until the transcript projects failures to marker text.
type Result struct {
	ok     bool
	text   string
	marker string
}

// Accepted builds a successful resolution.
func Accepted(text string) Result {
	return Result{ok: true, text: text}
}

// Exhausted builds a failed resolution for the named agent.
func Exhausted(agentName string) Result {
	return Result{marker: FailureMarker(agentName)}
}

// OK reports whether the resolution carries accepted text.
func (r Result) OK() bool { return r.ok }

// Text returns the accepted text. Empty when the chain was exhausted.
func (r Result) Text() string { return r.text }

// Projected returns the value handed to downstream prompt construction:
// the accepted text, or the deterministic failure marker.
func (r Result) Projected() string {
	if r.ok {
		return r.text
	}
	return r.marker
}

// FailureMarker is the deterministic text substituted for an agent whose
// entire chain failed. Downstream prompts and readers see it as content.
func FailureMarker(agentName string) string {
	return "[" + agentName + " all candidates failed]"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
