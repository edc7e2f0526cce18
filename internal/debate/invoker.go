package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/zblgg/ai-debate-tool/internal/logging"
	"github.com/zblgg/ai-debate-tool/internal/openrouter"
)

// diagnosticLimit bounds the raw-body prefix kept in failure outcomes.
const diagnosticLimit = 200

// Invoker performs one attempt against one candidate. No retries happen at
// this layer; trying the next candidate is the resolver's job.
type Invoker interface {
	Invoke(ctx context.Context, cand Candidate, prompt string) Outcome
}

// HTTPInvoker invokes candidates over a chat-completions client.
type HTTPInvoker struct {
	client *openrouter.Client
	log    *logging.Logger
}

// NewHTTPInvoker creates an invoker backed by the given client.
func NewHTTPInvoker(client *openrouter.Client, log *logging.Logger) *HTTPInvoker {
	return &HTTPInvoker{
		client: client,
		log:    log.WithComponent("invoker"),
	}
}

// Invoke sends the prompt to the candidate's model, bounded by the
// candidate's timeout, and classifies the result.
func (i *HTTPInvoker) Invoke(ctx context.Context, cand Candidate, prompt string) Outcome {
	started := time.Now()
	reply, err := i.client.Complete(ctx, cand.Model, cand.Role, prompt, cand.Timeout)
	elapsed := time.Since(started)

	outcome := classify(reply, err)
	fields := map[string]interface{}{
		"model":      cand.Model,
		"outcome":    outcome.Kind.String(),
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if outcome.Kind == OutcomeSuccess {
		i.log.Debug("attempt completed", fields)
	} else {
		fields["reason"] = outcome.Reason
		i.log.Warn("attempt failed", fields)
	}
	return outcome
}

// classify maps a transport reply to an attempt outcome.
func classify(reply *openrouter.Reply, err error) Outcome {
	if err != nil {
		return TransportFailure(err.Error())
	}
	if reply.StatusCode < 200 || reply.StatusCode >= 300 {
		return MalformedResponse(fmt.Sprintf("status %d: %s", reply.StatusCode, reply.Body))
	}
	if !reply.HasContent {
		return MalformedResponse(fmt.Sprintf("no generated message in response: %s", reply.Body))
	}
	return Success(reply.Content)
}
