package debate

import (
	"context"
	"sync"
)

// PhaseID identifies one stage of the fixed pipeline.
type PhaseID string

const (
	PhaseInitial         PhaseID = "initial_answers"
	PhaseCritique        PhaseID = "cross_critique"
	PhaseAdjudication    PhaseID = "adjudication"
	PhaseSynthesis       PhaseID = "synthesis"
	PhaseInternalization PhaseID = "internalization"
)

// Task pairs one agent with the prompt it must answer in a phase.
type Task struct {
	Agent  Agent
	Prompt string
}

// PhaseResult maps agent name to its resolution for one phase. Every agent
// that entered the phase has exactly one entry.
type PhaseResult map[string]Result

// runPhase resolves all tasks concurrently and joins on the full set. The
// phase is complete only when every sibling has produced either accepted
// text or an exhausted-chain result; there is no early exit, because a
// partial result set is not a valid input for the next phase's prompts.
// onDone, if set, is called from each worker goroutine as it finishes.
func runPhase(ctx context.Context, resolver *Resolver, tasks []Task, onDone func(agent string, res Result)) PhaseResult {
	type resolution struct {
		agent  string
		result Result
	}

	resultChan := make(chan resolution, len(tasks))
	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			res := resolver.Resolve(ctx, task.Agent, task.Prompt)
			if onDone != nil {
				onDone(task.Agent.Name, res)
			}
			resultChan <- resolution{agent: task.Agent.Name, result: res}
		}(task)
	}

	wg.Wait()
	close(resultChan)

	result := make(PhaseResult, len(tasks))
	for res := range resultChan {
		result[res.agent] = res.result
	}
	return result
}
