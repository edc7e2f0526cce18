// Package debate implements the multi-agent debate pipeline: per-agent
// fallback chains over remote backends, concurrent phase execution with a
// join barrier, and a fixed phase sequence whose failures are absorbed as
// transcript content rather than aborting the run.
package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/zblgg/ai-debate-tool/internal/config"
	"github.com/zblgg/ai-debate-tool/internal/logging"
	"github.com/zblgg/ai-debate-tool/internal/prompts"
)

// Hooks are optional observer callbacks for run progress. OnAgentDone may be
// called concurrently from sibling goroutines within a phase.
type Hooks struct {
	OnPhaseStart func(phase PhaseID, agents int)
	OnAgentDone  func(phase PhaseID, agent string, ok bool)
	OnPhaseEnd   func(phase PhaseID)
}

// Pipeline sequences the fixed debate phases over a configured panel.
type Pipeline struct {
	agents   []Agent
	judge    Agent
	resolver *Resolver
	prompts  *prompts.Set
	log      *logging.Logger
	hooks    Hooks
}

// New builds a pipeline from validated configuration. It fails fast on panel
// shapes that could never produce a meaningful run.
func New(cfg *config.Config, invoker Invoker, set *prompts.Set, log *logging.Logger) (*Pipeline, error) {
	if len(cfg.Agents) == 0 {
		return nil, fmt.Errorf("no agents configured")
	}

	agents := make([]Agent, 0, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		if len(ac.Candidates) == 0 {
			return nil, fmt.Errorf("agent %q has an empty fallback chain", ac.Name)
		}
		chain := make([]Candidate, 0, len(ac.Candidates))
		for _, cc := range ac.Candidates {
			timeout := cc.Timeout.Std()
			if timeout <= 0 {
				timeout = cfg.Debate.DefaultTimeout.Std()
			}
			role := cc.Role
			if role == "" {
				role = "user"
			}
			chain = append(chain, Candidate{Model: cc.Model, Timeout: timeout, Role: role})
		}
		agents = append(agents, Agent{Name: ac.Name, Chain: chain})
	}

	judge := agents[0]
	if cfg.Debate.JudgeAgent != "" {
		found := false
		for _, a := range agents {
			if a.Name == cfg.Debate.JudgeAgent {
				judge, found = a, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("judge agent %q is not on the panel", cfg.Debate.JudgeAgent)
		}
	}

	resolver := NewResolver(invoker, AcceptPolicy{
		MinLength:      cfg.Debate.MinAcceptLen,
		SentinelPrefix: cfg.Debate.SentinelPrefix,
	}, log)

	return &Pipeline{
		agents:   agents,
		judge:    judge,
		resolver: resolver,
		prompts:  set,
		log:      log.WithComponent("pipeline"),
	}, nil
}

// SetHooks installs progress callbacks. Must be called before Run.
func (p *Pipeline) SetHooks(h Hooks) { p.hooks = h }

// Agents returns the configured panel in order.
func (p *Pipeline) Agents() []Agent { return p.agents }

// state is the controller's position in the fixed phase sequence.
type state int

const (
	stateInitial state = iota
	stateCritique
	stateAdjudication
	stateSynthesis
	stateInternalization
	stateDone
)

// next returns the successor state, honoring the mode's optional phases.
func (s state) next(mode Mode) state {
	switch s {
	case stateInitial:
		return stateCritique
	case stateCritique:
		return stateAdjudication
	case stateAdjudication:
		if mode == ModeStandard || mode == ModeExtended {
			return stateSynthesis
		}
		return stateDone
	case stateSynthesis:
		if mode == ModeExtended {
			return stateInternalization
		}
		return stateDone
	default:
		return stateDone
	}
}

// Run executes the debate and returns the completed transcript. Backend
// failures never surface here; every phase absorbs them as marker text and
// the sequence always reaches its terminal state. The only errors are
// template rendering failures, which indicate a broken template set.
func (p *Pipeline) Run(ctx context.Context, question string, mode Mode) (*Transcript, error) {
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if _, ok := ParseMode(string(mode)); !ok {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	transcript := newTranscript(question, mode, p.agents)
	log := p.log.WithRunID(transcript.RunID)
	ctx, runSpan := startRunSpan(ctx, transcript.RunID, mode)
	defer runSpan.End()

	log.Info("run started", map[string]interface{}{
		"mode":   mode,
		"agents": len(p.agents),
	})

	for st := stateInitial; st != stateDone; st = st.next(mode) {
		phase, tasks, err := p.buildPhase(st, transcript)
		if err != nil {
			runSpan.RecordError(err)
			return nil, err
		}

		if p.hooks.OnPhaseStart != nil {
			p.hooks.OnPhaseStart(phase, len(tasks))
		}
		started := time.Now()
		phaseCtx, span := startPhaseSpan(ctx, phase, len(tasks))

		result := runPhase(phaseCtx, p.resolver, tasks, func(agent string, res Result) {
			if p.hooks.OnAgentDone != nil {
				p.hooks.OnAgentDone(phase, agent, res.OK())
			}
		})
		transcript.append(phase, result)

		endPhaseSpan(span, result)
		log.Info("phase complete", map[string]interface{}{
			"phase":      phase,
			"elapsed_ms": time.Since(started).Milliseconds(),
		})
		if p.hooks.OnPhaseEnd != nil {
			p.hooks.OnPhaseEnd(phase)
		}
	}

	transcript.Finished = time.Now()
	log.Info("run complete", map[string]interface{}{"phases": len(transcript.Phases)})
	return transcript, nil
}

// buildPhase constructs the task set for a state from the question and the
// prior phase records only.
func (p *Pipeline) buildPhase(st state, t *Transcript) (PhaseID, []Task, error) {
	switch st {
	case stateInitial:
		prompt, err := p.prompts.Initial(t.Question)
		if err != nil {
			return PhaseInitial, nil, err
		}
		tasks := make([]Task, 0, len(p.agents))
		for _, agent := range p.agents {
			tasks = append(tasks, Task{Agent: agent, Prompt: prompt})
		}
		return PhaseInitial, tasks, nil

	case stateCritique:
		tasks := make([]Task, 0, len(p.agents))
		for _, agent := range p.agents {
			prompt, err := p.critiquePrompt(agent, t)
			if err != nil {
				return PhaseCritique, nil, err
			}
			tasks = append(tasks, Task{Agent: agent, Prompt: prompt})
		}
		return PhaseCritique, tasks, nil

	case stateAdjudication:
		prompt, err := p.prompts.Adjudication(t.Question, p.attributed(t, PhaseInitial), p.attributed(t, PhaseCritique))
		if err != nil {
			return PhaseAdjudication, nil, err
		}
		return PhaseAdjudication, []Task{{Agent: p.judge, Prompt: prompt}}, nil

	case stateSynthesis:
		prompt, err := p.prompts.Synthesis(t.Question, p.judgment(t))
		if err != nil {
			return PhaseSynthesis, nil, err
		}
		return PhaseSynthesis, []Task{{Agent: p.judge, Prompt: prompt}}, nil

	case stateInternalization:
		prompt, err := p.prompts.Internalization(t.Question, p.judgment(t))
		if err != nil {
			return PhaseInternalization, nil, err
		}
		return PhaseInternalization, []Task{{Agent: p.judge, Prompt: prompt}}, nil
	}
	return "", nil, fmt.Errorf("no phase for state %d", st)
}

// critiquePrompt builds one agent's peer-comparison prompt. The author's own
// first-round answer goes in the "your answer" slot and is excluded from the
// peer list.
func (p *Pipeline) critiquePrompt(agent Agent, t *Transcript) (string, error) {
	own, _ := t.Output(PhaseInitial, agent.Name)
	peers := make([]prompts.Attributed, 0, len(p.agents)-1)
	for _, other := range p.agents {
		if other.Name == agent.Name {
			continue
		}
		text, _ := t.Output(PhaseInitial, other.Name)
		peers = append(peers, prompts.Attributed{Name: other.Name, Text: text})
	}
	return p.prompts.Critique(agent.Name, t.Question, own, peers)
}

// attributed collects a phase's outputs in panel order.
func (p *Pipeline) attributed(t *Transcript, phase PhaseID) []prompts.Attributed {
	out := make([]prompts.Attributed, 0, len(p.agents))
	for _, agent := range p.agents {
		if text, ok := t.Output(phase, agent.Name); ok {
			out = append(out, prompts.Attributed{Name: agent.Name, Text: text})
		}
	}
	return out
}

// judgment returns the adjudication text produced by the judge's chain.
func (p *Pipeline) judgment(t *Transcript) string {
	text, _ := t.Output(PhaseAdjudication, p.judge.Name)
	return text
}
