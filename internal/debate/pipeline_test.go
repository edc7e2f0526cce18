package debate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zblgg/ai-debate-tool/internal/config"
	"github.com/zblgg/ai-debate-tool/internal/prompts"
)

func panelConfig() *config.Config {
	cfg := config.New()
	cfg.Agents = []config.AgentConfig{
		{Name: "Alpha", Candidates: []config.CandidateConfig{{Model: "alpha-m"}}},
		{Name: "Beta", Candidates: []config.CandidateConfig{{Model: "beta-m"}}},
		{Name: "Gamma", Candidates: []config.CandidateConfig{{Model: "gamma-m"}}},
	}
	return cfg
}

// sequencedInvoker returns a deterministic 150-char response per model and
// call number, so phase outputs are identifiable in later prompts.
func sequencedInvoker() *fakeInvoker {
	var mu sync.Mutex
	counts := map[string]int{}
	return &fakeInvoker{respond: func(cand Candidate, prompt string) Outcome {
		mu.Lock()
		counts[cand.Model]++
		n := counts[cand.Model]
		mu.Unlock()
		return Success(substantive(fmt.Sprintf("%s-call%d-", cand.Model, n)))
	}}
}

func newTestPipeline(t *testing.T, cfg *config.Config, invoker Invoker) *Pipeline {
	t.Helper()
	set, err := prompts.Load()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	p, err := New(cfg, invoker, set, quietLogger())
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}
	return p
}

func TestPipeline_PhaseCountPerMode(t *testing.T) {
	cases := []struct {
		mode Mode
		want int
	}{
		{ModeMinimal, 3},
		{ModeStandard, 4},
		{ModeExtended, 5},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			p := newTestPipeline(t, panelConfig(), sequencedInvoker())
			transcript, err := p.Run(context.Background(), "should we expand?", tc.mode)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if got := len(transcript.Phases); got != tc.want {
				t.Fatalf("mode %s: expected %d phase results, got %d", tc.mode, tc.want, got)
			}
			wantPhases := tc.mode.Phases()
			for i, rec := range transcript.Phases {
				if rec.Phase != wantPhases[i] {
					t.Errorf("phase %d: expected %s, got %s", i, wantPhases[i], rec.Phase)
				}
			}
		})
	}
}

func TestPipeline_CritiqueExcludesOwnAnswer(t *testing.T) {
	invoker := sequencedInvoker()
	p := newTestPipeline(t, panelConfig(), invoker)

	transcript, err := p.Run(context.Background(), "should we expand?", ModeMinimal)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	alphaInitial, _ := transcript.Output(PhaseInitial, "Alpha")
	betaInitial, _ := transcript.Output(PhaseInitial, "Beta")
	gammaInitial, _ := transcript.Output(PhaseInitial, "Gamma")

	// The second call to Alpha's model carries its critique prompt.
	alphaPrompts := invoker.promptsFor("alpha-m")
	if len(alphaPrompts) < 2 {
		t.Fatalf("expected at least 2 prompts to alpha-m, got %d", len(alphaPrompts))
	}
	critiquePrompt := alphaPrompts[1]

	if strings.Contains(critiquePrompt, "[Alpha's answer]") {
		t.Error("critique prompt must not attribute the author's own answer as a peer answer")
	}
	for _, want := range []string{"[Beta's answer]", "[Gamma's answer]", betaInitial, gammaInitial} {
		if !strings.Contains(critiquePrompt, want) {
			t.Errorf("critique prompt missing %.40q", want)
		}
	}
	// The author's own answer appears only in the "your answer" slot.
	if !strings.Contains(critiquePrompt, alphaInitial) {
		t.Error("critique prompt should carry the author's own answer for self-revision")
	}
	if !strings.Contains(critiquePrompt, "You are Alpha.") {
		t.Error("critique prompt should address the authoring agent by identity")
	}
}

func TestPipeline_MinimalScenarioAdjudication(t *testing.T) {
	invoker := sequencedInvoker()
	p := newTestPipeline(t, panelConfig(), invoker)

	transcript, err := p.Run(context.Background(), "Is this a good plan?", ModeMinimal)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	rec, ok := transcript.Record(PhaseAdjudication)
	if !ok {
		t.Fatal("adjudication phase missing")
	}
	if len(rec.Outputs) != 1 {
		t.Fatalf("adjudication should have exactly one entry, got %d", len(rec.Outputs))
	}
	judgment, ok := rec.Outputs["Alpha"]
	if !ok || judgment == "" {
		t.Fatalf("adjudication entry should belong to the judge agent and be non-empty, got %v", rec.Outputs)
	}

	// The judge's third call carries the adjudication prompt; it must quote
	// every agent's initial answer and critique verbatim.
	alphaPrompts := invoker.promptsFor("alpha-m")
	if len(alphaPrompts) != 3 {
		t.Fatalf("judge chain should see initial, critique and adjudication prompts, got %d", len(alphaPrompts))
	}
	adjPrompt := alphaPrompts[2]
	for _, agent := range []string{"Alpha", "Beta", "Gamma"} {
		answer, _ := transcript.Output(PhaseInitial, agent)
		critique, _ := transcript.Output(PhaseCritique, agent)
		if !strings.Contains(adjPrompt, answer) {
			t.Errorf("adjudication prompt missing %s's initial answer", agent)
		}
		if !strings.Contains(adjPrompt, critique) {
			t.Errorf("adjudication prompt missing %s's critique", agent)
		}
	}
}

func TestPipeline_AllAgentsFailStillReachesDone(t *testing.T) {
	invoker := &fakeInvoker{respond: func(cand Candidate, prompt string) Outcome {
		return TransportFailure("connection refused")
	}}
	p := newTestPipeline(t, panelConfig(), invoker)

	transcript, err := p.Run(context.Background(), "does failure propagate?", ModeExtended)
	if err != nil {
		t.Fatalf("total backend failure must not abort the run: %v", err)
	}
	if got := len(transcript.Phases); got != 5 {
		t.Fatalf("expected all 5 phases despite failures, got %d", got)
	}
	for _, agent := range []string{"Alpha", "Beta", "Gamma"} {
		text, ok := transcript.Output(PhaseInitial, agent)
		if !ok {
			t.Fatalf("missing initial entry for %s", agent)
		}
		if text != FailureMarker(agent) {
			t.Errorf("expected failure marker for %s, got %q", agent, text)
		}
	}
	// Downstream prompts absorb the markers as content.
	prompts := invoker.promptsFor("alpha-m")
	last := prompts[len(prompts)-1]
	if !strings.Contains(last, FailureMarker("Beta")) {
		t.Error("later phases should see earlier failure markers as ordinary content")
	}
}

func TestPipeline_TranscriptMetadata(t *testing.T) {
	p := newTestPipeline(t, panelConfig(), sequencedInvoker())
	before := time.Now()
	transcript, err := p.Run(context.Background(), "metadata?", ModeMinimal)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if transcript.RunID == "" {
		t.Error("transcript should carry a run ID")
	}
	if transcript.Question != "metadata?" || transcript.Mode != ModeMinimal {
		t.Errorf("transcript should record question and mode, got %+v", transcript)
	}
	if transcript.Finished.Before(before) {
		t.Error("transcript should record its finish time")
	}
	if transcript.ModelsUsed["Beta"] != "beta-m" {
		t.Errorf("transcript should record the primary model per agent, got %v", transcript.ModelsUsed)
	}
}

func TestPipeline_Hooks(t *testing.T) {
	p := newTestPipeline(t, panelConfig(), sequencedInvoker())

	var mu sync.Mutex
	started := map[PhaseID]int{}
	done := 0
	p.SetHooks(Hooks{
		OnPhaseStart: func(phase PhaseID, agents int) {
			mu.Lock()
			started[phase] = agents
			mu.Unlock()
		},
		OnAgentDone: func(phase PhaseID, agent string, ok bool) {
			mu.Lock()
			done++
			mu.Unlock()
		},
	})

	if _, err := p.Run(context.Background(), "hooks?", ModeMinimal); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if started[PhaseInitial] != 3 || started[PhaseAdjudication] != 1 {
		t.Errorf("unexpected phase start sizes: %v", started)
	}
	if done != 7 { // 3 initial + 3 critique + 1 adjudication
		t.Errorf("expected 7 agent completions, got %d", done)
	}
}

func TestPipeline_ConfigErrors(t *testing.T) {
	set, err := prompts.Load()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	empty := config.New()
	if _, err := New(empty, sequencedInvoker(), set, quietLogger()); err == nil {
		t.Error("expected error for empty panel")
	}

	noChain := panelConfig()
	noChain.Agents[1].Candidates = nil
	if _, err := New(noChain, sequencedInvoker(), set, quietLogger()); err == nil {
		t.Error("expected error for an empty fallback chain")
	}

	badJudge := panelConfig()
	badJudge.Debate.JudgeAgent = "Nobody"
	if _, err := New(badJudge, sequencedInvoker(), set, quietLogger()); err == nil {
		t.Error("expected error for unknown judge agent")
	}
}

func TestPipeline_RunInputErrors(t *testing.T) {
	p := newTestPipeline(t, panelConfig(), sequencedInvoker())
	if _, err := p.Run(context.Background(), "", ModeMinimal); err == nil {
		t.Error("expected error for empty question")
	}
	if _, err := p.Run(context.Background(), "q", Mode("turbo")); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestPipeline_CustomJudgeAgent(t *testing.T) {
	cfg := panelConfig()
	cfg.Debate.JudgeAgent = "Gamma"
	p := newTestPipeline(t, cfg, sequencedInvoker())

	transcript, err := p.Run(context.Background(), "who judges?", ModeMinimal)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	rec, _ := transcript.Record(PhaseAdjudication)
	if _, ok := rec.Outputs["Gamma"]; !ok {
		t.Errorf("adjudication should run on the configured judge agent, got %v", rec.Outputs)
	}
}
