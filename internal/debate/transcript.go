package debate

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects how many optional late phases execute.
type Mode string

const (
	// ModeMinimal stops after adjudication.
	ModeMinimal Mode = "minimal"
	// ModeStandard also runs the synthesis phase.
	ModeStandard Mode = "standard"
	// ModeExtended runs synthesis and internalization.
	ModeExtended Mode = "extended"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeMinimal, ModeStandard, ModeExtended:
		return Mode(s), true
	}
	return "", false
}

// Phases returns the phase sequence the mode executes, in order.
func (m Mode) Phases() []PhaseID {
	phases := []PhaseID{PhaseInitial, PhaseCritique, PhaseAdjudication}
	if m == ModeStandard || m == ModeExtended {
		phases = append(phases, PhaseSynthesis)
	}
	if m == ModeExtended {
		phases = append(phases, PhaseInternalization)
	}
	return phases
}

// PhaseRecord is the retained output set of one completed phase. Failed
// resolutions appear as their failure-marker text; every participating agent
// has exactly one entry.
type PhaseRecord struct {
	Phase   PhaseID           `json:"phase"`
	Outputs map[string]string `json:"outputs"`
}

// Transcript accumulates one run's inputs and outputs. It is owned by a
// single pipeline execution and immutable once the run completes.
type Transcript struct {
	RunID      string            `json:"run_id"`
	Question   string            `json:"question"`
	Mode       Mode              `json:"mode"`
	ModelsUsed map[string]string `json:"models_used"` // agent name -> primary model
	Started    time.Time         `json:"started"`
	Finished   time.Time         `json:"finished"`
	Phases     []PhaseRecord     `json:"phases"`
}

// newTranscript starts the record for one run.
func newTranscript(question string, mode Mode, agents []Agent) *Transcript {
	models := make(map[string]string, len(agents))
	for _, a := range agents {
		models[a.Name] = a.Chain[0].Model
	}
	return &Transcript{
		RunID:      uuid.NewString(),
		Question:   question,
		Mode:       mode,
		ModelsUsed: models,
		Started:    time.Now(),
	}
}

// append projects a phase's typed results to their textual form and records
// them. This is the only point where failures become marker strings.
func (t *Transcript) append(phase PhaseID, result PhaseResult) {
	outputs := make(map[string]string, len(result))
	for agent, res := range result {
		outputs[agent] = res.Projected()
	}
	t.Phases = append(t.Phases, PhaseRecord{Phase: phase, Outputs: outputs})
}

// Record returns the completed record for a phase, if it ran.
func (t *Transcript) Record(phase PhaseID) (PhaseRecord, bool) {
	for _, rec := range t.Phases {
		if rec.Phase == phase {
			return rec, true
		}
	}
	return PhaseRecord{}, false
}

// Output returns one agent's text for a phase, if present.
func (t *Transcript) Output(phase PhaseID, agent string) (string, bool) {
	rec, ok := t.Record(phase)
	if !ok {
		return "", false
	}
	text, ok := rec.Outputs[agent]
	return text, ok
}
