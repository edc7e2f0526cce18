// Package report renders a completed debate transcript to Markdown and
// persists the run artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/muesli/reflow/wordwrap"
	"github.com/zblgg/ai-debate-tool/internal/debate"
)

// DefaultTitle is used when title generation fails or is disabled.
const DefaultTitle = "debate-report"

// maxTitleLen bounds the filename title slug.
const maxTitleLen = 40

var modeLabels = map[debate.Mode]string{
	debate.ModeMinimal:  "minimal (adjudication only)",
	debate.ModeStandard: "standard (with synthesis)",
	debate.ModeExtended: "extended (with internalization)",
}

var phaseTitles = map[debate.PhaseID]string{
	debate.PhaseInitial:         "Round 1 — Initial Answers",
	debate.PhaseCritique:        "Round 2 — Cross-Critique",
	debate.PhaseAdjudication:    "Final Judgment",
	debate.PhaseSynthesis:       "Consolidated Report",
	debate.PhaseInternalization: "Internalization Guide",
}

// Render produces the full Markdown report for a transcript.
func Render(t *debate.Transcript) string {
	var b strings.Builder

	b.WriteString("# Multi-AI Debate Report\n\n")
	fmt.Fprintf(&b, "**Question**: %s\n\n", t.Question)
	fmt.Fprintf(&b, "**Generated**: %s\n\n", t.Finished.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "**Mode**: %s\n\n", modeLabels[t.Mode])

	b.WriteString("**Models**:\n")
	agents := make([]string, 0, len(t.ModelsUsed))
	for name := range t.ModelsUsed {
		agents = append(agents, name)
	}
	sort.Strings(agents)
	for _, name := range agents {
		fmt.Fprintf(&b, "- %s: `%s`\n", name, t.ModelsUsed[name])
	}
	b.WriteString("\n---\n")

	for _, rec := range t.Phases {
		fmt.Fprintf(&b, "\n## %s\n", phaseTitles[rec.Phase])

		names := make([]string, 0, len(rec.Outputs))
		for name := range rec.Outputs {
			names = append(names, name)
		}
		sort.Strings(names)

		if len(names) == 1 {
			fmt.Fprintf(&b, "\n%s\n", rec.Outputs[names[0]])
			continue
		}
		for _, name := range names {
			fmt.Fprintf(&b, "\n### %s\n\n%s\n\n---\n", name, rec.Outputs[name])
		}
	}

	b.WriteString("\n*Generated by the multi-AI debate workflow*\n")
	return b.String()
}

// SanitizeTitle reduces generated title text to a filename-safe slug.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	// A sentinel-prefixed title means generation itself failed.
	if title == "" || strings.HasPrefix(title, "[") {
		return DefaultTitle
	}

	var b strings.Builder
	lastHyphen := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastHyphen && b.Len() > 0 {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return DefaultTitle
	}
	if len(slug) > maxTitleLen {
		slug = strings.TrimRight(slug[:maxTitleLen], "-")
	}
	return slug
}

// Filename builds the timestamped report filename.
func Filename(now time.Time, title string) string {
	return fmt.Sprintf("%s_%s.md", now.Format("20060102_150405"), SanitizeTitle(title))
}

// Write persists the Markdown report and a JSON copy of the transcript to
// dir. It returns the Markdown path.
func Write(dir string, t *debate.Transcript, title string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	name := Filename(t.Finished, title)
	mdPath := filepath.Join(dir, name)
	if err := os.WriteFile(mdPath, []byte(Render(t)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	raw, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	jsonPath := strings.TrimSuffix(mdPath, ".md") + ".json"
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("write transcript json: %w", err)
	}
	return mdPath, nil
}

// Summary returns the final phase's text wrapped for console display.
func Summary(t *debate.Transcript, width int) string {
	if len(t.Phases) == 0 {
		return ""
	}
	last := t.Phases[len(t.Phases)-1]
	names := make([]string, 0, len(last.Outputs))
	for name := range last.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	var parts []string
	for _, name := range names {
		parts = append(parts, last.Outputs[name])
	}
	return wordwrap.String(strings.Join(parts, "\n\n"), width)
}
