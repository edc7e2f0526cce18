// Package prompts loads and renders the phase prompt templates.
// Templates ship embedded as Markdown files with YAML frontmatter and can be
// overridden from a directory for prompt experimentation.
package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.md
var builtin embed.FS

// Template slot names. Each corresponds to one <name>.md template file.
const (
	SlotInitial         = "initial"
	SlotCritique        = "critique"
	SlotAdjudication    = "adjudication"
	SlotSynthesis       = "synthesis"
	SlotInternalization = "internalization"
	SlotTitle           = "title"
)

var slots = []string{SlotInitial, SlotCritique, SlotAdjudication, SlotSynthesis, SlotInternalization, SlotTitle}

// frontmatter is the YAML header of a template file.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Attributed is a piece of text credited to one agent identity.
type Attributed struct {
	Name string
	Text string
}

// Set is a full complement of parsed phase templates.
type Set struct {
	templates map[string]*template.Template
}

// Load returns the embedded default template set.
func Load() (*Set, error) {
	s := &Set{templates: make(map[string]*template.Template, len(slots))}
	for _, slot := range slots {
		content, err := builtin.ReadFile("templates/" + slot + ".md")
		if err != nil {
			return nil, fmt.Errorf("missing builtin template %s: %w", slot, err)
		}
		if err := s.add(slot, string(content)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LoadDir returns the default set with any <slot>.md files found in dir
// replacing their embedded counterparts.
func LoadDir(dir string) (*Set, error) {
	s, err := Load()
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		path := filepath.Join(dir, slot+".md")
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if err := s.add(slot, string(content)); err != nil {
			return nil, fmt.Errorf("template %s: %w", path, err)
		}
	}
	return s, nil
}

// add parses one template file into a slot.
func (s *Set) add(slot, content string) error {
	front, body, err := splitFrontmatter(content)
	if err != nil {
		return fmt.Errorf("template %s: %w", slot, err)
	}

	var meta frontmatter
	if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
		return fmt.Errorf("template %s: invalid frontmatter: %w", slot, err)
	}
	if meta.Name != slot {
		return fmt.Errorf("template name %q does not match slot %q", meta.Name, slot)
	}

	tmpl, err := template.New(slot).Parse(strings.TrimSpace(body))
	if err != nil {
		return fmt.Errorf("template %s: %w", slot, err)
	}
	s.templates[slot] = tmpl
	return nil
}

// splitFrontmatter separates the YAML header from the template body.
func splitFrontmatter(content string) (string, string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return "", "", fmt.Errorf("missing frontmatter delimiter")
	}
	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter")
	}
	front := rest[:idx]
	body := rest[idx+len("\n---"):]
	return front, strings.TrimPrefix(body, "\n"), nil
}

// render executes a slot template with the given data.
func (s *Set) render(slot string, data interface{}) (string, error) {
	tmpl, ok := s.templates[slot]
	if !ok {
		return "", fmt.Errorf("no template for slot %s", slot)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", slot, err)
	}
	return b.String(), nil
}

// Initial renders the first-round analysis prompt.
func (s *Set) Initial(question string) (string, error) {
	return s.render(SlotInitial, struct{ Question string }{question})
}

// Critique renders the cross-critique prompt for one agent. The peers slice
// must contain only the other agents' answers, never the author's own.
func (s *Set) Critique(self, question, ownAnswer string, peers []Attributed) (string, error) {
	return s.render(SlotCritique, struct {
		Self      string
		Question  string
		OwnAnswer string
		Peers     []Attributed
	}{self, question, ownAnswer, peers})
}

// Adjudication renders the final-judge prompt over every agent's answer and
// critique.
func (s *Set) Adjudication(question string, answers, critiques []Attributed) (string, error) {
	return s.render(SlotAdjudication, struct {
		Question  string
		Answers   []Attributed
		Critiques []Attributed
	}{question, answers, critiques})
}

// Synthesis renders the consolidated-report prompt from the judgment.
func (s *Set) Synthesis(question, judgment string) (string, error) {
	return s.render(SlotSynthesis, struct{ Question, Judgment string }{question, judgment})
}

// Internalization renders the coaching prompt from the judgment.
func (s *Set) Internalization(question, judgment string) (string, error) {
	return s.render(SlotInternalization, struct{ Question, Judgment string }{question, judgment})
}

// Title renders the report-title prompt.
func (s *Set) Title(question string) (string, error) {
	return s.render(SlotTitle, struct{ Question string }{question})
}
