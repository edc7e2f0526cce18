package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// askModel prompts for the debate question when none was given on the
// command line.
type askModel struct {
	input    textarea.Model
	done     bool
	canceled bool
}

func newAsk() askModel {
	input := textarea.New()
	input.Placeholder = "What should the panel debate?"
	input.Focus()
	input.SetWidth(80)
	input.SetHeight(6)
	return askModel{input: input}
}

func (m askModel) Init() tea.Cmd { return textarea.Blink }

func (m askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+d":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m askModel) View() string {
	return pickerTitleStyle.Render("Enter the question") + "\n" +
		m.input.View() + "\n" +
		pickerDescStyle.Render("ctrl+d: start the debate • esc: cancel") + "\n"
}

// askQuestion runs the interactive question prompt.
func askQuestion() (string, error) {
	final, err := tea.NewProgram(newAsk()).Run()
	if err != nil {
		return "", fmt.Errorf("question prompt failed: %w", err)
	}
	m := final.(askModel)
	if m.canceled {
		return "", fmt.Errorf("canceled")
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return "", fmt.Errorf("a question is required")
	}
	return question, nil
}
