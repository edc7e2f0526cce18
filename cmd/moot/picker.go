package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zblgg/ai-debate-tool/internal/debate"
)

var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	pickerSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	pickerDescStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

type modeChoice struct {
	mode  debate.Mode
	label string
	desc  string
}

var modeChoices = []modeChoice{
	{debate.ModeMinimal, "minimal", "initial answers, cross-critique and final judgment"},
	{debate.ModeStandard, "standard", "adds a consolidated strategy report"},
	{debate.ModeExtended, "extended", "adds an internalization coaching guide"},
}

// pickerModel is the interactive mode selector.
type pickerModel struct {
	cursor   int
	chosen   bool
	canceled bool
}

func newPicker(fallback debate.Mode) pickerModel {
	m := pickerModel{}
	for i, c := range modeChoices {
		if c.mode == fallback {
			m.cursor = i
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(modeChoices)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = true
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.canceled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Select run mode") + "\n"
	for i, c := range modeChoices {
		line := fmt.Sprintf("  %s — %s", c.label, pickerDescStyle.Render(c.desc))
		if i == m.cursor {
			line = pickerSelectedStyle.Render(fmt.Sprintf("> %s", c.label)) + " — " + pickerDescStyle.Render(c.desc)
		}
		s += line + "\n"
	}
	s += pickerDescStyle.Render("\nenter: confirm • q: cancel") + "\n"
	return s
}

// pickMode runs the interactive selector and returns the chosen mode.
func pickMode(fallback debate.Mode) (debate.Mode, error) {
	final, err := tea.NewProgram(newPicker(fallback)).Run()
	if err != nil {
		return "", fmt.Errorf("mode selection failed: %w", err)
	}
	m := final.(pickerModel)
	if m.canceled {
		return "", fmt.Errorf("canceled")
	}
	return modeChoices[m.cursor].mode, nil
}
