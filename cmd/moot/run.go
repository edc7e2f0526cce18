package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/zblgg/ai-debate-tool/internal/config"
	"github.com/zblgg/ai-debate-tool/internal/debate"
	"github.com/zblgg/ai-debate-tool/internal/logging"
	"github.com/zblgg/ai-debate-tool/internal/openrouter"
	"github.com/zblgg/ai-debate-tool/internal/prompts"
	"github.com/zblgg/ai-debate-tool/internal/report"
)

const summaryWidth = 100

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var phaseBanners = map[debate.PhaseID]string{
	debate.PhaseInitial:         "Phase 1: collecting initial answers",
	debate.PhaseCritique:        "Phase 2: cross-critique",
	debate.PhaseAdjudication:    "Phase 3: final judgment",
	debate.PhaseSynthesis:       "Phase 4: consolidated report",
	debate.PhaseInternalization: "Phase 5: internalization guide",
}

// loadConfig loads the config file, falling back to built-in defaults when no
// file exists and no explicit path was given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadDefault()
	if os.IsNotExist(err) {
		return config.Default(), nil
	}
	return cfg, err
}

// Run executes the debate pipeline end to end.
func (r *RunCmd) Run() error {
	question, err := r.question()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(r.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	apiKey := cfg.GetAPIKey()
	if apiKey == "" {
		return fmt.Errorf("API key not set: export %s or add it to .env", cfg.OpenRouter.APIKeyEnv)
	}

	mode, err := r.resolveMode(cfg)
	if err != nil {
		return err
	}

	set, err := r.loadTemplates()
	if err != nil {
		return err
	}

	log := logging.New()
	if r.Verbose {
		log.SetLevel(logging.LevelDebug)
	}

	client := openrouter.NewClient(cfg.OpenRouter, apiKey)
	invoker := debate.NewHTTPInvoker(client, log)
	pipeline, err := debate.New(cfg, invoker, set, log)
	if err != nil {
		return err
	}
	pipeline.SetHooks(consoleHooks())

	fmt.Println(bannerStyle.Render("moot: multi-AI debate"))
	fmt.Printf("question: %s\n", ellipsis(question, 100))
	fmt.Printf("mode: %s\n\n", mode)

	transcript, err := pipeline.Run(context.Background(), question, mode)
	if err != nil {
		return err
	}

	title := r.reportTitle(cfg, set, client, question)
	path, err := report.Write(r.Out, transcript, title)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(bannerStyle.Render("final result"))
	fmt.Println(report.Summary(transcript, summaryWidth))
	fmt.Println()
	fmt.Println(pathStyle.Render("report saved: " + path))
	return nil
}

// question returns the question text from the argument or --file.
func (r *RunCmd) question() (string, error) {
	if r.File != "" {
		raw, err := os.ReadFile(r.File)
		if err != nil {
			return "", fmt.Errorf("read question file: %w", err)
		}
		if q := strings.TrimSpace(string(raw)); q != "" {
			return q, nil
		}
		return "", fmt.Errorf("question file %s is empty", r.File)
	}
	if q := strings.TrimSpace(r.Question); q != "" {
		return q, nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return askQuestion()
	}
	return "", fmt.Errorf("a question is required (argument or --file)")
}

// resolveMode picks the run mode: flag, else interactive picker on a TTY,
// else the configured default.
func (r *RunCmd) resolveMode(cfg *config.Config) (debate.Mode, error) {
	if r.Mode != "" {
		mode, ok := debate.ParseMode(r.Mode)
		if !ok {
			return "", fmt.Errorf("unknown mode %q (want minimal, standard or extended)", r.Mode)
		}
		return mode, nil
	}
	fallback, _ := debate.ParseMode(cfg.Debate.DefaultMode)
	if isatty.IsTerminal(os.Stdin.Fd()) {
		return pickMode(fallback)
	}
	return fallback, nil
}

// loadTemplates loads the prompt set, with overrides when requested.
func (r *RunCmd) loadTemplates() (*prompts.Set, error) {
	if r.Templates != "" {
		return prompts.LoadDir(r.Templates)
	}
	return prompts.Load()
}

// reportTitle asks the configured title model for a short report title.
// Failures fall back to a slug of the question; the report is written either way.
func (r *RunCmd) reportTitle(cfg *config.Config, set *prompts.Set, client *openrouter.Client, question string) string {
	fallback := report.SanitizeTitle(ellipsis(question, 60))
	if cfg.Title.Model == "" {
		return fallback
	}
	prompt, err := set.Title(question)
	if err != nil {
		return fallback
	}
	reply, err := client.Complete(context.Background(), cfg.Title.Model, "user", prompt, cfg.Title.Timeout.Std())
	if err != nil || reply.StatusCode < 200 || reply.StatusCode >= 300 || !reply.HasContent {
		return fallback
	}
	title := report.SanitizeTitle(reply.Content)
	if title == report.DefaultTitle {
		return fallback
	}
	return title
}

// consoleHooks prints phase banners and per-agent completion lines.
func consoleHooks() debate.Hooks {
	return debate.Hooks{
		OnPhaseStart: func(phase debate.PhaseID, agents int) {
			fmt.Println(bannerStyle.Render(phaseBanners[phase]))
		},
		OnAgentDone: func(phase debate.PhaseID, agent string, ok bool) {
			if ok {
				fmt.Println(agentStyle.Render("  ✓ " + agent))
			} else {
				fmt.Println(failStyle.Render("  ✗ " + agent + " (all candidates failed)"))
			}
		},
	}
}

func ellipsis(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Run validates the configuration file and reports the panel shape.
func (v *ValidateCmd) Run() error {
	cfg, err := loadConfig(v.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fmt.Printf("configuration OK: %d agents\n", len(cfg.Agents))
	for _, agent := range cfg.Agents {
		models := make([]string, 0, len(agent.Candidates))
		for _, cand := range agent.Candidates {
			models = append(models, cand.Model)
		}
		fmt.Printf("  %s: %s\n", agent.Name, strings.Join(models, " -> "))
	}
	return nil
}
