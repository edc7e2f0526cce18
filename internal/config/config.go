// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full tool configuration. It is built once at startup and
// treated as read-only by everything downstream.
type Config struct {
	Debate     DebateConfig     `toml:"debate"`
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Title      TitleConfig      `toml:"title"`
	Agents     []AgentConfig    `toml:"agents"`
}

// DebateConfig contains pipeline-level settings.
type DebateConfig struct {
	DefaultMode    string   `toml:"default_mode"`    // minimal|standard|extended
	MinAcceptLen   int      `toml:"min_accept_len"`  // below this a success is treated as a failed attempt
	SentinelPrefix string   `toml:"sentinel_prefix"` // responses starting with this are treated as failed attempts
	DefaultTimeout Duration `toml:"default_timeout"` // per-candidate timeout when none is set
	JudgeAgent     string   `toml:"judge_agent"`     // agent whose chain runs adjudication and later phases; defaults to the first agent
}

// OpenRouterConfig contains chat-completions endpoint settings.
type OpenRouterConfig struct {
	BaseURL     string  `toml:"base_url"`
	APIKeyEnv   string  `toml:"api_key_env"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// TitleConfig configures report title generation.
type TitleConfig struct {
	Model   string   `toml:"model"` // empty disables title generation
	Timeout Duration `toml:"timeout"`
}

// AgentConfig defines one debate participant and its fallback chain.
type AgentConfig struct {
	Name       string            `toml:"name"`
	Candidates []CandidateConfig `toml:"candidates"`
}

// CandidateConfig defines one backend in an agent's fallback chain.
type CandidateConfig struct {
	Model   string   `toml:"model"`
	Timeout Duration `toml:"timeout"` // zero means debate.default_timeout
	Role    string   `toml:"role"`    // chat role for the request, default "user"
}

// Duration wraps time.Duration for TOML string values like "300s" or "5m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		Debate: DebateConfig{
			DefaultMode:    "standard",
			MinAcceptLen:   100,
			SentinelPrefix: "[",
			DefaultTimeout: Duration(180 * time.Second),
		},
		OpenRouter: OpenRouterConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			APIKeyEnv:   "OPENROUTER_API_KEY",
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Title: TitleConfig{
			Timeout: Duration(30 * time.Second),
		},
	}
}

// Default returns a default configuration with the stock three-agent panel.
func Default() *Config {
	cfg := New()
	cfg.Agents = []AgentConfig{
		{
			Name: "Claude",
			Candidates: []CandidateConfig{
				{Model: "anthropic/claude-3.5-sonnet", Timeout: Duration(300 * time.Second)},
			},
		},
		{
			Name: "GPT",
			Candidates: []CandidateConfig{
				{Model: "openai/gpt-4o"},
				{Model: "openai/gpt-4o-mini"},
				{Model: "openai/gpt-4-turbo"},
			},
		},
		{
			Name: "Gemini",
			Candidates: []CandidateConfig{
				{Model: "google/gemini-2.0-flash-001"},
				{Model: "google/gemini-pro"},
			},
		},
	}
	cfg.Title.Model = "google/gemini-2.0-flash-001"
	return cfg
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from moot.toml in the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFile(filepath.Join(cwd, "moot.toml"))
}

// GetAPIKey returns the OpenRouter API key from the configured env variable.
func (c *Config) GetAPIKey() string {
	if c.OpenRouter.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.OpenRouter.APIKeyEnv)
}

// Validate checks the configuration for conditions that would make a run
// meaningless. Runs must fail fast here rather than mid-pipeline.
func (c *Config) Validate() error {
	switch c.Debate.DefaultMode {
	case "minimal", "standard", "extended":
	default:
		return fmt.Errorf("debate.default_mode must be minimal, standard or extended, got %q", c.Debate.DefaultMode)
	}
	if c.Debate.MinAcceptLen < 0 {
		return fmt.Errorf("debate.min_accept_len must not be negative")
	}
	if c.Debate.DefaultTimeout.Std() <= 0 {
		return fmt.Errorf("debate.default_timeout must be positive")
	}
	if c.OpenRouter.BaseURL == "" {
		return fmt.Errorf("openrouter.base_url is required")
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}
	seen := make(map[string]bool, len(c.Agents))
	for i, agent := range c.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agents[%d]: name is required", i)
		}
		if seen[agent.Name] {
			return fmt.Errorf("duplicate agent name %q", agent.Name)
		}
		seen[agent.Name] = true
		if len(agent.Candidates) == 0 {
			return fmt.Errorf("agent %q has no candidates configured", agent.Name)
		}
		for j, cand := range agent.Candidates {
			if cand.Model == "" {
				return fmt.Errorf("agent %q candidate %d: model is required", agent.Name, j)
			}
			if cand.Timeout.Std() < 0 {
				return fmt.Errorf("agent %q candidate %q: timeout must not be negative", agent.Name, cand.Model)
			}
		}
	}
	if c.Debate.JudgeAgent != "" && !seen[c.Debate.JudgeAgent] {
		return fmt.Errorf("debate.judge_agent %q is not a configured agent", c.Debate.JudgeAgent)
	}
	return nil
}
