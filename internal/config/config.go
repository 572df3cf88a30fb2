// Package config holds all playcall configuration: detector thresholds,
// line TTLs, guardrail limits, LLM provider settings, and server settings.
// Threshold constants live here rather than in the detectors so they can
// vary by season without code changes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all playcall configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Agents     AgentThresholds `yaml:"agents"`
	LineTTLs   LineTTLConfig   `yaml:"line_ttls"`
	Guardrails GuardrailConfig `yaml:"guardrails"`
	Scripts    ScriptConfig    `yaml:"scripts"`
	LLM        LLMConfig       `yaml:"llm"`
	Server     ServerConfig    `yaml:"server"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// LLMConfig configures the external annotation collaborator.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// ServerConfig configures the HTTP glue layer.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	OddsBase   string `yaml:"odds_base_url"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// GuardrailConfig bounds what a single request may spend before any core
// work begins.
type GuardrailConfig struct {
	MaxPromptTokens int     `yaml:"max_prompt_tokens"`
	MaxCostUSD      float64 `yaml:"max_cost_usd"`
	CostPerKTokens  float64 `yaml:"cost_per_k_tokens_usd"`
}

// ScriptConfig bounds script and ladder construction.
type ScriptConfig struct {
	MaxLegs         int    `yaml:"max_legs"`
	CombineMode     string `yaml:"combine_mode"` // product, geometric_mean
	MaxRungsPerTier int    `yaml:"max_rungs_per_tier"`
}

// LineTTLConfig carries the per-market maximum line age. Values are duration
// strings ("30m"); Resolve parses them once at load time.
type LineTTLConfig struct {
	Spread    string `yaml:"spread"`
	Total     string `yaml:"total"`
	Prop      string `yaml:"prop"`
	Moneyline string `yaml:"moneyline"`
}

// TTLs is the parsed form of LineTTLConfig.
type TTLs struct {
	Spread    time.Duration
	Total     time.Duration
	Prop      time.Duration
	Moneyline time.Duration
}

// Resolve parses the TTL duration strings.
func (l LineTTLConfig) Resolve() (TTLs, error) {
	out := TTLs{}
	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"spread", l.Spread, &out.Spread},
		{"total", l.Total, &out.Total},
		{"prop", l.Prop, &out.Prop},
		{"moneyline", l.Moneyline, &out.Moneyline},
	} {
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return TTLs{}, fmt.Errorf("line_ttls.%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return out, nil
}

// DefaultConfig returns the configuration used when no file is present.
// The TTL and threshold defaults encode the historical constants.
func DefaultConfig() *Config {
	return &Config{
		Name:    "playcall",
		Version: "1.0",
		Agents:  DefaultAgentThresholds(),
		LineTTLs: LineTTLConfig{
			Spread:    "30m",
			Total:     "30m",
			Prop:      "15m",
			Moneyline: "60m",
		},
		Guardrails: GuardrailConfig{
			MaxPromptTokens: 24000,
			MaxCostUSD:      0.50,
			CostPerKTokens:  0.003,
		},
		Scripts: ScriptConfig{
			MaxLegs:         3,
			CombineMode:     "product",
			MaxRungsPerTier: 4,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Timeout:  "60s",
		},
		Server: ServerConfig{
			ListenAddr: ":8090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads the yaml config at path, overlaying it on the defaults.
// A missing file is not an error; defaults plus env overrides apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides maps well-known environment variables onto the config.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
		if c.LLM.Provider == "" {
			c.LLM.Provider = "gemini"
		}
	}
	if v := os.Getenv("PLAYCALL_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("PLAYCALL_ODDS_BASE_URL"); v != "" {
		c.Server.OddsBase = v
	}
	if v := os.Getenv("PLAYCALL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks that config values are within acceptable ranges.
func (c *Config) Validate() error {
	if _, err := c.LineTTLs.Resolve(); err != nil {
		return err
	}
	if c.Guardrails.MaxPromptTokens < 1000 {
		return fmt.Errorf("guardrails.max_prompt_tokens must be >= 1000")
	}
	if c.Guardrails.MaxCostUSD <= 0 {
		return fmt.Errorf("guardrails.max_cost_usd must be > 0")
	}
	if c.Scripts.MaxLegs < 2 {
		return fmt.Errorf("scripts.max_legs must be >= 2")
	}
	switch c.Scripts.CombineMode {
	case "product", "geometric_mean":
	default:
		return fmt.Errorf("scripts.combine_mode must be product or geometric_mean")
	}
	if c.Scripts.MaxRungsPerTier < 1 {
		return fmt.Errorf("scripts.max_rungs_per_tier must be >= 1")
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("llm.timeout: %w", err)
	}
	return c.Agents.Validate()
}
