package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "playcall", cfg.Name)
	assert.Equal(t, 5, cfg.Agents.EPA.ReceivingRankMax)
	assert.Equal(t, 3, cfg.Scripts.MaxLegs)
	assert.Equal(t, "product", cfg.Scripts.CombineMode)
	assert.Equal(t, 24000, cfg.Guardrails.MaxPromptTokens)

	ttls, err := cfg.LineTTLs.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttls.Spread)
	assert.Equal(t, 30*time.Minute, ttls.Total)
	assert.Equal(t, 15*time.Minute, ttls.Prop)
	assert.Equal(t, time.Hour, ttls.Moneyline)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Agents, cfg.Agents)
}

func TestLoadConfig_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playcall.yaml")
	body := `
agents:
  epa:
    receiving_rank_max: 8
line_ttls:
  prop: 10m
scripts:
  combine_mode: geometric_mean
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Agents.EPA.ReceivingRankMax)
	// Untouched sections keep their defaults.
	assert.Equal(t, 10, cfg.Agents.EPA.OppAllowedRankMax)
	assert.Equal(t, "geometric_mean", cfg.Scripts.CombineMode)

	ttls, err := cfg.LineTTLs.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, ttls.Prop)
	assert.Equal(t, 30*time.Minute, ttls.Spread)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad yaml", "agents: ["},
		{"bad ttl", "line_ttls:\n  spread: soon\n"},
		{"bad combine mode", "scripts:\n  combine_mode: sum\n"},
		{"legs too low", "scripts:\n  max_legs: 1\n"},
		{"token floor", "guardrails:\n  max_prompt_tokens: 10\n"},
		{"bad target share", "agents:\n  volume:\n    target_share_min: 1.5\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "playcall.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PLAYCALL_LISTEN_ADDR", ":9999")
	t.Setenv("PLAYCALL_ODDS_BASE_URL", "http://odds.local")
	t.Setenv("PLAYCALL_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.Equal(t, "http://odds.local", cfg.Server.OddsBase)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestResolve_BadDuration(t *testing.T) {
	ttl := DefaultConfig().LineTTLs
	ttl.Moneyline = "whenever"
	_, err := ttl.Resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line_ttls.moneyline")
}

func TestWatcher_ReloadSwapsTunables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents:\n  epa:\n    receiving_rank_max: 5\n"), 0o644))

	initial, err := LoadConfig(path)
	require.NoError(t, err)
	initial.Server.ListenAddr = ":7777"

	w, err := NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(path, []byte("agents:\n  epa:\n    receiving_rank_max: 9\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Current().Agents.EPA.ReceivingRankMax == 9
	}, 5*time.Second, 20*time.Millisecond)

	// Non-tunable sections survive the swap.
	assert.Equal(t, ":7777", w.Current().Server.ListenAddr)
}

func TestWatcher_KeepsOldConfigOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents:\n  epa:\n    receiving_rank_max: 5\n"), 0o644))

	initial, err := LoadConfig(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	w.reload() // direct call, no fs event needed
	assert.Equal(t, 5, w.Current().Agents.EPA.ReceivingRankMax)

	require.NoError(t, os.WriteFile(path, []byte("scripts: [broken"), 0o644))
	w.reload()
	assert.Equal(t, 5, w.Current().Agents.EPA.ReceivingRankMax)
}
