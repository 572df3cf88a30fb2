package annotate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playcall/internal/config"
	"playcall/internal/types"
)

const goodOutput = `{
  "findings": {
    "epa_t-rivers_100": {
      "severity": "high",
      "claim_parts": {
        "subject": "T. Rivers",
        "assertion": "profiles for a heavy receptions day",
        "context": "top-five receiving efficiency against a soft zone"
      },
      "implications": ["wr_receptions_over"]
    }
  }
}`

func TestParseOutput_Valid(t *testing.T) {
	out, err := ParseOutput(goodOutput)
	require.NoError(t, err)
	require.Len(t, out.Findings, 1)

	f := out.Findings["epa_t-rivers_100"]
	assert.Equal(t, types.SeverityHigh, f.Severity)
	assert.Equal(t, "T. Rivers profiles for a heavy receptions day (top-five receiving efficiency against a soft zone)", f.ClaimParts.Render())
	assert.Equal(t, []string{"wr_receptions_over"}, f.Implications)
}

func TestParseOutput_CodeFences(t *testing.T) {
	fenced := "```json\n" + goodOutput + "\n```"
	out, err := ParseOutput(fenced)
	require.NoError(t, err)
	assert.Len(t, out.Findings, 1)
}

func TestParseOutput_RejectsConfidenceKey(t *testing.T) {
	raw := `{
  "findings": {
    "epa_t-rivers_100": {
      "severity": "high",
      "claim_parts": {"subject": "T. Rivers", "assertion": "x"},
      "implications": ["wr_receptions_over"],
      "confidence": 0.95
    }
  }
}`
	_, err := ParseOutput(raw)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Reason, "confidence")
}

func TestParseOutput_Failures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "we think T. Rivers looks strong this week"},
		{"trailing content", goodOutput + `{"extra": true}`},
		{"missing findings key", `{}`},
		{"unknown top-level key", `{"results": {}}`},
		{"invalid severity", `{"findings": {"a_b_1": {"severity": "critical", "claim_parts": {"subject": "x", "assertion": "y"}, "implications": ["z"]}}}`},
		{"empty subject", `{"findings": {"a_b_1": {"severity": "low", "claim_parts": {"subject": "", "assertion": "y"}, "implications": ["z"]}}}`},
		{"no implications", `{"findings": {"a_b_1": {"severity": "low", "claim_parts": {"subject": "x", "assertion": "y"}, "implications": []}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOutput(tc.raw)
			require.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestCheckGuardrails(t *testing.T) {
	cfg := config.GuardrailConfig{MaxPromptTokens: 100, MaxCostUSD: 1.0, CostPerKTokens: 0.003}

	assert.Nil(t, CheckGuardrails(strings.Repeat("a", 200), cfg))

	err := CheckGuardrails(strings.Repeat("a", 800), cfg)
	require.NotNil(t, err)
	assert.Equal(t, TokenLimitExceeded, err.Code)

	cfg = config.GuardrailConfig{MaxPromptTokens: 1_000_000, MaxCostUSD: 0.0001, CostPerKTokens: 0.003}
	err = CheckGuardrails(strings.Repeat("a", 4000), cfg)
	require.NotNil(t, err)
	assert.Equal(t, CostLimitExceeded, err.Code)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
	assert.Equal(t, 0, EstimateTokens(""))
}

func TestSkillDocs(t *testing.T) {
	docs, err := SkillDocs()
	require.NoError(t, err)
	for _, agent := range []string{"epa", "pressure", "qb", "weather", "volume", "pace", "redzone", "injury"} {
		assert.NotEmpty(t, docs[agent], "skill doc for %s", agent)
	}
}

func TestBuildPrompt(t *testing.T) {
	mc := &types.MatchupContext{
		HomeTeam: "HOU",
		AwayTeam: "JAX",
		Notes: &types.CuratedNotes{
			Injuries: []string{"WR2 doubtful with a hamstring"},
		},
	}
	findings := []types.Finding{
		{ID: "epa_t-rivers_100", Agent: "epa", Stat: "receiving_epa_rank", Value: 3, ComparisonContext: "top five"},
		{ID: "epa_m-hale_100", Agent: "epa", Stat: "receiving_epa_rank", Value: 5, ComparisonContext: "top five"},
	}
	skills := map[string]string{"epa": "EPA SKILL BODY", "weather": "WEATHER SKILL BODY"}

	prompt := BuildPrompt(mc, findings, skills)

	assert.Contains(t, prompt, "JAX at HOU")
	assert.Contains(t, prompt, "epa_t-rivers_100")
	assert.Contains(t, prompt, "epa_m-hale_100")
	assert.Contains(t, prompt, "WR2 doubtful")
	assert.Contains(t, prompt, "EPA SKILL BODY")
	// Silent agents contribute no skill text.
	assert.NotContains(t, prompt, "WEATHER SKILL BODY")
	// The skill section appears once even with two epa findings.
	assert.Equal(t, 1, strings.Count(prompt, "## Skill: epa"))
}

func TestStaticAnnotator_RoundTrip(t *testing.T) {
	ids := []string{"epa_t-rivers_100", "weather_hou_100"}
	agentOf := map[string]string{
		"epa_t-rivers_100": "epa",
		"weather_hou_100":  "weather",
	}

	raw, err := StaticAnnotator{}.Annotate(context.Background(), "prompt", ids, agentOf)
	require.NoError(t, err)

	out, err := ParseOutput(raw)
	require.NoError(t, err)
	require.Len(t, out.Findings, 2)

	f := out.Findings["epa_t-rivers_100"]
	assert.Equal(t, types.SeverityMedium, f.Severity)
	assert.Equal(t, "t rivers", f.ClaimParts.Subject)
	require.Len(t, f.Implications, 1)
}

func TestStaticAnnotator_UnknownAgent(t *testing.T) {
	_, err := StaticAnnotator{}.Annotate(context.Background(), "p",
		[]string{"ghost_x_1"}, map[string]string{"ghost_x_1": "ghost"})
	require.Error(t, err)
}
