package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"playcall/internal/annotate"
	"playcall/internal/config"
	"playcall/internal/types"
)

var dataStamp = time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)

func intp(v int) *int { return &v }

// matchupFixture fires the epa detector: a top-five receiver against a
// defense that bleeds EPA to wide receivers over a full sample.
func matchupFixture() *types.MatchupContext {
	return &types.MatchupContext{
		HomeTeam: "HOU",
		AwayTeam: "JAX",
		Players: map[string]types.PlayerStats{
			"T. Rivers": {
				Name:             "T. Rivers",
				Team:             "HOU",
				Position:         "WR",
				ReceivingEPARank: intp(3),
			},
		},
		Teams: map[string]types.TeamStats{
			"JAX": {
				Team:               "JAX",
				PlaysSample:        intp(510),
				EPAAllowedToWRRank: intp(8),
			},
			"HOU": {Team: "HOU"},
		},
		DataTimestamp: dataStamp,
		DataVersion:   "2025-week9",
	}
}

func newTestPipeline(t *testing.T, annotator annotate.Annotator) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	return New(
		func() *config.Config { return cfg },
		annotator,
		zap.NewNop(),
		WithClock(func() time.Time { return dataStamp.Add(2 * time.Hour) }),
		WithCacheStats(func() types.CacheStats { return types.CacheStats{Hits: 3, Misses: 1} }),
	)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	p := newTestPipeline(t, annotate.StaticAnnotator{})

	resp, err := p.Analyze(context.Background(), matchupFixture())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "JAX at HOU", resp.Matchup)
	assert.Equal(t, "2025-week9", resp.DataVersion)

	require.Len(t, resp.Findings, 1)
	f := resp.Findings[0]
	assert.Equal(t, "epa", f.Agent)
	assert.Equal(t, "epa_t-rivers_"+timestamp(), f.ID)

	// A schema-conformant annotation over a real finding assembles and
	// validates without rejections.
	require.Len(t, resp.Alerts, 1)
	assert.Empty(t, resp.Rejections)
	a := resp.Alerts[0]
	assert.Equal(t, f.ID, a.ID)
	assert.InDelta(t, 0.87, a.Confidence, 0.001)
	assert.Equal(t, types.FreshnessLive, a.Freshness)

	// One alert cannot correlate with itself.
	assert.Empty(t, resp.Correlations)
	assert.Empty(t, resp.Scripts)
	require.NotNil(t, resp.Ladder)

	assert.NotEmpty(t, resp.Provenance.PromptHash)
	assert.Contains(t, resp.Provenance.AgentsInvoked, "epa")
	assert.Contains(t, resp.Provenance.AgentsSilent, "weather")
	assert.Equal(t, 3, resp.Provenance.Cache.Hits)
}

func timestamp() string {
	return "1762074000" // dataStamp.Unix()
}

func TestAnalyze_Deterministic(t *testing.T) {
	p := newTestPipeline(t, annotate.StaticAnnotator{})

	r1, err := p.Analyze(context.Background(), matchupFixture())
	require.NoError(t, err)
	r2, err := p.Analyze(context.Background(), matchupFixture())
	require.NoError(t, err)

	// Everything except the request id is a pure function of the context.
	assert.Equal(t, r1.Findings, r2.Findings)
	assert.Equal(t, r1.Alerts, r2.Alerts)
	assert.Equal(t, r1.Provenance.FindingsHash, r2.Provenance.FindingsHash)
	assert.NotEqual(t, r1.RequestID, r2.RequestID)
}

func TestAnalyze_EmptyContext(t *testing.T) {
	p := newTestPipeline(t, annotate.StaticAnnotator{})

	resp, err := p.Analyze(context.Background(), &types.MatchupContext{
		HomeTeam:      "HOU",
		AwayTeam:      "JAX",
		DataTimestamp: dataStamp,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Findings)
	assert.Empty(t, resp.Alerts)
	assert.Nil(t, resp.Ladder)
	// Provenance is present even when every agent stays silent.
	assert.NotEmpty(t, resp.Provenance.PromptHash)
	assert.Len(t, resp.Provenance.AgentsSilent, 8)
}

type garbageAnnotator struct{}

func (garbageAnnotator) Annotate(context.Context, string, []string, map[string]string) (string, error) {
	return "I looked at the numbers and the receptions over feels strong.", nil
}

func TestAnalyze_ParseFailureSurfaces(t *testing.T) {
	p := newTestPipeline(t, garbageAnnotator{})

	_, err := p.Analyze(context.Background(), matchupFixture())
	require.Error(t, err)
	var pe *annotate.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestAnalyze_GuardrailAborts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Guardrails.MaxPromptTokens = 1000

	p := New(
		func() *config.Config { return cfg },
		annotate.StaticAnnotator{},
		zap.NewNop(),
		WithClock(func() time.Time { return dataStamp.Add(2 * time.Hour) }),
	)

	mc := matchupFixture()
	mc.Notes = &types.CuratedNotes{Analytics: []string{strings.Repeat("pace and pressure trends ", 400)}}

	_, err := p.Analyze(context.Background(), mc)
	require.Error(t, err)
	var ge *annotate.GuardrailError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, annotate.TokenLimitExceeded, ge.Code)
}

func TestConfidenceInputs_PayloadTolerance(t *testing.T) {
	mc := matchupFixture()
	now := dataStamp.Add(2 * time.Hour)

	f := types.Finding{
		SourceType: types.SourceLocal,
		Payload:    map[string]any{"evidence_count": float64(3), "sample_size": float64(510)},
	}
	in := ConfidenceInputs(f, mc, now)
	assert.Equal(t, 3, in.EvidenceCount)
	require.NotNil(t, in.SampleSize)
	assert.Equal(t, 510, *in.SampleSize)
	assert.True(t, in.HasLocalSource)

	// Absent payload falls back to a single evidence item.
	in = ConfidenceInputs(types.Finding{SourceType: types.SourceWeb, SourceTimestamp: dataStamp}, mc, now)
	assert.Equal(t, 1, in.EvidenceCount)
	assert.Nil(t, in.SampleSize)
	assert.Equal(t, 2*time.Hour, in.WebAge)
}
