package agents

import (
	"fmt"

	"playcall/internal/config"
	"playcall/internal/types"
)

// weatherAgent fires one finding per extreme-environment rule. A dome game
// suppresses the whole agent.
type weatherAgent struct{}

func (weatherAgent) Name() string { return "weather" }

func (weatherAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	w := mc.Weather
	if w == nil || w.Dome {
		return nil
	}
	matchup := mc.AwayTeam + " at " + mc.HomeTeam

	var out []types.Finding
	emit := func(rule, stat string, value float64, threshold, comparison, implication string) {
		out = append(out, types.Finding{
			ID:                FindingID("weather", matchup+" "+rule, mc.DataTimestamp),
			Agent:             "weather",
			FindingType:       rule,
			Stat:              stat,
			Value:             value,
			ThresholdMet:      threshold,
			ComparisonContext: comparison,
			SourceRef:         localSourceRef(mc.DataVersion),
			SourceType:        types.SourceLocal,
			SourceTimestamp:   mc.DataTimestamp,
			Scope:             matchup,
			Implication:       implication,
			Payload: map[string]any{
				"evidence_count": 1,
				"subject":        matchup,
			},
		})
	}

	if w.WindMPH != nil && *w.WindMPH >= th.Weather.WindMPHMin {
		emit("high_wind", "wind_mph", *w.WindMPH,
			fmt.Sprintf("wind_mph>=%.0f", th.Weather.WindMPHMin),
			fmt.Sprintf("forecast wind %.0f mph for %s", *w.WindMPH, matchup),
			"team_total_under")
	}
	if w.PrecipitationPct != nil && *w.PrecipitationPct >= th.Weather.PrecipPctMin {
		emit("heavy_precipitation", "precipitation_pct", *w.PrecipitationPct,
			fmt.Sprintf("precipitation_pct>=%.0f", th.Weather.PrecipPctMin),
			fmt.Sprintf("precipitation probability %.0f%% for %s", *w.PrecipitationPct, matchup),
			"rb_attempts_over")
	}
	if w.TemperatureF != nil && *w.TemperatureF <= th.Weather.TemperatureFMax {
		emit("extreme_cold", "temperature_f", *w.TemperatureF,
			fmt.Sprintf("temperature_f<=%.0f", th.Weather.TemperatureFMax),
			fmt.Sprintf("forecast %.0fF for %s", *w.TemperatureF, matchup),
			"qb_passing_yards_under")
	}
	return out
}

// paceAgent fires when both teams play fast. When the book already posts a
// game total, the finding is line-sourced so the claim stays anchored to a
// live market number; otherwise it falls back to the local pace tables.
type paceAgent struct{}

func (paceAgent) Name() string { return "pace" }

func (paceAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	home, okH := mc.Teams[mc.HomeTeam]
	away, okA := mc.Teams[mc.AwayTeam]
	if !okH || !okA {
		return nil
	}
	if home.PaceRank == nil || *home.PaceRank > th.Pace.PaceRankMax {
		return nil
	}
	if away.PaceRank == nil || *away.PaceRank > th.Pace.PaceRankMax {
		return nil
	}
	if home.PlaysSample == nil || *home.PlaysSample < th.Pace.MinSamplePlays {
		return nil
	}
	if away.PlaysSample == nil || *away.PlaysSample < th.Pace.MinSamplePlays {
		return nil
	}

	matchup := mc.AwayTeam + " at " + mc.HomeTeam
	sample := *home.PlaysSample + *away.PlaysSample
	f := types.Finding{
		ID:           FindingID("pace", matchup, mc.DataTimestamp),
		Agent:        "pace",
		FindingType:  "combined_pace",
		Stat:         "pace_rank",
		Value:        fmt.Sprintf("%d/%d", *home.PaceRank, *away.PaceRank),
		ThresholdMet: fmt.Sprintf("both_pace_rank<=%d & plays>=%d", th.Pace.PaceRankMax, th.Pace.MinSamplePlays),
		ComparisonContext: fmt.Sprintf("%s ranks #%d and %s ranks #%d in pace over %d combined plays",
			mc.HomeTeam, *home.PaceRank, mc.AwayTeam, *away.PaceRank, sample),
		SourceRef:       localSourceRef(mc.DataVersion),
		SourceType:      types.SourceLocal,
		SourceTimestamp: mc.DataTimestamp,
		Scope:           matchup,
		Implication:     "team_total_over",
		Payload: map[string]any{
			"evidence_count": 3,
			"sample_size":    sample,
			"subject":        matchup,
		},
	}

	if line := totalLine(mc.Lines); line != nil {
		f.SourceRef = fmt.Sprintf("line:%s:total", line.Book)
		f.SourceType = types.SourceLine
		f.SourceTimestamp = line.Timestamp
		f.Line = line
		f.Stat = "game_total"
		f.Value = line.Value
		f.ComparisonContext += fmt.Sprintf("; %s posts the total at %.1f", line.Book, line.Value)
	}
	return []types.Finding{f}
}

func totalLine(lines []types.LineInfo) *types.LineInfo {
	for i := range lines {
		if lines[i].Type == types.LineTotal {
			return &lines[i]
		}
	}
	return nil
}
