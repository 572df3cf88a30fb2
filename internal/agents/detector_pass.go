package agents

import (
	"fmt"

	"playcall/internal/config"
	"playcall/internal/types"
)

// pressureAgent fires when an elite pass rush meets a protection unit that
// cannot hold up. Subject is the defending team.
type pressureAgent struct{}

func (pressureAgent) Name() string { return "pressure" }

func (pressureAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	var out []types.Finding
	for _, team := range []string{mc.HomeTeam, mc.AwayTeam} {
		defense, ok := mc.Teams[team]
		if !ok {
			continue
		}
		if defense.PressureRateRank == nil || *defense.PressureRateRank > th.Pressure.PressureRankMax {
			continue
		}
		offense, ok := mc.Opponent(team)
		if !ok {
			continue
		}
		// High pass-block-win rank means poor protection.
		if offense.PassBlockWinRank == nil || *offense.PassBlockWinRank < th.Pressure.PassBlockWinRankMin {
			continue
		}
		if offense.PlaysSample == nil || *offense.PlaysSample < th.Pressure.MinSamplePlays {
			continue
		}

		out = append(out, types.Finding{
			ID:           FindingID("pressure", team, mc.DataTimestamp),
			Agent:        "pressure",
			FindingType:  "protection_mismatch",
			Stat:         "pressure_rate_rank",
			Value:        *defense.PressureRateRank,
			ThresholdMet: fmt.Sprintf("pressure_rate_rank<=%d & opp_pass_block_win_rank>=%d & opp_plays>=%d", th.Pressure.PressureRankMax, th.Pressure.PassBlockWinRankMin, th.Pressure.MinSamplePlays),
			ComparisonContext: fmt.Sprintf("%s ranks #%d in pressure rate; %s ranks #%d in pass-block win rate over %d plays",
				team, *defense.PressureRateRank, offense.Team, *offense.PassBlockWinRank, *offense.PlaysSample),
			SourceRef:       localSourceRef(mc.DataVersion),
			SourceType:      types.SourceLocal,
			SourceTimestamp: mc.DataTimestamp,
			Scope:           team,
			Implication:     "qb_sacks_over",
			Payload: map[string]any{
				"evidence_count": 3,
				"sample_size":    *offense.PlaysSample,
				"subject":        team,
			},
		})
	}
	return out
}

// qbAgent fires when an efficient passer draws a weak pass defense.
type qbAgent struct{}

func (qbAgent) Name() string { return "qb" }

func (qbAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	var out []types.Finding
	for _, p := range mc.Players {
		if p.Position != "QB" {
			continue
		}
		if p.PassingEPARank == nil || *p.PassingEPARank > th.QB.PassingRankMax {
			continue
		}
		opp, ok := mc.Opponent(p.Team)
		if !ok {
			continue
		}
		if opp.PassDefenseEPARank == nil || *opp.PassDefenseEPARank > th.QB.OppAllowedRankMax {
			continue
		}
		if opp.PlaysSample == nil || *opp.PlaysSample < th.QB.MinSamplePlays {
			continue
		}

		out = append(out, types.Finding{
			ID:           FindingID("qb", p.Name, mc.DataTimestamp),
			Agent:        "qb",
			FindingType:  "passing_mismatch",
			Stat:         "passing_epa_rank",
			Value:        *p.PassingEPARank,
			ThresholdMet: fmt.Sprintf("passing_epa_rank<=%d & opp_pass_defense_rank<=%d & opp_plays>=%d", th.QB.PassingRankMax, th.QB.OppAllowedRankMax, th.QB.MinSamplePlays),
			ComparisonContext: fmt.Sprintf("%s ranks #%d in passing EPA; %s ranks #%d in pass defense EPA over %d plays",
				p.Name, *p.PassingEPARank, opp.Team, *opp.PassDefenseEPARank, *opp.PlaysSample),
			SourceRef:       localSourceRef(mc.DataVersion),
			SourceType:      types.SourceLocal,
			SourceTimestamp: mc.DataTimestamp,
			Scope:           p.Team,
			Implication:     "qb_passing_yards_over",
			Payload: map[string]any{
				"evidence_count": 3,
				"sample_size":    *opp.PlaysSample,
				"subject":        p.Name,
			},
		})
	}
	return out
}
