package agents

import (
	"fmt"

	"playcall/internal/config"
	"playcall/internal/types"
)

// volumeAgent fires when a high-share target earner draws a vulnerable
// position group.
type volumeAgent struct{}

func (volumeAgent) Name() string { return "volume" }

func (volumeAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	var out []types.Finding
	for _, p := range mc.Players {
		if p.TargetShare == nil || *p.TargetShare < th.Volume.TargetShareMin {
			continue
		}
		opp, ok := mc.Opponent(p.Team)
		if !ok {
			continue
		}
		oppRank := epaAllowedRank(opp, p.Position)
		if oppRank == nil || *oppRank > th.Volume.OppRankMax {
			continue
		}
		if p.GamesPlayed == nil || *p.GamesPlayed < th.Volume.MinGames {
			continue
		}

		out = append(out, types.Finding{
			ID:           FindingID("volume", p.Name, mc.DataTimestamp),
			Agent:        "volume",
			FindingType:  "target_share",
			Stat:         "target_share",
			Value:        *p.TargetShare,
			ThresholdMet: fmt.Sprintf("target_share>=%.2f & opp_rank<=%d & games>=%d", th.Volume.TargetShareMin, th.Volume.OppRankMax, th.Volume.MinGames),
			ComparisonContext: fmt.Sprintf("%s commands %.0f%% of targets over %d games; %s ranks #%d against %ss",
				p.Name, *p.TargetShare*100, *p.GamesPlayed, opp.Team, *oppRank, p.Position),
			SourceRef:       localSourceRef(mc.DataVersion),
			SourceType:      types.SourceLocal,
			SourceTimestamp: mc.DataTimestamp,
			Scope:           p.Team,
			Implication:     targetImplication(p.Position),
			Payload: map[string]any{
				"evidence_count": 3,
				"sample_size":    *p.GamesPlayed,
				"subject":        p.Name,
				"position":       p.Position,
			},
		})
	}
	return out
}

func targetImplication(position string) string {
	switch position {
	case "WR":
		return "wr_targets_over"
	case "TE":
		return "te_targets_over"
	case "RB":
		return "rb_attempts_over"
	default:
		return ""
	}
}

// redzoneAgent fires when a heavy red-zone earner meets a defense that
// concedes touchdowns inside the twenty.
type redzoneAgent struct{}

func (redzoneAgent) Name() string { return "redzone" }

func (redzoneAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	var out []types.Finding
	for _, p := range mc.Players {
		if p.RedzoneTouches == nil || *p.RedzoneTouches < th.Redzone.TouchesPerGameMin {
			continue
		}
		opp, ok := mc.Opponent(p.Team)
		if !ok {
			continue
		}
		if opp.RedzoneTDRateAllowed == nil || *opp.RedzoneTDRateAllowed < th.Redzone.OppTDRateAllowedMin {
			continue
		}
		if p.GamesPlayed == nil || *p.GamesPlayed < th.Redzone.MinGames {
			continue
		}

		out = append(out, types.Finding{
			ID:           FindingID("redzone", p.Name, mc.DataTimestamp),
			Agent:        "redzone",
			FindingType:  "scoring_opportunity",
			Stat:         "redzone_touches_per_game",
			Value:        *p.RedzoneTouches,
			ThresholdMet: fmt.Sprintf("redzone_touches>=%.1f & opp_td_rate_allowed>=%.2f & games>=%d", th.Redzone.TouchesPerGameMin, th.Redzone.OppTDRateAllowedMin, th.Redzone.MinGames),
			ComparisonContext: fmt.Sprintf("%s averages %.1f red-zone touches over %d games; %s allows a %.0f%% red-zone TD rate",
				p.Name, *p.RedzoneTouches, *p.GamesPlayed, opp.Team, *opp.RedzoneTDRateAllowed*100),
			SourceRef:       localSourceRef(mc.DataVersion),
			SourceType:      types.SourceLocal,
			SourceTimestamp: mc.DataTimestamp,
			Scope:           p.Team,
			Implication:     tdImplication(p.Position),
			Payload: map[string]any{
				"evidence_count": 3,
				"sample_size":    *p.GamesPlayed,
				"subject":        p.Name,
				"position":       p.Position,
			},
		})
	}
	return out
}

func tdImplication(position string) string {
	switch position {
	case "WR":
		return "wr_tds_over"
	case "TE":
		return "te_tds_over"
	case "RB":
		return "rb_tds_over"
	default:
		return ""
	}
}

// injuryAgent fires when vacated target share concentrates on an already
// established earner.
type injuryAgent struct{}

func (injuryAgent) Name() string { return "injury" }

func (injuryAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	var out []types.Finding
	for _, p := range mc.Players {
		team, ok := mc.Teams[p.Team]
		if !ok {
			continue
		}
		if team.TargetShareVacated == nil || *team.TargetShareVacated < th.Injury.VacatedShareMin {
			continue
		}
		if p.TargetShare == nil || *p.TargetShare < th.Injury.TargetShareMin {
			continue
		}
		if p.GamesPlayed == nil || *p.GamesPlayed < th.Injury.MinGames {
			continue
		}

		out = append(out, types.Finding{
			ID:           FindingID("injury", p.Name, mc.DataTimestamp),
			Agent:        "injury",
			FindingType:  "vacated_opportunity",
			Stat:         "target_share_vacated",
			Value:        *team.TargetShareVacated,
			ThresholdMet: fmt.Sprintf("vacated_share>=%.2f & target_share>=%.2f & games>=%d", th.Injury.VacatedShareMin, th.Injury.TargetShareMin, th.Injury.MinGames),
			ComparisonContext: fmt.Sprintf("%s has %.0f%% of targets vacated; %s already holds %.0f%% over %d games",
				p.Team, *team.TargetShareVacated*100, p.Name, *p.TargetShare*100, *p.GamesPlayed),
			SourceRef:       localSourceRef(mc.DataVersion),
			SourceType:      types.SourceLocal,
			SourceTimestamp: mc.DataTimestamp,
			Scope:           p.Team,
			Implication:     targetImplication(p.Position),
			Payload: map[string]any{
				"evidence_count": 3,
				"sample_size":    *p.GamesPlayed,
				"subject":        p.Name,
				"position":       p.Position,
			},
		})
	}
	return out
}
