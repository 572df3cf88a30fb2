package agents

import (
	"fmt"

	"playcall/internal/config"
	"playcall/internal/types"
)

// epaAgent fires when an efficient receiver draws a defense that bleeds EPA
// to his position. All three conditions must hold: subject rank, opponent
// vulnerability rank, and the opponent sample-size gate.
type epaAgent struct{}

func (epaAgent) Name() string { return "epa" }

func (epaAgent) Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding {
	var out []types.Finding
	for _, p := range mc.Players {
		if p.ReceivingEPARank == nil || *p.ReceivingEPARank > th.EPA.ReceivingRankMax {
			continue
		}
		opp, ok := mc.Opponent(p.Team)
		if !ok {
			continue
		}
		oppRank := epaAllowedRank(opp, p.Position)
		if oppRank == nil || *oppRank > th.EPA.OppAllowedRankMax {
			continue
		}
		if opp.PlaysSample == nil || *opp.PlaysSample < th.EPA.MinSamplePlays {
			continue
		}

		out = append(out, types.Finding{
			ID:           FindingID("epa", p.Name, mc.DataTimestamp),
			Agent:        "epa",
			FindingType:  "efficiency_mismatch",
			Stat:         "receiving_epa_rank",
			Value:        *p.ReceivingEPARank,
			ThresholdMet: fmt.Sprintf("receiving_epa_rank<=%d & opp_epa_allowed_rank<=%d & opp_plays>=%d", th.EPA.ReceivingRankMax, th.EPA.OppAllowedRankMax, th.EPA.MinSamplePlays),
			ComparisonContext: fmt.Sprintf("%s ranks #%d in receiving EPA; %s ranks #%d in EPA allowed to %ss over %d plays",
				p.Name, *p.ReceivingEPARank, opp.Team, *oppRank, p.Position, *opp.PlaysSample),
			SourceRef:       localSourceRef(mc.DataVersion),
			SourceType:      types.SourceLocal,
			SourceTimestamp: mc.DataTimestamp,
			Scope:           p.Team,
			Implication:     receptionImplication(p.Position),
			Payload: map[string]any{
				"evidence_count": 3,
				"sample_size":    *opp.PlaysSample,
				"subject":        p.Name,
				"position":       p.Position,
			},
		})
	}
	return out
}

// epaAllowedRank picks the opponent vulnerability rank for a position group.
func epaAllowedRank(ts types.TeamStats, position string) *int {
	switch position {
	case "WR":
		return ts.EPAAllowedToWRRank
	case "TE":
		return ts.EPAAllowedToTERank
	case "RB":
		return ts.EPAAllowedToRBRank
	default:
		return nil
	}
}

// receptionImplication is the detector's market hint for a position group.
// The annotator may narrow it but never leave the agent's allowlist.
func receptionImplication(position string) string {
	switch position {
	case "WR":
		return "wr_receptions_over"
	case "TE":
		return "te_receptions_over"
	case "RB":
		return "rb_yards_over"
	default:
		return ""
	}
}
