package correlate

import (
	"math"
	"sort"
	"strings"

	"playcall/internal/config"
	"playcall/internal/provenance"
	"playcall/internal/types"
)

// BuildScripts turns correlation groups into multi-leg Scripts. Per group it
// keeps up to max_legs members by descending confidence, combines leg
// confidences per the configured mode, classifies a risk tier, and computes
// a short digest over (type, sorted member ids) for dedup and debugging.
func BuildScripts(groups []types.CorrelationGroup, alerts []types.Alert, cfg config.ScriptConfig) []types.Script {
	byID := make(map[string]types.Alert, len(alerts))
	for _, a := range alerts {
		byID[a.ID] = a
	}

	var scripts []types.Script
	for _, g := range groups {
		members := make([]types.Alert, 0, len(g.IDs))
		for _, id := range g.IDs {
			if a, ok := byID[id]; ok {
				members = append(members, a)
			}
		}
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			if members[i].Confidence != members[j].Confidence {
				return members[i].Confidence > members[j].Confidence
			}
			return members[i].ID < members[j].ID
		})
		if len(members) > cfg.MaxLegs {
			members = members[:cfg.MaxLegs]
		}

		legs := make([]types.Leg, len(members))
		ids := make([]string, len(members))
		for i, m := range members {
			legs[i] = types.Leg{
				AlertID:     m.ID,
				Claim:       m.Claim,
				Implication: firstImplication(m),
				Confidence:  m.Confidence,
			}
			ids[i] = m.ID
		}
		combined := combine(legs, cfg.CombineMode)

		scripts = append(scripts, types.Script{
			Type:        g.Type,
			Legs:        legs,
			Combined:    combined,
			Risk:        classifyScriptRisk(combined, len(legs)),
			Explanation: g.Explanation,
			Digest:      scriptDigest(g.Type, ids),
		})
	}
	return scripts
}

// combine folds leg confidences: straight product treats legs as independent
// outcomes; geometric mean grades the bundle's average leg strength.
func combine(legs []types.Leg, mode string) float64 {
	product := 1.0
	for _, l := range legs {
		product *= l.Confidence
	}
	if mode == "geometric_mean" {
		return math.Pow(product, 1/float64(len(legs)))
	}
	return product
}

// classifyScriptRisk buckets a script from its combined confidence and leg
// count. More legs demand more confidence for the same tier.
func classifyScriptRisk(combined float64, legCount int) types.RiskTier {
	switch {
	case combined >= 0.50 && legCount <= 2:
		return types.RiskSafe
	case combined >= 0.30 && legCount <= 3:
		return types.RiskModerate
	default:
		return types.RiskAggressive
	}
}

// scriptDigest is the short dedup digest over the group type and its sorted
// member ids.
func scriptDigest(t types.CorrelationType, ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return provenance.HashContent(string(t) + "|" + strings.Join(sorted, ","))
}

func firstImplication(a types.Alert) string {
	if len(a.Implications) == 0 {
		return ""
	}
	return a.Implications[0]
}

// BuildLadder buckets individual alerts into risk tiers by confidence and
// severity, capping rungs per tier. Tier membership is independent of any
// correlation grouping.
func BuildLadder(alerts []types.Alert, cfg config.ScriptConfig) *types.Ladder {
	if len(alerts) == 0 {
		return nil
	}
	sorted := make([]types.Alert, len(alerts))
	copy(sorted, alerts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].ID < sorted[j].ID
	})

	ladder := &types.Ladder{}
	for _, a := range sorted {
		rung := types.Rung{
			AlertID:    a.ID,
			Claim:      a.Claim,
			Confidence: a.Confidence,
			Severity:   a.Severity,
		}
		switch tierFor(a) {
		case types.RiskSafe:
			if len(ladder.Safe) < cfg.MaxRungsPerTier {
				ladder.Safe = append(ladder.Safe, rung)
			}
		case types.RiskModerate:
			if len(ladder.Moderate) < cfg.MaxRungsPerTier {
				ladder.Moderate = append(ladder.Moderate, rung)
			}
		default:
			if len(ladder.Aggressive) < cfg.MaxRungsPerTier {
				ladder.Aggressive = append(ladder.Aggressive, rung)
			}
		}
	}
	return ladder
}

// tierFor classifies one alert: safe demands both high confidence and high
// severity; moderate takes solid-confidence medium-or-better alerts.
func tierFor(a types.Alert) types.RiskTier {
	switch {
	case a.Confidence >= 0.7 && a.Severity == types.SeverityHigh:
		return types.RiskSafe
	case a.Confidence >= 0.55 && a.Severity != types.SeverityLow:
		return types.RiskModerate
	default:
		return types.RiskAggressive
	}
}
