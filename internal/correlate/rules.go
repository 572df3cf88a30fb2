// Package correlate groups compatible alerts into correlation groups and
// builds Script and Ladder bundles from them.
package correlate

import (
	"sort"

	"playcall/internal/types"
)

// passingImplications is the implication subset that marks an alert as part
// of the passing game for cascade purposes.
var passingImplications = map[string]struct{}{
	"qb_passing_yards_over":  {},
	"qb_passing_yards_under": {},
	"qb_passing_tds_over":    {},
	"qb_attempts_over":       {},
	"wr_receptions_over":     {},
	"wr_yards_over":          {},
	"wr_targets_over":        {},
	"te_receptions_over":     {},
	"te_yards_over":          {},
	"te_targets_over":        {},
}

// rule is one row of the correlation taxonomy. A rule matches when an
// unconsumed alert from the anchor agent exists together with at least one
// unconsumed partner alert that passes the rule's implication filter.
type rule struct {
	Type        types.CorrelationType
	Anchor      string
	Partners    []string
	SharedWith  map[string]struct{} // partner needs >=1 implication in this set; nil disables
	Overlap     bool                // partner implications must intersect the anchor's
	Explanation string
}

// ruleTable is evaluated strictly in order. An alert consumed by an earlier
// rule is unavailable to later rules.
var ruleTable = []rule{
	{
		Type:        types.WeatherCascade,
		Anchor:      "weather",
		Partners:    []string{"epa", "qb", "pace"},
		SharedWith:  passingImplications,
		Explanation: "weather degradation cascades into the passing game",
	},
	{
		Type:        types.DefensiveFunnel,
		Anchor:      "pressure",
		Partners:    []string{"qb"},
		Explanation: "pass rush and quarterback outcomes move together",
	},
	{
		Type:        types.PlayerStack,
		Anchor:      "qb",
		Partners:    []string{"epa", "volume"},
		Overlap:     true,
		Explanation: "quarterback production stacks with his primary targets",
	},
	{
		Type:        types.GameScript,
		Anchor:      "pace",
		Partners:    []string{"epa", "qb"},
		SharedWith:  map[string]struct{}{"team_total_over": {}},
		Explanation: "combined pace and efficiency point at the same game script",
	},
	{
		Type:        types.VolumeShare,
		Anchor:      "injury",
		Partners:    []string{"volume", "redzone"},
		Explanation: "vacated opportunity concentrates usage on the survivors",
	},
}

// Identify evaluates the rule table over candidate alerts and returns the
// matched groups, recomputed fresh per request.
func Identify(alerts []types.Alert) []types.CorrelationGroup {
	consumed := make(map[string]bool, len(alerts))
	var groups []types.CorrelationGroup

	for _, r := range ruleTable {
		anchor, ok := findAnchor(alerts, consumed, r.Anchor)
		if !ok {
			continue
		}
		partners := findPartners(alerts, consumed, r, anchor)
		if len(partners) == 0 {
			continue
		}

		ids := append([]string{anchor.ID}, partners...)
		sort.Strings(ids)
		for _, id := range ids {
			consumed[id] = true
		}
		groups = append(groups, types.CorrelationGroup{
			Type:        r.Type,
			IDs:         ids,
			Explanation: r.Explanation,
		})
	}
	return groups
}

func findAnchor(alerts []types.Alert, consumed map[string]bool, agent string) (types.Alert, bool) {
	for _, a := range alerts {
		if !consumed[a.ID] && a.Agent == agent {
			return a, true
		}
	}
	return types.Alert{}, false
}

func findPartners(alerts []types.Alert, consumed map[string]bool, r rule, anchor types.Alert) []string {
	anchorSet := make(map[string]struct{}, len(anchor.Implications))
	for _, imp := range anchor.Implications {
		anchorSet[imp] = struct{}{}
	}

	var out []string
	for _, a := range alerts {
		if consumed[a.ID] || a.ID == anchor.ID || !contains(r.Partners, a.Agent) {
			continue
		}
		if r.SharedWith != nil && !intersects(a.Implications, r.SharedWith) {
			continue
		}
		if r.Overlap && !intersects(a.Implications, anchorSet) {
			continue
		}
		out = append(out, a.ID)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(implications []string, set map[string]struct{}) bool {
	for _, imp := range implications {
		if _, ok := set[imp]; ok {
			return true
		}
	}
	return false
}
