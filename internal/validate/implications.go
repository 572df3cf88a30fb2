package validate

import (
	"sort"
)

// implicationAllowlist maps each agent to the closed set of market claims it
// may make. Implications never leak across agents: a single generic routine
// checks membership instead of per-agent branches, so adding an agent means
// adding a row here and nothing else.
var implicationAllowlist = map[string]map[string]struct{}{
	"epa": set(
		"wr_receptions_over", "wr_yards_over",
		"rb_yards_over", "rb_tds_over",
		"te_receptions_over", "te_yards_over",
		"team_total_over", "team_total_under",
	),
	"pressure": set(
		"qb_sacks_over", "qb_passing_yards_under",
		"qb_interceptions_over", "team_total_under",
	),
	"qb": set(
		"qb_passing_yards_over", "qb_passing_tds_over",
		"wr_receptions_over", "team_total_over",
	),
	"weather": set(
		"team_total_under", "qb_passing_yards_under",
		"rb_attempts_over", "fg_made_under",
	),
	"volume": set(
		"wr_targets_over", "wr_receptions_over",
		"te_targets_over", "rb_attempts_over",
	),
	"pace": set(
		"team_total_over", "qb_attempts_over", "wr_receptions_over",
	),
	"redzone": set(
		"rb_tds_over", "wr_tds_over", "te_tds_over", "team_total_over",
	),
	"injury": set(
		"wr_targets_over", "te_targets_over", "rb_attempts_over",
	),
}

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

// ImplicationsForAgent returns the sorted allowlist for an agent, or nil for
// an unknown agent.
func ImplicationsForAgent(agent string) []string {
	allowed, ok := implicationAllowlist[agent]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(allowed))
	for v := range allowed {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ValidateImplicationsForAgent checks that every implication is inside the
// agent's closed set.
func ValidateImplicationsForAgent(agent string, implications []string) *ValidationError {
	allowed, ok := implicationAllowlist[agent]
	if !ok {
		return errf(InvalidImplications, "agent %q has no implication allowlist", agent)
	}
	for _, imp := range implications {
		if _, ok := allowed[imp]; !ok {
			return errf(InvalidImplications, "implication %q is not allowed for agent %q", imp, agent)
		}
	}
	return nil
}
