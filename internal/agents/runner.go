package agents

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"playcall/internal/config"
	"playcall/internal/types"
)

// Result is the outcome of one roster run. AgentsInvoked and AgentsSilent
// partition the full roster: an agent is invoked iff it produced at least
// one finding, and the silent set is explicitly enumerated rather than
// implied by absence.
type Result struct {
	Findings      []types.Finding
	AgentsInvoked []string
	AgentsSilent  []string
}

// Runner evaluates the detector roster against a matchup context.
type Runner struct {
	roster []Agent
	logger *zap.Logger
}

// NewRunner builds a runner over the default roster.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{roster: Roster(), logger: logger}
}

// NewRunnerWithRoster builds a runner over an explicit roster (tests).
func NewRunnerWithRoster(roster []Agent, logger *zap.Logger) *Runner {
	return &Runner{roster: roster, logger: logger}
}

// Run evaluates every agent sequentially.
func (r *Runner) Run(mc *types.MatchupContext, th config.AgentThresholds) Result {
	perAgent := make(map[string][]types.Finding, len(r.roster))
	for _, a := range r.roster {
		perAgent[a.Name()] = a.Evaluate(mc, th)
	}
	return r.collect(perAgent)
}

// RunParallel evaluates every agent concurrently. Agents are order-
// insensitive and side-effect-free, so the result is identical to Run up to
// the id sort applied by collect.
func (r *Runner) RunParallel(ctx context.Context, mc *types.MatchupContext, th config.AgentThresholds) (Result, error) {
	perAgent := make(map[string][]types.Finding, len(r.roster))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for _, a := range r.roster {
		g.Go(func() error {
			fs := a.Evaluate(mc, th)
			mu.Lock()
			perAgent[a.Name()] = fs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return r.collect(perAgent), nil
}

// collect flattens per-agent findings into the canonical result: findings
// id-sorted, roster partitioned into invoked and silent.
func (r *Runner) collect(perAgent map[string][]types.Finding) Result {
	res := Result{}
	for _, a := range r.roster {
		name := a.Name()
		fs := perAgent[name]
		if len(fs) > 0 {
			res.AgentsInvoked = append(res.AgentsInvoked, name)
			res.Findings = append(res.Findings, fs...)
		} else {
			res.AgentsSilent = append(res.AgentsSilent, name)
		}
	}
	sort.Slice(res.Findings, func(i, j int) bool { return res.Findings[i].ID < res.Findings[j].ID })
	sort.Strings(res.AgentsInvoked)
	sort.Strings(res.AgentsSilent)

	if r.logger != nil {
		r.logger.Debug("roster run complete",
			zap.Int("findings", len(res.Findings)),
			zap.Strings("invoked", res.AgentsInvoked),
			zap.Strings("silent", res.AgentsSilent))
	}
	return res
}
