// Package pipeline orchestrates one analysis request end to end: guardrails,
// detector run, LLM annotation, assembly, validation, correlation, and
// provenance. Everything here is request-scoped; no state survives between
// requests.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"playcall/internal/agents"
	"playcall/internal/annotate"
	"playcall/internal/assemble"
	"playcall/internal/config"
	"playcall/internal/confidence"
	"playcall/internal/correlate"
	"playcall/internal/provenance"
	"playcall/internal/types"
	"playcall/internal/validate"
)

// Pipeline wires the core stages together. Config is read through a getter
// so threshold hot-reloads take effect on the next request.
type Pipeline struct {
	cfg        func() *config.Config
	runner     *agents.Runner
	annotator  annotate.Annotator
	cacheStats func() types.CacheStats
	logger     *zap.Logger
	now        func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the pipeline clock (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithCacheStats wires the odds-cache counters into provenance.
func WithCacheStats(stats func() types.CacheStats) Option {
	return func(p *Pipeline) { p.cacheStats = stats }
}

// New builds a Pipeline.
func New(cfg func() *config.Config, annotator annotate.Annotator, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		runner:    agents.NewRunner(logger),
		annotator: annotator,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Analyze runs one matchup context through the full pipeline.
func (p *Pipeline) Analyze(ctx context.Context, mc *types.MatchupContext) (*types.AnalysisResponse, error) {
	cfg := p.cfg()
	now := p.now()
	requestID := uuid.NewString()
	log := p.logger.With(zap.String("request_id", requestID))

	skills, err := annotate.SkillDocs()
	if err != nil {
		return nil, err
	}

	// Detector run. Agents are independent pure functions; the parallel run
	// yields the same set as a sequential one.
	result, err := p.runner.RunParallel(ctx, mc, cfg.Agents)
	if err != nil {
		return nil, err
	}
	log.Info("detectors evaluated",
		zap.Int("findings", len(result.Findings)),
		zap.Strings("silent", result.AgentsSilent))

	prompt := annotate.BuildPrompt(mc, result.Findings, skills)

	// Request-boundary guardrails: abort on token or cost ceilings before the
	// collaborator is called and before any alert exists.
	if gerr := annotate.CheckGuardrails(prompt, cfg.Guardrails); gerr != nil {
		return nil, gerr
	}

	confidences := make(map[string]float64, len(result.Findings))
	for _, f := range result.Findings {
		confidences[f.ID] = confidence.Calculate(ConfidenceInputs(f, mc, now))
	}

	var alerts []types.Alert
	var rejections []types.Rejection
	if len(result.Findings) > 0 {
		llmOut, err := p.annotateFindings(ctx, prompt, result.Findings)
		if err != nil {
			return nil, err
		}
		assembled, err := assemble.AssembleAlerts(result.Findings, llmOut, confidences, mc.DataVersion, now)
		if err != nil {
			return nil, fmt.Errorf("assemble alerts: %w", err)
		}

		ttls, err := cfg.LineTTLs.Resolve()
		if err != nil {
			return nil, err
		}
		alerts, rejections = validate.New(ttls).ValidateAlerts(assembled, result.Findings, confidences, now)
		for _, r := range rejections {
			log.Warn("alert rejected", zap.String("alert_id", r.AlertID), zap.String("error", r.Error))
		}
	}

	groups := correlate.Identify(alerts)
	scripts := correlate.BuildScripts(groups, alerts, cfg.Scripts)
	ladder := correlate.BuildLadder(alerts, cfg.Scripts)

	var cache types.CacheStats
	if p.cacheStats != nil {
		cache = p.cacheStats()
	}
	prov, err := provenance.Build(provenance.BuildInput{
		Prompt:        prompt,
		SkillDocs:     skills,
		Findings:      result.Findings,
		AgentsInvoked: result.AgentsInvoked,
		AgentsSilent:  result.AgentsSilent,
		Cache:         cache,
	})
	if err != nil {
		return nil, err
	}

	return &types.AnalysisResponse{
		RequestID:    requestID,
		Matchup:      mc.AwayTeam + " at " + mc.HomeTeam,
		DataVersion:  mc.DataVersion,
		Findings:     result.Findings,
		Alerts:       alerts,
		Rejections:   rejections,
		Correlations: groups,
		Scripts:      scripts,
		Ladder:       ladder,
		Provenance:   prov,
	}, nil
}

// annotateFindings calls the collaborator and strictly parses its output.
// A parse failure surfaces as-is: it is a different failure class from the
// per-alert validation errors collected later.
func (p *Pipeline) annotateFindings(ctx context.Context, prompt string, findings []types.Finding) (types.LLMOutput, error) {
	ids := make([]string, len(findings))
	agentOf := make(map[string]string, len(findings))
	for i, f := range findings {
		ids[i] = f.ID
		agentOf[f.ID] = f.Agent
	}
	raw, err := p.annotator.Annotate(ctx, prompt, ids, agentOf)
	if err != nil {
		return types.LLMOutput{}, fmt.Errorf("annotate: %w", err)
	}
	return annotate.ParseOutput(raw)
}

// ConfidenceInputs derives the confidence signals for one finding. The same
// derivation backs assembly and validation, which is what keeps the
// confidence-immutability invariant checkable.
func ConfidenceInputs(f types.Finding, mc *types.MatchupContext, now time.Time) confidence.Inputs {
	in := confidence.Inputs{
		EvidenceCount:  payloadInt(f.Payload, "evidence_count", 1),
		HasLocalSource: f.SourceType == types.SourceLocal,
		HasWebSource:   f.SourceType == types.SourceWeb,
		LocalDataAge:   now.Sub(mc.DataTimestamp),
	}
	if in.HasWebSource {
		in.WebAge = now.Sub(f.SourceTimestamp)
	}
	if n, ok := lookupInt(f.Payload, "sample_size"); ok {
		in.SampleSize = &n
	}
	if f.Line != nil {
		in.HasLineEvidence = true
		in.LineAge = now.Sub(f.Line.Timestamp)
	}
	return in
}

func payloadInt(payload map[string]any, key string, fallback int) int {
	if n, ok := lookupInt(payload, key); ok {
		return n
	}
	return fallback
}

// lookupInt tolerates both int (in-process) and float64 (JSON round-trip)
// payload values.
func lookupInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
