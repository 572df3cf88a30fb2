package validate

import (
	"math"
	"regexp"
	"time"

	"playcall/internal/assemble"
	"playcall/internal/config"
	"playcall/internal/types"
)

// confidenceTolerance is how far an alert's confidence may drift from the
// recomputed code-derived value before it counts as modified.
const confidenceTolerance = 0.001

// edgeLanguage matches claim wording that asserts a priced advantage. Any
// such claim must be backed by at least one line-sourced evidence entry.
var edgeLanguage = regexp.MustCompile(`(?i)edge|value|mispriced|exploit|sharp|lock`)

// Validator runs the fixed invariant chain over assembled alerts.
type Validator struct {
	ttls config.TTLs
}

// New builds a Validator with the given line TTL windows.
func New(ttls config.TTLs) *Validator {
	return &Validator{ttls: ttls}
}

// ttlFor returns the freshness window for a line market.
func (v *Validator) ttlFor(lt types.LineType) time.Duration {
	switch lt {
	case types.LineSpread:
		return v.ttls.Spread
	case types.LineTotal:
		return v.ttls.Total
	case types.LineProp:
		return v.ttls.Prop
	case types.LineMoneyline:
		return v.ttls.Moneyline
	default:
		return 0
	}
}

// ValidateAlert runs the chain in its fixed order and returns the first
// violation. Callers rely on first-error semantics; violations are never
// aggregated. The order is: structure, id/agent match, confidence, source
// integrity, line freshness, implications, edge language, declared
// freshness.
func (v *Validator) ValidateAlert(alert types.Alert, finding types.Finding, expectedConfidence float64, now time.Time) *ValidationError {
	if err := checkStructure(alert); err != nil {
		return err
	}
	if alert.ID != finding.ID {
		return errf(IDMismatch, "alert id %q does not match finding id %q", alert.ID, finding.ID)
	}
	if alert.Agent != finding.Agent {
		return errf(AgentMismatch, "alert agent %q does not match finding agent %q", alert.Agent, finding.Agent)
	}
	if math.Abs(alert.Confidence-expectedConfidence) > confidenceTolerance {
		return errf(ConfidenceModified, "alert confidence %.4f differs from code-derived %.4f", alert.Confidence, expectedConfidence)
	}
	if err := checkSourceIntegrity(alert); err != nil {
		return err
	}
	if err := v.checkLineFreshness(alert, now); err != nil {
		return err
	}
	if err := ValidateImplicationsForAgent(alert.Agent, alert.Implications); err != nil {
		return err
	}
	if err := checkEdgeLanguage(alert); err != nil {
		return err
	}
	if declared, actual := alert.Freshness, assemble.FreshnessFor(finding.SourceTimestamp, now); declared != actual {
		return errf(FreshnessMismatch, "alert declares freshness %q but source age implies %q", declared, actual)
	}
	return nil
}

// ValidateAlerts validates a batch, isolating failures: one alert's
// rejection is recorded and does not block the rest. Returned alerts are the
// survivors in input order.
func (v *Validator) ValidateAlerts(alerts []types.Alert, findings []types.Finding, confidences map[string]float64, now time.Time) ([]types.Alert, []types.Rejection) {
	byID := make(map[string]types.Finding, len(findings))
	for _, f := range findings {
		byID[f.ID] = f
	}

	var valid []types.Alert
	var rejected []types.Rejection
	for _, a := range alerts {
		f, ok := byID[a.ID]
		if !ok {
			rejected = append(rejected, types.Rejection{
				AlertID: a.ID,
				Error:   errf(MissingFinding, "no originating finding for alert %q", a.ID).Error(),
			})
			continue
		}
		if err := v.ValidateAlert(a, f, confidences[a.ID], now); err != nil {
			rejected = append(rejected, types.Rejection{AlertID: a.ID, Error: err.Error()})
			continue
		}
		valid = append(valid, a)
	}
	return valid, rejected
}

// checkStructure verifies the alert carries every required field and nothing
// out of range. Unexpected fields cannot survive decoding into the typed
// Alert, so the structural check here is completeness and domain membership.
func checkStructure(a types.Alert) *ValidationError {
	if a.ID == "" || a.Agent == "" {
		return errf(UnknownError, "alert is missing id or agent")
	}
	if len(a.Evidence) == 0 || len(a.Sources) == 0 {
		return errf(UnknownError, "alert %q has no evidence or no sources", a.ID)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return errf(UnknownError, "alert %q confidence %.4f outside [0,1]", a.ID, a.Confidence)
	}
	switch a.Severity {
	case types.SeverityLow, types.SeverityMedium, types.SeverityHigh:
	default:
		return errf(UnknownError, "alert %q has invalid severity %q", a.ID, a.Severity)
	}
	switch a.Freshness {
	case types.FreshnessLive, types.FreshnessWeekly, types.FreshnessStale:
	default:
		return errf(UnknownError, "alert %q has invalid freshness %q", a.ID, a.Freshness)
	}
	if a.Claim == "" {
		return errf(UnknownError, "alert %q has an empty claim", a.ID)
	}
	return nil
}

// checkSourceIntegrity enforces invariant: every evidence source_ref has
// exactly one matching source, and every source is referenced by evidence.
func checkSourceIntegrity(a types.Alert) *ValidationError {
	refCount := make(map[string]int, len(a.Sources))
	for _, s := range a.Sources {
		refCount[s.Ref]++
	}
	for _, ev := range a.Evidence {
		switch refCount[ev.SourceRef] {
		case 0:
			return errf(MissingSource, "evidence %q references source %q which is not present", ev.Stat, ev.SourceRef)
		case 1:
		default:
			return errf(OrphanSource, "source ref %q appears more than once", ev.SourceRef)
		}
	}
	referenced := make(map[string]bool, len(a.Evidence))
	for _, ev := range a.Evidence {
		referenced[ev.SourceRef] = true
	}
	for _, s := range a.Sources {
		if !referenced[s.Ref] {
			return errf(OrphanSource, "source %q is not referenced by any evidence", s.Ref)
		}
	}
	return nil
}

// checkLineFreshness enforces the per-market TTL on line evidence.
func (v *Validator) checkLineFreshness(a types.Alert, now time.Time) *ValidationError {
	for _, ev := range a.Evidence {
		if ev.SourceType != types.SourceLine {
			continue
		}
		ttl := v.ttlFor(ev.LineType)
		if ttl <= 0 {
			return errf(StaleLine, "evidence %q has unknown line type %q", ev.Stat, ev.LineType)
		}
		if age := now.Sub(ev.LineTimestamp); age > ttl {
			return errf(StaleLine, "%s line aged %s exceeds ttl %s", ev.LineType, age.Round(time.Second), ttl)
		}
	}
	return nil
}

// checkEdgeLanguage enforces: claims asserting a priced advantage need at
// least one line-sourced evidence entry.
func checkEdgeLanguage(a types.Alert) *ValidationError {
	if !edgeLanguage.MatchString(a.Claim) {
		return nil
	}
	for _, ev := range a.Evidence {
		if ev.SourceType == types.SourceLine {
			return nil
		}
	}
	return errf(EdgeLanguageWithoutLine, "claim %q uses edge language without line evidence", a.Claim)
}
