// Package assemble builds Alerts by merging code-derived fields with the
// constrained LLM annotation. The merge is purely structural; every
// invariant check lives in the validate package and runs as a later pass.
package assemble

import (
	"fmt"
	"time"

	"playcall/internal/types"
)

// TTL milliseconds recorded on line evidence, keyed by market. These mirror
// the validator's freshness windows and are part of the wire contract.
var lineTTLMillis = map[types.LineType]int64{
	types.LineSpread:    1_800_000,
	types.LineTotal:     1_800_000,
	types.LineProp:      900_000,
	types.LineMoneyline: 3_600_000,
}

// FreshnessFor buckets a source age: live under one day, weekly under seven,
// stale beyond that.
func FreshnessFor(sourceTimestamp, now time.Time) types.Freshness {
	age := now.Sub(sourceTimestamp)
	switch {
	case age < 24*time.Hour:
		return types.FreshnessLive
	case age < 7*24*time.Hour:
		return types.FreshnessWeekly
	default:
		return types.FreshnessStale
	}
}

// BuildCodeDerived computes every Alert field that code owns: the id and
// agent carried over from the Finding, exactly one Evidence entry and one
// Source entry mirroring it, the code-computed confidence, and the
// freshness bucket.
func BuildCodeDerived(f types.Finding, conf float64, dataVersion string, now time.Time) types.CodeDerivedFields {
	ev := types.Evidence{
		Stat:       f.Stat,
		Value:      f.Value,
		Comparison: f.ComparisonContext,
		SourceRef:  f.SourceRef,
		SourceType: f.SourceType,
	}
	if f.SourceType == types.SourceLine && f.Line != nil {
		ev.LineType = f.Line.Type
		ev.LineValue = f.Line.Value
		ev.LineOdds = f.Line.Odds
		ev.Book = f.Line.Book
		ev.LineTimestamp = f.Line.Timestamp
		ev.LineTTLMillis = lineTTLMillis[f.Line.Type]
	}

	src := types.Source{
		Type:          f.SourceType,
		Ref:           f.SourceRef,
		DataVersion:   dataVersion,
		DataTimestamp: f.SourceTimestamp,
	}
	if f.SourceType == types.SourceWeb {
		ts := f.SourceTimestamp
		src.SearchTimestamp = &ts
	}

	return types.CodeDerivedFields{
		ID:         f.ID,
		Agent:      f.Agent,
		Evidence:   []types.Evidence{ev},
		Sources:    []types.Source{src},
		Confidence: conf,
		Freshness:  FreshnessFor(f.SourceTimestamp, now),
	}
}

// AssembleAlert merges the two disjoint field sets into an Alert. No
// validation happens here; the merge stays a pure structural operation the
// validator reasons about as a separate pass.
func AssembleAlert(code types.CodeDerivedFields, llm types.LLMFindingOutput) types.Alert {
	return types.Alert{
		ID:           code.ID,
		Agent:        code.Agent,
		Evidence:     code.Evidence,
		Sources:      code.Sources,
		Confidence:   code.Confidence,
		Freshness:    code.Freshness,
		Severity:     llm.Severity,
		Claim:        llm.ClaimParts.Render(),
		Implications: append([]string(nil), llm.Implications...),
		Suppressions: append([]string(nil), llm.Suppressions...),
	}
}

// AssembleAlerts assembles one Alert per Finding, in Finding order. The
// operation is total and strict: a Finding without an annotation, or an
// annotation for an unknown finding id, aborts the whole assembly. Partial
// alert sets are never returned.
func AssembleAlerts(findings []types.Finding, llm types.LLMOutput, confidences map[string]float64, dataVersion string, now time.Time) ([]types.Alert, error) {
	consumed := make(map[string]bool, len(findings))
	alerts := make([]types.Alert, 0, len(findings))

	for _, f := range findings {
		out, ok := llm.Findings[f.ID]
		if !ok {
			return nil, fmt.Errorf("llm annotation missing for finding %s", f.ID)
		}
		consumed[f.ID] = true
		alerts = append(alerts, AssembleAlert(BuildCodeDerived(f, confidences[f.ID], dataVersion, now), out))
	}

	for id := range llm.Findings {
		if !consumed[id] {
			return nil, fmt.Errorf("llm annotation references unknown finding_id %s", id)
		}
	}
	return alerts, nil
}
