package annotate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"playcall/internal/types"
)

// ParseError marks a response that failed to parse as the annotation schema.
// This is a distinct, earlier failure class from domain validation errors:
// a ParseError means the collaborator broke the wire contract, not that an
// assembled alert violated an invariant.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "llm output parse failure: " + e.Reason
}

// ParseOutput strictly decodes the raw LLM text into an LLMOutput. Code
// fences are tolerated; everything else is exact: unknown keys anywhere are
// rejected (which also bars the annotator from smuggling a confidence
// field), the single top-level key must be "findings", and each annotation
// must carry a valid severity and non-empty claim parts.
func ParseOutput(raw string) (types.LLMOutput, error) {
	text := stripCodeFences(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()

	var out types.LLMOutput
	if err := dec.Decode(&out); err != nil {
		return types.LLMOutput{}, &ParseError{Reason: err.Error()}
	}
	if dec.More() {
		return types.LLMOutput{}, &ParseError{Reason: "trailing content after JSON object"}
	}
	if out.Findings == nil {
		return types.LLMOutput{}, &ParseError{Reason: `missing top-level "findings" key`}
	}

	for id, f := range out.Findings {
		switch f.Severity {
		case types.SeverityLow, types.SeverityMedium, types.SeverityHigh:
		default:
			return types.LLMOutput{}, &ParseError{Reason: fmt.Sprintf("finding %s: invalid severity %q", id, f.Severity)}
		}
		if f.ClaimParts.Subject == "" || f.ClaimParts.Assertion == "" {
			return types.LLMOutput{}, &ParseError{Reason: fmt.Sprintf("finding %s: claim_parts subject and assertion are required", id)}
		}
		if len(f.Implications) == 0 {
			return types.LLMOutput{}, &ParseError{Reason: fmt.Sprintf("finding %s: at least one implication is required", id)}
		}
	}
	return out, nil
}

// stripCodeFences removes a surrounding markdown fence if present.
func stripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
