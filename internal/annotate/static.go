package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"playcall/internal/types"
	"playcall/internal/validate"
)

// StaticAnnotator is the offline collaborator: it produces a deterministic,
// schema-conformant annotation for every finding id without any network
// call. Used when no API key is configured, and by tests that need the full
// pipeline without the transport.
type StaticAnnotator struct{}

// Annotate fabricates a conservative annotation per finding id: medium
// severity, a claim built from the id's subject portion, and the first
// allowlisted implication for the finding's agent.
func (StaticAnnotator) Annotate(_ context.Context, _ string, findingIDs []string, agentOf map[string]string) (string, error) {
	out := types.LLMOutput{Findings: make(map[string]types.LLMFindingOutput, len(findingIDs))}
	for _, id := range findingIDs {
		agent := agentOf[id]
		allowed := validate.ImplicationsForAgent(agent)
		if len(allowed) == 0 {
			return "", fmt.Errorf("static annotate: agent %q has no allowlist", agent)
		}
		out.Findings[id] = types.LLMFindingOutput{
			Severity: types.SeverityMedium,
			ClaimParts: types.ClaimParts{
				Subject:   subjectFromID(id),
				Assertion: "profiles favorably in this matchup",
				Context:   agent + " detector",
			},
			Implications: allowed[:1],
		}
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// subjectFromID recovers a readable subject from the deterministic finding
// id template agent_subject-slug_timestamp.
func subjectFromID(id string) string {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return id
	}
	slug := strings.Join(parts[1:len(parts)-1], "_")
	return strings.ReplaceAll(slug, "-", " ")
}
