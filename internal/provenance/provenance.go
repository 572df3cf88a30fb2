package provenance

import (
	"fmt"
	"sort"

	"playcall/internal/types"
)

// BuildInput carries everything the provenance tree summarizes.
type BuildInput struct {
	Prompt        string
	SkillDocs     map[string]string // agent name -> skill doc text
	Findings      []types.Finding
	AgentsInvoked []string
	AgentsSilent  []string
	Cache         types.CacheStats
}

// Build produces the fixed-shape provenance record for one response. The
// findings set is hashed over its id-sorted canonical JSON serialization so
// the hash never depends on discovery order.
func Build(in BuildInput) (types.Provenance, error) {
	skills := make(map[string]string, len(in.SkillDocs))
	for agent, doc := range in.SkillDocs {
		skills[agent] = HashContent(doc)
	}

	sorted := make([]types.Finding, len(in.Findings))
	copy(sorted, in.Findings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	findingsHash, err := HashObject(sorted)
	if err != nil {
		return types.Provenance{}, fmt.Errorf("hash findings: %w", err)
	}

	invoked := append([]string(nil), in.AgentsInvoked...)
	silent := append([]string(nil), in.AgentsSilent...)
	sort.Strings(invoked)
	sort.Strings(silent)

	return types.Provenance{
		PromptHash:    HashContent(in.Prompt),
		SkillHashes:   skills,
		FindingsHash:  findingsHash,
		AgentsInvoked: invoked,
		AgentsSilent:  silent,
		Cache:         in.Cache,
	}, nil
}
