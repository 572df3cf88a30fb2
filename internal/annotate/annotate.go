// Package annotate is the boundary to the external LLM collaborator. The
// collaborator is untrusted: it receives a prompt derived from findings and
// may only return a schema-constrained annotation, which is strictly parsed
// here before anything downstream sees it.
package annotate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"playcall/internal/types"
)

//go:embed skills/*.md
var skillFS embed.FS

// Annotator is the transport contract: prompt text in, raw response text
// out. Everything else (schema enforcement, parsing) happens on this side.
type Annotator interface {
	Annotate(ctx context.Context, prompt string, findingIDs []string, agentOf map[string]string) (string, error)
}

// SkillDocs returns the per-agent skill documents keyed by agent name.
// These are hashed into provenance so a doc edit is visible in every
// response it influenced.
func SkillDocs() (map[string]string, error) {
	docs := make(map[string]string)
	err := fs.WalkDir(skillFS, "skills", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := skillFS.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(d.Name(), ".md")
		docs[name] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load skill docs: %w", err)
	}
	return docs, nil
}

// BuildPrompt renders the annotation prompt for one finding set. Only the
// skill docs of invoked agents are included.
func BuildPrompt(mc *types.MatchupContext, findings []types.Finding, skills map[string]string) string {
	var b strings.Builder
	b.WriteString("You annotate statistical findings for the matchup ")
	b.WriteString(mc.AwayTeam + " at " + mc.HomeTeam + ".\n")
	b.WriteString("Return JSON only, matching the response schema exactly.\n")
	b.WriteString("Annotate every finding id below, and no other id.\n")
	b.WriteString("Never invent numbers and never assert a priced advantage.\n\n")

	seen := make(map[string]bool)
	for _, f := range findings {
		if seen[f.Agent] {
			continue
		}
		seen[f.Agent] = true
		if doc, ok := skills[f.Agent]; ok {
			b.WriteString("## Skill: " + f.Agent + "\n")
			b.WriteString(doc)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Findings\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "- id=%s agent=%s stat=%s value=%v :: %s\n",
			f.ID, f.Agent, f.Stat, f.Value, f.ComparisonContext)
	}

	if mc.Notes != nil {
		if len(mc.Notes.Injuries) > 0 {
			b.WriteString("\n## Curated injury notes\n")
			for _, n := range mc.Notes.Injuries {
				b.WriteString("- " + n + "\n")
			}
		}
		if len(mc.Notes.Analytics) > 0 {
			b.WriteString("\n## Curated analytics notes\n")
			for _, n := range mc.Notes.Analytics {
				b.WriteString("- " + n + "\n")
			}
		}
	}
	return b.String()
}
