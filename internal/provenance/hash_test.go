package provenance

import (
	"strings"
	"testing"

	"playcall/internal/types"
)

func TestHashContent(t *testing.T) {
	h := HashContent("hello")
	if len(h) != 12 {
		t.Fatalf("HashContent length = %d, want 12", len(h))
	}
	if h != HashContent("hello") {
		t.Fatalf("HashContent not stable")
	}
	if h == HashContent("hello!") {
		t.Fatalf("distinct inputs hashed identically")
	}
	for _, c := range h {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("non-hex character %q in %q", c, h)
		}
	}
}

func TestHashObject_OrderInvariance(t *testing.T) {
	a := map[string]any{"a": 1, "b": 2}
	b := map[string]any{"b": 2, "a": 1}

	ha, err := HashObject(a)
	if err != nil {
		t.Fatalf("HashObject: %v", err)
	}
	hb, err := HashObject(b)
	if err != nil {
		t.Fatalf("HashObject: %v", err)
	}
	if ha != hb {
		t.Fatalf("key order changed the hash: %q vs %q", ha, hb)
	}
}

func TestHashObject_NestedOrderInvariance(t *testing.T) {
	a := map[string]any{"outer": map[string]any{"x": 1, "y": []any{"p", "q"}}, "z": true}
	b := map[string]any{"z": true, "outer": map[string]any{"y": []any{"p", "q"}, "x": 1}}

	ha, _ := HashObject(a)
	hb, _ := HashObject(b)
	if ha != hb {
		t.Fatalf("nested key order changed the hash")
	}

	// Array order is significant.
	c := map[string]any{"outer": map[string]any{"x": 1, "y": []any{"q", "p"}}, "z": true}
	hc, _ := HashObject(c)
	if ha == hc {
		t.Fatalf("array reorder did not change the hash")
	}
}

func TestHashObject_ValueSensitivity(t *testing.T) {
	ha, _ := HashObject(map[string]any{"a": 1})
	hb, _ := HashObject(map[string]any{"a": 2})
	if ha == hb {
		t.Fatalf("different values hashed identically")
	}
}

func TestStalenessKey(t *testing.T) {
	// "a|b" rolls to 97159 = 0x17b87.
	if got := StalenessKey([]string{"a", "b"}); got != "h_17b87" {
		t.Fatalf("StalenessKey = %q, want h_17b87", got)
	}
}

func TestStalenessKey_SortNormalized(t *testing.T) {
	k1 := StalenessKey([]string{"spread:-3.5", "total:47.5", "ml:-180"})
	k2 := StalenessKey([]string{"total:47.5", "ml:-180", "spread:-3.5"})
	if k1 != k2 {
		t.Fatalf("payload order changed the key: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "h_") {
		t.Fatalf("key %q missing h_ prefix", k1)
	}
}

func TestBuild(t *testing.T) {
	findings := []types.Finding{
		{ID: "qb_b_100", Agent: "qb"},
		{ID: "epa_a_100", Agent: "epa"},
	}
	in := BuildInput{
		Prompt:        "prompt text",
		SkillDocs:     map[string]string{"epa": "doc a", "qb": "doc b"},
		Findings:      findings,
		AgentsInvoked: []string{"qb", "epa"},
		AgentsSilent:  []string{"weather", "pace"},
		Cache:         types.CacheStats{Hits: 2, Misses: 1},
	}
	prov, err := Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prov.PromptHash != HashContent("prompt text") {
		t.Fatalf("prompt hash mismatch")
	}
	if len(prov.SkillHashes) != 2 || prov.SkillHashes["epa"] != HashContent("doc a") {
		t.Fatalf("skill hashes unexpected: %#v", prov.SkillHashes)
	}
	if prov.AgentsInvoked[0] != "epa" || prov.AgentsSilent[0] != "pace" {
		t.Fatalf("agent lists not sorted: %#v %#v", prov.AgentsInvoked, prov.AgentsSilent)
	}
	if prov.Cache.Hits != 2 || prov.Cache.Misses != 1 {
		t.Fatalf("cache counters dropped: %#v", prov.Cache)
	}

	// Findings hash is discovery-order independent.
	reversed := []types.Finding{findings[1], findings[0]}
	prov2, err := Build(BuildInput{Prompt: in.Prompt, SkillDocs: in.SkillDocs, Findings: reversed,
		AgentsInvoked: in.AgentsInvoked, AgentsSilent: in.AgentsSilent, Cache: in.Cache})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if prov.FindingsHash != prov2.FindingsHash {
		t.Fatalf("findings hash depends on discovery order")
	}
}
