// Package types provides shared type definitions used across playcall packages.
// This package exists to break import cycles between agents, assemble, validate,
// and correlate. Types in this package should be foundational data structures
// with no complex dependencies.
package types

import (
	"time"
)

// =============================================================================
// SOURCE & EVIDENCE
// =============================================================================

// SourceType discriminates where a piece of evidence came from.
type SourceType string

const (
	SourceLocal SourceType = "local" // precomputed local stat tables
	SourceWeb   SourceType = "web"   // web search / scraped context
	SourceLine  SourceType = "line"  // sportsbook line from the odds provider
)

// LineType identifies the market a line belongs to. Each type has its own TTL.
type LineType string

const (
	LineSpread    LineType = "spread"
	LineTotal     LineType = "total"
	LineProp      LineType = "prop"
	LineMoneyline LineType = "moneyline"
)

// Source is a provenance record for a group of Evidence entries.
type Source struct {
	Type            SourceType `json:"type"`
	Ref             string     `json:"ref"`
	DataVersion     string     `json:"data_version"`
	DataTimestamp   time.Time  `json:"data_timestamp"`
	SearchTimestamp *time.Time `json:"search_timestamp,omitempty"`
}

// Evidence is one quantifiable comparison lifted from a Finding and embedded
// in an Alert. Line-sourced evidence additionally carries the market fields.
type Evidence struct {
	Stat       string     `json:"stat"`
	Value      any        `json:"value"`
	Comparison string     `json:"comparison"`
	SourceRef  string     `json:"source_ref"`
	SourceType SourceType `json:"source_type"`

	// Line-only fields, zero unless SourceType == SourceLine.
	LineType      LineType  `json:"line_type,omitempty"`
	LineValue     float64   `json:"line_value,omitempty"`
	LineOdds      int       `json:"line_odds,omitempty"`
	Book          string    `json:"book,omitempty"`
	LineTimestamp time.Time `json:"line_timestamp,omitempty"`
	LineTTLMillis int64     `json:"line_ttl,omitempty"`
}

// =============================================================================
// FINDING
// =============================================================================

// LineInfo carries the sportsbook line a line-sourced Finding refers to.
type LineInfo struct {
	Type      LineType  `json:"type"`
	Value     float64   `json:"value"`
	Odds      int       `json:"odds"`
	Book      string    `json:"book"`
	Timestamp time.Time `json:"timestamp"`
}

// Finding is a structured, falsifiable observation emitted by exactly one
// agent during a single run. Findings are never mutated after creation.
type Finding struct {
	ID                string         `json:"id"`
	Agent             string         `json:"agent"`
	FindingType       string         `json:"finding_type"`
	Stat              string         `json:"stat"`
	Value             any            `json:"value"`
	ThresholdMet      string         `json:"threshold_met"`
	ComparisonContext string         `json:"comparison_context"`
	SourceRef         string         `json:"source_ref"`
	SourceType        SourceType     `json:"source_type"`
	SourceTimestamp   time.Time      `json:"source_timestamp"`
	Scope             string         `json:"scope,omitempty"`
	Implication       string         `json:"implication,omitempty"`
	Line              *LineInfo      `json:"line,omitempty"`
	Payload           map[string]any `json:"payload,omitempty"`
}

// =============================================================================
// LLM ANNOTATION OUTPUT
// =============================================================================

// Severity is the LLM-assigned priority of an Alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ClaimParts is the structured claim the annotator is allowed to make.
// Free text never crosses this boundary; the claim string is rendered by code.
type ClaimParts struct {
	Subject   string `json:"subject"`
	Assertion string `json:"assertion"`
	Context   string `json:"context,omitempty"`
}

// Render joins the claim parts into the display claim. Rendering is owned by
// code so the annotator cannot smuggle arbitrary prose into an Alert.
func (c ClaimParts) Render() string {
	s := c.Subject + " " + c.Assertion
	if c.Context != "" {
		s += " (" + c.Context + ")"
	}
	return s
}

// LLMFindingOutput is the annotation the external LLM collaborator produces
// for one Finding. It must not carry confidence; confidence is code-owned.
type LLMFindingOutput struct {
	Severity     Severity   `json:"severity"`
	ClaimParts   ClaimParts `json:"claim_parts"`
	Implications []string   `json:"implications"`
	Suppressions []string   `json:"suppressions,omitempty"`
}

// LLMOutput is the full annotation payload, keyed by Finding id. The key set
// must equal the Finding id set exactly; assembly enforces this.
type LLMOutput struct {
	Findings map[string]LLMFindingOutput `json:"findings"`
}

// =============================================================================
// ALERT
// =============================================================================

// Freshness buckets source age: live (<1 day), weekly (<7 days), stale.
type Freshness string

const (
	FreshnessLive   Freshness = "live"
	FreshnessWeekly Freshness = "weekly"
	FreshnessStale  Freshness = "stale"
)

// CodeDerivedFields are the Alert fields computed entirely by code from a
// Finding and its confidence. The annotator can never touch these.
type CodeDerivedFields struct {
	ID         string     `json:"id"`
	Agent      string     `json:"agent"`
	Evidence   []Evidence `json:"evidence"`
	Sources    []Source   `json:"sources"`
	Confidence float64    `json:"confidence"`
	Freshness  Freshness  `json:"freshness"`
}

// Alert is the immutable merge of code-derived fields and a constrained LLM
// annotation. Alerts may only be constructed through the assembler and are
// read-only thereafter.
type Alert struct {
	ID           string     `json:"id"`
	Agent        string     `json:"agent"`
	Evidence     []Evidence `json:"evidence"`
	Sources      []Source   `json:"sources"`
	Confidence   float64    `json:"confidence"`
	Freshness    Freshness  `json:"freshness"`
	Severity     Severity   `json:"severity"`
	Claim        string     `json:"claim"`
	Implications []string   `json:"implications"`
	Suppressions []string   `json:"suppressions,omitempty"`
}

// =============================================================================
// CORRELATION, SCRIPTS & LADDERS
// =============================================================================

// CorrelationType is the closed taxonomy of compatible alert groupings.
type CorrelationType string

const (
	WeatherCascade  CorrelationType = "weather_cascade"
	DefensiveFunnel CorrelationType = "defensive_funnel"
	PlayerStack     CorrelationType = "player_stack"
	GameScript      CorrelationType = "game_script"
	VolumeShare     CorrelationType = "volume_share"
)

// CorrelationGroup is an ephemeral grouping of compatible alerts, recomputed
// fresh per request. IDs reference Alert ids.
type CorrelationGroup struct {
	Type        CorrelationType `json:"type"`
	IDs         []string        `json:"ids"`
	Explanation string          `json:"explanation"`
}

// RiskTier classifies a Script or Ladder rung by confidence and leg count.
type RiskTier string

const (
	RiskSafe       RiskTier = "safe"
	RiskModerate   RiskTier = "moderate"
	RiskAggressive RiskTier = "aggressive"
)

// Leg is one member of a Script.
type Leg struct {
	AlertID     string  `json:"alert_id"`
	Claim       string  `json:"claim"`
	Implication string  `json:"implication,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// Script is a multi-leg bundle derived from one correlation group.
type Script struct {
	Type        CorrelationType `json:"type"`
	Legs        []Leg           `json:"legs"`
	Combined    float64         `json:"combined_confidence"`
	Risk        RiskTier        `json:"risk"`
	Explanation string          `json:"explanation"`
	Digest      string          `json:"digest"`
}

// Rung is one entry in a Ladder tier.
type Rung struct {
	AlertID    string   `json:"alert_id"`
	Claim      string   `json:"claim"`
	Confidence float64  `json:"confidence"`
	Severity   Severity `json:"severity"`
}

// Ladder buckets individual alerts into risk tiers with per-tier rung caps.
type Ladder struct {
	Safe       []Rung `json:"safe"`
	Moderate   []Rung `json:"moderate"`
	Aggressive []Rung `json:"aggressive"`
}

// =============================================================================
// PROVENANCE
// =============================================================================

// CacheStats counts odds-cache activity for one request.
type CacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// Provenance is the per-request reproducibility hash-tree. All hashes are
// 12-hex-character SHA-256 prefixes over canonical serializations.
type Provenance struct {
	PromptHash    string            `json:"prompt_hash"`
	SkillHashes   map[string]string `json:"skill_hashes"`
	FindingsHash  string            `json:"findings_hash"`
	AgentsInvoked []string          `json:"agents_invoked"`
	AgentsSilent  []string          `json:"agents_silent"`
	Cache         CacheStats        `json:"cache"`
}
