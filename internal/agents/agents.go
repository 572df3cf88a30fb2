// Package agents implements the detector roster and the runner that
// evaluates every detector against a matchup context.
//
// Detectors are independent pure functions over the same read-only context:
// none mutates shared state or reads another's output, so running them
// sequentially or in parallel must produce the identical finding set.
package agents

import (
	"strconv"
	"strings"
	"time"

	"playcall/internal/config"
	"playcall/internal/types"
)

// Agent evaluates one or more named threshold rules against a matchup
// context. A rule fires only when every one of its conditions holds; a
// missing optional input means "condition not satisfied", never an error.
type Agent interface {
	Name() string
	Evaluate(mc *types.MatchupContext, th config.AgentThresholds) []types.Finding
}

// Roster returns the full detector roster in registry order. Order carries
// no semantic weight; runner output is id-sorted regardless.
func Roster() []Agent {
	return []Agent{
		epaAgent{},
		pressureAgent{},
		qbAgent{},
		weatherAgent{},
		volumeAgent{},
		paceAgent{},
		redzoneAgent{},
		injuryAgent{},
	}
}

// FindingID builds the deterministic finding id from the agent, the subject,
// and the context's data timestamp. Re-running with identical input must
// reproduce identical ids, so this is a canonical key builder rather than ad
// hoc interpolation: the subject is slugged and the timestamp is fixed to
// unix seconds.
func FindingID(agent, subject string, ts time.Time) string {
	return agent + "_" + Slug(subject) + "_" + strconv.FormatInt(ts.Unix(), 10)
}

// Slug normalizes a subject name: lowercase, runs of non-alphanumerics
// collapsed to single hyphens, no leading or trailing hyphen.
func Slug(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// localSourceRef is the provenance ref for findings derived from the local
// stat tables of one data version.
func localSourceRef(dataVersion string) string {
	return "local:stats:" + dataVersion
}
