// Package confidence maps evidence characteristics to a [0,1] score.
// Calculate is a pure function: identical inputs always yield the identical
// output. That determinism is a contract the validator chain depends on, so
// nothing here may read clocks, config, or any other ambient state.
package confidence

import "time"

// Inputs describes the evidence characteristics behind one Finding. Optional
// signals are pointers; nil means the signal is absent and contributes no
// adjustment in either direction (except SampleSize, where a present small
// sample is an explicit penalty).
type Inputs struct {
	EvidenceCount   int
	HasLocalSource  bool
	HasWebSource    bool
	WebAge          time.Duration // age of web-sourced data, used only if HasWebSource
	SampleSize      *int
	HasLineEvidence bool
	LineAge         time.Duration // age of the freshest line, used only if HasLineEvidence
	LocalDataAge    time.Duration // age of the local data snapshot
}

const baseline = 0.5

// Calculate scores the inputs: baseline 0.5 plus strictly additive and
// subtractive adjustments, clamped to [0,1].
func Calculate(in Inputs) float64 {
	score := baseline

	switch {
	case in.EvidenceCount >= 3:
		score += 0.15
	case in.EvidenceCount >= 2:
		score += 0.08
	}

	if in.HasLocalSource {
		score += 0.10
	}

	if in.HasWebSource && in.WebAge < 4*time.Hour {
		score += 0.08
	}

	if in.SampleSize != nil {
		switch n := *in.SampleSize; {
		case n >= 100:
			score += 0.12
		case n >= 50:
			score += 0.06
		default:
			score -= 0.10
		}
	}

	if in.HasLineEvidence {
		switch {
		case in.LineAge < 30*time.Minute:
			score += 0.10
		case in.LineAge < 2*time.Hour:
			score += 0.05
		default:
			score -= 0.15
		}
	}

	if in.LocalDataAge > 7*24*time.Hour {
		score -= 0.20
	}

	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
