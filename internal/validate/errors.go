// Package validate enforces the alert invariants. Every check is part of a
// fixed, ordered chain with first-error semantics; batch validation isolates
// one alert's rejection from the rest.
package validate

import "fmt"

// ErrorCode is the closed taxonomy of alert validation failures.
type ErrorCode string

const (
	OrphanSource            ErrorCode = "ORPHAN_SOURCE"
	MissingSource           ErrorCode = "MISSING_SOURCE"
	StaleLine               ErrorCode = "STALE_LINE"
	EdgeLanguageWithoutLine ErrorCode = "EDGE_LANGUAGE_WITHOUT_LINE"
	InvalidImplications     ErrorCode = "INVALID_IMPLICATIONS"
	IDMismatch              ErrorCode = "ID_MISMATCH"
	AgentMismatch           ErrorCode = "AGENT_MISMATCH"
	ConfidenceModified      ErrorCode = "CONFIDENCE_MODIFIED"
	FreshnessMismatch       ErrorCode = "FRESHNESS_MISMATCH"
	MissingFinding          ErrorCode = "MISSING_FINDING"
	UnknownError            ErrorCode = "UNKNOWN_ERROR"
)

// ValidationError is one violated invariant. The chain aborts on the first
// violation, so a ValidationError always identifies the earliest failed rule
// in chain order, never an aggregate.
type ValidationError struct {
	Code    ErrorCode
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errf(code ErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}
