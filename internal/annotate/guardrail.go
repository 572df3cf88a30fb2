package annotate

import (
	"fmt"

	"playcall/internal/config"
)

// GuardrailCode is the closed taxonomy of request-boundary aborts.
type GuardrailCode string

const (
	TokenLimitExceeded GuardrailCode = "TOKEN_LIMIT_EXCEEDED"
	CostLimitExceeded  GuardrailCode = "COST_LIMIT_EXCEEDED"
)

// GuardrailError aborts a request before any core work begins.
type GuardrailError struct {
	Code    GuardrailCode
	Message string
}

func (e *GuardrailError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// EstimateTokens approximates the token count of a prompt. Four characters
// per token is the usual planning heuristic for English-plus-JSON text.
func EstimateTokens(prompt string) int {
	return len(prompt) / 4
}

// CheckGuardrails enforces the token and cost ceilings on a prompt. It runs
// at the request boundary: the core pipeline has no partial-completion state
// to roll back, so a rejected prompt means nothing ran at all.
func CheckGuardrails(prompt string, cfg config.GuardrailConfig) *GuardrailError {
	tokens := EstimateTokens(prompt)
	if tokens > cfg.MaxPromptTokens {
		return &GuardrailError{
			Code:    TokenLimitExceeded,
			Message: fmt.Sprintf("estimated %d tokens exceeds limit %d", tokens, cfg.MaxPromptTokens),
		}
	}
	cost := float64(tokens) / 1000 * cfg.CostPerKTokens
	if cost > cfg.MaxCostUSD {
		return &GuardrailError{
			Code:    CostLimitExceeded,
			Message: fmt.Sprintf("estimated cost $%.4f exceeds limit $%.2f", cost, cfg.MaxCostUSD),
		}
	}
	return nil
}
