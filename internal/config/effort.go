package config

import (
	"fmt"
	"strings"
)

// ReasoningEffort enumerates the reasoning levels a model request may ask
// for. EffortNone omits the field from the request entirely.
type ReasoningEffort string

const (
	EffortNone    ReasoningEffort = "none"
	EffortMinimal ReasoningEffort = "minimal"
	EffortLow     ReasoningEffort = "low"
	EffortMedium  ReasoningEffort = "medium"
	EffortHigh    ReasoningEffort = "high"
	EffortXHigh   ReasoningEffort = "xhigh"
)

var validEfforts = map[ReasoningEffort]bool{
	EffortNone: true, EffortMinimal: true, EffortLow: true,
	EffortMedium: true, EffortHigh: true, EffortXHigh: true,
}

// ParseReasoningEffort validates a raw effort string.
func ParseReasoningEffort(raw string) (ReasoningEffort, error) {
	e := ReasoningEffort(strings.ToLower(strings.TrimSpace(raw)))
	if e == "" {
		return EffortNone, nil
	}
	if !validEfforts[e] {
		return "", fmt.Errorf("invalid reasoning effort %q (valid: none, minimal, low, medium, high, xhigh)", raw)
	}
	return e, nil
}

// Validate checks configuration invariants after loading.
func Validate(cfg *Configuration) error {
	if _, err := ParseReasoningEffort(string(cfg.ReasoningEffort)); err != nil {
		return err
	}
	if cfg.EvidenceBudgetBytes < 0 {
		return fmt.Errorf("evidence_budget_bytes must not be negative, got %d", cfg.EvidenceBudgetBytes)
	}
	if cfg.MaxRounds <= 0 {
		return fmt.Errorf("max_rounds must be positive, got %d", cfg.MaxRounds)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", cfg.MaxRetries)
	}
	if cfg.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	return nil
}
