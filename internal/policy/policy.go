// Package policy evaluates ALLOW/DENY rules against a request context of
// user, resource and environment attributes. It gates sensitive actions such
// as AI responses and high-risk approvals.
//
// Conditions are compiled by a constrained expression parser, never a
// general-purpose script evaluator: the only reachable state is the three
// injected bindings.
package policy

import (
	"fmt"
	"log/slog"

	"github.com/lexvault/lexvault/internal/shared"
)

// Effect is a policy outcome. The zero value is invalid so callers of Decide
// are forced to choose a default explicitly.
type Effect string

const (
	EffectAllow Effect = "ALLOW"
	EffectDeny  Effect = "DENY"
)

// Valid reports whether the effect is one of the two defined outcomes.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDeny
}

// Policy is a single evaluator rule.
type Policy struct {
	ID          string
	Description string
	Effect      Effect
	Condition   string
}

// Evaluator runs policies against request contexts. Evaluation is stateless
// and side-effect free; results are never cached.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate reports whether the policy's condition matches the input. A
// condition that fails to parse or fails at runtime is treated as a
// non-match: the failure is logged and never propagated, so the evaluator
// cannot take down the calling request path. The raw condition text is kept
// out of anything surfaced to end users.
func (e *Evaluator) Evaluate(p Policy, in Input) bool {
	expr, err := Parse(p.Condition)
	if err != nil {
		e.logger.Warn("policy condition failed to parse",
			slog.String("policy_id", p.ID),
			slog.Any("error", err))
		return false
	}
	matched, err := expr.Eval(in)
	if err != nil {
		e.logger.Warn("policy condition failed to evaluate",
			slog.String("policy_id", p.ID),
			slog.Any("error", err))
		return false
	}
	return matched
}

// Decide evaluates the policies against the input and resolves conflicts
// with deny-overrides: any matching DENY beats any matching ALLOW, wherever
// each sits in the sequence. When nothing matches the caller's defaultEffect
// is returned; there is no implicit default.
func (e *Evaluator) Decide(policies []Policy, in Input, defaultEffect Effect) (Effect, error) {
	if !defaultEffect.Valid() {
		return "", fmt.Errorf("%w: default effect must be ALLOW or DENY", shared.ErrValidation)
	}

	allowMatched := false
	for _, p := range policies {
		if !p.Effect.Valid() {
			return "", fmt.Errorf("%w: policy %s has effect %q", shared.ErrValidation, p.ID, p.Effect)
		}
		if !e.Evaluate(p, in) {
			continue
		}
		if p.Effect == EffectDeny {
			return EffectDeny, nil
		}
		allowMatched = true
	}

	if allowMatched {
		return EffectAllow, nil
	}
	return defaultEffect, nil
}
