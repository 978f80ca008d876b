// Package policy decides whether a turn may be sent to the remote generator.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the policy.
const (
	DecisionAllow          = "allow"
	DecisionManualFallback = "manual_fallback"
	DecisionBlock          = "block"
)

// Usage is the quota snapshot passed to the policy.
type Usage struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Input is the document evaluated for each generation call.
type Input struct {
	MessageLength int    `json:"message_length"`
	Stage         string `json:"stage"`
	Usage         Usage  `json:"usage"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.rti_policy.result"),
		rego.Module("rti_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks a generation call.
// Returns: decision (allow, manual_fallback, block), reason, error
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "default", nil
	}

	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return val, "", nil
	case map[string]interface{}:
		decision, _ := val["decision"].(string)
		reason, _ := val["reason"].(string)
		if decision == "" {
			return DecisionAllow, "missing decision", nil
		}
		return decision, reason, nil
	}

	return DecisionAllow, "unexpected return type", nil
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package rti_policy

max_message_length = 4000

result = {"decision": "block", "reason": "empty_message"} {
	input.message_length == 0
} else = {"decision": "block", "reason": "message_too_long"} {
	input.message_length > max_message_length
} else = {"decision": "manual_fallback", "reason": "daily_quota_exhausted"} {
	input.usage.remaining <= 0
} else = {"decision": "allow", "reason": ""} {
	true
}
`
