package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestDefaultPolicy(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name         string
		input        Input
		wantDecision string
		wantReason   string
	}{
		{
			name:         "allow",
			input:        Input{MessageLength: 20, Stage: "frame_questions", Usage: Usage{Used: 3, Limit: 50, Remaining: 47}},
			wantDecision: DecisionAllow,
		},
		{
			name:         "empty message",
			input:        Input{MessageLength: 0, Usage: Usage{Limit: 50, Remaining: 50}},
			wantDecision: DecisionBlock,
			wantReason:   "empty_message",
		},
		{
			name:         "oversized message",
			input:        Input{MessageLength: 4001, Usage: Usage{Limit: 50, Remaining: 50}},
			wantDecision: DecisionBlock,
			wantReason:   "message_too_long",
		},
		{
			name:         "quota exhausted",
			input:        Input{MessageLength: 12, Usage: Usage{Used: 50, Limit: 50, Remaining: 0}},
			wantDecision: DecisionManualFallback,
			wantReason:   "daily_quota_exhausted",
		},
		{
			name:         "empty message wins over quota",
			input:        Input{MessageLength: 0, Usage: Usage{Used: 50, Limit: 50}},
			wantDecision: DecisionBlock,
			wantReason:   "empty_message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, reason, err := engine.Evaluate(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if decision != tt.wantDecision || reason != tt.wantReason {
				t.Fatalf("got (%q, %q), want (%q, %q)", decision, reason, tt.wantDecision, tt.wantReason)
			}
		})
	}
}

func TestStringDecisionPolicy(t *testing.T) {
	engine, err := NewEngine(context.Background(), `
package rti_policy

default result = "block"
`)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	decision, _, err := engine.Evaluate(context.Background(), Input{MessageLength: 5})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionBlock {
		t.Fatalf("decision = %q", decision)
	}
}

func TestInvalidPolicy(t *testing.T) {
	if _, err := NewEngine(context.Background(), "package rti_policy\nresult = {"); err == nil {
		t.Fatalf("expected prepare error")
	}
}
