// Package testutil holds fixtures shared by transport tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/theIndrajeet/AskSarkar/internal/adapter/llm"
	"github.com/theIndrajeet/AskSarkar/internal/config"
	"github.com/theIndrajeet/AskSarkar/internal/conversation"
	"github.com/theIndrajeet/AskSarkar/internal/policy"
	"github.com/theIndrajeet/AskSarkar/internal/ratelimit"
	"github.com/theIndrajeet/AskSarkar/internal/repository"
	"github.com/theIndrajeet/AskSarkar/internal/service"
)

// NewTestSQLiteStore opens an in-memory SQLite store closed at test end.
func NewTestSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// NewTestService wires a service around generator with in-memory storage.
func NewTestService(t *testing.T, generator llm.Generator, dailyLimit int) (*service.Service, *repository.SQLiteStore) {
	t.Helper()

	db := NewTestSQLiteStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	records := repository.NewMemoryStore()
	cfg := &config.Config{LLMTimeout: time.Second, DailyLimit: dailyLimit, APIKey: "test-key"}
	svc := service.New(
		db,
		conversation.NewMemory(records),
		ratelimit.New(records, ratelimit.WithDailyLimit(dailyLimit)),
		policyEngine,
		generator,
		cfg,
	)
	return svc, db
}

// RemoteGenerator is a remote generator that always answers with Text,
// after Delay when set.
type RemoteGenerator struct {
	Text  string
	Delay time.Duration
}

// Generate implements llm.Generator.
func (g *RemoteGenerator) Generate(ctx context.Context, _ *llm.GenerationRequest) (*llm.Generation, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &llm.Generation{Text: g.Text, Model: "remote-test"}, nil
}

// Name implements llm.Generator.
func (g *RemoteGenerator) Name() string { return "remote-test" }

// Remote implements llm.Generator.
func (g *RemoteGenerator) Remote() bool { return true }
