// Package conversation tracks what the assistant has learned from the chat:
// the fields of the request being built in the live session, and the
// profile, patterns and history that survive across sessions.
package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
	"github.com/theIndrajeet/AskSarkar/internal/repository"
)

// recentHistorySize is how many past conversations a snapshot carries.
const recentHistorySize = 3

// Memory is the process-wide cross-session state. It is loaded from the
// record store on first use and written back after every mutation.
// Storage failures are logged and the in-memory copy stays authoritative.
type Memory struct {
	store repository.RecordStore
	now   func() time.Time
	randn func(n int) int

	mu      sync.Mutex
	loaded  bool
	record  domain.ContextRecord
	history []domain.ConversationSummary
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// WithRand overrides the random choice used for greetings and suggestions.
func WithRand(randn func(n int) int) MemoryOption {
	return func(m *Memory) {
		m.randn = randn
	}
}

// NewMemory creates a Memory backed by store.
func NewMemory(store repository.RecordStore, opts ...MemoryOption) *Memory {
	m := &Memory{
		store:  store,
		now:    time.Now,
		randn:  rand.IntN,
		record: domain.DefaultContextRecord(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ensureLoaded reads both records once. Callers must hold m.mu.
func (m *Memory) ensureLoaded(ctx context.Context) {
	if m.loaded {
		return
	}
	m.loaded = true

	record := domain.DefaultContextRecord()
	if found, err := m.store.Load(ctx, repository.KeyContext, &record); err != nil {
		log.Warn("Failed to load context record, using defaults", "err", err)
		record = domain.DefaultContextRecord()
	} else if found {
		record.Normalize()
	}
	m.record = record

	var history []domain.ConversationSummary
	if _, err := m.store.Load(ctx, repository.KeyConversations, &history); err != nil {
		log.Warn("Failed to load conversation history", "err", err)
		history = nil
	}
	m.history = history
}

// saveContext persists the context record. Callers must hold m.mu.
func (m *Memory) saveContext(ctx context.Context) {
	now := m.now()
	m.record.Stats.LastActiveDate = &now
	if err := m.store.Save(ctx, repository.KeyContext, m.record); err != nil {
		log.Warn("Failed to save context record", "err", err)
	}
}

// saveHistory persists the conversation history. Callers must hold m.mu.
func (m *Memory) saveHistory(ctx context.Context) {
	if err := m.store.Save(ctx, repository.KeyConversations, m.history); err != nil {
		log.Warn("Failed to save conversation history", "err", err)
	}
}

// Update applies fn to the context record and persists it when fn reports a change.
func (m *Memory) Update(ctx context.Context, fn func(record *domain.ContextRecord) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx)
	if fn(&m.record) {
		m.saveContext(ctx)
	}
}

// Record returns a copy of the context record.
func (m *Memory) Record(ctx context.Context) domain.ContextRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx)
	return copyRecord(m.record)
}

// History returns the stored conversation summaries, newest first.
func (m *Memory) History(ctx context.Context) []domain.ConversationSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx)
	return append([]domain.ConversationSummary(nil), m.history...)
}

// RecordSuccess appends a finalized request to the successful queries.
func (m *Memory) RecordSuccess(ctx context.Context, finalText string) {
	m.Update(ctx, func(r *domain.ContextRecord) bool {
		r.LearnedPatterns.SuccessfulQueries = append(r.LearnedPatterns.SuccessfulQueries, finalText)
		return true
	})
}

// AddConversation pushes summary to the front of the capped history and
// bumps the lifetime counters.
func (m *Memory) AddConversation(ctx context.Context, summary domain.ConversationSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx)

	m.history = append([]domain.ConversationSummary{summary}, m.history...)
	if len(m.history) > domain.MaxStoredConversations {
		m.history = m.history[:domain.MaxStoredConversations]
	}
	m.saveHistory(ctx)

	stats := &m.record.Stats
	stats.TotalConversations++
	if summary.WasSuccessful {
		stats.SuccessfulRTIs++
	}
	n := float64(stats.TotalConversations)
	stats.AverageConversationLength += (float64(summary.MessageCount) - stats.AverageConversationLength) / n
	lastUsed := summary.EndTime
	m.record.UserProfile.LastUsed = &lastUsed
	m.saveContext(ctx)
}

// Greeting returns a greeting for the user based on what is remembered.
func (m *Memory) Greeting(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx)

	name := m.record.UserProfile.Name
	total := m.record.Stats.TotalConversations
	switch {
	case name != "" && total > 0:
		greetings := []string{
			fmt.Sprintf("Welcome back, %s! How can I help you today?", name),
			fmt.Sprintf("Hi %s! Ready to file another RTI application?", name),
			fmt.Sprintf("Hello %s! What issue would you like to address today?", name),
		}
		return greetings[m.randn(len(greetings))]
	case name != "":
		return fmt.Sprintf("Hi %s! I'm your RTI assistant. What issue are you facing?", name)
	case total > 0:
		return "Welcome back! I remember our previous conversations. What new issue can I help you with today?"
	default:
		return "Hi! I'm your RTI assistant. I'll help you file applications to get answers from government departments. What issue are you facing?"
	}
}

// pickSuccessfulQuery returns a random past successful query, or "".
func (m *Memory) pickSuccessfulQuery(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded(ctx)
	queries := m.record.LearnedPatterns.SuccessfulQueries
	if len(queries) == 0 {
		return ""
	}
	return queries[m.randn(len(queries))]
}

// Clear erases all persisted state and resets to defaults.
func (m *Memory) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range []string{repository.KeyContext, repository.KeyConversations} {
		if err := m.store.Delete(ctx, key); err != nil {
			log.Warn("Failed to delete record", "key", key, "err", err)
		}
	}
	m.record = domain.DefaultContextRecord()
	m.history = nil
	m.loaded = true
}

func copyRecord(r domain.ContextRecord) domain.ContextRecord {
	out := r
	out.UserProfile.CommonIssues = append([]string{}, r.UserProfile.CommonIssues...)
	out.LearnedPatterns.FrequentComplaints = make(map[string]int, len(r.LearnedPatterns.FrequentComplaints))
	for k, v := range r.LearnedPatterns.FrequentComplaints {
		out.LearnedPatterns.FrequentComplaints[k] = v
	}
	out.LearnedPatterns.LocationMentions = make(map[string]int, len(r.LearnedPatterns.LocationMentions))
	for k, v := range r.LearnedPatterns.LocationMentions {
		out.LearnedPatterns.LocationMentions[k] = v
	}
	out.LearnedPatterns.DepartmentMapping = make(map[string]string, len(r.LearnedPatterns.DepartmentMapping))
	for k, v := range r.LearnedPatterns.DepartmentMapping {
		out.LearnedPatterns.DepartmentMapping[k] = v
	}
	out.LearnedPatterns.SuccessfulQueries = append([]string{}, r.LearnedPatterns.SuccessfulQueries...)
	return out
}
