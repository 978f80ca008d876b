// Package service orchestrates conversation turns across the context, the
// quota limiter, the admission policy and the generation backend.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/theIndrajeet/AskSarkar/internal/adapter/llm"
	"github.com/theIndrajeet/AskSarkar/internal/config"
	"github.com/theIndrajeet/AskSarkar/internal/conversation"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
	"github.com/theIndrajeet/AskSarkar/internal/policy"
	"github.com/theIndrajeet/AskSarkar/internal/ratelimit"
	"github.com/theIndrajeet/AskSarkar/internal/repository"
)

var (
	// ErrSessionNotFound is returned for unknown or ended sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTurnInProgress is returned when a session is already processing a message.
	ErrTurnInProgress = errors.New("turn already in progress")
	// ErrQuotaExceeded is returned when the daily generation quota is used up.
	ErrQuotaExceeded = errors.New("generation quota exceeded")
	// ErrPolicyBlocked is returned when the admission policy rejects a message.
	ErrPolicyBlocked = errors.New("message blocked by policy")
)

// QuotaError carries the notice to show when a turn is refused for quota.
type QuotaError struct {
	Usage *domain.UsageMessage
}

func (e *QuotaError) Error() string {
	return e.Usage.Message
}

// Unwrap lets callers match ErrQuotaExceeded.
func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}

const defaultQuotaMessage = "API quota exceeded. Please try the manual form."

func newQuotaError(msg *domain.UsageMessage) *QuotaError {
	if msg == nil {
		msg = &domain.UsageMessage{
			Type:         domain.UsageMessageError,
			Message:      defaultQuotaMessage,
			ShowFallback: true,
		}
	}
	return &QuotaError{Usage: msg}
}

type liveSession struct {
	conv     *conversation.Context
	busy     bool
	document string
	// summary is set once the conversation has been saved to history.
	summary *domain.ConversationSummary
}

// Service is the application core shared by all transports.
type Service struct {
	store        repository.Store
	memory       *conversation.Memory
	limiter      *ratelimit.Limiter
	policyEngine *policy.Engine
	generator    llm.Generator
	config       *config.Config
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// New creates a Service.
func New(store repository.Store, memory *conversation.Memory, limiter *ratelimit.Limiter, policyEngine *policy.Engine, generator llm.Generator, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		memory:       memory,
		limiter:      limiter,
		policyEngine: policyEngine,
		generator:    generator,
		config:       cfg,
		now:          time.Now,
		sessions:     make(map[string]*liveSession),
	}
}

// Generator returns the configured generation backend.
func (s *Service) Generator() llm.Generator {
	return s.generator
}

func (s *Service) lookup(sessionID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return live, nil
}

// acquire marks the session busy for one turn.
func (s *Service) acquire(sessionID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if live.busy {
		return nil, ErrTurnInProgress
	}
	live.busy = true
	return live, nil
}

func (s *Service) release(live *liveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live.busy = false
}
