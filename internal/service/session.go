package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/theIndrajeet/AskSarkar/internal/conversation"
	"github.com/theIndrajeet/AskSarkar/internal/document"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// SessionStart is returned when a session opens.
type SessionStart struct {
	SessionID string       `json:"session_id"`
	Greeting  string       `json:"greeting"`
	Stage     domain.Stage `json:"stage"`
}

// StartSession opens a new live session and persists its record.
func (s *Service) StartSession(ctx context.Context) (*SessionStart, error) {
	conv := conversation.NewContext(s.memory)
	session := conv.Session()

	record := &domain.SessionRecord{
		SessionID: session.ID,
		Stage:     session.Stage,
		Language:  session.Language,
		CreatedAt: session.StartTime,
	}
	if err := s.store.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.ID] = &liveSession{conv: conv}
	s.mu.Unlock()

	s.trace(ctx, session.ID, domain.EventTypeSessionStarted, map[string]interface{}{
		"generator": s.generator.Name(),
	})
	log.Info("Session started", "session_id", session.ID)

	return &SessionStart{
		SessionID: session.ID,
		Greeting:  conv.PersonalizedGreeting(ctx),
		Stage:     session.Stage,
	}, nil
}

// SessionContext returns the session with the remembered profile and history.
func (s *Service) SessionContext(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	live, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := live.conv.Snapshot(ctx)
	return &snapshot, nil
}

// Suggestions returns follow-up question ideas for a session.
func (s *Service) Suggestions(ctx context.Context, sessionID string) ([]string, error) {
	live, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return live.conv.FollowUpSuggestions(ctx), nil
}

// Document returns the finalized request text of a session. Without a
// generated document it renders one from the captured fields.
func (s *Service) Document(ctx context.Context, sessionID string) (string, error) {
	live, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	doc := live.document
	s.mu.Unlock()
	if doc != "" {
		return doc, nil
	}
	return document.RenderRTI(live.conv.ExtractedInfo(), s.now()), nil
}

// CompleteSession records the session's document as a successful request
// and saves the conversation to history.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) (*domain.ConversationSummary, string, error) {
	live, err := s.acquire(sessionID)
	if err != nil {
		return nil, "", err
	}
	defer s.release(live)

	doc, err := s.Document(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	live.conv.RecordSuccess(ctx, doc)
	summary := live.conv.SaveConversation(ctx)
	s.mu.Lock()
	live.summary = &summary
	live.document = doc
	s.mu.Unlock()

	s.persistState(ctx, live.conv)
	s.trace(ctx, sessionID, domain.EventTypeSessionCompleted, map[string]interface{}{
		"message_count": summary.MessageCount,
	})
	log.Info("Session completed", "session_id", sessionID)

	return &summary, doc, nil
}

// EndSession saves the conversation summary, unless already saved, and
// discards the live session.
func (s *Service) EndSession(ctx context.Context, sessionID string) (*domain.ConversationSummary, error) {
	live, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	saved := live.summary
	s.mu.Unlock()

	var summary domain.ConversationSummary
	if saved != nil {
		summary = *saved
	} else {
		summary = live.conv.SaveConversation(ctx)
	}

	s.persistState(ctx, live.conv)
	if err := s.store.EndSession(ctx, sessionID); err != nil {
		log.Error("Failed to end session", "session_id", sessionID, "err", err)
	}
	s.trace(ctx, sessionID, domain.EventTypeSessionEnded, map[string]interface{}{
		"message_count":  summary.MessageCount,
		"was_successful": summary.WasSuccessful,
	})
	log.Info("Session ended", "session_id", sessionID)

	return &summary, nil
}

// persistState writes the session's stage, language and fields to the store.
func (s *Service) persistState(ctx context.Context, conv *conversation.Context) {
	session := conv.Session()
	info, err := json.Marshal(session.ExtractedInfo)
	if err != nil {
		log.Error("Failed to encode extracted info", "session_id", session.ID, "err", err)
		return
	}
	if err := s.store.UpdateSessionState(ctx, session.ID, session.Stage, session.Language, info); err != nil {
		log.Error("Failed to update session state", "session_id", session.ID, "err", err)
	}
}

// Greeting returns a greeting personalized from the remembered profile.
func (s *Service) Greeting(ctx context.Context) string {
	return s.memory.Greeting(ctx)
}

// ClearContext erases the remembered profile, patterns and history.
func (s *Service) ClearContext(ctx context.Context) {
	s.memory.Clear(ctx)
	log.Info("Remembered context cleared")
}
