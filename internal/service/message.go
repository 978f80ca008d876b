package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// GetMessages returns the persisted transcript of a session.
func (s *Service) GetMessages(ctx context.Context, sessionID string, limit int, before string) ([]domain.Message, error) {
	if err := s.ensureStored(ctx, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.store.GetMessages(ctx, sessionID, limit, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

func (s *Service) ensureStored(ctx context.Context, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// saveMessage persists a transcript line. Failures are logged and do not
// interrupt the turn.
func (s *Service) saveMessage(ctx context.Context, sessionID string, role domain.Role, content string, metadata any) string {
	msgID := "msg_" + uuid.New().String()[:8]
	msg := &domain.Message{
		MessageID: msgID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			msg.Metadata = raw
		}
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		log.Error("Failed to save message", "session_id", sessionID, "role", role, "err", err)
	}
	return msgID
}
