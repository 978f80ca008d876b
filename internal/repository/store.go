// Package repository defines the storage interfaces and their implementations.
package repository

import (
	"context"
	"errors"

	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// Keys of the persisted records.
const (
	KeyContext       = "rti_context"
	KeyConversations = "rti_conversations"
	KeyUsage         = "generation_usage"
)

// ErrStoreClosed is returned by stores used after Close.
var ErrStoreClosed = errors.New("store closed")

// RecordStore persists whole JSON documents under a key.
// Each Save replaces the previous document.
type RecordStore interface {
	// Load decodes the record into v. It reports false if the key is absent.
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store persists sessions, transcripts and trace events.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.SessionRecord) error
	GetSession(ctx context.Context, sessionID string) (*domain.SessionRecord, error)
	UpdateSessionState(ctx context.Context, sessionID string, stage domain.Stage, language domain.Language, info []byte) error
	EndSession(ctx context.Context, sessionID string) error

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID string, limit int, before string) ([]domain.Message, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, sessionID string, afterTs int64, types []string, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}
