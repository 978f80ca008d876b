package domain

import (
	"encoding/json"
	"time"
)

// ChatMessage is one entry of a session transcript.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Voice     bool      `json:"voice,omitempty"`
}

// Session is the state of one live conversation.
type Session struct {
	ID            string        `json:"id"`
	StartTime     time.Time     `json:"start_time"`
	Messages      []ChatMessage `json:"messages"`
	ExtractedInfo ExtractedInfo `json:"extracted_info"`
	Stage         Stage         `json:"stage"`
	Language      Language      `json:"language"`
}

// UserTurns returns the number of user messages in the transcript.
func (s *Session) UserTurns() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// SessionRecord is the durable row kept for every session.
type SessionRecord struct {
	SessionID     string          `json:"session_id"`
	Stage         Stage           `json:"stage"`
	Language      Language        `json:"language"`
	CreatedAt     time.Time       `json:"created_at"`
	EndedAt       *time.Time      `json:"ended_at,omitempty"`
	ExtractedInfo json.RawMessage `json:"extracted_info,omitempty"`
}

// Message is a persisted transcript line.
type Message struct {
	MessageID string          `json:"message_id"`
	SessionID string          `json:"session_id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Event represents a trace event for a session.
type Event struct {
	EventID   string          `json:"event_id"`
	SessionID string          `json:"session_id"`
	Ts        int64           `json:"ts"` // Unix milliseconds
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
