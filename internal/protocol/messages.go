// Package protocol defines the WebSocket message protocol between chat clients and the server.
package protocol

import "github.com/theIndrajeet/AskSarkar/internal/domain"

// Message types from client to server
const (
	TypeHello       = "hello"
	TypeUserMessage = "user_message"
	TypeComplete    = "complete"
)

// Message types from server to client
const (
	TypeHelloAck       = "hello_ack"
	TypeState          = "state"
	TypeAssistantReply = "assistant_reply"
	TypeRTIReady       = "rti_ready"
	TypeError          = "error"
)

// Turn states carried by StateMessage.
const (
	StateThinking = "thinking"
	StateIdle     = "idle"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HelloMessage is sent by the client to open or resume a session.
type HelloMessage struct {
	BaseMessage
	APIKey string `json:"api_key,omitempty"`
}

// HelloAckMessage is sent after a successful hello.
type HelloAckMessage struct {
	BaseMessage
	Greeting string       `json:"greeting"`
	Stage    domain.Stage `json:"stage"`
}

// UserMessage carries one chat turn from the client.
type UserMessage struct {
	BaseMessage
	Content string `json:"content"`
	Voice   bool   `json:"voice,omitempty"`
}

// CompleteMessage asks the server to finalize the session.
type CompleteMessage struct {
	BaseMessage
}

// StateMessage reports whether a turn is in flight.
type StateMessage struct {
	BaseMessage
	State string `json:"state"`
}

// AssistantReplyMessage carries the assistant answer for a turn.
type AssistantReplyMessage struct {
	BaseMessage
	Reply    domain.GenerationReply `json:"reply"`
	Stage    domain.Stage           `json:"stage"`
	Document string                 `json:"document,omitempty"`
	Usage    *domain.UsageMessage   `json:"usage,omitempty"`
}

// RTIReadyMessage carries the finalized application.
type RTIReadyMessage struct {
	BaseMessage
	Document string                      `json:"document"`
	Summary  *domain.ConversationSummary `json:"summary,omitempty"`
}

// ErrorMessage reports a failure to the client.
type ErrorMessage struct {
	BaseMessage
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Usage   *domain.UsageMessage `json:"usage,omitempty"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeUnauthorized    = "unauthorized"
	ErrorCodeSessionRequired = "session_required"
	ErrorCodeSessionNotFound = "session_not_found"
	ErrorCodeTurnInProgress  = "turn_in_progress"
	ErrorCodeQuotaExceeded   = "quota_exceeded"
	ErrorCodePolicyBlocked   = "policy_blocked"
	ErrorCodeInternalError   = "internal_error"
)
