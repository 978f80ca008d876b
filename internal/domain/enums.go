// Package domain defines the core domain models for the RTI assistant.
package domain

// Stage is the position of a session in the request-building checklist.
type Stage string

const (
	StageInitial        Stage = "initial"
	StageFrameQuestions Stage = "frame_questions"
	StageDefineScope    Stage = "define_scope"
	StageGatherDetails  Stage = "gather_details"
	StageDeliveryMethod Stage = "delivery_method"
	StageFeesBPL        Stage = "fees_bpl"
	StageDeclarations   Stage = "declarations"
	StageFinalize       Stage = "finalize"
	StageRTIReady       Stage = "rti_ready"
	StageCompleted      Stage = "completed"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageInitial, StageFrameQuestions, StageDefineScope, StageGatherDetails,
		StageDeliveryMethod, StageFeesBPL, StageDeclarations, StageFinalize,
		StageRTIReady, StageCompleted:
		return true
	}
	return false
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Language is the conversation language tag.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageHinglish Language = "hinglish"
)

// DeliveryMethod is how the applicant wants to receive the information.
type DeliveryMethod string

const (
	DeliveryPost     DeliveryMethod = "post"
	DeliveryInPerson DeliveryMethod = "in_person"
)

// PostType is the postal service class used for delivery by post.
type PostType string

const (
	PostOrdinary   PostType = "ordinary"
	PostRegistered PostType = "registered"
	PostSpeed      PostType = "speed"
)

// UsageMessageType classifies a quota notice.
type UsageMessageType string

const (
	UsageMessageError   UsageMessageType = "error"
	UsageMessageWarning UsageMessageType = "warning"
	UsageMessageInfo    UsageMessageType = "info"
)

// EventType represents the type of a session event.
type EventType string

const (
	EventTypeSessionStarted    EventType = "session_started"
	EventTypeUserInput         EventType = "user_input"
	EventTypeGenerationStarted EventType = "generation_started"
	EventTypeGenerationDone    EventType = "generation_done"
	EventTypeGenerationFailed  EventType = "generation_failed"
	EventTypeGenerationBlocked EventType = "generation_blocked"
	EventTypePolicyDecision    EventType = "policy_decision"
	EventTypeStageChanged      EventType = "stage_changed"
	EventTypeSessionCompleted  EventType = "session_completed"
	EventTypeSessionEnded      EventType = "session_ended"
)
