package domain

import "time"

// MaxStoredConversations caps the persisted conversation history.
const MaxStoredConversations = 10

// UserProfile is what the assistant remembers about the user.
type UserProfile struct {
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	PreferredLanguage Language   `json:"preferred_language"`
	CommonIssues      []string   `json:"common_issues"`
	LastUsed          *time.Time `json:"last_used,omitempty"`
}

// Preferences are user-level toggles for the assistant.
type Preferences struct {
	ConversationStyle   string `json:"conversation_style"`
	FollowUpSuggestions bool   `json:"follow_up_suggestions"`
	VoiceInput          bool   `json:"voice_input"`
	SmartReminders      bool   `json:"smart_reminders"`
}

// LearnedPatterns accumulate across sessions without eviction.
type LearnedPatterns struct {
	FrequentComplaints map[string]int    `json:"frequent_complaints"`
	LocationMentions   map[string]int    `json:"location_mentions"`
	DepartmentMapping  map[string]string `json:"department_mapping"`
	SuccessfulQueries  []string          `json:"successful_queries"`
}

// Stats are lifetime counters.
type Stats struct {
	TotalConversations        int        `json:"total_conversations"`
	SuccessfulRTIs            int        `json:"successful_rtis"`
	AverageConversationLength float64    `json:"average_conversation_length"`
	LastActiveDate            *time.Time `json:"last_active_date,omitempty"`
}

// ContextRecord is the persisted cross-session record.
type ContextRecord struct {
	UserProfile     UserProfile     `json:"user_profile"`
	Preferences     Preferences     `json:"preferences"`
	LearnedPatterns LearnedPatterns `json:"learned_patterns"`
	Stats           Stats           `json:"stats"`
}

// DefaultContextRecord returns the record used before anything is persisted.
func DefaultContextRecord() ContextRecord {
	return ContextRecord{
		UserProfile: UserProfile{
			PreferredLanguage: LanguageEnglish,
			CommonIssues:      []string{},
		},
		Preferences: Preferences{
			ConversationStyle:   "empathetic",
			FollowUpSuggestions: true,
			VoiceInput:          false,
			SmartReminders:      true,
		},
		LearnedPatterns: LearnedPatterns{
			FrequentComplaints: map[string]int{},
			LocationMentions:   map[string]int{},
			DepartmentMapping:  map[string]string{},
			SuccessfulQueries:  []string{},
		},
	}
}

// Normalize fills nil maps and slices left by older or partial records.
func (r *ContextRecord) Normalize() {
	if r.UserProfile.PreferredLanguage == "" {
		r.UserProfile.PreferredLanguage = LanguageEnglish
	}
	if r.UserProfile.CommonIssues == nil {
		r.UserProfile.CommonIssues = []string{}
	}
	if r.LearnedPatterns.FrequentComplaints == nil {
		r.LearnedPatterns.FrequentComplaints = map[string]int{}
	}
	if r.LearnedPatterns.LocationMentions == nil {
		r.LearnedPatterns.LocationMentions = map[string]int{}
	}
	if r.LearnedPatterns.DepartmentMapping == nil {
		r.LearnedPatterns.DepartmentMapping = map[string]string{}
	}
	if r.LearnedPatterns.SuccessfulQueries == nil {
		r.LearnedPatterns.SuccessfulQueries = []string{}
	}
}

// ConversationSummary is the history entry written when a session ends.
type ConversationSummary struct {
	ID            string        `json:"id"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	MessageCount  int           `json:"message_count"`
	ExtractedInfo ExtractedInfo `json:"extracted_info"`
	Stage         Stage         `json:"stage"`
	Language      Language      `json:"language"`
	WasSuccessful bool          `json:"was_successful"`
}

// Snapshot is the read-only view handed to prompt building.
type Snapshot struct {
	Session         Session               `json:"session"`
	UserProfile     UserProfile           `json:"user_profile"`
	Preferences     Preferences           `json:"preferences"`
	LearnedPatterns LearnedPatterns       `json:"learned_patterns"`
	RecentHistory   []ConversationSummary `json:"recent_history"`
}
