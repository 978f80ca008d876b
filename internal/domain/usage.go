package domain

import "time"

// UsageCounter is the persisted daily generation-call counter.
type UsageCounter struct {
	Count         int        `json:"count"`
	Date          string     `json:"date"`
	FirstCallTime *time.Time `json:"first_call_time,omitempty"`
	LastCallTime  *time.Time `json:"last_call_time,omitempty"`
	BlockedCalls  int        `json:"blocked_calls"`
}

// UsageInfo is the derived view of the counter.
type UsageInfo struct {
	Used              int        `json:"used"`
	Limit             int        `json:"limit"`
	Remaining         int        `json:"remaining"`
	PercentageUsed    float64    `json:"percentage_used"`
	ShouldShowWarning bool       `json:"should_show_warning"`
	IsLimitReached    bool       `json:"is_limit_reached"`
	HoursUntilReset   int        `json:"hours_until_reset"`
	BlockedCalls      int        `json:"blocked_calls"`
	FirstCallTime     *time.Time `json:"first_call_time,omitempty"`
	LastCallTime      *time.Time `json:"last_call_time,omitempty"`
}

// UsageMessage is a user-facing quota notice.
type UsageMessage struct {
	Type         UsageMessageType `json:"type"`
	Message      string           `json:"message"`
	ShowFallback bool             `json:"show_fallback"`
}
