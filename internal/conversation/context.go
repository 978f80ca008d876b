package conversation

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// Context is the state of one live conversation bound to the shared Memory.
type Context struct {
	memory *Memory
	now    func() time.Time

	mu      sync.Mutex
	session domain.Session
}

// NewSessionID returns a new session identifier.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("sess_%d_%s", now.UnixMilli(), uuid.New().String()[:8])
}

// NewContext starts a new session backed by memory.
func NewContext(memory *Memory) *Context {
	return NewContextWithID(memory, "")
}

// NewContextWithID starts a new session with a caller-chosen ID.
// An empty id generates one.
func NewContextWithID(memory *Memory, id string) *Context {
	now := memory.now()
	if id == "" {
		id = NewSessionID(now)
	}
	return &Context{
		memory: memory,
		now:    memory.now,
		session: domain.Session{
			ID:            id,
			StartTime:     now,
			Messages:      []domain.ChatMessage{},
			ExtractedInfo: domain.ExtractedInfo{},
			Stage:         domain.StageInitial,
			Language:      domain.LanguageEnglish,
		},
	}
}

// ID returns the session ID.
func (c *Context) ID() string {
	return c.session.ID
}

// Memory returns the shared cross-session memory.
func (c *Context) Memory() *Memory {
	return c.memory
}

// ExtractAndStoreInfo runs the extractor pipeline over a user message and
// merges the results into the session. Messages from any other role are ignored.
func (c *Context) ExtractAndStoreInfo(ctx context.Context, message string, role domain.Role) {
	if role != domain.RoleUser {
		return
	}

	c.mu.Lock()
	info := c.session.ExtractedInfo
	var (
		applicant string
		complaint string
		locations []string
		mixedLang bool
	)
	for _, ex := range Extractors {
		for _, f := range ex.Fn(message) {
			if f.OnlyIfUnset && info.Has(f.Key) {
				continue
			}
			info[f.Key] = f.Value
			switch f.Key {
			case domain.FieldApplicantName:
				applicant, _ = f.Value.(string)
			case domain.FieldComplaintType:
				complaint, _ = f.Value.(string)
			case domain.FieldLocation:
				if loc, ok := f.Value.(string); ok {
					locations = append(locations, loc)
				}
			}
		}
	}
	if DetectMixedLanguage(message) {
		mixedLang = true
		c.session.Language = domain.LanguageHinglish
	}
	c.mu.Unlock()

	if applicant == "" && complaint == "" && len(locations) == 0 && !mixedLang {
		return
	}
	c.memory.Update(ctx, func(r *domain.ContextRecord) bool {
		if applicant != "" && r.UserProfile.Name == "" {
			r.UserProfile.Name = applicant
		}
		if complaint != "" {
			r.LearnedPatterns.FrequentComplaints[complaint]++
			if !slices.Contains(r.UserProfile.CommonIssues, complaint) {
				r.UserProfile.CommonIssues = append(r.UserProfile.CommonIssues, complaint)
			}
		}
		for _, loc := range locations {
			r.LearnedPatterns.LocationMentions[loc]++
		}
		if mixedLang {
			r.UserProfile.PreferredLanguage = domain.LanguageHinglish
		}
		return true
	})
}

// AppendMessage adds a message to the session transcript.
func (c *Context) AppendMessage(role domain.Role, text string, voice bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Messages = append(c.session.Messages, domain.ChatMessage{
		Role:      role,
		Text:      text,
		Timestamp: c.now(),
		Voice:     voice,
	})
}

// UpdateStage overwrites the session stage.
func (c *Context) UpdateStage(stage domain.Stage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Stage = stage
}

// Stage returns the current session stage.
func (c *Context) Stage() domain.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Stage
}

// InferredStage returns the stage implied by the fields captured so far.
func (c *Context) InferredStage() domain.Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return InferStage(c.session.ExtractedInfo, c.session.UserTurns())
}

// Language returns the session language.
func (c *Context) Language() domain.Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Language
}

// ExtractedInfo returns a copy of the captured fields.
func (c *Context) ExtractedInfo() domain.ExtractedInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ExtractedInfo.Clone()
}

// Session returns a copy of the session.
func (c *Context) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copySession()
}

func (c *Context) copySession() domain.Session {
	s := c.session
	s.Messages = append([]domain.ChatMessage(nil), c.session.Messages...)
	s.ExtractedInfo = c.session.ExtractedInfo.Clone()
	return s
}

// RecordSuccess stores the finalized request text and marks the session completed.
func (c *Context) RecordSuccess(ctx context.Context, finalText string) {
	c.memory.RecordSuccess(ctx, finalText)
	c.UpdateStage(domain.StageCompleted)
}

// SaveConversation summarizes the session into the conversation history.
func (c *Context) SaveConversation(ctx context.Context) domain.ConversationSummary {
	c.mu.Lock()
	summary := domain.ConversationSummary{
		ID:            c.session.ID,
		StartTime:     c.session.StartTime,
		EndTime:       c.now(),
		MessageCount:  len(c.session.Messages),
		ExtractedInfo: c.session.ExtractedInfo.Clone(),
		Stage:         c.session.Stage,
		Language:      c.session.Language,
		WasSuccessful: c.session.Stage == domain.StageCompleted,
	}
	c.mu.Unlock()

	c.memory.AddConversation(ctx, summary)
	return summary
}

// Snapshot returns the session together with the remembered profile,
// preferences, patterns and most recent conversations.
func (c *Context) Snapshot(ctx context.Context) domain.Snapshot {
	record := c.memory.Record(ctx)
	history := c.memory.History(ctx)
	if len(history) > recentHistorySize {
		history = history[:recentHistorySize]
	}
	return domain.Snapshot{
		Session:         c.Session(),
		UserProfile:     record.UserProfile,
		Preferences:     record.Preferences,
		LearnedPatterns: record.LearnedPatterns,
		RecentHistory:   history,
	}
}

// PersonalizedGreeting returns a greeting based on the remembered profile.
func (c *Context) PersonalizedGreeting(ctx context.Context) string {
	return c.memory.Greeting(ctx)
}

// Clear erases everything remembered across sessions.
func (c *Context) Clear(ctx context.Context) {
	c.memory.Clear(ctx)
}
