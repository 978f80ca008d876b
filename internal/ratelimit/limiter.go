// Package ratelimit enforces the daily ceiling on calls to the generation
// service using a locally persisted counter.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
	"github.com/theIndrajeet/AskSarkar/internal/repository"
)

const (
	// DefaultDailyLimit is the number of generation calls allowed per day.
	DefaultDailyLimit = 50
	// DefaultWarningThreshold is the usage at which a warning is shown.
	DefaultWarningThreshold = 40

	dateLayout = "2006-01-02"
)

// Limiter counts generation calls per local calendar day.
// Two processes sharing one record can double count or lose increments.
type Limiter struct {
	store   repository.RecordStore
	limit   int
	warning int
	now     func() time.Time
	loc     *time.Location

	mu      sync.Mutex
	loaded  bool
	counter domain.UsageCounter
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithDailyLimit sets the daily ceiling.
func WithDailyLimit(n int) Option {
	return func(l *Limiter) {
		l.limit = n
	}
}

// WithWarningThreshold sets the usage at which warnings start.
func WithWarningThreshold(n int) Option {
	return func(l *Limiter) {
		l.warning = n
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithLocation sets the time zone whose midnight resets the counter.
func WithLocation(loc *time.Location) Option {
	return func(l *Limiter) {
		l.loc = loc
	}
}

// New creates a Limiter backed by store.
func New(store repository.RecordStore, opts ...Option) *Limiter {
	l := &Limiter{
		store: store,
		limit: DefaultDailyLimit,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.limit <= 0 {
		l.limit = DefaultDailyLimit
	}
	if l.warning <= 0 {
		l.warning = l.limit * DefaultWarningThreshold / DefaultDailyLimit
	}
	return l
}

// Limit returns the daily ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) today() string {
	return l.now().In(l.loc).Format(dateLayout)
}

// sync loads the counter once and rolls it over on a date change.
// It reports whether a rollover happened. Callers must hold l.mu.
func (l *Limiter) sync(ctx context.Context) bool {
	if !l.loaded {
		l.loaded = true
		var counter domain.UsageCounter
		found, err := l.store.Load(ctx, repository.KeyUsage, &counter)
		if err != nil {
			log.Warn("Failed to load usage counter, starting fresh", "err", err)
		}
		if found && err == nil {
			l.counter = counter
		} else {
			l.counter = domain.UsageCounter{Date: l.today()}
		}
	}

	today := l.today()
	if l.counter.Date == today {
		return false
	}
	l.counter = domain.UsageCounter{Date: today}
	l.save(ctx)
	return true
}

// save persists the counter. Callers must hold l.mu.
func (l *Limiter) save(ctx context.Context) {
	if err := l.store.Save(ctx, repository.KeyUsage, l.counter); err != nil {
		log.Warn("Failed to save usage counter", "err", err)
	}
}

// CanMakeRequest reports whether another call fits under today's limit.
func (l *Limiter) CanMakeRequest(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sync(ctx)
	return l.counter.Count < l.limit
}

// RecordRequest counts one call. Over the limit it counts a blocked call
// instead and returns false.
func (l *Limiter) RecordRequest(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sync(ctx)

	if l.counter.Count >= l.limit {
		l.counter.BlockedCalls++
		l.save(ctx)
		return false
	}

	now := l.now()
	l.counter.Count++
	l.counter.LastCallTime = &now
	if l.counter.FirstCallTime == nil {
		first := now
		l.counter.FirstCallTime = &first
	}
	l.save(ctx)
	return true
}

// Rollover resets the counter if the stored date is not today.
func (l *Limiter) Rollover(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sync(ctx)
}

// UsageInfo returns the derived view of today's usage.
func (l *Limiter) UsageInfo(ctx context.Context) domain.UsageInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sync(ctx)

	c := l.counter
	return domain.UsageInfo{
		Used:              c.Count,
		Limit:             l.limit,
		Remaining:         max(0, l.limit-c.Count),
		PercentageUsed:    float64(c.Count) / float64(l.limit) * 100,
		ShouldShowWarning: c.Count >= l.warning,
		IsLimitReached:    c.Count >= l.limit,
		HoursUntilReset:   l.hoursUntilReset(),
		BlockedCalls:      c.BlockedCalls,
		FirstCallTime:     c.FirstCallTime,
		LastCallTime:      c.LastCallTime,
	}
}

func (l *Limiter) hoursUntilReset() int {
	now := l.now().In(l.loc)
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, l.loc)
	return int(math.Ceil(midnight.Sub(now).Hours()))
}

// UsageMessage classifies current usage into a user-facing notice.
// It returns nil when usage is unremarkable.
func (l *Limiter) UsageMessage(ctx context.Context) *domain.UsageMessage {
	return MessageFor(l.UsageInfo(ctx))
}

// MessageFor derives the notice for info.
func MessageFor(info domain.UsageInfo) *domain.UsageMessage {
	switch {
	case info.IsLimitReached:
		return &domain.UsageMessage{
			Type: domain.UsageMessageError,
			Message: fmt.Sprintf("Daily limit reached (%d requests). The limit will reset in %d hours. You can still use the manual form option.",
				info.Limit, info.HoursUntilReset),
			ShowFallback: true,
		}
	case info.ShouldShowWarning:
		return &domain.UsageMessage{
			Type:    domain.UsageMessageWarning,
			Message: fmt.Sprintf("You have %d AI requests remaining today. Consider using the manual form to save your quota.", info.Remaining),
		}
	case info.PercentageUsed > 50:
		return &domain.UsageMessage{
			Type:    domain.UsageMessageInfo,
			Message: fmt.Sprintf("%d AI requests remaining today.", info.Remaining),
		}
	}
	return nil
}

// ForceReset zeroes the counter regardless of date.
func (l *Limiter) ForceReset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = true
	l.counter = domain.UsageCounter{Date: l.today()}
	l.save(ctx)
}
