package service

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/theIndrajeet/AskSarkar/internal/domain"
)

// UsageInfo returns today's generation quota usage.
func (s *Service) UsageInfo(ctx context.Context) domain.UsageInfo {
	return s.limiter.UsageInfo(ctx)
}

// UsageMessage returns the current quota notice, or nil.
func (s *Service) UsageMessage(ctx context.Context) *domain.UsageMessage {
	return s.limiter.UsageMessage(ctx)
}

// ResetUsage zeroes today's counter.
func (s *Service) ResetUsage(ctx context.Context) domain.UsageInfo {
	s.limiter.ForceReset(ctx)
	log.Info("Usage counter reset")
	return s.limiter.UsageInfo(ctx)
}

// RolloverUsage resets the counter when the day has changed.
func (s *Service) RolloverUsage(ctx context.Context) {
	if s.limiter.Rollover(ctx) {
		log.Info("Usage counter rolled over for the new day")
	}
}
