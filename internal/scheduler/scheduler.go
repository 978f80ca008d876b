// Package scheduler runs the periodic housekeeping jobs of the server.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	rcron "github.com/robfig/cron/v3"
)

// MidnightSpec fires at 00:00:05 every day, after the calendar date changes.
const MidnightSpec = "5 0 0 * * *"

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context)
}

// Scheduler wraps a seconds-resolution cron runner.
type Scheduler struct {
	loc  *time.Location
	jobs []Job

	mu      sync.Mutex
	cron    *rcron.Cron
	entries map[string]rcron.EntryID
	cancel  context.CancelFunc
}

// New creates a Scheduler evaluating specs in loc.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{loc: loc}
}

// Add registers a job. Jobs must be added before Start.
func (s *Scheduler) Add(job Job) error {
	if _, err := rcron.NewParser(rcron.Second | rcron.Minute | rcron.Hour | rcron.Dom | rcron.Month | rcron.Dow).Parse(job.Spec); err != nil {
		return fmt.Errorf("invalid schedule for %s: %w", job.Name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

// Start launches the runner. It stops when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New(rcron.WithSeconds(), rcron.WithLocation(s.loc))
	entries := make(map[string]rcron.EntryID, len(s.jobs))
	for _, job := range s.jobs {
		job := job
		id, err := c.AddFunc(job.Spec, func() {
			log.Debug("Running scheduled job", "job", job.Name)
			job.Run(runCtx)
		})
		if err != nil {
			cancel()
			return fmt.Errorf("register %s: %w", job.Name, err)
		}
		entries[job.Name] = id
	}
	s.cron = c
	s.entries = entries
	s.cancel = cancel
	c.Start()
	log.Info("Scheduler started", "jobs", len(s.jobs), "tz", s.loc.String())

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the runner and waits briefly for running jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	select {
	case <-c.Stop().Done():
	case <-time.After(5 * time.Second):
		log.Warn("Scheduler stop timed out waiting for running jobs")
	}
	log.Info("Scheduler stopped")
}

// Next reports when the named job fires next, or the zero time if it is
// not scheduled.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}
