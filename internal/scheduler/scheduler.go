// Package scheduler drives the repeating refresh job.
package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs the refresh job at a fixed minute interval. Changing
// the interval tears down the running scheduler and creates a fresh
// one.
type Scheduler struct {
	mu        sync.Mutex
	scheduler *gocron.Scheduler
	job       func()
	minutes   int
}

// New creates a Scheduler that will invoke job on every tick.
func New(job func()) *Scheduler {
	return &Scheduler{job: job}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start(minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start(minutes)
}

// Restart cancels the running schedule and starts a new one with the
// given period. Invoked on settings save; the accompanying immediate
// refresh is the caller's responsibility.
func (s *Scheduler) Restart(minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
	return s.start(minutes)
}

// Interval returns the period of the current schedule in minutes.
func (s *Scheduler) Interval() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minutes
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
		s.scheduler = nil
	}
}

// start creates and starts a fresh gocron scheduler. Caller holds s.mu.
func (s *Scheduler) start(minutes int) error {
	if minutes <= 0 {
		minutes = 10
	}

	// The immediate refresh on startup and on settings save is driven
	// by the caller; the schedule itself only fires after a full
	// period has elapsed.
	sched := gocron.NewScheduler(time.Local)
	if _, err := sched.Every(minutes).Minutes().WaitForSchedule().Do(func() {
		log.Println("scheduler: running weather refresh job")
		s.job()
	}); err != nil {
		return err
	}

	sched.StartAsync()
	s.scheduler = sched
	s.minutes = minutes
	return nil
}
