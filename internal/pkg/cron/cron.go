// Package cron runs named background jobs on fixed intervals, with manual
// triggering and status inspection for the admin API.
package cron

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// JobStatus is the outcome of a job's most recent run.
type JobStatus string

const (
	StatusIdle      JobStatus = "idle"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// Job is a unit of scheduled work.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

type jobState struct {
	Job

	mu        sync.Mutex
	status    JobStatus
	message   string
	lastRunAt *time.Time
	nextRunAt time.Time
}

// JobSummary is the API view of one registered job.
type JobSummary struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      JobStatus  `json:"status"`
	NextRunAt   *time.Time `json:"next_run_at"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
}

// RunStatus reports where a single job currently stands.
type RunStatus struct {
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}

// Scheduler owns the registered jobs and their run loops.
type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
}

func New() *Scheduler {
	return &Scheduler{jobs: make(map[string]*jobState)}
}

// Register adds a job. Call before Start; registration is not safe once the
// run loops are going.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{
		Job:       job,
		status:    StatusIdle,
		nextRunAt: time.Now().Add(job.Interval),
	}
}

// Start launches one goroutine per registered job. The goroutines exit when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, js := range s.jobs {
		go s.runLoop(ctx, js)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, js *jobState) {
	for {
		js.mu.Lock()
		wait := time.Until(js.nextRunAt)
		js.mu.Unlock()
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			s.execute(ctx, js)
			js.mu.Lock()
			js.nextRunAt = time.Now().Add(js.Interval)
			js.mu.Unlock()
		}
	}
}

// execute runs the job once. Overlapping runs of the same job are skipped.
func (s *Scheduler) execute(ctx context.Context, js *jobState) {
	js.mu.Lock()
	if js.status == StatusRunning {
		js.mu.Unlock()
		return
	}
	js.status = StatusRunning
	js.mu.Unlock()

	startedAt := time.Now()
	err := js.Fn(ctx)

	js.mu.Lock()
	js.lastRunAt = &startedAt
	if err != nil {
		js.status = StatusFailed
		js.message = err.Error()
	} else {
		js.status = StatusSucceeded
		js.message = ""
	}
	js.mu.Unlock()
}

// Run triggers a job by name without waiting for it to finish.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.RLock()
	js, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	go s.execute(ctx, js)
	return nil
}

// Status returns the current run state of a job.
func (s *Scheduler) Status(name string) (*RunStatus, error) {
	s.mu.RLock()
	js, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job %q not found", name)
	}
	js.mu.Lock()
	defer js.mu.Unlock()
	return &RunStatus{Status: js.status, Message: js.message}, nil
}

// List summarizes all registered jobs.
func (s *Scheduler) List() []JobSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]JobSummary, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		next := js.nextRunAt
		items = append(items, JobSummary{
			Name:        js.Name,
			Description: js.Description,
			Status:      js.status,
			NextRunAt:   &next,
			LastRunAt:   js.lastRunAt,
		})
		js.mu.Unlock()
	}
	return items
}
