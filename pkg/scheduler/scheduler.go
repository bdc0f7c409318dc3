// Package scheduler runs named maintenance jobs on fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rubiojr/kashif/pkg/log"
)

var logger = log.ForService("scheduler")

// Job is one periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs      []Job
	tickers   map[string]*time.Ticker
	ctxCancel context.CancelFunc
	mu        sync.RWMutex
	wg        sync.WaitGroup
	running   bool
}

func New() *Scheduler {
	return &Scheduler{tickers: make(map[string]*time.Ticker)}
}

// Add registers a job. A zero interval disables it. Jobs must be added
// before Start.
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	if job.Run == nil {
		return fmt.Errorf("job %s has no function", job.Name)
	}
	for _, j := range s.jobs {
		if j.Name == job.Name {
			return fmt.Errorf("job %s already registered", job.Name)
		}
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Start launches one goroutine per enabled job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	ctx, s.ctxCancel = context.WithCancel(ctx)
	s.running = true

	for _, job := range s.jobs {
		if job.Interval <= 0 {
			logger.Debugf("skipping job %s (interval is 0)", job.Name)
			continue
		}
		ticker := time.NewTicker(job.Interval)
		s.tickers[job.Name] = ticker
		s.wg.Add(1)
		go s.runJob(ctx, job, ticker)
		logger.Debugf("started job %s with interval %v", job.Name, job.Interval)
	}

	logger.Infof("scheduler started with %d jobs", len(s.tickers))
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, job Job, ticker *time.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				logger.Warnf("job %s failed: %v", job.Name, err)
			}
		}
	}
}

// Stop cancels every job and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if s.ctxCancel != nil {
		s.ctxCancel()
	}
	for _, ticker := range s.tickers {
		ticker.Stop()
	}
	s.running = false
	s.wg.Wait()
	s.tickers = make(map[string]*time.Ticker)
	logger.Debugf("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
