package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"NewsRecommender/internal/ports"
)

// IntervalScheduler runs a job on a fixed interval. Runs never overlap:
// a tick that fires while a run is still active is skipped.
type IntervalScheduler struct {
	interval   time.Duration
	runAtStart bool
	stop       chan struct{}
	busy       atomic.Bool
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; the job also fires once
// immediately on Start when runAtStart is set.
func NewIntervalScheduler(interval time.Duration, runAtStart bool) *IntervalScheduler {
	return &IntervalScheduler{interval: interval, runAtStart: runAtStart}
}

// Start begins ticking in a background goroutine.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		if s.runAtStart {
			s.run(job, time.Now())
		}
		for {
			select {
			case t := <-ticker.C:
				s.run(job, t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

func (s *IntervalScheduler) run(job func(time.Time), t time.Time) {
	if !s.busy.CompareAndSwap(false, true) {
		return
	}
	defer s.busy.Store(false)
	job(t)
}

// Stop halts the ticker goroutine.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
