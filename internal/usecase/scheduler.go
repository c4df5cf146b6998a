package usecase

import (
	"context"
	"time"

	"NewsRecommender/internal/ports"
)

// ScheduledIngestion wires the interval driver with the ingestion pipeline.
type ScheduledIngestion struct {
	driver   ports.Scheduler
	ingestor *Ingestor
}

// NewScheduledIngestion returns a helper to start/stop the recurring job.
func NewScheduledIngestion(driver ports.Scheduler, ingestor *Ingestor) *ScheduledIngestion {
	return &ScheduledIngestion{driver: driver, ingestor: ingestor}
}

// Start registers the ingestion run with the provided scheduler.
func (s *ScheduledIngestion) Start(ctx context.Context) error {
	if s.driver == nil || s.ingestor == nil {
		return nil
	}

	job := func(trigger time.Time) {
		_ = s.ingestor.Run(ctx, trigger)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *ScheduledIngestion) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
