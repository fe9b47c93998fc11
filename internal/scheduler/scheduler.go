package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/flight-data-pipeline/internal/flights"
)

// jobTimeout bounds a single scheduled invocation.
const jobTimeout = 10 * time.Minute

// Scheduler runs the fetch and transform jobs once a day at fixed UTC times.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	fetcher     flights.FetchJob
	transformer flights.TransformJob
	fetchAt     string
	transformAt string
	log         zerolog.Logger
}

// New creates a new Scheduler. fetchAt and transformAt are HH:MM in UTC.
func New(fetcher flights.FetchJob, transformer flights.TransformJob, fetchAt, transformAt string, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// Overlapping runs would race on the same partition key.
	s.SingletonModeAll()

	return &Scheduler{
		scheduler:   s,
		fetcher:     fetcher,
		transformer: transformer,
		fetchAt:     fetchAt,
		transformAt: transformAt,
		log:         log,
	}
}

// Start schedules both daily jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.fetchAt).Tag("fetch").Do(s.runFetch); err != nil {
		return fmt.Errorf("schedule fetch at %q: %w", s.fetchAt, err)
	}
	if _, err := s.scheduler.Every(1).Day().At(s.transformAt).Tag("transform").Do(s.runTransform); err != nil {
		return fmt.Errorf("schedule transform at %q: %w", s.transformAt, err)
	}

	s.scheduler.StartAsync()
	s.log.Info().Str("fetch_at", s.fetchAt).Str("transform_at", s.transformAt).Msg("scheduler started")
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runFetch() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Info().Msg("scheduler: running fetch job")
	s.report("fetch", s.fetcher.Run(ctx))
}

func (s *Scheduler) runTransform() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Info().Msg("scheduler: running transform job")
	s.report("transform", s.transformer.Run(ctx, ""))
}

func (s *Scheduler) report(job string, res flights.Result) {
	ev := s.log.Info()
	if !res.OK() {
		ev = s.log.Error()
	}
	ev.Str("job", job).
		Str("run_id", res.RunID).
		Str("status", string(res.Status)).
		Int("records", res.Records).
		Msg(res.Message)
}
