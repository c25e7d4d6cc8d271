package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/ppiankov/macrolens/internal/gateway"
	"github.com/ppiankov/macrolens/internal/logger"
)

// Scheduler runs daily World Bank and IMF collections
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector *Collector
}

// NewScheduler registers the daily jobs at the configured HH:MM times in loc.
// An empty time disables that source.
func NewScheduler(ctx context.Context, c *Collector, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		collector: c,
	}

	jobs := []struct {
		at     string
		source string
	}{
		{at: c.cfg.WorldBankAt, source: gateway.SourceWorldBank},
		{at: c.cfg.IMFAt, source: gateway.SourceIMF},
	}

	for _, j := range jobs {
		if j.at == "" {
			continue
		}
		source := j.source
		_, err := s.scheduler.Every(1).Day().At(j.at).Do(func() {
			logger.Log.WithField("source", source).Info("scheduled collection")
			if _, err := c.Run(ctx, []string{source}); err != nil {
				logger.Log.WithField("source", source).Errorf("scheduled collection failed: %v", err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %s at %s: %w", source, j.at, err)
		}
	}

	return s, nil
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

// Start runs the scheduler until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	logger.Log.WithField("jobs", s.Jobs()).Info("collection scheduler started")
	s.scheduler.StartAsync()

	<-ctx.Done()

	s.scheduler.Stop()
	logger.Log.Info("collection scheduler stopped")
}
