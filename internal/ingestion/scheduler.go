package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

const refreshJobTimeout = 2 * time.Minute

// Refresher is the part of the aggregator the scheduler drives.
type Refresher interface {
	GetDisasterData(ctx context.Context, forceRefresh bool) []models.DisasterRecord
}

// Scheduler warms the disaster cache on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	spec      string
}

func NewScheduler(refresher Refresher, spec string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		refresher: refresher,
		spec:      spec,
	}
}

// Start registers the refresh job and starts the cron runner. An empty
// schedule leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		slog.Info("disaster refresh schedule not set, background refresh disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	slog.Info("disaster refresh scheduler started", "schedule", s.spec)
	return nil
}

// Stop waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("disaster refresh scheduler stopped")
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
	defer cancel()

	records := s.refresher.GetDisasterData(ctx, true)
	slog.Info("scheduled disaster refresh complete", "count", len(records))
}
