package scheduler

import (
	"context"
	"time"

	"energiebroker_backend/platform/logger"

	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec runs shortly after the day-ahead auction results are published.
const DefaultRefreshSpec = "15 13 * * *"

// RefreshSchedule enqueues market price refreshes on a cron schedule in Amsterdam time. Each
// run queues today's date and the next delivery day.
type RefreshSchedule struct {
	cron     *cron.Cron
	spec     string
	enqueuer RefreshEnqueuer
	location *time.Location
	log      *logger.Logger
	now      func() time.Time
}

func NewRefreshSchedule(spec string, enqueuer RefreshEnqueuer, log *logger.Logger) *RefreshSchedule {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	loc := amsterdam()
	return &RefreshSchedule{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     spec,
		enqueuer: enqueuer,
		location: loc,
		log:      log,
		now:      time.Now,
	}
}

// Start registers the job and starts the cron runner. It returns an error for an invalid spec.
func (s *RefreshSchedule) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.enqueue(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("market price refresh scheduled", "spec", s.spec)
	return nil
}

// Stop stops the runner; the returned context is done once running jobs have finished.
func (s *RefreshSchedule) Stop() context.Context {
	return s.cron.Stop()
}

func (s *RefreshSchedule) enqueue(ctx context.Context) {
	today := s.now().In(s.location)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location)

	for _, day := range []time.Time{today, today.AddDate(0, 0, 1)} {
		if err := s.enqueuer.EnqueueMarketPriceRefresh(ctx, day); err != nil {
			s.log.Warn("market price refresh enqueue failed", "date", day.Format(DateLayout), "error", err)
		}
	}
}
