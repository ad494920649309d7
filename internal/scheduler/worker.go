package scheduler

import (
	"context"
	"fmt"
	"time"

	"energiebroker_backend/internal/marketprice/transport"
	"energiebroker_backend/platform/config"
	"energiebroker_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Refresher fetches and stores the market price for a delivery date.
type Refresher interface {
	Refresh(ctx context.Context, date time.Time) (transport.Snapshot, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	refresher Refresher
	location  *time.Location
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, refresher Refresher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(refresher, log)
	w.server = server
	return w, nil
}

func newWorker(refresher Refresher, log *logger.Logger) *Worker {
	w := &Worker{
		mux:       asynq.NewServeMux(),
		refresher: refresher,
		location:  amsterdam(),
		log:       log,
	}
	w.mux.HandleFunc(TaskMarketPriceRefresh, w.handleMarketPriceRefresh)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleMarketPriceRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMarketPriceRefreshPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	day, err := payload.Day(w.location)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	snap, err := w.refresher.Refresh(ctx, day)
	if err != nil {
		w.log.Warn("market price refresh failed", "date", payload.Date, "error", err)
		return err
	}

	w.log.Info("market price refreshed",
		"date", snap.Date.Format(DateLayout),
		"electricity_day", snap.ElectricityDay,
		"electricity_night", snap.ElectricityNight,
		"gas", snap.Gas,
	)
	return nil
}

func amsterdam() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		return time.UTC
	}
	return loc
}
