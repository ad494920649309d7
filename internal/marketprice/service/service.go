// Package service resolves the market reference price through the cache, the stored snapshots
// and the live feed.
package service

import (
	"context"
	"log/slog"
	"time"

	"energiebroker_backend/internal/energy"
	"energiebroker_backend/internal/events"
	"energiebroker_backend/internal/marketprice/repository"
	"energiebroker_backend/internal/marketprice/transport"
	"energiebroker_backend/platform/apperr"
	"energiebroker_backend/platform/logger"
)

// Lookup sources reported to the Recorder.
const (
	SourceCache       = "cache"
	SourceDatabase    = "database"
	SourceFeed        = "feed"
	SourceStale       = "stale"
	SourceUnavailable = "unavailable"
)

const (
	defaultFreshness   = 24 * time.Hour
	defaultHistoryDays = 30
)

// Fetcher pulls a day-ahead snapshot from the upstream feed.
type Fetcher interface {
	FetchDay(ctx context.Context, date time.Time) (transport.Snapshot, error)
}

// SnapshotCache holds the current snapshot.
type SnapshotCache interface {
	Get(ctx context.Context) (*transport.Snapshot, error)
	Set(ctx context.Context, snap transport.Snapshot) error
}

// Recorder counts which source answered a lookup.
type Recorder interface {
	MarketPriceServed(source string)
}

// Service provides the market reference price.
type Service struct {
	repo      repository.Repository
	fetcher   Fetcher
	cache     SnapshotCache
	bus       events.Bus
	recorder  Recorder
	log       *logger.Logger
	freshness time.Duration
	location  *time.Location
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher enables the live feed. Without it only stored snapshots are served.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithCache enables the snapshot cache.
func WithCache(c SnapshotCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRecorder reports lookup sources.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithFreshness sets how long a stored snapshot counts as current.
func WithFreshness(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.freshness = d
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a new market price service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		loc = time.UTC
	}
	s := &Service{
		repo:      repo,
		bus:       bus,
		log:       log,
		freshness: defaultFreshness,
		location:  loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the reference price for today. It prefers the cache, then a fresh stored
// snapshot, then the live feed, and finally the most recent stored snapshot marked stale.
func (s *Service) Current(ctx context.Context) (transport.Snapshot, error) {
	log := s.log.WithContext(ctx)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			log.Warn("market price cache lookup failed", slog.String("error", err.Error()))
		} else if cached != nil {
			s.served(SourceCache)
			return *cached, nil
		}
	}

	latest, latestErr := s.repo.Latest(ctx)
	if latestErr != nil && !apperr.Is(latestErr, apperr.KindNotFound) {
		log.DatabaseError("latest market price", latestErr)
	}
	if latestErr == nil && s.isFresh(latest) {
		s.cacheSnapshot(ctx, latest)
		s.served(SourceDatabase)
		return latest, nil
	}

	if s.fetcher != nil {
		snap, err := s.fetch(ctx, s.today())
		if err == nil {
			s.served(SourceFeed)
			return snap, nil
		}
		log.Warn("market price feed failed", slog.String("error", err.Error()))
	}

	if latestErr == nil {
		stale := latest.AsStale()
		log.MarketPriceStale(stale.Source, s.now().Sub(latest.FetchedAt))
		s.served(SourceStale)
		return stale, nil
	}

	s.served(SourceUnavailable)
	return transport.Snapshot{}, apperr.Unavailable("market price unavailable")
}

// MarketPrice returns the engine reference price, or nil when none can be served. The engine
// substitutes its defaults for nil.
func (s *Service) MarketPrice(ctx context.Context) *energy.MarketPrice {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil
	}
	mp := snap.MarketPrice()
	return &mp
}

// Refresh fetches and stores the snapshot for date, today when date is zero.
func (s *Service) Refresh(ctx context.Context, date time.Time) (transport.Snapshot, error) {
	if s.fetcher == nil {
		return transport.Snapshot{}, apperr.Unavailable("market price feed disabled")
	}
	if date.IsZero() {
		date = s.today()
	}
	snap, err := s.fetch(ctx, date)
	if err != nil {
		return transport.Snapshot{}, apperr.Wrap(apperr.KindUnavailable, "market price feed failed", err)
	}
	return snap, nil
}

// History lists the stored snapshots of the requested window.
func (s *Service) History(ctx context.Context, req transport.HistoryRequest) (transport.HistoryResponse, error) {
	days := req.Days
	if days <= 0 {
		days = defaultHistoryDays
	}
	items, err := s.repo.History(ctx, days)
	if err != nil {
		return transport.HistoryResponse{}, err
	}
	return transport.HistoryResponse{Items: items, Total: len(items)}, nil
}

func (s *Service) fetch(ctx context.Context, date time.Time) (transport.Snapshot, error) {
	snap, err := s.fetcher.FetchDay(ctx, date)
	if err != nil {
		return transport.Snapshot{}, err
	}
	if err := s.repo.Upsert(ctx, snap); err != nil {
		return transport.Snapshot{}, err
	}
	if sameDay(snap.Date, s.today()) {
		s.cacheSnapshot(ctx, snap)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.MarketPricesRefreshed{
			BaseEvent:        events.NewBaseEvent(),
			Date:             snap.Date,
			ElectricityDay:   snap.ElectricityDay,
			ElectricityNight: snap.ElectricityNight,
			Gas:              snap.Gas,
			Source:           snap.Source,
		})
	}
	return snap, nil
}

func (s *Service) cacheSnapshot(ctx context.Context, snap transport.Snapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, snap); err != nil {
		s.log.WithContext(ctx).Warn("market price cache write failed", slog.String("error", err.Error()))
	}
}

// isFresh reports whether a stored snapshot covers today and was fetched within the window.
func (s *Service) isFresh(snap transport.Snapshot) bool {
	return sameDay(snap.Date, s.today()) && s.now().Sub(snap.FetchedAt) < s.freshness
}

func (s *Service) today() time.Time {
	return s.now().In(s.location)
}

func (s *Service) served(source string) {
	if s.recorder != nil {
		s.recorder.MarketPriceServed(source)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
