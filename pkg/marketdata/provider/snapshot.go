package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/lrs-signal/internal/logger"
	"github.com/rxtech-lab/lrs-signal/internal/metrics"
	"github.com/rxtech-lab/lrs-signal/internal/types"
	"go.uber.org/zap"
)

// SnapshotStore persists fetched series, one snapshot per ticker, lookback and day.
type SnapshotStore interface {
	Load(ticker string, lookbackYears int, day time.Time) (types.PriceSeries, error)
	Save(ticker string, lookbackYears int, day time.Time, series types.PriceSeries) (string, error)
	Remove(ticker string, lookbackYears int, day time.Time) error
}

// SnapshotProvider serves today's on-disk snapshot when one exists and otherwise
// fetches from the underlying provider and writes a new snapshot.
// Snapshot failures never fail a fetch.
type SnapshotProvider struct {
	underlying Provider
	store      SnapshotStore
	clock      func() time.Time
	logger     *logger.Logger
}

// NewSnapshotProvider creates a new SnapshotProvider.
func NewSnapshotProvider(underlying Provider, store SnapshotStore, log *logger.Logger) *SnapshotProvider {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &SnapshotProvider{
		underlying: underlying,
		store:      store,
		clock:      time.Now,
		logger:     log,
	}
}

// Name implements Provider.
func (s *SnapshotProvider) Name() ProviderType {
	return s.underlying.Name()
}

// Fetch implements Provider.
func (s *SnapshotProvider) Fetch(ctx context.Context, ticker string, lookbackYears int) (types.PriceSeries, error) {
	day := types.TradingDate(s.clock())

	series, err := s.store.Load(ticker, lookbackYears, day)
	if err == nil && len(series) > 0 {
		metrics.CacheLookupsTotal.WithLabelValues("snapshot", metrics.ResultHit).Inc()

		return series, nil
	}

	metrics.CacheLookupsTotal.WithLabelValues("snapshot", metrics.ResultMiss).Inc()

	if err != nil {
		s.logger.Debug("No usable snapshot", zap.String("ticker", ticker), zap.Error(err))
	}

	series, err = s.underlying.Fetch(ctx, ticker, lookbackYears)
	if err != nil {
		return nil, err
	}

	path, err := s.store.Save(ticker, lookbackYears, day, series)
	if err != nil {
		s.logger.Warn("Failed to save snapshot", zap.String("ticker", ticker), zap.Error(err))
	} else {
		s.logger.Debug("Saved snapshot", zap.String("ticker", ticker), zap.String("path", path))
	}

	return series, nil
}

// Invalidate removes today's snapshot so the next Fetch goes upstream.
func (s *SnapshotProvider) Invalidate(ticker string, lookbackYears int) {
	if err := s.store.Remove(ticker, lookbackYears, types.TradingDate(s.clock())); err != nil {
		s.logger.Warn("Failed to remove snapshot", zap.String("ticker", ticker), zap.Error(err))
	}
}
