package marketdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	marketdata "stocklens/internal/domain/entity/marketdata"
	interfaces "stocklens/internal/domain/interfaces"
	"stocklens/internal/indicator"
	"stocklens/internal/infrastructure/cache"
	"stocklens/internal/metrics"
)

var (
	ErrEmptySymbol     = errors.New("symbol is empty")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidInterval = errors.New("invalid interval")
)

// Service turns the flaky upstream into a dependable data source: history
// and quote reads go through in-memory TTL caches, misses run the bounded
// retry/fallback fetch, and indicator requests are derived from whatever
// series came back.
type Service struct {
	history interfaces.HistoryProvider
	quotes  interfaces.QuoteProvider

	historyCache *cache.Cache[marketdata.Series]
	quoteCache   *cache.Cache[marketdata.Quote]

	logger  *logrus.Entry
	metrics *metrics.Metrics

	// sleep is swapped out by tests so backoff schedules run instantly.
	sleep func(time.Duration)
}

// NewService wires the orchestrator. Both caches must be constructed by the
// caller; they are plain values with a process lifetime, not globals.
func NewService(
	history interfaces.HistoryProvider,
	quotes interfaces.QuoteProvider,
	historyCache *cache.Cache[marketdata.Series],
	quoteCache *cache.Cache[marketdata.Quote],
	logger *logrus.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		history:      history,
		quotes:       quotes,
		historyCache: historyCache,
		quoteCache:   quoteCache,
		logger:       logger.WithField("component", "marketdata_service"),
		metrics:      m,
		sleep:        time.Sleep,
	}
}

// History returns the OHLCV series for (symbol, period, interval), serving
// from cache when possible. Failures carry one of the three classified
// kinds (rate_limited, upstream_failure, not_found).
func (s *Service) History(ctx context.Context, symbol, period, interval string) (marketdata.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	if !marketdata.ValidPeriod(period) {
		return nil, ErrInvalidPeriod
	}
	if !marketdata.ValidInterval(interval) {
		return nil, ErrInvalidInterval
	}

	key := cache.Key(symbol, period, interval)
	if series, ok := s.historyCache.Get(key); ok {
		s.metrics.CacheHits.WithLabelValues("history").Inc()
		return series.Copy(), nil
	}
	s.metrics.CacheMisses.WithLabelValues("history").Inc()

	start := time.Now()
	series, err := s.fetchHistory(ctx, symbol, period, interval)
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if kind, ok := marketdata.KindOf(err); ok {
			s.metrics.FetchFailures.WithLabelValues(kind.String()).Inc()
		}
		return nil, err
	}

	// Store a copy: the caller owns the returned slice and may mutate it.
	s.historyCache.Set(key, series.Copy())
	return series, nil
}

// HistoryWithIndicators fetches history and derives the requested
// indicators from its close column. A nil wants slice means the caller did
// not ask for indicators at all; an empty non-nil slice yields an empty
// (never nil) indicator map. Unknown indicator names are ignored.
func (s *Service) HistoryWithIndicators(ctx context.Context, symbol, period, interval string, wants []string) (marketdata.Series, map[string]any, error) {
	series, err := s.History(ctx, symbol, period, interval)
	if err != nil {
		return nil, nil, err
	}
	if wants == nil {
		return series, nil, nil
	}
	return series, indicator.Compute(series, wants), nil
}
