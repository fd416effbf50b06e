package marketdata

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

const (
	// maxAttempts bounds retries per path. With backoffStep linear backoff
	// the worst case is deterministic: 2 paths x 3 attempts plus sleeps.
	maxAttempts = 3
	// backoffStep scales the wait after a failed attempt: attempt n sleeps
	// n * 1.5s. The growth is linear; upstream rate limits reset on short
	// fixed windows, so exponential cooldown just wastes wall clock.
	backoffStep = 1500 * time.Millisecond
)

var errNoData = errors.New("no historical data found")

// fetchPath is one of the two black-box retrieval mechanisms.
type fetchPath struct {
	name string
	call func(ctx context.Context, symbol, period, interval string) (marketdata.Series, error)
}

// classifyState folds attempt outcomes into the final error. The
// precedence rule is "any fault was rate-limited", not "the last fault
// was": a single 429 anywhere across both paths wins.
type classifyState struct {
	sawRateLimited bool
	lastFault      error
}

func (st *classifyState) record(err error) marketdata.ErrorKind {
	kind := classifyFault(err)
	if kind == marketdata.KindRateLimited {
		st.sawRateLimited = true
	}
	st.lastFault = err
	return kind
}

func (st *classifyState) finalError() error {
	switch {
	case st.sawRateLimited:
		return marketdata.NewFetchError(marketdata.KindRateLimited, st.lastFault)
	case st.lastFault != nil:
		return marketdata.NewFetchError(marketdata.KindUpstreamFailure, st.lastFault)
	default:
		return marketdata.NewFetchError(marketdata.KindNotFound, errNoData)
	}
}

// fetchHistory tries the bulk path, then the per-symbol path, each up to
// maxAttempts times with linear backoff between attempts. The first
// non-empty series short-circuits everything that remains.
func (s *Service) fetchHistory(ctx context.Context, symbol, period, interval string) (marketdata.Series, error) {
	paths := []fetchPath{
		{name: "bulk", call: s.history.FetchBulk},
		{name: "per_symbol", call: s.history.FetchPerSymbol},
	}

	log := s.logger.WithFields(map[string]any{
		"symbol":   symbol,
		"period":   period,
		"interval": interval,
	})

	var state classifyState
	for pathIdx, path := range paths {
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			series, err := path.call(ctx, symbol, period, interval)

			attemptLog := log.WithFields(map[string]any{
				"path":    path.name,
				"attempt": attempt,
			})
			switch {
			case err != nil:
				kind := state.record(err)
				s.metrics.FetchAttempts.WithLabelValues(path.name, "fault").Inc()
				attemptLog.WithError(err).WithField("classified", kind.String()).Warn("upstream attempt failed")
			case len(series) == 0:
				s.metrics.FetchAttempts.WithLabelValues(path.name, "empty").Inc()
				attemptLog.Info("upstream attempt returned no data")
			default:
				s.metrics.FetchAttempts.WithLabelValues(path.name, "ok").Inc()
				attemptLog.WithField("candles", len(series)).Info("upstream attempt succeeded")
				return series, nil
			}

			// No point backing off when nothing is left to try.
			if pathIdx < len(paths)-1 || attempt < maxAttempts {
				s.sleep(time.Duration(attempt) * backoffStep)
			}
		}
	}

	err := state.finalError()
	log.WithError(err).Warn("all fetch paths exhausted")
	return nil, err
}

// classifyFault decides whether a single upstream fault means we are being
// throttled. Rate limiting shows up as an explicit 429 status, a 429
// marker in the message, or a body that would not decode, since the
// upstream serves non-JSON error pages while throttling.
func classifyFault(err error) marketdata.ErrorKind {
	var fault *marketdata.UpstreamFault
	if errors.As(err, &fault) {
		if fault.Status == http.StatusTooManyRequests || fault.Decode {
			return marketdata.KindRateLimited
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") {
		return marketdata.KindRateLimited
	}
	return marketdata.KindUpstreamFailure
}
