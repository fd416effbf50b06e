package interfaces

import (
	"context"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

// HistoryProvider exposes the two independently-flaky upstream retrieval
// mechanisms for OHLCV history. Either call may return a non-empty series,
// an empty series, or an error (typically *marketdata.UpstreamFault).
type HistoryProvider interface {
	// FetchBulk is the primary, download-style retrieval path.
	FetchBulk(ctx context.Context, symbol, period, interval string) (marketdata.Series, error)
	// FetchPerSymbol is the secondary, per-ticker retrieval path.
	FetchPerSymbol(ctx context.Context, symbol, period, interval string) (marketdata.Series, error)
}

// QuoteProvider returns the upstream's loosely-structured quote bags: a
// fast snapshot and a detailed info bag. Either bag may be empty; absence
// of a field is not an error.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, symbol string) (fast, info marketdata.FieldBag, err error)
}
