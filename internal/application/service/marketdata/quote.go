package marketdata

import (
	"context"
	"strings"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

// Quote assembles a snapshot for symbol from the upstream's two quote bags,
// filling whatever the bags leave blank from recent daily history. Served
// through the quote cache; a snapshot with every optional field absent is
// still a valid answer.
func (s *Service) Quote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return marketdata.Quote{}, ErrEmptySymbol
	}

	if quote, ok := s.quoteCache.Get(symbol); ok {
		s.metrics.CacheHits.WithLabelValues("quote").Inc()
		return quote, nil
	}
	s.metrics.CacheMisses.WithLabelValues("quote").Inc()

	fast, info, err := s.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		// Degrade instead of failing: the history fill below can still
		// produce a usable snapshot.
		s.logger.WithField("symbol", symbol).WithError(err).Warn("quote bags unavailable")
		fast, info = marketdata.FieldBag{}, marketdata.FieldBag{}
	}

	quote := marketdata.Quote{Ticker: symbol}
	quote.Price = pickFloat(fast, info, []string{"last_price", "regularMarketPrice"}, []string{"regularMarketPrice", "currentPrice"})
	if currency, ok := fast.String("currency"); ok {
		quote.Currency = &currency
	} else if currency, ok := info.String("currency"); ok {
		quote.Currency = &currency
	}
	quote.PreviousClose = pickFloat(fast, info,
		[]string{"previous_close", "chartPreviousClose", "regularMarketPreviousClose"},
		[]string{"regularMarketPreviousClose", "previousClose"})
	quote.Open = pickFloat(fast, info, []string{"open", "regularMarketOpen"}, []string{"regularMarketOpen", "open"})
	quote.DayHigh = pickFloat(fast, info, []string{"day_high", "regularMarketDayHigh"}, []string{"regularMarketDayHigh", "dayHigh"})
	quote.DayLow = pickFloat(fast, info, []string{"day_low", "regularMarketDayLow"}, []string{"regularMarketDayLow", "dayLow"})

	s.fillFromHistory(ctx, symbol, &quote)

	quote.MarketCap = info.FloatPtr("marketCap")
	quote.TrailingPE = info.FloatPtr("trailingPE")
	quote.ForwardPE = info.FloatPtr("forwardPE")
	quote.EPSTrailing12M = info.FloatPtr("trailingEps")
	quote.DividendYield = info.FloatPtr("dividendYield")
	quote.Beta = info.FloatPtr("beta")
	quote.FiftyTwoWkHigh = info.FloatPtr("fiftyTwoWeekHigh")
	quote.FiftyTwoWkLow = info.FloatPtr("fiftyTwoWeekLow")

	s.quoteCache.Set(symbol, quote)
	return quote, nil
}

// fillFromHistory backfills still-missing intraday fields from the last
// session's candles. Only absent fields are set; present values are never
// overridden. A history failure here is silent; the snapshot simply keeps
// its gaps.
func (s *Service) fillFromHistory(ctx context.Context, symbol string, quote *marketdata.Quote) {
	if quote.Price != nil && quote.PreviousClose != nil && quote.Open != nil &&
		quote.DayHigh != nil && quote.DayLow != nil {
		return
	}

	series, err := s.History(ctx, symbol, "5d", "1d")
	if err != nil || len(series) == 0 {
		return
	}
	last := series[len(series)-1]

	if quote.Price == nil {
		quote.Price = ptr(last.Close)
	}
	if quote.PreviousClose == nil && len(series) >= 2 {
		quote.PreviousClose = ptr(series[len(series)-2].Close)
	}
	if quote.Open == nil {
		quote.Open = ptr(last.Open)
	}
	if quote.DayHigh == nil {
		quote.DayHigh = ptr(last.High)
	}
	if quote.DayLow == nil {
		quote.DayLow = ptr(last.Low)
	}
}

// pickFloat is the graceful-absence lookup over the two bag shapes: fast
// snapshot keys first, then info keys, then absent.
func pickFloat(fast, info marketdata.FieldBag, fastKeys, infoKeys []string) *float64 {
	if v, ok := fast.Float(fastKeys...); ok {
		return &v
	}
	if v, ok := info.Float(infoKeys...); ok {
		return &v
	}
	return nil
}

func ptr(v float64) *float64 { return &v }
