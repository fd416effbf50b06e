package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

// chartResponse is the chart API envelope. OHLCV columns are nullable:
// holiday and pre-listing rows come back as JSON nulls.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       marketdata.FieldBag `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchBulk retrieves history through the primary download-style host.
func (c *Client) FetchBulk(ctx context.Context, symbol, period, interval string) (marketdata.Series, error) {
	return c.fetchChart(ctx, "bulk", c.bulkURL, symbol, period, interval)
}

// FetchPerSymbol retrieves history through the secondary per-ticker host.
func (c *Client) FetchPerSymbol(ctx context.Context, symbol, period, interval string) (marketdata.Series, error) {
	return c.fetchChart(ctx, "per_symbol", c.symbolURL, symbol, period, interval)
}

func (c *Client) fetchChart(ctx context.Context, op, host, symbol, period, interval string) (marketdata.Series, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&includeAdjustedClose=false",
		host, url.PathEscape(symbol), url.QueryEscape(period), url.QueryEscape(interval))

	var chart chartResponse
	if err := c.getJSON(ctx, op, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, &marketdata.UpstreamFault{
			Op:  op,
			Err: fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description),
		}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}
	return decodeCandles(chart.Chart.Result[0]), nil
}

// decodeCandles converts one chart result into a Series, skipping all-null
// rows and normalizing order, duplicates and volume.
func decodeCandles(result chartResult) marketdata.Series {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]
	series := make(marketdata.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := deref(quote.Open, i)
		h := deref(quote.High, i)
		l := deref(quote.Low, i)
		cl := deref(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue
		}
		series = append(series, marketdata.Candle{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: deref(quote.Volume, i),
		})
	}
	return series.Normalize()
}

func deref(col []*float64, i int) float64 {
	if i >= len(col) || col[i] == nil {
		return 0
	}
	return *col[i]
}
