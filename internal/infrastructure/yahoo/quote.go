package yahoo

import (
	"context"
	"fmt"
	"net/url"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

// quoteSummaryResponse is the quoteSummary envelope. Module contents are
// kept as loose bags: field sets vary wildly between asset classes.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]marketdata.FieldBag `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// FetchQuote returns the fast snapshot bag (chart meta) and the detailed
// info bag (quoteSummary modules, flattened). Each bag is fetched
// independently; one failing does not empty the other, and only both
// failing is reported as an error.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (marketdata.FieldBag, marketdata.FieldBag, error) {
	fast, fastErr := c.fetchFastBag(ctx, symbol)
	info, infoErr := c.fetchInfoBag(ctx, symbol)

	if fastErr != nil && infoErr != nil {
		return nil, nil, fastErr
	}
	if fast == nil {
		fast = marketdata.FieldBag{}
	}
	if info == nil {
		info = marketdata.FieldBag{}
	}
	return fast, info, nil
}

func (c *Client) fetchFastBag(ctx context.Context, symbol string) (marketdata.FieldBag, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d",
		c.bulkURL, url.PathEscape(symbol))

	var chart chartResponse
	if err := c.getJSON(ctx, "quote_fast", u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil || len(chart.Chart.Result) == 0 {
		return nil, nil
	}
	return chart.Chart.Result[0].Meta, nil
}

func (c *Client) fetchInfoBag(ctx context.Context, symbol string) (marketdata.FieldBag, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price%%2CsummaryDetail%%2CdefaultKeyStatistics",
		c.symbolURL, url.PathEscape(symbol))

	var summary quoteSummaryResponse
	if err := c.getJSON(ctx, "quote_info", u, &summary); err != nil {
		return nil, err
	}
	if summary.QuoteSummary.Error != nil || len(summary.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	// Flatten module bags into one. The API wraps numbers as
	// {"raw": n, "fmt": "..."}; unwrap raw so FieldBag.Float sees a number.
	info := marketdata.FieldBag{}
	for _, module := range summary.QuoteSummary.Result[0] {
		for key, value := range module {
			if wrapped, ok := value.(map[string]any); ok {
				if raw, ok := wrapped["raw"]; ok {
					info[key] = raw
					continue
				}
			}
			info[key] = value
		}
	}
	return info, nil
}
