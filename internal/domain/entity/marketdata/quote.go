package marketdata

import "strconv"

// Quote is a point-in-time snapshot of a ticker. Every field except Ticker
// is optional: the upstream bags are loosely structured and any of them may
// be absent for a given symbol.
type Quote struct {
	Ticker         string   `json:"ticker"`
	Price          *float64 `json:"price"`
	Currency       *string  `json:"currency"`
	PreviousClose  *float64 `json:"previousClose"`
	Open           *float64 `json:"open"`
	DayHigh        *float64 `json:"dayHigh"`
	DayLow         *float64 `json:"dayLow"`
	MarketCap      *float64 `json:"marketCap"`
	TrailingPE     *float64 `json:"trailingPE"`
	ForwardPE      *float64 `json:"forwardPE"`
	EPSTrailing12M *float64 `json:"epsTrailing12M"`
	DividendYield  *float64 `json:"dividendYield"`
	Beta           *float64 `json:"beta"`
	FiftyTwoWkHigh *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWkLow  *float64 `json:"fiftyTwoWeekLow"`
}

// FieldBag is a loosely-structured key/value response shape (the upstream's
// fast snapshot and detailed info bags both decode into one). Lookups never
// fail; absence is reported through the ok result.
type FieldBag map[string]any

// Float looks keys up in order and returns the first value coercible to a
// float64. Non-numeric and absent values are skipped.
func (b FieldBag) Float(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := b[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// String looks keys up in order and returns the first non-empty string value.
func (b FieldBag) String(keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := b[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// FloatPtr is Float with a pointer result for optional JSON fields.
func (b FieldBag) FloatPtr(keys ...string) *float64 {
	if f, ok := b.Float(keys...); ok {
		return &f
	}
	return nil
}
