package marketdata

import (
	"math"
	"sort"
	"time"
)

// Candle represents one OHLCV observation at provider-defined granularity.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered OHLCV sequence, strictly increasing by Date with no
// duplicate timestamps. An empty Series is never a valid fetch result.
type Series []Candle

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// Dates returns the timestamp column.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, c := range s {
		out[i] = c.Date
	}
	return out
}

// Copy returns an independent copy of the series. Cached series are handed
// out as copies because callers may mutate what they receive.
func (s Series) Copy() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Normalize sorts by timestamp, drops duplicate timestamps (first wins) and
// replaces non-finite volume with zero. Returns the normalized series.
func (s Series) Normalize() Series {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
	out := s[:0]
	var last time.Time
	for _, c := range s {
		if len(out) > 0 && !c.Date.After(last) {
			continue
		}
		c.Volume = SanitizeVolume(c.Volume)
		out = append(out, c)
		last = c.Date
	}
	return out
}

// SanitizeVolume maps NaN and infinities to 0 so downstream consumers never
// see a non-finite volume.
func SanitizeVolume(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
