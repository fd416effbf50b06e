package indicator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

// seriesOf builds a daily candle series from closes starting 2024-01-01.
func seriesOf(closes ...float64) marketdata.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(marketdata.Series, len(closes))
	for i, c := range closes {
		s[i] = marketdata.Candle{Date: start.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return s
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSMAConstantSeries(t *testing.T) {
	t.Parallel()

	series := seriesOf(constant(25, 42.5)...)
	out := Compute(series, []string{"sma"})

	sma20, ok := out["sma20"].(Line)
	require.True(t, ok)
	assert.Len(t, sma20, 6, "25 points with window 20 define exactly 6 points")
	for ts, v := range sma20 {
		assert.InDelta(t, 42.5, v, 1e-12, "sma at %s", ts)
	}

	// 25 points cannot fill a 50-wide window even once.
	sma50, ok := out["sma50"].(Line)
	require.True(t, ok)
	assert.Empty(t, sma50)
}

func TestSMADefinedFromWindowBoundary(t *testing.T) {
	t.Parallel()

	closes := []float64{1, 2, 3, 4, 5}
	values := sma(closes, 3)

	assert.True(t, isUndefined(values[0]))
	assert.True(t, isUndefined(values[1]))
	assert.InDelta(t, 2.0, values[2], 1e-12)
	assert.InDelta(t, 3.0, values[3], 1e-12)
	assert.InDelta(t, 4.0, values[4], 1e-12)
}

func TestEMASeededByFirstObservation(t *testing.T) {
	t.Parallel()

	closes := []float64{10, 20, 30}
	values := ema(closes, 3) // alpha = 0.5

	require.Len(t, values, 3)
	assert.InDelta(t, 10.0, values[0], 1e-12)
	assert.InDelta(t, 15.0, values[1], 1e-12)
	assert.InDelta(t, 22.5, values[2], 1e-12)
}

func TestEMADefinedEverywhere(t *testing.T) {
	t.Parallel()

	series := seriesOf(constant(30, 7)...)
	out := Compute(series, []string{"ema"})

	for _, name := range []string{"ema12", "ema26"} {
		line, ok := out[name].(Line)
		require.True(t, ok, name)
		assert.Len(t, line, 30, "%s defined from the first observation", name)
	}
}

func TestRSIMonotonicIncreaseOmitsZeroLossPoints(t *testing.T) {
	t.Parallel()

	// Strictly increasing closes: every window's mean loss is exactly
	// zero, so under the omit policy no point is ever defined.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := seriesOf(closes...)

	out := Compute(series, []string{"rsi"})
	rsi14, ok := out["rsi14"].(Line)
	require.True(t, ok)
	assert.Empty(t, rsi14)
}

func TestRSIAlternatingSeries(t *testing.T) {
	t.Parallel()

	// Equal up and down moves: mean gain equals mean loss, RS = 1,
	// RSI = 50 at every defined point.
	closes := make([]float64, 40)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 100
		} else {
			closes[i] = 101
		}
	}

	values := rsi(closes, 14)
	defined := 0
	for i, v := range values {
		if isUndefined(v) {
			assert.Less(t, i, 14, "only the first window points may be undefined")
			continue
		}
		defined++
		assert.InDelta(t, 50.0, v, 1e-9, "index %d", i)
	}
	assert.Equal(t, len(closes)-14, defined)
}

func TestMACDHistogramIdentity(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 5*float64(i%7) - 3*float64(i%3)
	}

	line, sig, hist := macd(closes, macdFast, macdSlow, macdSignal)
	for i := range closes {
		require.False(t, isUndefined(line[i]))
		require.False(t, isUndefined(sig[i]))
		assert.Equal(t, line[i]-sig[i], hist[i], "index %d", i)
	}
}

func TestBollingerBandWidth(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 50 + float64(i%5)
	}

	ma, upper, lower := bollinger(closes, bollWindow, bollStd)
	std := rollingStd(closes, bollWindow)

	defined := 0
	for i := range closes {
		if isUndefined(ma[i]) {
			assert.True(t, isUndefined(upper[i]))
			assert.True(t, isUndefined(lower[i]))
			continue
		}
		defined++
		assert.InDelta(t, 2*bollStd*std[i], upper[i]-lower[i], 1e-9, "index %d", i)
	}
	assert.Equal(t, len(closes)-(bollWindow-1), defined)
}

func TestRollingStdSampleVariance(t *testing.T) {
	t.Parallel()

	// Sample std of {2,4,4,4,5,5,7,9} is sqrt(32/7).
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	std := rollingStd(values, 8)

	require.Len(t, std, 8)
	assert.InDelta(t, 2.13808993529939, std[7], 1e-9)
}

func TestComputeEmptyWantsReturnsEmptyResult(t *testing.T) {
	t.Parallel()

	out := Compute(seriesOf(1, 2, 3), []string{})
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestComputeIgnoresUnknownTokens(t *testing.T) {
	t.Parallel()

	out := Compute(seriesOf(constant(25, 10)...), []string{"sma", "vwap", "bogus"})
	assert.Len(t, out, 2)
	assert.Contains(t, out, "sma20")
	assert.Contains(t, out, "sma50")
}

func TestLineKeysSortChronologically(t *testing.T) {
	t.Parallel()

	series := seriesOf(constant(25, 1)...)
	out := Compute(series, []string{"sma"})
	sma20 := out["sma20"].(Line)

	// RFC3339 keys must zip back onto the candle series.
	for i := 19; i < 25; i++ {
		key := series[i].Date.Format(time.RFC3339)
		_, ok := sma20[key]
		assert.True(t, ok, fmt.Sprintf("missing key %s", key))
	}
}

func isUndefined(v float64) bool { return v != v }
