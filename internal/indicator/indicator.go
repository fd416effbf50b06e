// Package indicator derives technical indicators from a close-price series.
//
// Every function is pure and never errors: insufficient history simply
// yields fewer defined points. Output series are sparse maps keyed by
// RFC3339 timestamp, carrying only well-defined points; a window that
// could not be fully populated is omitted, never emitted as NaN or zero.
package indicator

import (
	"math"
	"time"

	marketdata "stocklens/internal/domain/entity/marketdata"
)

// Line maps RFC3339 timestamps to indicator values. RFC3339 sorts
// lexicographically in chronological order, so callers can zip a Line onto
// an independently-fetched candle array without index arithmetic.
type Line map[string]float64

// Band groups the component Lines of a multi-line indicator.
type Band map[string]Line

// Default parameterizations served by Compute.
const (
	rsiWindow  = 14
	bollWindow = 20
	bollStd    = 2.0
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// Compute returns the requested indicators for the series. Unrecognized
// tokens in wants are ignored. The result is always non-nil; an empty want
// set yields an empty map.
func Compute(series marketdata.Series, wants []string) map[string]any {
	out := make(map[string]any)
	closes := series.Closes()
	dates := series.Dates()

	for _, want := range wants {
		switch want {
		case "sma":
			out["sma20"] = toLine(dates, sma(closes, 20))
			out["sma50"] = toLine(dates, sma(closes, 50))
		case "ema":
			out["ema12"] = toLine(dates, ema(closes, 12))
			out["ema26"] = toLine(dates, ema(closes, 26))
		case "rsi":
			out["rsi14"] = toLine(dates, rsi(closes, rsiWindow))
		case "macd":
			line, signal, hist := macd(closes, macdFast, macdSlow, macdSignal)
			out["macd"] = Band{
				"line":   toLine(dates, line),
				"signal": toLine(dates, signal),
				"hist":   toLine(dates, hist),
			}
		case "boll":
			ma, upper, lower := bollinger(closes, bollWindow, bollStd)
			out["bollinger"] = Band{
				"ma":    toLine(dates, ma),
				"upper": toLine(dates, upper),
				"lower": toLine(dates, lower),
			}
		}
	}
	return out
}

// sma is the arithmetic mean of the trailing window. The first window-1
// points are undefined: a point needs exactly window real observations.
func sma(values []float64, window int) []float64 {
	out := undefined(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// ema is the recursive exponentially weighted mean with alpha = 2/(span+1),
// seeded by the first observation. Defined from the first point onward.
func ema(values []float64, span int) []float64 {
	out := undefined(len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// rsi converts trailing rolling means of gains and losses into
// 100 - 100/(1+RS). The first window points are undefined (window deltas
// are needed), and a point whose mean loss is exactly zero is omitted
// rather than reported as 100: a ratio over a zero denominator asserts
// information the window does not contain.
func rsi(values []float64, window int) []float64 {
	out := undefined(len(values))
	if window <= 0 || len(values) <= window {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(values); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > window {
			gainSum -= gains[i-window]
			lossSum -= losses[i-window]
		}
		if i < window {
			continue
		}
		meanLoss := lossSum / float64(window)
		if meanLoss == 0 {
			continue
		}
		meanGain := gainSum / float64(window)
		rs := meanGain / meanLoss
		out[i] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}

// macd returns the MACD line, its signal line and the histogram. The
// signal is an EMA over the MACD line itself; with first-observation
// seeding all three are defined wherever the line is.
func macd(values []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := ema(values, fast)
	emaSlow := ema(values, slow)

	line = undefined(len(values))
	for i := range values {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = ema(line, signal)
	hist = undefined(len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// bollinger returns the middle band (SMA), upper and lower bands at
// numStd sample standard deviations. All three trim like sma.
func bollinger(values []float64, window int, numStd float64) (ma, upper, lower []float64) {
	ma = sma(values, window)
	std := rollingStd(values, window)
	upper = undefined(len(values))
	lower = undefined(len(values))
	for i := range values {
		if math.IsNaN(ma[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = ma[i] + numStd*std[i]
		lower[i] = ma[i] - numStd*std[i]
	}
	return ma, upper, lower
}

// rollingStd is the trailing-window sample (N-1 denominator) standard
// deviation, undefined until the window fills.
func rollingStd(values []float64, window int) []float64 {
	out := undefined(len(values))
	if window <= 1 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		win := values[i-window+1 : i+1]
		var sum float64
		for _, v := range win {
			sum += v
		}
		mean := sum / float64(window)
		var sq float64
		for _, v := range win {
			d := v - mean
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(window-1))
	}
	return out
}

// toLine drops undefined points and keys the rest by timestamp.
func toLine(dates []time.Time, values []float64) Line {
	line := make(Line, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		line[dates[i].Format(time.RFC3339)] = v
	}
	return line
}

// undefined allocates a NaN-filled scratch column. NaN marks "no value"
// internally and is stripped before anything leaves the package.
func undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
