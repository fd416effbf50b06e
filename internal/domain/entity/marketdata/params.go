package marketdata

// Valid request ranges and bar sizes accepted by the upstream chart API.
const (
	DefaultPeriod   = "1y"
	DefaultInterval = "1d"
)

var validPeriods = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "10y": {}, "ytd": {}, "max": {},
}

var validIntervals = map[string]struct{}{
	"1m": {}, "2m": {}, "5m": {}, "15m": {}, "30m": {},
	"60m": {}, "90m": {}, "1h": {}, "1d": {}, "5d": {},
	"1wk": {}, "1mo": {}, "3mo": {},
}

// ValidPeriod reports whether p is an accepted history range.
func ValidPeriod(p string) bool {
	_, ok := validPeriods[p]
	return ok
}

// ValidInterval reports whether i is an accepted bar size.
func ValidInterval(i string) bool {
	_, ok := validIntervals[i]
	return ok
}
