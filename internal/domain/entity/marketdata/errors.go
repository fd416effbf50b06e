package marketdata

import (
	"errors"
	"fmt"
)

// ErrorKind is the fetch-layer failure classification the rest of the
// system distinguishes. There are exactly three kinds.
type ErrorKind int

const (
	// KindRateLimited means the upstream throttled us; callers should retry later.
	KindRateLimited ErrorKind = iota
	// KindUpstreamFailure is any other upstream error after all retries and fallbacks.
	KindUpstreamFailure
	// KindNotFound means every path returned empty without faulting: no data exists.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// FetchError carries the classified kind alongside the underlying cause.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err with a classification kind.
func NewFetchError(kind ErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// KindOf extracts the classification from err. ok is false when err does not
// wrap a FetchError.
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// UpstreamFault is a single failed upstream call. Status carries the HTTP
// status when a response was received; Decode marks bodies that could not be
// parsed (the upstream serves non-JSON error pages when throttling).
type UpstreamFault struct {
	Op     string
	Status int
	Decode bool
	Err    error
}

func (f *UpstreamFault) Error() string {
	switch {
	case f.Status != 0:
		return fmt.Sprintf("%s: status %d: %v", f.Op, f.Status, f.Err)
	case f.Decode:
		return fmt.Sprintf("%s: malformed response: %v", f.Op, f.Err)
	default:
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	}
}

func (f *UpstreamFault) Unwrap() error { return f.Err }
