package query

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when a question arrives before any dataset has
// been uploaded. The completion service is never invoked in that case.
var ErrNoData = errors.New("no transaction data uploaded yet")

// UpstreamKind classifies completion-service failures so callers can tell
// "retry later" from "fix your configuration".
type UpstreamKind string

const (
	UpstreamAuth      UpstreamKind = "auth"
	UpstreamRateLimit UpstreamKind = "rate_limit"
	UpstreamNetwork   UpstreamKind = "network"
	UpstreamMalformed UpstreamKind = "malformed"
	UpstreamEmpty     UpstreamKind = "empty_response"
)

// UpstreamError wraps a completion-service failure with a human-readable
// cause. Only UpstreamNetwork failures are candidates for bounded retry.
type UpstreamError struct {
	Kind  UpstreamKind
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion service failed (%s): %v", e.Kind, e.Cause)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// AsUpstream unwraps err into an *UpstreamError if it is one.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
