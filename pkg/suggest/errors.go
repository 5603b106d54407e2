package suggest

import "errors"

// ErrorKind is the closed set of failure kinds.
type ErrorKind string

const (
	ErrTimeout             ErrorKind = "timeout"
	ErrRateLimited         ErrorKind = "rate_limited"
	ErrUpstreamUnavailable ErrorKind = "upstream_unavailable"
	ErrMalformedResponse   ErrorKind = "malformed_response"
	ErrUnsupported         ErrorKind = "unsupported"
	ErrKindInvalidInput    ErrorKind = "invalid_input"
	// ErrCanceled marks a call abandoned because the caller went away. It
	// says nothing about the provider.
	ErrCanceled ErrorKind = "canceled"
)

// Retryable reports whether another attempt could plausibly succeed.
func (k ErrorKind) Retryable() bool {
	return k == ErrRateLimited || k == ErrUpstreamUnavailable
}

// CountsAsFailure reports whether the kind should count against a provider's
// health. Unsupported locales are a skip decision, not a failure.
func (k ErrorKind) CountsAsFailure() bool {
	switch k {
	case ErrTimeout, ErrRateLimited, ErrUpstreamUnavailable, ErrMalformedResponse:
		return true
	}
	return false
}

// ErrInvalidInput is returned before any network activity when a request is
// malformed.
var ErrInvalidInput = errors.New("invalid input")
