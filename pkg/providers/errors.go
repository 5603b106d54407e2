package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sw33tLie/kwscope/pkg/locale"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

// Error is an adapter failure mapped into the closed ErrorKind set.
type Error struct {
	Provider suggest.ProviderID
	Kind     suggest.ErrorKind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Malformed builds a MalformedResponse error.
func Malformed(id suggest.ProviderID, format string, args ...interface{}) error {
	return &Error{Provider: id, Kind: suggest.ErrMalformedResponse, Err: fmt.Errorf(format, args...)}
}

// Unsupported builds an Unsupported error, used when an adapter cannot serve
// the requested locale.
func Unsupported(id suggest.ProviderID, format string, args ...interface{}) error {
	return &Error{Provider: id, Kind: suggest.ErrUnsupported, Err: fmt.Errorf(format, args...)}
}

// KindOf maps any error to its ErrorKind. A nil error maps to "".
func KindOf(err error) suggest.ErrorKind {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return suggest.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return suggest.ErrCanceled
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return suggest.ErrTimeout
	}
	if errors.Is(err, locale.ErrNotSupported) {
		return suggest.ErrUnsupported
	}
	return suggest.ErrUpstreamUnavailable
}

// kindForStatus classifies a non-2xx HTTP status.
func kindForStatus(status int) suggest.ErrorKind {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusForbidden:
		return suggest.ErrRateLimited
	default:
		return suggest.ErrUpstreamUnavailable
	}
}

// transportError classifies an error returned by the HTTP round trip.
func transportError(ctx context.Context, id suggest.ProviderID, err error) error {
	kind := suggest.ErrUpstreamUnavailable
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		kind = suggest.ErrCanceled
	case ctx.Err() != nil, KindOf(err) == suggest.ErrTimeout:
		kind = suggest.ErrTimeout
	}
	return &Error{Provider: id, Kind: kind, Err: err}
}
