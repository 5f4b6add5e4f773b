// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import "fmt"

// Kind classifies an [*Error] into one of a stable, small set of external
// strings. Callers may match on Kind to implement policy (e.g., retry on
// [KindTimeout] but not on [KindHostRequired]) without parsing error text.
type Kind string

// The error taxonomy. These strings are part of the public API: do not
// rename them without a major version bump.
const (
	KindUnknown             Kind = "unknown"
	KindURIParse            Kind = "uri parse error"
	KindResolve             Kind = "resolve error"
	KindIO                  Kind = "io error"
	KindTimeout             Kind = "timeout error"
	KindTLS                 Kind = "rustls error"
	KindInvalidDNSName      Kind = "invalid dns name error"
	KindHyper               Kind = "hyper error"
	KindHTTP                Kind = "http error"
	KindHeaderValueInvalid  Kind = "http invalid header value"
	KindHostRequired        Kind = "host required"
	KindEmptyResolveResult  Kind = "empty resolve result"
	KindAllTCPConnectFailed Kind = "all tcp connect failed"
	KindTCPDeadlineExceeded Kind = "tcp deadline exceeded"
	KindBody                Kind = "body error"
	KindBodyTimeout         Kind = "body timeout"
)

// Error is the error type returned by [Client.Execute] and friends.
//
// Error wraps an underlying cause (when there is one) so callers can
// recover it with [errors.As]/[errors.Unwrap], while still exposing a
// stable [Kind] for policy decisions.
type Error struct {
	// Kind is the stable external classification of this error.
	Kind Kind

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause, enabling [errors.Is]/[errors.As].
func (e *Error) Unwrap() error {
	return e.Cause
}

// newError builds an [*Error] of the given kind wrapping cause.
//
// newError returns nil when cause is nil, so call sites can write
//
//	if err := newError(KindIO, innerErr); err != nil { return err }
//
// without an extra nil check on innerErr.
func newError(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: cause}
}

// Sentinel errors for conditions that carry no additional cause.
var (
	// ErrHostRequired is returned when a URI has no host component.
	ErrHostRequired = &Error{Kind: KindHostRequired}

	// ErrEmptyResolveResult is returned when DNS resolution succeeds but
	// yields zero addresses.
	ErrEmptyResolveResult = &Error{Kind: KindEmptyResolveResult}

	// ErrAllTCPConnectFailed is returned when every candidate address
	// failed to connect.
	ErrAllTCPConnectFailed = &Error{Kind: KindAllTCPConnectFailed}

	// ErrTCPDeadlineExceeded is returned when the TCP phase deadline
	// elapses before any connect attempt succeeds.
	ErrTCPDeadlineExceeded = &Error{Kind: KindTCPDeadlineExceeded}
)
