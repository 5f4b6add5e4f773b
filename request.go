//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/request.rs.
//

package httptrace

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Request is a single HTTP request, along with the client-facing options
// that steer its execution (timeout, observation).
//
// The zero value is not valid; construct via [NewRequest] or
// [*Client.NewRequest].
type Request struct {
	Method  string
	URL     *url.URL
	Header  http.Header
	Body    *Body
	Timeout time.Duration

	// Version is the caller's preferred HTTP version, e.g. "HTTP/1.1" or
	// "HTTP/2.0". Empty means "negotiate via ALPN", the package default.
	// This only annotates the outgoing [http.Request]'s protocol fields;
	// the actual version is still whatever [HTTPConn] dispatches to based
	// on the TLS handshake's negotiated protocol.
	Version string

	recorder Recorder
}

// NewRequest returns a new [*Request] for method and u, with an empty
// header set, no body, no timeout, and the default no-op [Recorder].
func NewRequest(method string, u *url.URL) *Request {
	return &Request{
		Method:   method,
		URL:      u,
		Header:   make(http.Header),
		recorder: BaseRecorder{},
	}
}

// Recorder returns the request's [Recorder], never nil.
func (r *Request) Recorder() Recorder {
	if r.recorder == nil {
		return BaseRecorder{}
	}
	return r.recorder
}

// SetRecorder installs rec as this request's [Recorder]. A nil rec resets
// the request to [BaseRecorder]'s no-op behavior.
func (r *Request) SetRecorder(rec Recorder) {
	r.recorder = rec
}

// Port returns the destination port: the URL's explicit port, or the
// scheme's default (443 for https, 80 otherwise).
func (r *Request) Port() (uint16, error) {
	return defaultPort(r.URL)
}

// Host returns the request's target hostname, or [ErrHostRequired] if the
// URL carries none.
func (r *Request) Host() (string, error) {
	host := r.URL.Hostname()
	if host == "" {
		return "", ErrHostRequired
	}
	return host, nil
}

// TryClone returns an independent copy of r and true, or nil, false if r's
// body is streaming and therefore cannot be safely reused (spec.md's
// request-cloning invariant, mirrored from [*Body.TryClone]).
func (r *Request) TryClone() (*Request, bool) {
	var bodyClone *Body
	if r.Body != nil {
		clone, ok := r.Body.TryClone()
		if !ok {
			return nil, false
		}
		bodyClone = clone
	}
	clonedURL := *r.URL
	return &Request{
		Method:   r.Method,
		URL:      &clonedURL,
		Header:   r.Header.Clone(),
		Body:     bodyClone,
		Timeout:  r.Timeout,
		Version:  r.Version,
		recorder: r.recorder,
	}, true
}

// RequestBuilder assembles a [*Request] fluently, deferring any
// construction error until [*RequestBuilder.Build].
//
// Construct via [*Client.NewRequestBuilder]; not meant to be built
// directly by callers outside this package's Client methods.
type RequestBuilder struct {
	client *Client
	req    *Request
	err    error
}

// Header appends a header value. Multiple calls with the same key append
// rather than replace, matching [net/http.Header.Add].
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	if b.err == nil {
		b.req.Header.Add(key, value)
	}
	return b
}

// Headers replaces the builder's header set wholesale.
func (b *RequestBuilder) Headers(h http.Header) *RequestBuilder {
	if b.err == nil {
		b.req.Header = h
	}
	return b
}

// BasicAuth sets the Authorization header using HTTP basic authentication.
func (b *RequestBuilder) BasicAuth(username, password string) *RequestBuilder {
	if b.err == nil {
		req := &http.Request{Header: b.req.Header}
		req.SetBasicAuth(username, password)
		b.req.Header.Set("Authorization", req.Header.Get("Authorization"))
	}
	return b
}

// BearerAuth sets the Authorization header to "Bearer <token>".
func (b *RequestBuilder) BearerAuth(token string) *RequestBuilder {
	if b.err == nil {
		b.req.Header.Set("Authorization", "Bearer "+token)
	}
	return b
}

// Body sets the request body.
func (b *RequestBuilder) Body(body *Body) *RequestBuilder {
	if b.err == nil {
		b.req.Body = body
	}
	return b
}

// Timeout overrides, for this request only, the client-wide timeout set by
// [*ClientBuilder.Timeout].
func (b *RequestBuilder) Timeout(d time.Duration) *RequestBuilder {
	if b.err == nil {
		b.req.Timeout = d
	}
	return b
}

// Recorder installs rec as the request's [Recorder].
func (b *RequestBuilder) Recorder(rec Recorder) *RequestBuilder {
	if b.err == nil {
		b.req.SetRecorder(rec)
	}
	return b
}

// Version sets the request's preferred HTTP version (e.g. "HTTP/1.1",
// "HTTP/2.0"). See [Request.Version].
func (b *RequestBuilder) Version(version string) *RequestBuilder {
	if b.err == nil {
		b.req.Version = version
	}
	return b
}

// TryClone returns an independent copy of the builder's request so far, or
// nil, false if its body is streaming and cannot be safely reused. See
// [*Request.TryClone].
func (b *RequestBuilder) TryClone() (*Request, bool) {
	if b.err != nil {
		return nil, false
	}
	return b.req.TryClone()
}

// Build finalizes the request, or returns the first construction error
// encountered.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.req, nil
}

// Send builds and executes the request against the builder's [*Client].
func (b *RequestBuilder) Send(ctx context.Context) (*Response, error) {
	req, err := b.Build()
	if err != nil {
		return nil, err
	}
	return b.client.Execute(ctx, req)
}
