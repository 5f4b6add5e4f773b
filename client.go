//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/client.rs (Client, ClientBuilder),
// spec.md §4.2, §4.7.
//

package httptrace

import (
	"context"
	"net/http"
	"net/netip"
	"net/url"
	"time"
)

// defaultUserAgent is sent on every request unless DisableAutoSetHeader was
// configured or the caller already set a User-Agent header explicitly.
const defaultUserAgent = "httptrace/0.1"

// Client executes HTTP requests through the instrumented connection
// establishment pipeline (DNS resolution, TCP racing, optional TLS, HTTP/1.1
// or HTTP/2 dispatch).
//
// A Client is immutable once built via [*ClientBuilder.Build] and is safe
// for concurrent use by multiple goroutines.
type Client struct {
	localAddr           *netip.Addr
	resolveOverrides    map[string][]netip.Addr
	lookupStrategy      LookupIPStrategy
	alpnProtocols       []string
	nameServers         []string
	defaultHeaders      http.Header
	dnsTimeout          time.Duration
	tcpTimeout          time.Duration
	tlsTimeout          time.Duration
	timeout             time.Duration
	skipTLSVerify       bool
	disableAutoSetHeader bool
	userAgent           string

	cfg    *Config
	logger SLogger
}

// NewClient returns a [*Client] with every default: system DNS resolution,
// default ALPN ("h2", "http/1.1"), no timeouts (effectively infinite), and
// structured logging disabled (a no-op [SLogger]).
//
// Equivalent to [NewClientBuilder]().Build().
func NewClient() *Client {
	client, _ := NewClientBuilder().Build()
	return client
}

// NewRequest returns a [*Request] for method and rawURL, ready for
// [*Client.Execute] or further configuration via [*Client.NewRequestBuilder].
func (c *Client) NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError(KindURIParse, err)
	}
	req := NewRequest(method, u)
	for key, values := range c.defaultHeaders {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}

// NewRequestBuilder returns a [*RequestBuilder] for method and rawURL.
func (c *Client) NewRequestBuilder(method, rawURL string) *RequestBuilder {
	req, err := c.NewRequest(method, rawURL)
	if err != nil {
		return &RequestBuilder{client: c, err: err}
	}
	return &RequestBuilder{client: c, req: req}
}

// Get returns a GET [*RequestBuilder] for rawURL.
func (c *Client) Get(rawURL string) *RequestBuilder { return c.NewRequestBuilder(http.MethodGet, rawURL) }

// Post returns a POST [*RequestBuilder] for rawURL.
func (c *Client) Post(rawURL string) *RequestBuilder { return c.NewRequestBuilder(http.MethodPost, rawURL) }

// Head returns a HEAD [*RequestBuilder] for rawURL.
func (c *Client) Head(rawURL string) *RequestBuilder { return c.NewRequestBuilder(http.MethodHead, rawURL) }

// Put returns a PUT [*RequestBuilder] for rawURL.
func (c *Client) Put(rawURL string) *RequestBuilder { return c.NewRequestBuilder(http.MethodPut, rawURL) }

// Delete returns a DELETE [*RequestBuilder] for rawURL.
func (c *Client) Delete(rawURL string) *RequestBuilder {
	return c.NewRequestBuilder(http.MethodDelete, rawURL)
}

// Execute runs req to completion: DNS resolution, TCP connection racing,
// TLS handshake when the URL scheme is "https", and the HTTP exchange,
// returning the [*Response] or the first error encountered at any phase.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	return execute(ctx, c, req)
}

// ClientBuilder assembles a [*Client] using an immutable builder pattern:
// every setter returns the same *ClientBuilder, finalized by
// [*ClientBuilder.Build].
type ClientBuilder struct {
	client *Client
}

// NewClientBuilder returns a [*ClientBuilder] seeded with every default.
func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		client: &Client{
			resolveOverrides: make(map[string][]netip.Addr),
			lookupStrategy:   StrategySystem,
			alpnProtocols:    []string{"h2", "http/1.1"},
			defaultHeaders:   make(http.Header),
			userAgent:        defaultUserAgent,
			cfg:              NewConfig(),
			logger:           DefaultSLogger(),
		},
	}
}

// LocalAddr binds every TCP connection attempt's local endpoint to addr.
func (b *ClientBuilder) LocalAddr(addr netip.Addr) *ClientBuilder {
	b.client.localAddr = &addr
	return b
}

// ResolveToAddrs overrides DNS resolution for host, returning addrs
// directly without a network lookup (spec.md §4.3 step 1).
func (b *ClientBuilder) ResolveToAddrs(host string, addrs []netip.Addr) *ClientBuilder {
	b.client.resolveOverrides[host] = addrs
	return b
}

// LookupIPStrategy sets the address family filter/ordering strategy.
func (b *ClientBuilder) LookupIPStrategy(strategy LookupIPStrategy) *ClientBuilder {
	b.client.lookupStrategy = strategy
	return b
}

// AlpnProtocols sets the ALPN protocol list offered during the TLS
// handshake, in preference order.
func (b *ClientBuilder) AlpnProtocols(protocols []string) *ClientBuilder {
	b.client.alpnProtocols = protocols
	return b
}

// NameServers configures explicit DNS name servers to query over the wire
// ("udp://8.8.8.8:53", "tls://1.1.1.1:853", "https://dns.google/dns-query"),
// instead of deferring to the system resolver.
func (b *ClientBuilder) NameServers(nameServers []string) *ClientBuilder {
	b.client.nameServers = nameServers
	return b
}

// DefaultHeader adds a header sent with every request built by this client.
func (b *ClientBuilder) DefaultHeader(key, value string) *ClientBuilder {
	b.client.defaultHeaders.Add(key, value)
	return b
}

// DNSTimeout bounds the DNS resolution phase.
func (b *ClientBuilder) DNSTimeout(d time.Duration) *ClientBuilder {
	b.client.dnsTimeout = d
	return b
}

// TCPTimeout bounds the whole TCP connection race, independent of address
// count.
func (b *ClientBuilder) TCPTimeout(d time.Duration) *ClientBuilder {
	b.client.tcpTimeout = d
	return b
}

// TLSTimeout bounds the TLS handshake phase.
func (b *ClientBuilder) TLSTimeout(d time.Duration) *ClientBuilder {
	b.client.tlsTimeout = d
	return b
}

// Timeout bounds every phase combined, from DNS resolution through the
// response body. Overridable per-request via [*RequestBuilder.Timeout].
func (b *ClientBuilder) Timeout(d time.Duration) *ClientBuilder {
	b.client.timeout = d
	return b
}

// SkipTLSVerify disables certificate verification. Intended for testing
// against servers with self-signed certificates; never enable in
// production.
func (b *ClientBuilder) SkipTLSVerify(skip bool) *ClientBuilder {
	b.client.skipTLSVerify = skip
	return b
}

// DisableAutoSetHeader stops the client from injecting Host and User-Agent
// headers automatically when a request doesn't already set them.
func (b *ClientBuilder) DisableAutoSetHeader(disable bool) *ClientBuilder {
	b.client.disableAutoSetHeader = disable
	return b
}

// UserAgent overrides the default User-Agent header value.
func (b *ClientBuilder) UserAgent(ua string) *ClientBuilder {
	b.client.userAgent = ua
	return b
}

// Logger installs an [SLogger] for structured logging of every internal
// pipeline stage (DNS, TCP, TLS, HTTP).
func (b *ClientBuilder) Logger(logger SLogger) *ClientBuilder {
	b.client.logger = logger
	return b
}

// ErrClassifier overrides the [ErrClassifier] used for structured log
// event labeling (distinct from the public [Kind] error taxonomy).
func (b *ClientBuilder) ErrClassifier(classifier ErrClassifier) *ClientBuilder {
	b.client.cfg.ErrClassifier = classifier
	return b
}

// Dialer overrides the [Dialer] used for plain TCP connects (DNS wire
// transports and the TCP racer).
func (b *ClientBuilder) Dialer(dialer Dialer) *ClientBuilder {
	b.client.cfg.Dialer = dialer
	return b
}

// Build finalizes the [*Client]. The error return exists for forward
// compatibility with builder steps that can fail; no current step does.
func (b *ClientBuilder) Build() (*Client, error) {
	return b.client, nil
}
