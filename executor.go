//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/client.rs (Client::execute, dns_resolve,
// tcp_connect, tls_handshake), httpconn.go (ALPN dispatch), spec.md §4.6.
//

package httptrace

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/netip"
)

// requestErrorSetter is implemented by [*StatsRecorder]. It is not part of
// the public [Recorder] interface: spec.md §4.1's hook set has no
// on_request_done counterpart to OnRequestStart, so this stays an optional,
// package-internal extension rather than a hook every custom [Recorder]
// must implement.
type requestErrorSetter interface {
	SetRequestError(err error)
}

// execute drives one [*Request] through resolution, connection, optional
// TLS, and the HTTP exchange, under a single overall deadline (spec.md
// §4.6): req.Timeout if set, else c.timeout, else "effectively infinite".
func execute(ctx context.Context, c *Client, req *Request) (resp *Response, err error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	if timeout <= 0 {
		timeout = farInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	recorder := req.Recorder()
	defer func() {
		if setter, ok := recorder.(requestErrorSetter); ok {
			setter.SetRequestError(err)
		}
	}()

	host, err := req.Host()
	if err != nil {
		return nil, err
	}
	port, err := req.Port()
	if err != nil {
		return nil, err
	}

	addrs, err := c.resolve(ctx, req, recorder, host, port)
	if err != nil {
		return nil, err
	}

	conn, err := c.connect(ctx, req, recorder, addrs)
	if err != nil {
		return nil, err
	}

	httpConn, err := c.upgrade(ctx, req, recorder, conn, host)
	if err != nil {
		return nil, err
	}

	return c.roundTrip(ctx, req, recorder, httpConn)
}

func (c *Client) resolve(ctx context.Context, req *Request, recorder Recorder, host string, port uint16) ([]netip.AddrPort, error) {
	resolver := &Resolver{
		NameServers: c.nameServers,
		Strategy:    c.lookupStrategy,
		Overrides:   c.resolveOverrides,
		Timeout:     c.dnsTimeout,
		cfg:         c.cfg,
		logger:      c.logger,
	}
	recorder.OnDNSStart(req, c.nameServers, host)
	addrs, hitCache, err := resolver.Resolve(ctx, host, port)
	recorder.OnDNSDone(req, c.nameServers, host, addrs, hitCache, err)
	return addrs, err
}

func (c *Client) connect(ctx context.Context, req *Request, recorder Recorder, addrs []netip.AddrPort) (net.Conn, error) {
	racer := NewTCPRacer(c.cfg, c.localAddr, c.lookupStrategy.preferIPv6(), c.tcpTimeout, c.logger)
	return racer.Race(ctx, req, recorder, addrs)
}

func (c *Client) upgrade(ctx context.Context, req *Request, recorder Recorder, conn net.Conn, host string) (*HTTPConn, error) {
	if req.URL.Scheme != "https" {
		return NewHTTPConnFuncPlain(c.cfg, c.logger).Call(ctx, conn)
	}

	tlsConfig := &tls.Config{
		ServerName:         host,
		NextProtos:         c.alpnProtocols,
		InsecureSkipVerify: c.skipTLSVerify,
	}
	tlsTimeout := c.tlsTimeout
	if tlsTimeout <= 0 {
		tlsTimeout = farInterval
	}
	tlsCtx, cancel := context.WithTimeout(ctx, tlsTimeout)
	defer cancel()

	recorder.OnTLSStart(req, conn.LocalAddr().String(), conn.RemoteAddr().String())
	tconn, err := NewTLSHandshakeFunc(c.cfg, tlsConfig, c.logger).Call(tlsCtx, conn)
	var negotiated string
	if tconn != nil {
		negotiated = tconn.ConnectionState().NegotiatedProtocol
	}
	recorder.OnTLSDone(req, negotiated, classifyStageErr(err, KindTLS))
	if err != nil {
		return nil, classifyStageErr(err, KindTLS)
	}
	return NewHTTPConnFuncTLS(c.cfg, c.logger).Call(ctx, tconn)
}

func (c *Client) roundTrip(ctx context.Context, req *Request, recorder Recorder, httpConn *HTTPConn) (*Response, error) {
	httpReq, err := c.buildHTTPRequest(ctx, req)
	if err != nil {
		httpConn.Close()
		return nil, err
	}

	recorder.OnRequestStart(req)
	httpResp, err := httpConn.RoundTrip(httpReq)
	if err != nil {
		httpConn.Close()
		return nil, classifyStageErr(err, KindHyper)
	}
	return newResponse(httpResp), nil
}

// buildHTTPRequest converts a [*Request] into a [*http.Request], injecting
// Host and User-Agent headers when missing, unless c.disableAutoSetHeader.
func (c *Client) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = req.Body.Reader()
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), bodyReader)
	if err != nil {
		return nil, newError(KindHTTP, err)
	}
	httpReq.Header = req.Header.Clone()
	if req.Body != nil {
		if n, ok := req.Body.ContentLength(); ok {
			httpReq.ContentLength = n
		}
	}
	if req.Version != "" {
		if major, minor, ok := http.ParseHTTPVersion(req.Version); ok {
			httpReq.Proto = req.Version
			httpReq.ProtoMajor = major
			httpReq.ProtoMinor = minor
		}
	}

	if !c.disableAutoSetHeader {
		if httpReq.Header.Get("Host") == "" && httpReq.Host == "" {
			httpReq.Host = req.URL.Host
		}
		if httpReq.Header.Get("User-Agent") == "" {
			httpReq.Header.Set("User-Agent", c.userAgent)
		}
	}
	return httpReq, nil
}

// classifyStageErr re-tags err with kind unless it is already a timeout
// (in which case [KindTimeout] takes precedence) or already a tagged
// [*Error] (in which case it is returned unchanged).
func classifyStageErr(err error, kind Kind) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, err)
	}
	return newError(kind, err)
}
