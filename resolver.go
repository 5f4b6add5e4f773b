//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: dnsoverudp.go, dnsovertcp.go, dnsovertls.go, dnsoverhttps.go
// (wire transports), original_source/src/client.rs (_dns_resolve, strategy
// handling), spec.md §4.3.
//

package httptrace

import (
	"context"
	"crypto/tls"
	"net"
	"net/netip"
	"net/url"
	"time"

	"github.com/bassosimone/dnscodec"
	"github.com/miekg/dns"
)

// Resolver is the DNS front-end (C3 in spec.md §4.3).
//
// Given a host, it returns an ordered address list honoring DNS overrides,
// a configured set of name servers (or the system resolver when none are
// configured), and [LookupIPStrategy] ordering, bounded by Timeout.
//
// A zero-value Resolver (no name servers, [StrategySystem], zero Timeout,
// which [*Resolver.Resolve] treats as "effectively infinite") delegates to
// the system resolver.
type Resolver struct {
	// NameServers are name server URLs ("udp://8.8.8.8:53",
	// "tls://1.1.1.1:853", "https://dns.google/dns-query"). Empty means
	// "use the system resolver".
	NameServers []string

	// Strategy orders and filters the returned addresses.
	Strategy LookupIPStrategy

	// Overrides maps a hostname to a fixed address list (spec.md §4.3
	// step 1). A present-but-empty list falls through to network
	// resolution, per spec.md §9's Open Question resolution.
	Overrides map[string][]netip.Addr

	// Timeout bounds network resolution. It does NOT wrap the override
	// fast-path, which is synchronous by design (spec.md §9).
	Timeout time.Duration

	// cfg carries the shared Dialer/ErrClassifier/TimeNow used to dial
	// wire-protocol name servers.
	cfg *Config

	// logger receives structured DNS exchange events.
	logger SLogger
}

// Resolve implements spec.md §4.3's algorithm, returning the resolved
// (IP, port) list and whether the result came from Overrides.
func (r *Resolver) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, bool, error) {
	// Step 1: override fast-path, no timeout, no network I/O.
	if ips, ok := r.Overrides[host]; ok && len(ips) > 0 {
		out := make([]netip.AddrPort, 0, len(ips))
		for _, ip := range ips {
			out = append(out, netip.AddrPortFrom(ip, port))
		}
		return out, true, nil
	}

	// Step 2: network resolution, bounded by Timeout.
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = farInterval
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		addrs []netip.Addr
		err   error
	)
	if len(r.NameServers) == 0 {
		addrs, err = r.resolveSystem(dctx, host)
	} else {
		addrs, err = r.resolveWire(dctx, host)
	}
	if err != nil {
		if dctx.Err() != nil {
			return nil, false, newError(KindTimeout, dctx.Err())
		}
		return nil, false, newError(KindResolve, err)
	}

	addrs = r.Strategy.apply(addrs)
	// Step 3: empty result is an error regardless of path.
	if len(addrs) == 0 {
		return nil, false, ErrEmptyResolveResult
	}

	out := make([]netip.AddrPort, 0, len(addrs))
	for _, ip := range addrs {
		out = append(out, netip.AddrPortFrom(ip, port))
	}
	return out, false, nil
}

// resolveSystem delegates to the system resolver.
func (r *Resolver) resolveSystem(ctx context.Context, host string) ([]netip.Addr, error) {
	ipAddrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	out := make([]netip.Addr, 0, len(ipAddrs))
	for _, ipAddr := range ipAddrs {
		addr, ok := netip.AddrFromSlice(ipAddr.IP)
		if !ok {
			continue
		}
		out = append(out, addr.Unmap())
	}
	return out, nil
}

// queryTypesFor returns the DNS record types to query, in the order their
// results should appear in the final address list.
func queryTypesFor(strategy LookupIPStrategy) []uint16 {
	switch strategy {
	case StrategyIpv4Only:
		return []uint16{dns.TypeA}
	case StrategyIpv6Only:
		return []uint16{dns.TypeAAAA}
	case StrategyIpv6thenIpv4:
		return []uint16{dns.TypeAAAA, dns.TypeA}
	default: // StrategyIpv4thenIpv6, StrategySystem
		return []uint16{dns.TypeA, dns.TypeAAAA}
	}
}

// resolveWire queries the configured name servers over the wire, trying
// each in turn until one answers every required query type.
func (r *Resolver) resolveWire(ctx context.Context, host string) ([]netip.Addr, error) {
	var lastErr error
	for _, raw := range r.NameServers {
		addrs, err := r.resolveWireOne(ctx, raw, host)
		if err != nil {
			lastErr = err
			continue
		}
		return addrs, nil
	}
	if lastErr == nil {
		lastErr = errNoNameServersAnswered
	}
	return nil, lastErr
}

// resolveWireOne performs every required query against a single name
// server, closing the connection once done.
func (r *Resolver) resolveWireOne(ctx context.Context, rawNameServer, host string) ([]netip.Addr, error) {
	conn, err := dialNameServer(ctx, r.cfg, r.logger, rawNameServer)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var out []netip.Addr
	for _, qtype := range queryTypesFor(r.Strategy) {
		query := dnscodec.NewQuery(host, qtype)
		resp, err := conn.Exchange(ctx, query)
		if err != nil {
			return nil, err
		}
		switch qtype {
		case dns.TypeA:
			records, err := resp.RecordsA()
			if err != nil {
				return nil, err
			}
			out = append(out, parseAddrList(records)...)
		case dns.TypeAAAA:
			records, err := resp.RecordsAAAA()
			if err != nil {
				return nil, err
			}
			out = append(out, parseAddrList(records)...)
		}
	}
	return out, nil
}

// parseAddrList parses a list of textual IP addresses, silently skipping
// any that fail to parse (malformed wire data should not abort a lookup
// that otherwise produced usable addresses).
func parseAddrList(ss []string) []netip.Addr {
	out := make([]netip.Addr, 0, len(ss))
	for _, s := range ss {
		if addr, err := netip.ParseAddr(s); err == nil {
			out = append(out, addr)
		}
	}
	return out
}

// dnsExchangeConn is satisfied by every DNSOver{UDP,TCP,TLS,HTTPS}Conn type:
// a connection already established and ready to exchange DNS messages.
type dnsExchangeConn interface {
	Exchange(ctx context.Context, query *dnscodec.Query) (*dnscodec.Response, error)
	Close() error
}

// dialNameServer parses rawNameServer and dials the matching wire protocol,
// returning a ready-to-use [dnsExchangeConn].
func dialNameServer(ctx context.Context, cfg *Config, logger SLogger, rawNameServer string) (dnsExchangeConn, error) {
	u, err := url.Parse(rawNameServer)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "", "udp":
		return dialDNSOverUDP(ctx, cfg, logger, u)
	case "tcp":
		return dialDNSOverTCP(ctx, cfg, logger, u)
	case "tls":
		return dialDNSOverTLS(ctx, cfg, logger, u)
	case "https":
		return dialDNSOverHTTPS(ctx, cfg, logger, u)
	default:
		return nil, errUnsupportedNameServerScheme
	}
}

func nameServerAddr(u *url.URL, defaultPort string) (netip.AddrPort, error) {
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = defaultPort
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		ips, lookupErr := net.DefaultResolver.LookupIP(context.Background(), "ip", host)
		if lookupErr != nil || len(ips) == 0 {
			return netip.AddrPort{}, err
		}
		addr, ok := netip.AddrFromSlice(ips[0])
		if !ok {
			return netip.AddrPort{}, err
		}
		ip = addr.Unmap()
	}
	portNum, err := parseNumericPort(port)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return netip.AddrPortFrom(ip, portNum), nil
}

func dialDNSOverUDP(ctx context.Context, cfg *Config, logger SLogger, u *url.URL) (dnsExchangeConn, error) {
	addr, err := nameServerAddr(u, "53")
	if err != nil {
		return nil, err
	}
	pipe := Compose5(
		NewEndpointFunc(addr),
		NewConnectFunc(cfg, "udp", logger),
		NewObserveConnFunc(cfg, logger),
		NewCancelWatchFunc(),
		NewDNSOverUDPConnFunc(cfg, logger),
	)
	return pipe.Call(ctx, Unit{})
}

func dialDNSOverTCP(ctx context.Context, cfg *Config, logger SLogger, u *url.URL) (dnsExchangeConn, error) {
	addr, err := nameServerAddr(u, "53")
	if err != nil {
		return nil, err
	}
	pipe := Compose5(
		NewEndpointFunc(addr),
		NewConnectFunc(cfg, "tcp", logger),
		NewObserveConnFunc(cfg, logger),
		NewCancelWatchFunc(),
		NewDNSOverTCPConnFunc(cfg, logger),
	)
	return pipe.Call(ctx, Unit{})
}

func dialDNSOverTLS(ctx context.Context, cfg *Config, logger SLogger, u *url.URL) (dnsExchangeConn, error) {
	addr, err := nameServerAddr(u, "853")
	if err != nil {
		return nil, err
	}
	tlsConfig := &tls.Config{ServerName: u.Hostname()}
	pipe := Compose6(
		NewEndpointFunc(addr),
		NewConnectFunc(cfg, "tcp", logger),
		NewObserveConnFunc(cfg, logger),
		NewCancelWatchFunc(),
		NewTLSHandshakeFunc(cfg, tlsConfig, logger),
		NewDNSOverTLSConnFunc(cfg, logger),
	)
	return pipe.Call(ctx, Unit{})
}

func dialDNSOverHTTPS(ctx context.Context, cfg *Config, logger SLogger, u *url.URL) (dnsExchangeConn, error) {
	addr, err := nameServerAddr(u, "443")
	if err != nil {
		return nil, err
	}
	tlsConfig := &tls.Config{ServerName: u.Hostname(), NextProtos: []string{"h2", "http/1.1"}}
	pipe := Compose7(
		NewEndpointFunc(addr),
		NewConnectFunc(cfg, "tcp", logger),
		NewObserveConnFunc(cfg, logger),
		NewCancelWatchFunc(),
		NewTLSHandshakeFunc(cfg, tlsConfig, logger),
		NewHTTPConnFuncTLS(cfg, logger),
		NewDNSOverHTTPSConnFunc(cfg, u.String(), logger),
	)
	return pipe.Call(ctx, Unit{})
}

func parseNumericPort(s string) (uint16, error) {
	var n uint16
	if s == "" {
		return 0, errUnsupportedNameServerScheme
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errUnsupportedNameServerScheme
		}
		n = n*10 + uint16(c-'0')
	}
	return n, nil
}

var (
	errUnsupportedNameServerScheme = portError("httptrace: unsupported name server scheme")
	errNoNameServersAnswered       = portError("httptrace: no configured name server answered")
)
