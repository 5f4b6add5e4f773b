//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/stats.rs
//

package httptrace

import (
	"net/netip"
	"sync"
	"time"
)

// DNSStats reports the outcome of the DNS phase.
type DNSStats struct {
	// Duration is dnsDone - dnsStart. Zero if the phase never completed.
	Duration time.Duration

	// HitCache is true when the result came from a DNS override rather
	// than a network lookup.
	HitCache bool

	// Addrs is the resolved address list, nil on error.
	Addrs []netip.AddrPort

	// Error is the resolution error, if any.
	Error string
}

// TCPStat reports the outcome of a single connect attempt.
type TCPStat struct {
	// Dest is the destination this attempt targeted.
	Dest netip.AddrPort

	// Duration is tcpDone[Dest] - tcpStart[Dest].
	Duration time.Duration

	// Error is the per-attempt error, if any (including a cancellation
	// error for a losing attempt).
	Error string
}

// TLSStats reports the outcome of the TLS phase.
type TLSStats struct {
	// Duration is tlsDone - tlsStart.
	Duration time.Duration

	// NegotiatedProtocol is the ALPN-negotiated protocol version string.
	NegotiatedProtocol string

	// Error is the handshake error, if any.
	Error string
}

// RequestStats reports the outcome of the HTTP exchange phase.
type RequestStats struct {
	// Duration is requestDone - requestStart.
	Duration time.Duration

	// Error is the exchange error, if any.
	Error string
}

// Stats is the timing report produced by [*StatsRecorder.Finish].
//
// Invariant: phases are reported in monotonically non-decreasing wall-clock
// order, and TotalDuration is at least the sum of any serial sub-phase's
// duration (DNS, then the winning TCP attempt, then TLS, then the request).
type Stats struct {
	// DNS reports the DNS phase. Never nil once OnDNSStart has fired.
	DNS *DNSStats

	// TCP reports every attempt that has reported its outcome, in the order
	// those outcomes arrived (OnTCPDone order).
	TCP []TCPStat

	// TLS reports the TLS phase, nil for plaintext requests.
	TLS *TLSStats

	// Request reports the HTTP exchange phase, nil if it never started.
	Request *RequestStats

	// TotalDuration is measured from DNS start to request end (or to the
	// moment [*StatsRecorder.Finish] was called, if earlier phases never
	// completed).
	TotalDuration time.Duration
}

// StatsRecorder is the bundled [Recorder] implementation. It aggregates
// every hook invocation under a mutex into a [Stats] report, available on
// demand via [*StatsRecorder.Finish].
//
// A *StatsRecorder is safe to pass to exactly one [Request] while other
// references (e.g., a UI goroutine polling partial progress) observe it
// concurrently: every hook and [*StatsRecorder.Finish] take the same lock.
// Finish may be called at any time, including after the request completes.
type StatsRecorder struct {
	mu sync.Mutex

	dnsStart time.Time
	dnsDone  time.Time
	dns      *DNSStats

	tcpStart map[netip.AddrPort]time.Time
	tcp      []TCPStat

	tlsStart time.Time
	tlsDone  time.Time
	tls      *TLSStats

	reqStart time.Time
	reqDone  time.Time
	req      *RequestStats

	now func() time.Time
}

var _ Recorder = &StatsRecorder{}

// NewStatsRecorder returns a new, empty [*StatsRecorder].
func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{
		tcpStart: make(map[netip.AddrPort]time.Time),
		now:      time.Now,
	}
}

// OnDNSStart implements [Recorder].
func (r *StatsRecorder) OnDNSStart(req *Request, nameServers []string, host string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dnsStart = r.now()
	r.dns = &DNSStats{}
}

// OnDNSDone implements [Recorder].
func (r *StatsRecorder) OnDNSDone(req *Request, nameServers []string, host string, addrs []netip.AddrPort, hitCache bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dnsDone = r.now()
	stats := &DNSStats{
		Duration: r.dnsDone.Sub(r.dnsStart),
		HitCache: hitCache,
		Addrs:    addrs,
	}
	if err != nil {
		stats.Error = err.Error()
	}
	r.dns = stats
}

// OnTCPStart implements [Recorder].
func (r *StatsRecorder) OnTCPStart(req *Request, dest netip.AddrPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tcpStart[dest] = r.now()
}

// OnTCPDone implements [Recorder].
func (r *StatsRecorder) OnTCPDone(req *Request, dest netip.AddrPort, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := r.tcpStart[dest]
	done := r.now()
	stat := TCPStat{Dest: dest, Duration: done.Sub(start)}
	if err != nil {
		stat.Error = err.Error()
	}
	r.tcp = append(r.tcp, stat)
}

// OnTLSStart implements [Recorder].
func (r *StatsRecorder) OnTLSStart(req *Request, local, remote string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tlsStart = r.now()
}

// OnTLSDone implements [Recorder].
func (r *StatsRecorder) OnTLSDone(req *Request, negotiatedProto string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tlsDone = r.now()
	stats := &TLSStats{
		Duration:           r.tlsDone.Sub(r.tlsStart),
		NegotiatedProtocol: negotiatedProto,
	}
	if err != nil {
		stats.Error = err.Error()
	}
	r.tls = stats
}

// OnRequestStart implements [Recorder].
func (r *StatsRecorder) OnRequestStart(req *Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqStart = r.now()
}

// SetRequestError records the outcome of the HTTP exchange phase.
//
// The [Recorder] hook set has no on_request_done counterpart to
// OnRequestStart (spec.md §4.1): the exchange's own error return is the
// caller's signal. [*Client.Execute] calls SetRequestError on its Recorder
// when the Recorder implements this optional interface, so that
// [*StatsRecorder.Finish] can still surface a request-phase error without
// widening the public [Recorder] contract every custom implementation must
// satisfy.
func (r *StatsRecorder) SetRequestError(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reqStart.IsZero() {
		// The error comes from an earlier phase: the exchange never started.
		return
	}
	if r.req == nil {
		r.req = &RequestStats{}
	}
	r.req.Error = err.Error()
}

// Finish finalizes the report as of now. It may be called multiple times
// (e.g., to poll partial progress) and after the owning request completes.
func (r *StatsRecorder) Finish() *Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	finish := r.now()
	if !r.reqStart.IsZero() {
		r.reqDone = finish
		if r.req == nil {
			r.req = &RequestStats{}
		}
		r.req.Duration = r.reqDone.Sub(r.reqStart)
	}

	total := finish.Sub(r.dnsStart)
	if r.dnsStart.IsZero() {
		total = 0
	}

	return &Stats{
		DNS:           r.dns,
		TCP:           append([]TCPStat(nil), r.tcp...),
		TLS:           r.tls,
		Request:       r.req,
		TotalDuration: total,
	}
}
