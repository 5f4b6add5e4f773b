// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import "net/netip"

// Recorder observes the phase boundaries of a single [Client.Execute] call.
//
// Every hook has a default no-op implementation via [BaseRecorder]; embed it
// to override only the hooks you need:
//
//	type myRecorder struct{ BaseRecorder }
//	func (r *myRecorder) OnTCPStart(req *Request, dest netip.AddrPort) { ... }
//
// Hooks fire in the order documented on each method below. A Recorder
// referenced by a [Request] is only ever used for that request's lifetime
// and is never retained by the client afterwards.
type Recorder interface {
	// OnDNSStart is called once, before resolution begins.
	OnDNSStart(req *Request, nameServers []string, host string)

	// OnDNSDone is called once, after resolution. Exactly one of addrs or
	// err is meaningful: when err is nil, addrs and hitCache describe the
	// successful result; when err is non-nil, addrs is nil.
	OnDNSDone(req *Request, nameServers []string, host string, addrs []netip.AddrPort, hitCache bool, err error)

	// OnTCPStart is called once per attempted destination, just before the
	// connect is initiated.
	OnTCPStart(req *Request, dest netip.AddrPort)

	// OnTCPDone is called once per attempted destination when its outcome
	// is known, successful or not (including cancellation of a losing
	// attempt). Every OnTCPStart is eventually paired with exactly one
	// OnTCPDone for the same destination.
	OnTCPDone(req *Request, dest netip.AddrPort, err error)

	// OnTLSStart is called when a handshake begins on the winning
	// transport, local/remote describing that transport's endpoints.
	OnTLSStart(req *Request, local, remote string)

	// OnTLSDone is called with the handshake outcome. On success,
	// negotiatedProto carries the ALPN-negotiated protocol (possibly empty).
	OnTLSDone(req *Request, negotiatedProto string, err error)

	// OnRequestStart is called immediately before the HTTP frames are
	// exchanged.
	OnRequestStart(req *Request)
}

// BaseRecorder implements [Recorder] with no-op methods. Embed it in a
// custom recorder to override only the hooks of interest.
type BaseRecorder struct{}

var _ Recorder = BaseRecorder{}

// OnDNSStart implements [Recorder].
func (BaseRecorder) OnDNSStart(req *Request, nameServers []string, host string) {}

// OnDNSDone implements [Recorder].
func (BaseRecorder) OnDNSDone(req *Request, nameServers []string, host string, addrs []netip.AddrPort, hitCache bool, err error) {
}

// OnTCPStart implements [Recorder].
func (BaseRecorder) OnTCPStart(req *Request, dest netip.AddrPort) {}

// OnTCPDone implements [Recorder].
func (BaseRecorder) OnTCPDone(req *Request, dest netip.AddrPort, err error) {}

// OnTLSStart implements [Recorder].
func (BaseRecorder) OnTLSStart(req *Request, local, remote string) {}

// OnTLSDone implements [Recorder].
func (BaseRecorder) OnTLSDone(req *Request, negotiatedProto string, err error) {}

// OnRequestStart implements [Recorder].
func (BaseRecorder) OnRequestStart(req *Request) {}
