//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/client.rs (tcp_connect/_tcp_connect),
// cancelwatch.go and connect.go (the pipeline primitives this reuses),
// spec.md §4.4.
//

package httptrace

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"
)

// NewTCPRacer returns a new [*TCPRacer].
func NewTCPRacer(cfg *Config, localAddr *netip.Addr, preferIPv6 bool, timeout time.Duration, logger SLogger) *TCPRacer {
	return &TCPRacer{
		LocalAddr:  localAddr,
		PreferIPv6: preferIPv6,
		Timeout:    timeout,
		cfg:        cfg,
		logger:     logger,
	}
}

// TCPRacer implements the staggered-parallel ("happy eyeballs") TCP
// connection racer (C4 in spec.md §4.4).
//
// Given an ordered address list, it starts a connection attempt to the
// first address immediately, then starts one more attempt every
// [fallbackInterval] as long as earlier attempts haven't yet succeeded,
// until either one attempt succeeds, every attempt fails, or Timeout
// elapses.
type TCPRacer struct {
	// LocalAddr, if set, binds every attempt's local endpoint.
	LocalAddr *netip.Addr

	// PreferIPv6, when LocalAddr is unset, binds every attempt to the IPv6
	// wildcard address (set from [LookupIPStrategy.preferIPv6]). When false,
	// no local bind is made and the kernel picks the local endpoint.
	PreferIPv6 bool

	// Timeout bounds the whole race, independent of how many addresses
	// are tried. Zero means "effectively infinite" ([farInterval]).
	Timeout time.Duration

	// cfg carries the shared ErrClassifier/TimeNow.
	cfg *Config

	// logger receives structured connect events via [*ConnectFunc] and
	// [*ObserveConnFunc].
	logger SLogger
}

// tcpAttemptResult is what a single racing goroutine reports back.
type tcpAttemptResult struct {
	dest netip.AddrPort
	conn net.Conn
	err  error
}

// Race dials addrs in order, staggered by [fallbackInterval], and returns
// the first successfully established connection. recorder receives
// OnTCPStart/OnTCPDone for every attempt, win or lose.
func (r *TCPRacer) Race(ctx context.Context, req *Request, recorder Recorder, addrs []netip.AddrPort) (net.Conn, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = farInterval
	}
	raceCtx, cancelRace := context.WithTimeout(ctx, timeout)
	defer cancelRace()

	results := make(chan tcpAttemptResult, len(addrs))
	cancels := make([]context.CancelFunc, 0, len(addrs))
	cancelAll := func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
	defer cancelAll()

	// drainRemaining closes any connection that a losing (or not-yet-
	// finished) attempt hands back after the race has already concluded.
	// Cancelling attemptCtx above stops future work but does not close a
	// socket a dial already established, so whatever dialOne sends on
	// results for the remaining in-flight attempts must still be drained.
	drainRemaining := func(pending int) {
		if pending <= 0 {
			return
		}
		go func() {
			for i := 0; i < pending; i++ {
				res := <-results
				if res.conn != nil {
					res.conn.Close()
				}
			}
		}()
	}

	launch := func(dest netip.AddrPort) {
		attemptCtx, cancel := context.WithCancel(raceCtx)
		cancels = append(cancels, cancel)
		recorder.OnTCPStart(req, dest)
		go func() {
			conn, err := r.dialOne(attemptCtx, dest)
			recorder.OnTCPDone(req, dest, err)
			results <- tcpAttemptResult{dest: dest, conn: conn, err: err}
		}()
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	idx := 0
	started := 0
	finished := 0
	for {
		select {
		case <-raceCtx.Done():
			drainRemaining(started - finished)
			if errors.Is(raceCtx.Err(), context.DeadlineExceeded) {
				return nil, ErrTCPDeadlineExceeded
			}
			return nil, newError(KindIO, raceCtx.Err())

		case <-timer.C:
			if idx < len(addrs) {
				launch(addrs[idx])
				idx++
				started++
				timer.Reset(fallbackInterval)
			} else {
				// No more addresses to try: stop ticking.
				timer.Reset(farInterval)
			}

		case res := <-results:
			finished++
			if res.err == nil {
				// The deferred cancelAll also cancels the winner's attempt
				// context; unregister its cancel watcher so that does not
				// close the connection being returned.
				if cw, ok := res.conn.(*cancelWatchedConn); ok {
					cw.stop()
				}
				drainRemaining(started - finished)
				return res.conn, nil
			}
			if idx >= len(addrs) && finished == started {
				return nil, ErrAllTCPConnectFailed
			}
		}
	}
}

// dialOne performs a single connect attempt through the same
// [*ConnectFunc]/[*ObserveConnFunc]/[*CancelWatchFunc] pipeline used
// elsewhere, so racing connections get identical structured logging.
func (r *TCPRacer) dialOne(ctx context.Context, dest netip.AddrPort) (net.Conn, error) {
	dialer := r.cfg.Dialer
	if netDialer, ok := dialer.(*net.Dialer); ok {
		clone := *netDialer
		switch {
		case r.LocalAddr != nil:
			clone.LocalAddr = &net.TCPAddr{IP: r.LocalAddr.AsSlice()}
		case r.PreferIPv6:
			clone.LocalAddr = &net.TCPAddr{IP: net.IPv6zero}
		}
		dialer = &clone
	}

	connectFn := &ConnectFunc{
		Dialer:        dialer,
		ErrClassifier: r.cfg.ErrClassifier,
		Logger:        r.logger,
		Network:       "tcp",
		TimeNow:       r.cfg.TimeNow,
	}
	pipe := Compose3(connectFn, NewObserveConnFunc(r.cfg, r.logger), NewCancelWatchFunc())
	return pipe.Call(ctx, dest)
}
