// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type racerRecorder struct {
	BaseRecorder
	mu      sync.Mutex
	started []netip.AddrPort
	done    []netip.AddrPort
}

func (r *racerRecorder) OnTCPStart(req *Request, dest netip.AddrPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, dest)
}

func (r *racerRecorder) OnTCPDone(req *Request, dest netip.AddrPort, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, dest)
}

// Race returns the first connection to succeed.
func TestTCPRacerFirstSucceeds(t *testing.T) {
	good := netip.MustParseAddrPort("1.1.1.1:443")
	bad := netip.MustParseAddrPort("2.2.2.2:443")

	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			if address == good.String() {
				conn := newMinimalConn()
				conn.CloseFunc = func() error { return nil }
				return conn, nil
			}
			return nil, errors.New("connection refused")
		},
	}

	// The second address is only tried once fallbackInterval (3s) elapses,
	// so the race timeout must exceed it.
	racer := NewTCPRacer(cfg, nil, false, 5*time.Second, DefaultSLogger())
	recorder := &racerRecorder{}
	req := NewRequest("GET", mustParseURL(t, "https://example.com"))

	conn, err := racer.Race(context.Background(), req, recorder, []netip.AddrPort{bad, good})
	require.NoError(t, err)
	require.NotNil(t, conn)
	conn.Close()
}

// Race returns ErrAllTCPConnectFailed when every address fails.
func TestTCPRacerAllFail(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		},
	}

	// The second address is only tried once fallbackInterval (3s) elapses,
	// so the race timeout must exceed it.
	racer := NewTCPRacer(cfg, nil, false, 5*time.Second, DefaultSLogger())
	recorder := &racerRecorder{}
	req := NewRequest("GET", mustParseURL(t, "https://example.com"))

	addrs := []netip.AddrPort{
		netip.MustParseAddrPort("1.1.1.1:443"),
		netip.MustParseAddrPort("2.2.2.2:443"),
	}
	_, err := racer.Race(context.Background(), req, recorder, addrs)
	assert.ErrorIs(t, err, ErrAllTCPConnectFailed)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	assert.Len(t, recorder.started, 2)
	assert.Len(t, recorder.done, 2)
}

// Race returns ErrTCPDeadlineExceeded when Timeout elapses before any
// attempt succeeds.
func TestTCPRacerTimeout(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	racer := NewTCPRacer(cfg, nil, false, 10*time.Millisecond, DefaultSLogger())
	recorder := &racerRecorder{}
	req := NewRequest("GET", mustParseURL(t, "https://example.com"))

	_, err := racer.Race(context.Background(), req, recorder, []netip.AddrPort{
		netip.MustParseAddrPort("1.1.1.1:443"),
	})
	assert.ErrorIs(t, err, ErrTCPDeadlineExceeded)
}

func mustParseURL(t *testing.T, rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u
}
