// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import "net/netip"

// LookupIPStrategy selects which address families [Resolver] returns and in
// what order, which in turn is the schedule [TCPRacer] dials in.
type LookupIPStrategy int

const (
	// StrategySystem defers entirely to the system resolver's own
	// ordering. This is the default.
	StrategySystem LookupIPStrategy = iota

	// StrategyIpv4Only returns only IPv4 addresses.
	StrategyIpv4Only

	// StrategyIpv6Only returns only IPv6 addresses.
	StrategyIpv6Only

	// StrategyIpv4thenIpv6 returns all IPv4 addresses before any IPv6 one.
	StrategyIpv4thenIpv6

	// StrategyIpv6thenIpv4 returns all IPv6 addresses before any IPv4 one.
	StrategyIpv6thenIpv4
)

// preferIPv6 reports whether this strategy should make the TCP racer bind
// an IPv6 socket when no local address is configured, per spec.md §4.4.
func (s LookupIPStrategy) preferIPv6() bool {
	return s == StrategyIpv6Only || s == StrategyIpv6thenIpv4
}

// apply filters and reorders addrs according to the strategy. The relative
// order within each family is preserved.
func (s LookupIPStrategy) apply(addrs []netip.Addr) []netip.Addr {
	switch s {
	case StrategyIpv4Only:
		return filterFamily(addrs, true)
	case StrategyIpv6Only:
		return filterFamily(addrs, false)
	case StrategyIpv4thenIpv6:
		return append(filterFamily(addrs, true), filterFamily(addrs, false)...)
	case StrategyIpv6thenIpv4:
		return append(filterFamily(addrs, false), filterFamily(addrs, true)...)
	default: // StrategySystem
		return addrs
	}
}

// filterFamily returns the subset of addrs matching the requested family
// (v4 when wantV4 is true, v6 otherwise).
func filterFamily(addrs []netip.Addr, wantV4 bool) []netip.Addr {
	out := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		if a.Is4() == wantV4 {
			out = append(out, a)
		}
	}
	return out
}
