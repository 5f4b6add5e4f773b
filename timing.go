// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/client.rs (FALLBACK_INTERVAL, FAR_INTERVAL).

package httptrace

import "time"

const (
	// fallbackInterval is how long the TCP racer waits before starting the
	// next staggered connection attempt (spec.md §4.4).
	fallbackInterval = 3 * time.Second

	// farInterval stands in for "no deadline" in APIs that require a
	// concrete duration: 30 years is long enough that no real request
	// outlives it, while still being a finite, comparable value.
	farInterval = 30 * 365 * 24 * time.Hour
)

// portError is a trivial string-backed error, used for local sentinel
// errors that carry no dynamic state.
type portError string

func (e portError) Error() string { return string(e) }
