// SPDX-License-Identifier: GPL-3.0-or-later

// Package httptrace provides an instrumented HTTP/1.1 and HTTP/2 client that
// reports, phase by phase, how long DNS resolution, TCP connect, and the TLS
// handshake took, and why any of them failed.
//
// # Core Abstraction
//
// Connection establishment is built from composable primitives sharing a
// single interface:
//
//	type Func[A, B any] interface {
//		Call(ctx context.Context, input A) (B, error)
//	}
//
// Each Func represents an atomic network operation with exactly one success
// mode and one failure mode. This design enables type-safe composition via
// [Compose2], [Compose3], etc., where the compiler verifies that outputs
// match inputs across pipeline stages. [Client.Execute] composes these
// primitives — [Resolver], [TCPRacer], [TLSHandshakeFunc], [HTTPConnFunc] —
// into the connection establishment pipeline described below; most callers
// never touch the primitives directly.
//
// # Connection Establishment Pipeline
//
//   - [Resolver]: resolves a host to addresses, honoring DNS overrides, a
//     configurable lookup strategy, and a per-phase timeout.
//   - [TCPRacer]: dials every candidate address in a staggered, Happy
//     Eyeballs-style race, returning the first live connection and
//     cancelling the rest.
//   - [TLSHandshakeFunc]: performs the TLS handshake over the winning
//     connection, negotiating ALPN.
//   - [HTTPConnFunc]: wraps the resulting connection with an HTTP/1.1 or
//     HTTP/2 transport (chosen from the negotiated ALPN) and performs the
//     round trip, with structured logging and transparent body observation.
//
// Every request gets a fresh connection: there is no pooling, keep-alive
// reuse, proxying, redirect following, cookie jar, or retry policy. Each
// [Client.Execute] call runs the whole pipeline from scratch. The underlying
// HTTP/1.1 and HTTP/2 transports keep their default gzip handling: they ask
// for gzip and decode a gzip-encoded response body transparently.
//
// # Observation
//
// A [Recorder] is invoked at every phase boundary (DNS, per-destination TCP,
// TLS, request) so callers can attribute wall time to a stage instead of
// only seeing a final latency number. [StatsRecorder] is the bundled
// implementation, producing a [Stats] report; implement [Recorder] directly
// for custom telemetry.
//
// # Structured Logging
//
// Independently of [Recorder], every primitive supports structured logging
// via [SLogger] (compatible with [log/slog]).
//
// By default, logging is disabled. Set the Logger field to a custom
// [*slog.Logger] to enable logging. Error classification is configurable via
// [ErrClassifier]; by default, [DefaultErrClassifier] maps errors to
// OS-independent labels.
//
// Primitives emit two kinds of structured log events:
//
//   - Span events (*Start/*Done pairs): Record operation lifecycle including
//     timing and success/failure. Used for latency analysis and error tracking.
//
//   - Wire observations (e.g., dnsQuery/dnsResponse): Capture protocol-level
//     messages for dig-like UI output and protocol debugging.
//
// The [SLogger] interface accepts any slog-compatible handler, enabling flexible
// post-processing. Handlers can filter, transform, or route events as needed.
//
// All events share a common set of fields: localAddr, remoteAddr, protocol,
// and t (timestamp). Completion events (*Done) additionally include t0 (start
// time), err, and errClass. I/O-level events (read, write, deadline changes)
// are emitted at [slog.LevelDebug]; all other events use [slog.LevelInfo].
//
// Use [NewSpanID] to generate a unique, time-ordered identifier (UUIDv7) for each
// request, then attach it to the logger with [*slog.Logger.With]. All log entries
// from that request will share the same spanID, enabling correlation across
// pipeline stages and simplifying log analysis.
//
// # Timeout and Context Philosophy
//
// This package is context-transparent: operations never modify the context they receive.
// [Client.Execute] derives one overall deadline from [Request.Timeout], else
// the client-wide timeout set by [ClientBuilder.Timeout], else an
// effectively-infinite one, and threads it through every phase; per-phase
// timeouts configured on [ClientBuilder] bound DNS, TCP, and TLS individually
// within that overall deadline.
//
// Connection lifecycle requires [CancelWatchFunc] to bind the context lifecycle to
// the connection: when the context is done, the connection is closed immediately,
// causing any in-progress I/O to fail. This enables responsive ^C handling via
// [signal.NotifyContext] and ensures that blocking I/O respects the context deadline.
//
// # Design Boundaries
//
// Out of scope, treated as thin collaborators: the ergonomic request builder,
// [Body]'s streaming/reusable variants, response decoding ([Response.Text],
// [Response.TextWithCharset]), and URI parsing. These wrap well-known HTTP
// data types and intentionally contain little logic of their own.
package httptrace
