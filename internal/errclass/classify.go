//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/errclass/errclass.go
//

// Package errclass classifies network errors into short, OS-independent
// labels suitable for structured logging and aggregation.
package errclass

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// Generic labels used when no more specific classification applies.
const (
	// EGENERIC is returned for any error that does not match a known class.
	EGENERIC = "egeneric"

	// ETIMEDOUT is returned for any timeout, including context deadlines.
	ETIMEDOUT = "etimedout"
)

// OS-independent labels for common syscall-level failures.
const (
	EADDRNOTAVAIL   = "eaddrnotavail"
	EADDRINUSE      = "eaddrinuse"
	ECONNABORTED    = "econnaborted"
	ECONNREFUSED    = "econnrefused"
	ECONNRESET      = "econnreset"
	EHOSTUNREACH    = "ehostunreach"
	EINVAL          = "einval"
	EINTR           = "eintr"
	ENETDOWN        = "enetdown"
	ENETUNREACH     = "enetunreach"
	ENOBUFS         = "enobufs"
	ENOTCONN        = "enotconn"
	EPROTONOSUPPORT = "eprotonosupport"
)

// New classifies err into one of the labels declared by this package.
//
// It returns the empty string when err is nil, [EGENERIC] when err is
// non-nil but does not match any more specific class.
func New(err error) string {
	if err == nil {
		return ""
	}

	// 1. Context and net.Error timeouts outrank everything else: a dial or
	// I/O operation interrupted by our own deadline is always a timeout
	// regardless of what syscall errno, if any, it also carries.
	if errors.Is(err, context.DeadlineExceeded) {
		return ETIMEDOUT
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ETIMEDOUT
	}

	// 2. Unwrap down to the OS-specific syscall errno, if any.
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if label, ok := classifyErrno(errno); ok {
			return label
		}
	}

	return EGENERIC
}

// classifyErrno maps an OS-specific [syscall.Errno] to one of this
// package's labels, using the build-tagged tables in unix.go/windows.go.
func classifyErrno(errno syscall.Errno) (string, bool) {
	switch errno {
	case errEADDRNOTAVAIL:
		return EADDRNOTAVAIL, true
	case errEADDRINUSE:
		return EADDRINUSE, true
	case errECONNABORTED:
		return ECONNABORTED, true
	case errECONNREFUSED:
		return ECONNREFUSED, true
	case errECONNRESET:
		return ECONNRESET, true
	case errEHOSTUNREACH:
		return EHOSTUNREACH, true
	case errEINVAL:
		return EINVAL, true
	case errEINTR:
		return EINTR, true
	case errENETDOWN:
		return ENETDOWN, true
	case errENETUNREACH:
		return ENETUNREACH, true
	case errENOBUFS:
		return ENOBUFS, true
	case errENOTCONN:
		return ENOTCONN, true
	case errEPROTONOSUPPORT:
		return EPROTONOSUPPORT, true
	case errETIMEDOUT:
		return ETIMEDOUT, true
	default:
		return "", false
	}
}
