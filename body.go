//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/body.rs.
//

package httptrace

import (
	"bytes"
	"io"
)

// Body is a request body.
//
// A Body constructed from in-memory bytes is reusable: [*Body.TryClone]
// succeeds and the same content can back a retried request. A Body
// constructed from an [io.Reader] is streaming: it can be read only once,
// and [*Body.TryClone] reports false.
type Body struct {
	reusable  []byte
	streaming io.Reader
	length    int64
	hasLength bool
}

// NewBodyFromBytes returns a reusable [*Body] wrapping data.
func NewBodyFromBytes(data []byte) *Body {
	return &Body{reusable: data, length: int64(len(data)), hasLength: true}
}

// NewBodyFromString returns a reusable [*Body] wrapping s.
func NewBodyFromString(s string) *Body {
	return NewBodyFromBytes([]byte(s))
}

// NewBodyFromReader returns a streaming [*Body] reading from r. Its content
// length is unknown unless r also implements a Len() int method (as
// [*bytes.Buffer] does); absent that, [*Body.ContentLength] reports false.
func NewBodyFromReader(r io.Reader) *Body {
	body := &Body{streaming: r}
	if sized, ok := r.(interface{ Len() int }); ok {
		body.length, body.hasLength = int64(sized.Len()), true
	}
	return body
}

// EmptyBody returns a reusable, zero-length [*Body].
func EmptyBody() *Body {
	return NewBodyFromBytes(nil)
}

// Bytes returns the body's content and true if it is reusable. It returns
// nil, false for a streaming body.
func (b *Body) Bytes() ([]byte, bool) {
	if b == nil || b.streaming != nil {
		return nil, false
	}
	return b.reusable, true
}

// Reader returns an [io.Reader] over the body's content, suitable for
// sending exactly once.
func (b *Body) Reader() io.Reader {
	if b == nil {
		return nil
	}
	if b.streaming != nil {
		return b.streaming
	}
	return bytes.NewReader(b.reusable)
}

// TryClone returns an independent copy of b and true if b is reusable.
// It returns nil, false for a streaming body, per spec.md's body-cloning
// invariant: only a reusable body supports request retry/redirect.
func (b *Body) TryClone() (*Body, bool) {
	if b == nil {
		return nil, false
	}
	if b.streaming != nil {
		return nil, false
	}
	clone := make([]byte, len(b.reusable))
	copy(clone, b.reusable)
	return &Body{reusable: clone, length: b.length, hasLength: b.hasLength}, true
}

// ContentLength returns the body's length and whether it is known.
func (b *Body) ContentLength() (int64, bool) {
	if b == nil {
		return 0, true
	}
	return b.length, b.hasLength
}
