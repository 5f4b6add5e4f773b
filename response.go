//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/response.rs.
//

package httptrace

import (
	"io"
	"net/http"
)

// Response is the result of a successful [*Client.Execute] call.
//
// Body is the raw, unread response body. Exactly one of
// [*Response.Bytes], [*Response.Text], [*Response.TextWithCharset], or
// repeated [*Response.Chunk] calls should be used to consume it. Bytes, Text
// and TextWithCharset close Body; Chunk does not, so a caller reading chunks
// closes it with [*Response.Close].
type Response struct {
	StatusCode int
	Proto      string
	Header     http.Header
	Body       io.ReadCloser

	contentLength int64
	extensions    map[string]any
}

// newResponse wraps an [*http.Response] (as produced by the HTTP/1.1 and
// HTTP/2 transports) into a [*Response].
func newResponse(res *http.Response) *Response {
	return &Response{
		StatusCode:    res.StatusCode,
		Proto:         res.Proto,
		Header:        res.Header,
		Body:          res.Body,
		contentLength: res.ContentLength,
		extensions:    make(map[string]any),
	}
}

// ContentLength returns the body's size and whether it is known. It mirrors
// the Content-Length header, and reports an unknown size when the header is
// absent or when the HTTP/1.1 or HTTP/2 transport transparently decompressed
// a gzip-encoded body (both transports are built with compression enabled).
func (r *Response) ContentLength() (int64, bool) {
	return r.contentLength, r.contentLength >= 0
}

// Extensions returns the per-response extension bag, for recorder- or
// transport-attached metadata not otherwise exposed on [*Response].
func (r *Response) Extensions() map[string]any {
	return r.extensions
}

// Bytes reads the entire body and closes it.
func (r *Response) Bytes() ([]byte, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, newError(KindBody, err)
	}
	return data, nil
}

// Text reads the entire body as UTF-8 text, closing it. It is shorthand for
// [*Response.TextWithCharset] with "utf-8" as the default encoding.
func (r *Response) Text() (string, error) {
	return r.TextWithCharset("utf-8")
}

// TextWithCharset reads the entire body and decodes it using the charset
// named by the response's Content-Type header, falling back to
// defaultEncoding when the header carries none.
func (r *Response) TextWithCharset(defaultEncoding string) (string, error) {
	data, err := r.Bytes()
	if err != nil {
		return "", err
	}
	name := charsetFromContentType(r.Header.Get("Content-Type"), defaultEncoding)
	return decodeWithCharset(data, name)
}

// Chunk reads the next available chunk of the body without buffering the
// whole response in memory. It returns nil, nil at end of body; the caller
// is responsible for calling [*Response.Close] once done.
func (r *Response) Chunk() ([]byte, error) {
	buf := make([]byte, 32*1024)
	n, err := r.Body.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, newError(KindBody, err)
	}
	return nil, nil
}

// Close closes the underlying body without reading it.
func (r *Response) Close() error {
	return r.Body.Close()
}
