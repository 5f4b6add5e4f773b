// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResponse(statusCode int, header http.Header, body string) *Response {
	if header == nil {
		header = make(http.Header)
	}
	return newResponse(&http.Response{
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	})
}

// newResponse copies every field from the underlying http.Response.
func TestNewResponse(t *testing.T) {
	resp := newTestResponse(200, nil, "hello")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "HTTP/1.1", resp.Proto)
	assert.NotNil(t, resp.Extensions())

	n, ok := resp.ContentLength()
	require.True(t, ok)
	assert.EqualValues(t, 5, n)
}

// Bytes reads the whole body and closes it.
func TestResponseBytes(t *testing.T) {
	resp := newTestResponse(200, nil, "hello")
	data, err := resp.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

// Text decodes the body as UTF-8 by default.
func TestResponseText(t *testing.T) {
	resp := newTestResponse(200, nil, "hello")
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

// TextWithCharset honors the Content-Type header's charset parameter.
func TestResponseTextWithCharset(t *testing.T) {
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	resp := newTestResponse(200, header, "hello")

	text, err := resp.TextWithCharset("iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

// Chunk returns successive pieces of the body and nil, nil at EOF.
func TestResponseChunk(t *testing.T) {
	resp := newTestResponse(200, nil, "hello")

	chunk, err := resp.Chunk()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(chunk))

	chunk, err = resp.Chunk()
	require.NoError(t, err)
	assert.Nil(t, chunk)
}

// Close closes the body without reading it.
func TestResponseClose(t *testing.T) {
	resp := newTestResponse(200, nil, "hello")
	require.NoError(t, resp.Close())
}
