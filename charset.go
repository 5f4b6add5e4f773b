//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/response.rs (text_with_charset), using
// golang.org/x/text in place of encoding_rs per SPEC_FULL.md's domain stack.
//

package httptrace

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// charsetFromContentType extracts the charset parameter from a Content-Type
// header value, falling back to defaultEncoding when absent or malformed.
func charsetFromContentType(contentType, defaultEncoding string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultEncoding
	}
	if charset, ok := params["charset"]; ok && charset != "" {
		return charset
	}
	return defaultEncoding
}

// decodeWithCharset decodes data using the named encoding, falling back to
// treating it as already-UTF-8 when the label is unknown, mirroring
// encoding_rs's Encoding::for_label(...).unwrap_or(UTF_8) behavior.
func decodeWithCharset(data []byte, name string) (string, error) {
	enc, err := htmlindex.Get(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return string(data), nil
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", newError(KindBody, err)
	}
	return string(decoded), nil
}
