// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewClient returns a client with every documented default.
func TestNewClientDefaults(t *testing.T) {
	client := NewClient()
	require.NotNil(t, client)
	assert.Equal(t, StrategySystem, client.lookupStrategy)
	assert.Equal(t, []string{"h2", "http/1.1"}, client.alpnProtocols)
	assert.Equal(t, defaultUserAgent, client.userAgent)
	assert.NotNil(t, client.cfg)
}

// NewRequest carries default headers onto every new request.
func TestClientNewRequestDefaultHeaders(t *testing.T) {
	client, err := NewClientBuilder().DefaultHeader("X-Test", "1").Build()
	require.NoError(t, err)

	req, err := client.NewRequest("GET", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", req.Header.Get("X-Test"))
}

// NewRequest reports a URI parse error via the public error taxonomy.
func TestClientNewRequestInvalidURL(t *testing.T) {
	client := NewClient()
	_, err := client.NewRequest("GET", "http://%zz")

	var tagged *Error
	require.ErrorAs(t, err, &tagged)
	assert.Equal(t, KindURIParse, tagged.Kind)
}

// NewRequestBuilder defers a construction error to Build rather than
// panicking.
func TestClientNewRequestBuilderInvalidURL(t *testing.T) {
	client := NewClient()
	_, err := client.Get("http://%zz").Build()
	assert.Error(t, err)
}

// ClientBuilder setters are independent: each configures only its own field.
func TestClientBuilderSetters(t *testing.T) {
	client, err := NewClientBuilder().
		LookupIPStrategy(StrategyIpv4Only).
		AlpnProtocols([]string{"http/1.1"}).
		NameServers([]string{"udp://8.8.8.8:53"}).
		SkipTLSVerify(true).
		Build()
	require.NoError(t, err)

	assert.Equal(t, StrategyIpv4Only, client.lookupStrategy)
	assert.Equal(t, []string{"http/1.1"}, client.alpnProtocols)
	assert.Equal(t, []string{"udp://8.8.8.8:53"}, client.nameServers)
	assert.True(t, client.skipTLSVerify)
}
