// SPDX-License-Identifier: GPL-3.0-or-later

package httptrace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fallbackInterval and farInterval keep their documented relative
// magnitudes: short enough to stagger TCP attempts, long enough to act as
// "effectively infinite" when no timeout is configured.
func TestTimingConstants(t *testing.T) {
	assert.Equal(t, 3*time.Second, fallbackInterval)
	assert.Greater(t, farInterval, 365*24*time.Hour)
}

// portError implements the error interface with its literal message.
func TestPortError(t *testing.T) {
	err := portError("boom")
	assert.Equal(t, "boom", err.Error())
}
