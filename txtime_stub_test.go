//go:build !linux

package pace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendScheduledFallsBackToPlainWrite(t *testing.T) {
	a, b := socketPair(t)

	// No transmit-time control on this platform: the buffer is still
	// delivered in full, untimed and untagged.
	payload := []byte("degraded but delivered")
	n, err := a.SendScheduled(payload, time.Millisecond, 0x10)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	got := make([]byte, len(payload))
	_, err = b.ReadFull(got)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}
