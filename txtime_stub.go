//go:build !linux

package pace

import (
	"fmt"
	"syscall"
	"time"

	"github.com/pktpace/pace/paceerrors"
)

// EnableTxTime is a linux-only capability.
func (s *Socket) EnableTxTime(deadlineMode, reportErrors bool) error {
	return paceerrors.ErrCapabilityUnsupported
}

// SendScheduled degrades to an ordinary blocking write on platforms
// without transmit-time control: the buffer is still delivered, untimed
// and untagged.
func (s *Socket) SendScheduled(b []byte, delay time.Duration, tos int) (int, error) {
	if delay > 0 || tos >= 0 {
		s.rep.Warnf("sendsched", "control messages not supported on this platform, sending unscheduled")
	}
	n, err := syscall.Write(s.fd, b)
	if err != nil {
		s.rep.Errorf("sendsched", "write errno=%v", err)
		return 0, fmt.Errorf("write: %w", err)
	}
	return n, nil
}
