//go:build linux

package pace

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/pktpace/pace/paceerrors"
	"github.com/pktpace/pace/util"
	"golang.org/x/sys/unix"
)

// sockTxTime mirrors struct sock_txtime from linux/net_tstamp.h.
type sockTxTime struct {
	Clockid int32
	Flags   uint32
}

const (
	sofTxTimeDeadlineMode = 1 << 0
	sofTxTimeReportErrors = 1 << 1
)

// EnableTxTime turns on SO_TXTIME against CLOCK_MONOTONIC, the capability
// precondition for SendScheduled. The egress interface still needs an etf
// or fq qdisc for the kernel to honor transmit timestamps.
func (s *Socket) EnableTxTime(deadlineMode, reportErrors bool) error {
	cfg := sockTxTime{Clockid: unix.CLOCK_MONOTONIC}
	if deadlineMode {
		cfg.Flags |= sofTxTimeDeadlineMode
	}
	if reportErrors {
		cfg.Flags |= sofTxTimeReportErrors
	}

	raw := (*[unsafe.Sizeof(cfg)]byte)(unsafe.Pointer(&cfg))[:]
	if err := unix.SetsockoptString(s.fd, unix.SOL_SOCKET, unix.SO_TXTIME, string(raw)); err != nil {
		return fmt.Errorf("enable txtime: %w", err)
	}
	return nil
}

// txControl builds the sendmsg control buffer: an SCM_TXTIME record when
// an absolute transmit timestamp is requested and an IP_TOS record when a
// tag is requested. Returns nil when neither is.
func txControl(txTimeNanos uint64, tos int) []byte {
	var space int
	if txTimeNanos > 0 {
		space += unix.CmsgSpace(8)
	}
	if tos >= 0 {
		space += unix.CmsgSpace(4)
	}
	if space == 0 {
		return nil
	}

	buf := make([]byte, space)
	off := 0
	if txTimeNanos > 0 {
		h := (*unix.Cmsghdr)(unsafe.Pointer(&buf[off]))
		h.Level = unix.SOL_SOCKET
		h.Type = unix.SCM_TXTIME
		h.SetLen(unix.CmsgLen(8))
		*(*uint64)(unsafe.Pointer(&buf[off+unix.CmsgLen(0)])) = txTimeNanos
		off += unix.CmsgSpace(8)
	}
	if tos >= 0 {
		h := (*unix.Cmsghdr)(unsafe.Pointer(&buf[off]))
		h.Level = unix.IPPROTO_IP
		h.Type = unix.IP_TOS
		h.SetLen(unix.CmsgLen(4))
		*(*int32)(unsafe.Pointer(&buf[off+unix.CmsgLen(0)])) = int32(tos)
		off += unix.CmsgSpace(4)
	}
	return buf
}

// SendScheduled issues one send carrying b plus out-of-band control data:
// a kernel transmit time of now+delay on the monotonic clock when delay
// is positive, and a Type-of-Service tag when tos is not TOSUnset. With
// neither requested it degenerates to a plain blocking write.
//
// Capability failures are classified and terminal: the socket was not
// configured for transmit-time control, the kernel or driver does not
// support it, or the process lacks the privilege. None of them is
// retryable; callers should treat them as "scheduling unavailable" and
// fall back to unscheduled sends.
func (s *Socket) SendScheduled(b []byte, delay time.Duration, tos int) (int, error) {
	var txTimeNanos uint64
	if delay > 0 {
		txTimeNanos = uint64(util.MonoNanos() + delay.Nanoseconds())
	}

	oob := txControl(txTimeNanos, tos)
	if oob == nil {
		n, err := syscall.Write(s.fd, b)
		if err != nil {
			s.rep.Errorf("sendsched", "write errno=%v", err)
			return 0, fmt.Errorf("write: %w", err)
		}
		return n, nil
	}

	n, err := unix.SendmsgN(s.fd, b, oob, nil, 0)
	if err != nil {
		switch err {
		case unix.EINVAL:
			s.rep.Errorf("sendsched", "control message not configured on socket")
			return 0, paceerrors.ErrCapabilityNotConfigured
		case unix.EOPNOTSUPP:
			s.rep.Errorf("sendsched", "control message not supported by kernel or driver")
			return 0, paceerrors.ErrCapabilityUnsupported
		case unix.EPERM:
			s.rep.Errorf("sendsched", "permission denied, may need CAP_NET_ADMIN")
			return 0, paceerrors.ErrCapabilityPermission
		}
		s.rep.Errorf("sendsched", "sendmsg errno=%v", err)
		return 0, fmt.Errorf("sendmsg: %w", err)
	}
	return n, nil
}
