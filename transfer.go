package pace

import (
	"fmt"
	"io"
	"syscall"

	"github.com/pktpace/pace/paceerrors"
	"golang.org/x/sys/unix"
)

// RecvMode selects how RecvFull waits for data.
type RecvMode int

const (
	// RecvWaitAll blocks until the full buffer is received, the peer
	// closes, a fatal error occurs or the interrupt fires.
	RecvWaitAll RecvMode = iota

	// RecvPeek waits until the full buffer is observable without
	// consuming it, distinguishing no-data-yet from an orderly close.
	RecvPeek
)

// transientErrno is the retry policy shared by every transfer loop: these
// conditions cost latency but no progress. Everything else is fatal. The
// same classification applies to stream and datagram handles so both
// paths behave identically.
func transientErrno(errno error) bool {
	return errno == syscall.EINTR || errno == syscall.EAGAIN || errno == syscall.EWOULDBLOCK
}

// ReadFull reads until b is full or the stream ends. A return shorter
// than len(b) with a nil error means the stream hit EOF; it is not a
// failure. Interruption by signal retries with no progress.
func (s *Socket) ReadFull(b []byte) (int, error) {
	nleft := len(b)
	for nleft > 0 {
		n, err := syscall.Read(s.fd, b[len(b)-nleft:])
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			s.rep.Errorf("read", "errno=%v after %d bytes", err, len(b)-nleft)
			return len(b) - nleft, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			break // EOF
		}
		nleft -= n
	}
	return len(b) - nleft, nil
}

// RecvFull receives until b is full, in the given mode. Both modes poll
// intr once per loop iteration and abort with ErrInterrupted; a nil intr
// never fires.
//
// In RecvWaitAll mode the return counts consumed bytes; an orderly peer
// close surfaces as io.EOF together with the bytes received before it.
// In RecvPeek mode nothing is consumed: the return is len(b) once that
// much is observable, or 0 with io.EOF if the peer closed first.
func (s *Socket) RecvFull(b []byte, mode RecvMode, intr *Interrupt) (int, error) {
	if mode == RecvPeek {
		return s.recvPeek(b, intr)
	}

	nleft := len(b)
	for nleft > 0 {
		if intr.IsSet() {
			return len(b) - nleft, paceerrors.ErrInterrupted
		}
		n, _, err := unix.Recvfrom(s.fd, b[len(b)-nleft:], unix.MSG_WAITALL)
		if err != nil {
			if transientErrno(err) {
				continue
			}
			s.rep.Errorf("recv", "errno=%v after %d bytes", err, len(b)-nleft)
			return len(b) - nleft, fmt.Errorf("recv: %w", err)
		}
		if n == 0 {
			// Orderly close with the request only partly serviced.
			return len(b) - nleft, io.EOF
		}
		nleft -= n
	}
	return len(b), nil
}

// recvPeek waits for len(b) bytes to be observable without consuming
// them. A zero-byte peek is ambiguous between "no data yet" and "peer
// closed", so it is resolved with a nonblocking single-byte probe; only a
// zero-byte probe confirms the close.
func (s *Socket) recvPeek(b []byte, intr *Interrupt) (int, error) {
	var probe [1]byte
	for {
		if intr.IsSet() {
			return 0, paceerrors.ErrInterrupted
		}
		n, _, err := unix.Recvfrom(s.fd, b, unix.MSG_PEEK)
		if err != nil {
			if transientErrno(err) {
				continue
			}
			s.rep.Errorf("recv", "peek errno=%v", err)
			return 0, fmt.Errorf("recv peek: %w", err)
		}
		if n == len(b) {
			return n, nil
		}
		if n == 0 {
			pn, _, perr := unix.Recvfrom(s.fd, probe[:], unix.MSG_DONTWAIT|unix.MSG_PEEK)
			if perr == nil && pn == 0 {
				return 0, io.EOF
			}
			if perr != nil && transientErrno(perr) {
				continue // no data yet, connection still open
			}
			if perr != nil {
				s.rep.Errorf("recv", "peek probe errno=%v", perr)
				return 0, fmt.Errorf("recv peek probe: %w", perr)
			}
		}
	}
}

// WriteFull writes all of b unless a fatal error or the interrupt stops
// it; the return always carries the bytes written so far. callCount, when
// non-nil, is incremented once per underlying write attempt so callers
// can account for syscall rates; it is not used internally. Interruption,
// would-block and zero-byte writes retry without progress.
func (s *Socket) WriteFull(b []byte, callCount *int, intr *Interrupt) (int, error) {
	nleft := len(b)
	for nleft > 0 {
		if intr.IsSet() {
			return len(b) - nleft, paceerrors.ErrInterrupted
		}
		n, err := syscall.Write(s.fd, b[len(b)-nleft:])
		if callCount != nil {
			*callCount++
		}
		if err != nil {
			if transientErrno(err) {
				continue
			}
			s.rep.Errorf("write", "errno=%v after %d bytes", err, len(b)-nleft)
			return len(b) - nleft, fmt.Errorf("write: %w", err)
		}
		if n == 0 {
			continue // write timeout, retry
		}
		nleft -= n
	}
	return len(b), nil
}
