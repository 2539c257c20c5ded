package paceerrors

import "errors"

var (
	ErrWouldBlock             = errors.New("operation would block")
	ErrInterrupted            = errors.New("operation interrupted")
	ErrTimeout                = errors.New("operation timed out")
	ErrNoBufferSpaceAvailable = errors.New("no buffer space available")
)

// Capability errors reported by scheduled sends. Each one is terminal for
// the capability: retrying the send cannot change what the socket or the
// kernel supports, so callers should fall back to plain writes instead.
var (
	ErrCapabilityNotConfigured = errors.New("transmit-time control not configured on this socket")
	ErrCapabilityUnsupported   = errors.New("transmit-time control not supported by the kernel or driver")
	ErrCapabilityPermission    = errors.New("transmit-time control permission denied")
)

// IsCapability reports whether err is one of the scheduled-send capability
// errors.
func IsCapability(err error) bool {
	return errors.Is(err, ErrCapabilityNotConfigured) ||
		errors.Is(err, ErrCapabilityUnsupported) ||
		errors.Is(err, ErrCapabilityPermission)
}
