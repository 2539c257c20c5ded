package pace

import "sync/atomic"

// Interrupt is a cooperative cancellation flag shared by reference between
// a controller (usually a signal handler) and the transfer loops, which
// poll it once per retry iteration. It is never reset by the primitives
// themselves. After an interrupted transfer returns, the amount serviced
// is indeterminate and the handle should not be reused.
type Interrupt struct {
	flag atomic.Bool
}

// Set marks the interrupt. Safe to call from a signal handler goroutine.
func (i *Interrupt) Set() { i.flag.Store(true) }

// Clear resets the interrupt.
func (i *Interrupt) Clear() { i.flag.Store(false) }

// IsSet reports whether the interrupt is marked. A nil Interrupt is never
// set, so callers which do not need cancellation can pass nil.
func (i *Interrupt) IsSet() bool {
	if i == nil {
		return false
	}
	return i.flag.Load()
}
