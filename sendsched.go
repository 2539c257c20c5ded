package pace

import "time"

// TOSUnset skips Type-of-Service tagging on scheduled sends.
const TOSUnset = -1

// SendTagged sends b with a Type-of-Service tag and no transmit-time
// scheduling.
func (s *Socket) SendTagged(b []byte, tos int) (int, error) {
	return s.SendScheduled(b, 0, tos)
}

// SendDelayed sends b scheduled to leave the interface delay from now,
// with no Type-of-Service tag.
func (s *Socket) SendDelayed(b []byte, delay time.Duration) (int, error) {
	return s.SendScheduled(b, delay, TOSUnset)
}
