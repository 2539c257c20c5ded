package pacediag

import (
	"fmt"
	"sync"
)

type Level int

const (
	LevelWarn Level = iota
	LevelError
)

type Record struct {
	Level     Level
	Component string
	Message   string
}

// Capture is a Reporter which records diagnostics in memory, for tests.
type Capture struct {
	mu      sync.Mutex
	records []Record
}

func (c *Capture) Warnf(component, format string, args ...interface{}) {
	c.append(LevelWarn, component, format, args...)
}

func (c *Capture) Errorf(component, format string, args ...interface{}) {
	c.append(LevelError, component, format, args...)
}

func (c *Capture) append(level Level, component, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, Record{
		Level:     level,
		Component: component,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (c *Capture) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = c.records[:0]
}
