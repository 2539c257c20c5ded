package pacediag

import (
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/apex/log/handlers/logfmt"
)

// Reporter receives diagnostics from the data-plane primitives. Every
// fatal or degraded-capability path reports here before returning to the
// caller, tagged with the component it came from. Implementations must be
// safe for use from multiple workers.
type Reporter interface {
	// Warnf reports a recoverable or degraded condition.
	Warnf(component, format string, args ...interface{})

	// Errorf reports a fatal condition. The error is still returned to
	// the caller through the usual return values.
	Errorf(component, format string, args ...interface{})
}

type logReporter struct {
	l *log.Logger
}

// New returns a Reporter writing logfmt records to stderr.
func New() Reporter {
	return &logReporter{
		l: &log.Logger{
			Handler: logfmt.New(os.Stderr),
			Level:   log.WarnLevel,
		},
	}
}

func (r *logReporter) Warnf(component, format string, args ...interface{}) {
	r.l.WithField("component", component).Warnf(format, args...)
}

func (r *logReporter) Errorf(component, format string, args ...interface{}) {
	r.l.WithField("component", component).Errorf(format, args...)
}

var (
	defaultOnce     sync.Once
	defaultReporter Reporter
)

// Default returns the process-wide stderr Reporter.
func Default() Reporter {
	defaultOnce.Do(func() {
		defaultReporter = New()
	})
	return defaultReporter
}

// Nop discards all diagnostics.
type Nop struct{}

func (Nop) Warnf(string, string, ...interface{})  {}
func (Nop) Errorf(string, string, ...interface{}) {}
