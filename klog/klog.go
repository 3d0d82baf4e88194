// Package klog wires the kernel's logging call sites to
// github.com/joeycumines/logiface, backed by zerolog through
// github.com/joeycumines/izerolog. Severities follow logiface's syslog
// scale: thread_create failures and resource exhaustion log at Warning,
// boot milestones at Info, scheduling decisions and context switches at
// Debug/Trace, and invariant violations (paired with a panic at the call
// site) at Err.
package klog

import (
	"io"
	"os"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the concrete logger type used throughout the kernel.
type Logger = logiface.Logger[*izerolog.Event]

// New builds a Logger writing to w (os.Stderr if nil), enabled at level and
// above. level uses logiface's syslog scale (LevelDebug, LevelInformational,
// LevelWarning, LevelError, ...).
func New(w io.Writer, level logiface.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).With().Timestamp().Logger()
	return izerolog.L.New(
		izerolog.L.WithZerolog(zl),
		izerolog.L.WithLevel(level),
	)
}

// Nop returns a Logger with all logging disabled, for use where no boot
// option configured a destination.
func Nop() *Logger {
	return izerolog.L.New(izerolog.L.WithLevel(logiface.LevelEmergency + 1))
}

// Boot logs a boot milestone (Info).
func Boot(l *Logger, msg string, fields map[string]any) {
	withFields(l.Info(), fields).Log(msg)
}

// ThreadEvent logs a scheduling-relevant thread transition (Debug): a
// context switch, a block, an unblock, a yield.
func ThreadEvent(l *Logger, msg string, tid int, name string, status string) {
	l.Debug().Int("tid", tid).Str("name", name).Str("status", status).Log(msg)
}

// Exhausted logs recoverable resource exhaustion (Warning).
func Exhausted(l *Logger, msg string, err error) {
	l.Warning().Err(err).Log(msg)
}

// Fault logs an invariant violation (Err), immediately ahead of the panic
// the caller is about to raise.
func Fault(l *Logger, msg string, err error) {
	l.Err().Err(err).Log(msg)
}

func withFields(b *logiface.Builder[*izerolog.Event], fields map[string]any) *logiface.Builder[*izerolog.Event] {
	for k, v := range fields {
		b = b.Any(k, v)
	}
	return b
}
