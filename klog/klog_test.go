package klog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
)

func TestBootLogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, logiface.LevelInformational)
	Boot(l, "kernel booted", map[string]any{"policy": "mlfqs"})
	out := buf.String()
	assert.Contains(t, out, "kernel booted")
	assert.Contains(t, out, "mlfqs")
}

func TestThreadEventBelowInfoThresholdIsSuppressed(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, logiface.LevelInformational)
	ThreadEvent(l, "context switch", 3, "idle", "RUNNING")
	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestThreadEventAtDebugThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, logiface.LevelDebug)
	ThreadEvent(l, "context switch", 3, "idle", "RUNNING")
	assert.Contains(t, buf.String(), "context switch")
}

func TestFaultLogsErrChain(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, logiface.LevelError)
	Fault(l, "corrupt TCB", errors.New("magic mismatch"))
	assert.Contains(t, buf.String(), "magic mismatch")
}

func TestNopSuppressesEverything(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		Boot(l, "should not render", nil)
		Exhausted(l, "should not render", errors.New("x"))
	})
}
