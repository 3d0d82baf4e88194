package kernel

import (
	"testing"
	"time"

	"github.com/gothread/tinykernel/platform"
)

// newTestKernel boots a Kernel on the calling goroutine, which becomes the
// initial thread for the remainder of the test. Tests that must keep
// driving ticks/assertions while the initial thread is blocked (Sleep,
// Down, Wait) make that blocking call from a spawned goroutine and drive
// ticks/assertions from the one that called this; a test that only
// continues once the initial thread is woken (TestFIFOWithinPriority)
// blocks it on the calling goroutine directly.
func newTestKernel(t *testing.T, mlfqs bool) *Kernel {
	t.Helper()
	k := New(&Config{MLFQS: mlfqs, Pages: platform.NewPagePool(64)})
	return k
}

// awaitWithin fails the test if fn doesn't close done within d.
func awaitWithin(t *testing.T, done <-chan struct{}, d time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for goroutine completion")
	}
}
