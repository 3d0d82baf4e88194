package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests spawn worker threads at a priority above whichever thread is
// current when they're created, so thread_create's "outranks current ->
// yield immediately" rule runs them synchronously up to their first block
// point before Create returns control to the caller. That makes the tests
// deterministic without any wall-clock coordination: a lower-priority
// thread never gets the CPU at all until the higher-priority caller itself
// blocks on a real primitive (a bare time.Sleep on the calling goroutine
// would not hand off the CPU, since nothing pops ready_set until some
// blocking kernel call does).

func TestSemaphoreDownBlocksUntilUp(t *testing.T) {
	k := newTestKernel(t, false)
	sem := NewSemaphore(k, 0)

	ranPastDown := false
	done := make(chan struct{})
	tid := k.Create("waiter", PriDefault+1, func(any) {
		sem.Down()
		ranPastDown = true
		close(done)
	}, nil)
	require.NotEqual(t, TIDError, tid)

	// Create returned, so waiter already ran up to and blocked inside
	// Down(); it cannot have set ranPastDown yet.
	assert.False(t, ranPastDown)

	sem.Up()
	awaitWithin(t, done, time.Second)
	assert.True(t, ranPastDown)
}

func TestSemaphoreUpWakesHighestPriorityWaiter(t *testing.T) {
	k := newTestKernel(t, false)
	sem := NewSemaphore(k, 0)

	var order []string
	k.Create("low", PriDefault+1, func(any) {
		sem.Down()
		order = append(order, "low")
	}, nil)
	k.Create("high", PriDefault+2, func(any) {
		sem.Down()
		order = append(order, "high")
	}, nil)

	sem.Up()
	sem.Up()

	assert.Equal(t, []string{"high", "low"}, order)
}

func TestLockAcquireReleaseMutualExclusion(t *testing.T) {
	k := newTestKernel(t, false)
	l := NewLock(k)

	count := 0
	for i := 0; i < 3; i++ {
		k.Create("worker", PriDefault+1, func(any) {
			l.Acquire()
			count++
			l.Release()
		}, nil)
	}
	assert.Equal(t, 3, count)
}

func TestLockPriorityDonation(t *testing.T) {
	k := newTestKernel(t, false)
	l := NewLock(k)

	l.Acquire() // initial thread (priority PriDefault) now holds l

	highDone := make(chan struct{})
	k.Create("high", PriDefault+10, func(any) {
		// l is held by the initial thread; acquiring here blocks and
		// donates this thread's priority to the holder.
		l.Acquire()
		l.Release()
		close(highDone)
	}, nil)

	// The donation must have raised the initial thread's effective
	// priority to at least the waiter's before Create returned.
	assert.GreaterOrEqual(t, k.GetPriority(), PriDefault+10)

	l.Release()
	awaitWithin(t, highDone, time.Second)

	// Releasing withdrew the donation.
	assert.Equal(t, PriDefault, k.GetPriority())
}

func TestCondSignalWakesOneWaiter(t *testing.T) {
	k := newTestKernel(t, false)
	l := NewLock(k)
	cond := NewCond(k)

	woke := make(chan string, 2)
	for _, name := range []string{"a", "b"} {
		n := name
		k.Create(n, PriDefault+1, func(any) {
			l.Acquire()
			cond.Wait(l)
			l.Release()
			woke <- n
		}, nil)
	}

	l.Acquire()
	cond.Signal()
	l.Release()
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("signal did not wake a waiter")
	}

	select {
	case <-woke:
		t.Fatal("signal woke more than one waiter")
	default:
	}

	l.Acquire()
	cond.Broadcast()
	l.Release()
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("broadcast did not wake the remaining waiter")
	}
}
