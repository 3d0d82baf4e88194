package kernel

import (
	"github.com/gothread/tinykernel/fixedpoint"
	"github.com/gothread/tinykernel/klist"
	"github.com/gothread/tinykernel/platform"
)

// Status is a TCB's position in the thread lifecycle.
type Status int32

const (
	StatusBlocked Status = iota
	StatusReady
	StatusRunning
	StatusDying
)

func (s Status) String() string {
	switch s {
	case StatusBlocked:
		return "BLOCKED"
	case StatusReady:
		return "READY"
	case StatusRunning:
		return "RUNNING"
	case StatusDying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

const (
	// PriMin is the lowest effective priority a thread may hold.
	PriMin = 0
	// PriMax is the highest effective priority a thread may hold.
	PriMax = 63
	// PriDefault is the priority new threads receive unless given otherwise.
	PriDefault = 31

	// NiceMin and NiceMax bound the MLFQ nice value.
	NiceMin = -20
	NiceMax = 20
	// NiceDefault is the nice value new threads receive under MLFQS.
	NiceDefault = 0

	// donationMaxDepth bounds the recursive walk up a chain of lock holders
	// when propagating a priority donation, breaking the cycle a malformed
	// or adversarial wait-for graph could otherwise induce.
	donationMaxDepth = 8

	// tcbMagic is a sentinel written at TCB construction and checked on
	// every access that rounds a stack pointer down to recover a TCB.
	tcbMagic = 0xcd6abf4b

	// timeSlice is, in ticks, how long a thread runs before the tick hook
	// requests a post-ISR preemption (C9/C5 TIME_SLICE).
	timeSlice = 4
)

// donation records that from currently boosts the receiving TCB's effective
// priority because it is waiting on lock.
type donation struct {
	from *TCB
	lock *Lock
}

// TCB is a thread control block. One exists per kernel thread for its
// entire lifetime, created by Kernel.Create and freed by the scheduler
// once the thread has exited and a later schedule drains the destruction
// set. Pintos recovers the TCB from a thread's own stack pointer; this
// simulation instead gives each TCB a dedicated goroutine and parks it on
// its own channel between scheduling slots, so pointer identity does the
// job stack-pointer arithmetic does in the original.
type TCB struct {
	tid  int
	name string

	status       Status
	priority     int // effective priority
	basePriority int
	donations    []donation
	waitingOn    *Lock

	wakeupTick uint64

	nice      int
	recentCpu fixedpoint.Q

	magic uint32

	// link is the single intrusive list node this TCB uses to belong to
	// whichever one of ready_set / sleep_set / a waiter set / the
	// destruction set it currently occupies. The invariant that a thread
	// is in at most one such set at a time (§3) means one node suffices.
	link klist.Node[*TCB]

	// park is the baton: exactly one pending signal wakes this thread's
	// goroutine to continue running kernel code. intrDepth is this
	// thread's own interrupt-disable nesting, saved across being switched
	// out and restored when it is switched back in.
	park      chan struct{}
	intrDepth int

	entry func(arg any)
	arg   any

	// pageHandle is the page this TCB's allocation accounting occupies,
	// mirroring palloc_get_page/palloc_free_page. Nil for the initial and
	// idle threads, which are never freed.
	pageHandle []byte

	// addrSpace is activated, unconditionally, on every switch into this
	// thread (process_activate), even though this kernel never populates
	// anything but the degenerate kernel-only address space (Non-goal: no
	// user processes).
	addrSpace platform.AddressSpace

	k *Kernel
}

func newTCB(k *Kernel, tid int, name string, priority int) *TCB {
	t := &TCB{
		tid:          tid,
		name:         name,
		status:       StatusBlocked,
		priority:     priority,
		basePriority: priority,
		nice:         NiceDefault,
		recentCpu:    fixedpoint.Zero,
		magic:        tcbMagic,
		park:         make(chan struct{}, 1),
		addrSpace:    platform.KernelAddressSpace{},
		k:            k,
	}
	t.link.Value = t
	return t
}

func (t *TCB) checkMagic() {
	if t.magic != tcbMagic {
		t.k.fault("thread_check_magic: corrupt TCB %q (tid=%d)", t.name, t.tid)
	}
}

// TID returns the thread's identifier.
func (t *TCB) TID() int { return t.tid }

// Name returns the thread's display name.
func (t *TCB) Name() string { return t.name }

// Status returns the thread's current lifecycle state.
func (t *TCB) Status() Status { return t.status }

// Priority returns the thread's current effective priority.
func (t *TCB) Priority() int { return t.priority }

// Nice returns the thread's MLFQ nice value.
func (t *TCB) Nice() int { return t.nice }

// RecentCPU returns the thread's raw 17.14 fixed-point recent_cpu estimate.
func (t *TCB) RecentCPU() fixedpoint.Q { return t.recentCpu }

func (t *TCB) resume() {
	select {
	case t.park <- struct{}{}:
	default:
	}
}

// effectivePriority recomputes priority as max(base_priority, donors...).
// It does not write t.priority; callers apply the result explicitly so
// that donation bookkeeping and the stored field stay in lock-step.
func (t *TCB) effectivePriority() int {
	eff := t.basePriority
	for _, d := range t.donations {
		if d.from.priority > eff {
			eff = d.from.priority
		}
	}
	return eff
}

func lessEffectivePriority(a, b *TCB) bool {
	return a.priority > b.priority
}
