package kernel

import (
	"github.com/gothread/tinykernel/kerr"
	"github.com/gothread/tinykernel/klog"
)

// TIDError is returned by Create when no page is available for the new
// TCB; the caller decides policy, matching TID_ERROR in the original.
const TIDError = -1

// Create allocates and starts a new thread named name at priority, whose
// body is entry(arg). It returns the new thread's tid, or TIDError if no
// page is available. If the new thread outranks the calling thread, the
// caller yields to it immediately.
func (k *Kernel) Create(name string, priority int, entry func(arg any), arg any) int {
	if priority < PriMin || priority > PriMax {
		k.fault("thread_create: priority %d out of range", priority)
	}

	page, ok := k.pages.Alloc()
	if !ok {
		klog.Exhausted(k.log, "thread_create: page allocation failed", kerr.NewExhausted("no free TCB pages", nil))
		return TIDError
	}

	t := newTCB(k, k.allocateTID(), name, priority)
	t.pageHandle = page

	go func() {
		<-t.park
		k.big.Lock()
		k.depth = t.intrDepth
		k.IntrEnable(false) // step (a): enable interrupts before running the body
		entry(arg)
		k.Exit()
	}()

	old := k.IntrDisable()
	t.intrDepth = 1 // new threads start "inside schedule()" with interrupts off
	k.unblockLocked(t)
	k.preemptIfOutranked()
	k.IntrEnable(old)

	klog.ThreadEvent(k.log, "thread created", t.tid, t.name, t.status.String())
	return t.tid
}

// Block sets the calling thread BLOCKED and invokes the scheduler. The
// caller is responsible for having arranged, before calling Block, for
// some other operation to eventually Unblock it.
func (k *Kernel) Block() {
	old := k.IntrDisable()
	curr := k.current
	if curr == k.idle {
		// idle's own loop blocks itself between scheduling slots; this is
		// the expected steady state, not a fault.
	}
	curr.status = StatusBlocked
	k.schedule()
	k.IntrEnable(old)
}

// Unblock moves t from BLOCKED to READY, inserting it into ready_set in
// priority order. It does not yield; callers may batch several unblocks
// before checking for preemption.
func (k *Kernel) Unblock(t *TCB) {
	old := k.IntrDisable()
	k.unblockLocked(t)
	k.IntrEnable(old)
}

func (k *Kernel) unblockLocked(t *TCB) {
	if t.status != StatusBlocked {
		k.fault("thread_unblock: %q has status %s, want BLOCKED", t.name, t.status)
	}
	t.status = StatusReady
	k.readySet.InsertOrdered(&t.link, lessEffectivePriority)
	if k.current == k.idle {
		// idle is parked standing in for a halted CPU; this is the
		// interrupt that wakes it back up to reconsider pick_next.
		k.idle.resume()
	}
}

// Yield gives up the CPU voluntarily: the calling thread stays READY,
// reinserted into ready_set in priority order, and the scheduler is
// invoked. Never valid from ISR context.
func (k *Kernel) Yield() {
	old := k.IntrDisable()
	k.yieldLocked()
	k.IntrEnable(old)
}

// yieldLocked is Yield's body for callers that already hold the big lock
// (preemptIfOutranked, which SetPriority and SetNice reach it through,
// and Checkpoint).
func (k *Kernel) yieldLocked() {
	curr := k.current
	if curr != k.idle {
		curr.status = StatusReady
		k.readySet.InsertOrdered(&curr.link, lessEffectivePriority)
	} else {
		curr.status = StatusBlocked
	}
	k.schedule()
}

// Exit terminates the calling thread. It does not return: the thread's
// goroutine unwinds via runtime.Goexit once the scheduler has switched
// away from it.
func (k *Kernel) Exit() {
	old := k.IntrDisable()
	k.current.status = StatusDying
	klog.ThreadEvent(k.log, "thread exiting", k.current.tid, k.current.name, k.current.status.String())
	k.schedule()
	k.IntrEnable(old) // unreachable: schedule() never returns for a DYING thread
}

// SetPriority updates the calling thread's base priority (a no-op under
// MLFQS, where nice/recent_cpu drive priority instead), recomputes its
// effective priority from any donations, and checks for preemption.
func (k *Kernel) SetPriority(priority int) {
	if priority < PriMin || priority > PriMax {
		k.fault("thread_set_priority: %d out of range", priority)
	}
	old := k.IntrDisable()
	defer k.IntrEnable(old)
	if k.useMLFQS {
		return
	}
	k.current.basePriority = priority
	k.current.priority = k.current.effectivePriority()
	k.preemptIfOutranked()
}

// GetPriority returns the calling thread's current effective priority.
func (k *Kernel) GetPriority() int {
	old := k.IntrDisable()
	defer k.IntrEnable(old)
	return k.current.priority
}

// runIdle is the idle thread's body, standing in for Pintos's
// `for(;;) { thread_block(); asm("sti; hlt"); }`. schedule() skips the
// actual context switch whenever pick_next returns the caller itself
// (ready_set empty, matching the original's `cur != next` guard), so after
// blocking this loop checks whether it is still current: if so, no other
// goroutine took the baton, and "sti; hlt" is simulated by releasing the
// big lock and parking for a future resume, the same way any other thread
// waits between scheduling slots.
func (k *Kernel) runIdle() {
	<-k.idle.park
	k.big.Lock()
	k.depth = k.idle.intrDepth
	for {
		k.idle.status = StatusBlocked
		k.schedule()
		if k.current == k.idle {
			k.depth = 0
			k.big.Unlock()
			<-k.idle.park
			k.big.Lock()
			k.depth = k.idle.intrDepth
		}
	}
}
