package kernel

import "github.com/gothread/tinykernel/klist"

// Semaphore is a classic counting semaphore: Down blocks while value is
// zero, Up increments and wakes the highest-priority waiter. Every other
// synchronization primitive in this package (Lock, Cond) is built on one,
// matching synch.c's layering in the original.
type Semaphore struct {
	k       *Kernel
	value   int
	waiters *klist.List[*TCB]
}

// NewSemaphore returns a semaphore initialized to value.
func NewSemaphore(k *Kernel, value int) *Semaphore {
	return &Semaphore{k: k, value: value, waiters: klist.New[*TCB]()}
}

// Down waits for the semaphore to become positive, then atomically
// decrements it.
func (s *Semaphore) Down() {
	old := s.k.IntrDisable()
	defer s.k.IntrEnable(old)
	for s.value == 0 {
		curr := s.k.current
		s.waiters.InsertOrdered(&curr.link, lessEffectivePriority)
		s.k.Block()
	}
	s.value--
}

// Up increments the semaphore and, if any thread was waiting, unblocks the
// highest-priority one. If that thread now outranks the caller, the caller
// yields before returning.
func (s *Semaphore) Up() {
	old := s.k.IntrDisable()
	defer s.k.IntrEnable(old)
	n := popHighestPriority(s.waiters)
	s.value++
	if n != nil {
		s.k.unblockLocked(n.Value)
		s.k.preemptIfOutranked()
	}
}

// popHighestPriority removes and returns the highest-effective-priority
// waiter in l, rescanning rather than trusting insertion order: a waiter
// enqueued via InsertOrdered can have its effective priority raised later
// by donation, leaving the list's original order stale. Matches sema_up
// re-sorting sema->waiters before popping.
func popHighestPriority(l *klist.List[*TCB]) *klist.Node[*TCB] {
	best := l.Front()
	if best == nil {
		return nil
	}
	for n := best.Next(); n != nil; n = n.Next() {
		if n.Value.priority > best.Value.priority {
			best = n
		}
	}
	klist.Remove(best)
	return best
}

// Value returns the semaphore's current count, for tests and diagnostics.
func (s *Semaphore) Value() int {
	old := s.k.IntrDisable()
	defer s.k.IntrEnable(old)
	return s.value
}

// Lock is a binary semaphore with an owner and priority donation: a thread
// blocked trying to acquire a held lock lends the holder its own effective
// priority, transitively up a bounded chain of nested locks, so a
// low-priority holder cannot stall a higher-priority waiter indefinitely.
type Lock struct {
	k      *Kernel
	holder *TCB
	sem    *Semaphore
}

// NewLock returns an unheld lock.
func NewLock(k *Kernel) *Lock {
	return &Lock{k: k, sem: NewSemaphore(k, 1)}
}

// Acquire blocks until the lock is free, donating priority to the current
// holder (and transitively up its own wait chain) while it waits.
func (l *Lock) Acquire() {
	old := l.k.IntrDisable()
	curr := l.k.current
	if curr == l.holder {
		l.k.fault("lock_acquire: %q already holds this lock", curr.name)
	}
	if l.holder != nil {
		curr.waitingOn = l
		l.holder.donations = append(l.holder.donations, donation{from: curr, lock: l})
		l.k.donatePriority(curr)
	}
	l.k.IntrEnable(old)

	l.sem.Down()

	old = l.k.IntrDisable()
	curr.waitingOn = nil
	l.holder = curr
	l.k.IntrEnable(old)
}

// Release gives up the lock, withdrawing any donations it was the reason
// for, recomputing the caller's own effective priority, and waking the
// highest-priority waiter if one exists.
func (l *Lock) Release() {
	old := l.k.IntrDisable()
	curr := l.holder
	if curr != l.k.current {
		l.k.fault("lock_release: %q does not hold this lock", l.k.current.name)
	}
	kept := curr.donations[:0]
	for _, d := range curr.donations {
		if d.lock != l {
			kept = append(kept, d)
		}
	}
	curr.donations = kept
	curr.priority = curr.effectivePriority()
	l.holder = nil
	l.k.IntrEnable(old)

	l.sem.Up()
}

// HeldByCurrent reports whether the calling thread holds l.
func (l *Lock) HeldByCurrent() bool {
	old := l.k.IntrDisable()
	defer l.k.IntrEnable(old)
	return l.holder == l.k.current
}

// donatePriority walks the chain of locks curr is waiting on, raising each
// holder's priority to curr's where that would improve it, bounded by
// donationMaxDepth so a cycle (or an unreasonably deep wait chain) cannot
// loop forever. Only the immediate lock's donations list is ever recorded;
// holders further up the chain get their priority field bumped directly,
// matching the original's donate_priority, and will see it reflected again
// in their own donations list once they themselves contend on a lock.
func (k *Kernel) donatePriority(curr *TCB) {
	t := curr
	for depth := 0; t.waitingOn != nil && depth < donationMaxDepth; depth++ {
		holder := t.waitingOn.holder
		if holder == nil || holder.priority >= t.priority {
			return
		}
		holder.priority = t.priority
		t = holder
	}
}

// Cond is a condition variable used together with a Lock: Wait atomically
// releases the lock and blocks, Signal and Broadcast wake waiters, which
// reacquire the lock before returning. Each waiter parks on its own
// semaphore rather than the condition variable holding one shared
// semaphore, so Signal can target exactly the highest-priority waiter.
type Cond struct {
	k       *Kernel
	waiters *klist.List[*condWaiter]
}

type condWaiter struct {
	sem  *Semaphore
	tcb  *TCB
	link klist.Node[*condWaiter]
}

// NewCond returns a condition variable with no waiters.
func NewCond(k *Kernel) *Cond {
	return &Cond{k: k, waiters: klist.New[*condWaiter]()}
}

// Wait releases l, blocks until signaled, then reacquires l before
// returning. l must be held by the caller.
func (c *Cond) Wait(l *Lock) {
	w := &condWaiter{sem: NewSemaphore(c.k, 0), tcb: c.k.current}
	w.link.Value = w

	old := c.k.IntrDisable()
	c.waiters.InsertOrdered(&w.link, func(a, b *condWaiter) bool {
		return a.tcb.priority > b.tcb.priority
	})
	c.k.IntrEnable(old)

	l.Release()
	w.sem.Down()
	l.Acquire()
}

// Signal wakes the highest-priority waiter, if any. No-op if nobody is
// waiting.
func (c *Cond) Signal() {
	old := c.k.IntrDisable()
	n := c.waiters.PopFront()
	c.k.IntrEnable(old)
	if n != nil {
		n.Value.sem.Up()
	}
}

// Broadcast wakes every current waiter, highest priority first.
func (c *Cond) Broadcast() {
	for {
		old := c.k.IntrDisable()
		n := c.waiters.PopFront()
		c.k.IntrEnable(old)
		if n == nil {
			return
		}
		n.Value.sem.Up()
	}
}
