package kernel

import "github.com/gothread/tinykernel/platform"

// TimerInterrupt is the tick hook (C9), invoked once per simulated clock
// tick from the platform.TickSource driver goroutine, never from a
// scheduled thread's own goroutine. Because of that it must never perform
// the actual context switch itself (contextSwitch assumes it runs on the
// departing thread's own goroutine stack): where the original's timer
// interrupt handler would call intr_yield_on_return, this sets
// Kernel.yieldOnReturn instead, and the running thread applies it the next
// time it calls Checkpoint.
func (k *Kernel) TimerInterrupt() {
	k.big.Lock()
	defer k.big.Unlock()

	k.ticks++
	now := k.ticks

	if k.current == k.idle {
		k.idleTicks++
	} else {
		k.kernelTicks++
	}

	if k.useMLFQS {
		k.mlfqBumpRunning()
		if now%timeSlice == 0 {
			k.mlfqRecomputePriorities()
		}
		if now%secondTicks == 0 {
			k.mlfqRecomputeLoad()
		}
	}

	if now >= k.nextWake {
		k.awake(now)
	}

	k.sliceTicks++
	if head := k.readySet.Front(); head != nil && head.Value.priority > k.current.priority {
		k.yieldOnReturn = true
	}
	if k.sliceTicks >= timeSlice {
		k.yieldOnReturn = true
	}
}

// Checkpoint is the cooperative preemption point a running thread's body
// calls periodically (analogous to the instruction boundary at which a real
// CPU services a pending interrupt): if TimerInterrupt requested a yield
// since the last Checkpoint, this performs it now. A thread that never
// calls Checkpoint and never invokes any other blocking kernel operation
// will run to completion without being time-sliced, a limitation of
// simulating preemption over cooperatively scheduled goroutines rather than
// real hardware interrupts.
func (k *Kernel) Checkpoint() {
	old := k.IntrDisable()
	if k.yieldOnReturn {
		k.yieldOnReturn = false
		k.yieldLocked()
	}
	k.IntrEnable(old)
}

// RunTickSource drives TimerInterrupt from src until the channel it returns
// from Ticks is closed or done is closed, wiring platform.TickSource into
// the scheduler. Intended to run on its own goroutine for the lifetime of
// the kernel.
func (k *Kernel) RunTickSource(src platform.TickSource, done <-chan struct{}) {
	ticks := src.Ticks()
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
			k.TimerInterrupt()
		case <-done:
			return
		}
	}
}
