package kernel

import "github.com/gothread/tinykernel/klist"

// Sleep blocks the calling thread until the tick hook observes tickAbs has
// been reached, parking it in sleep_set rather than busy-waiting. The idle
// thread may never call Sleep: it has nothing else to hand the CPU to.
func (k *Kernel) Sleep(tickAbs uint64) {
	old := k.IntrDisable()
	curr := k.current
	if curr == k.idle {
		k.fault("thread_sleep: idle thread cannot sleep")
	}
	curr.wakeupTick = tickAbs
	if tickAbs < k.nextWake {
		k.nextWake = tickAbs
	}
	k.sleepSet.PushBack(&curr.link)
	k.Block()
	k.IntrEnable(old)
}

// awake moves every sleeper whose wakeupTick has arrived from sleep_set to
// ready_set and recomputes next_wake. Called only from ISR context
// (TimerInterrupt), already holding the big lock.
func (k *Kernel) awake(now uint64) {
	var woke []*TCB
	for n := k.sleepSet.Front(); n != nil; {
		next := n.Next()
		if n.Value.wakeupTick <= now {
			klist.Remove(n)
			woke = append(woke, n.Value)
		}
		n = next
	}
	for _, t := range woke {
		k.unblockLocked(t)
	}
	k.recomputeNextWake()
}

// recomputeNextWake scans sleep_set for the soonest wakeupTick still
// pending, restoring the wakeInfinite sentinel if nobody is sleeping. A
// full scan is acceptable here: it only runs after actually waking someone,
// which is already O(sleepers).
func (k *Kernel) recomputeNextWake() {
	min := wakeInfinite
	for n := k.sleepSet.Front(); n != nil; n = n.Next() {
		if n.Value.wakeupTick < min {
			min = n.Value.wakeupTick
		}
	}
	k.nextWake = min
}
