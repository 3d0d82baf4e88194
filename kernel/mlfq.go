package kernel

import "github.com/gothread/tinykernel/fixedpoint"

// secondTicks is how many ticks make up one second at the simulated timer
// frequency, the boundary at which load_avg and every thread's recent_cpu
// are recomputed (TIMER_FREQ in the original).
const secondTicks = 100

// mlfqBumpRunning adds one tick of recent_cpu to whichever thread is
// currently running, unless it is the idle thread. Called once per tick.
func (k *Kernel) mlfqBumpRunning() {
	if k.current != k.idle {
		k.current.recentCpu = k.current.recentCpu.AddInt(1)
	}
}

// mlfqRecomputePriorities recomputes priority = PRI_MAX - recent_cpu/4 -
// nice*2, clamped to [PriMin, PriMax], for every thread the scheduler knows
// about (running, ready, sleeping), then re-sorts ready_set since relative
// order may have changed. Runs every TIME_SLICE ticks under MLFQS.
func (k *Kernel) mlfqRecomputePriorities() {
	k.mlfqRecomputeOne(k.current)
	for n := k.readySet.Front(); n != nil; n = n.Next() {
		k.mlfqRecomputeOne(n.Value)
	}
	for n := k.sleepSet.Front(); n != nil; n = n.Next() {
		k.mlfqRecomputeOne(n.Value)
	}
	k.reorderReadySet()
}

func (k *Kernel) mlfqRecomputeOne(t *TCB) {
	if t == k.idle {
		return
	}
	p := fixedpoint.FromInt(PriMax).Sub(t.recentCpu.DivInt(4)).Sub(fixedpoint.FromInt(t.nice * 2))
	pri := p.ToIntRound()
	if pri < PriMin {
		pri = PriMin
	}
	if pri > PriMax {
		pri = PriMax
	}
	t.priority = pri
	t.basePriority = pri
}

// reorderReadySet re-sorts ready_set by current priority; a MLFQ recompute
// can reshuffle relative order without any thread itself moving in or out
// of the set.
func (k *Kernel) reorderReadySet() {
	var held []*TCB
	for n := k.readySet.PopFront(); n != nil; n = k.readySet.PopFront() {
		held = append(held, n.Value)
	}
	for _, t := range held {
		k.readySet.InsertOrdered(&t.link, lessEffectivePriority)
	}
}

// mlfqRecomputeLoad recomputes load_avg from the current ready-thread count
// and then every known thread's recent_cpu from the new load_avg. Runs once
// per second under MLFQS.
func (k *Kernel) mlfqRecomputeLoad() {
	ready := k.readySet.Len()
	if k.current != k.idle {
		ready++
	}
	fiftyNine60 := fixedpoint.FromInt(59).Div(fixedpoint.FromInt(60))
	one60 := fixedpoint.FromInt(1).Div(fixedpoint.FromInt(60))
	k.loadAvg = fiftyNine60.Mul(k.loadAvg).Add(one60.MulInt(ready))

	k.mlfqDecayOne(k.current)
	for n := k.readySet.Front(); n != nil; n = n.Next() {
		k.mlfqDecayOne(n.Value)
	}
	for n := k.sleepSet.Front(); n != nil; n = n.Next() {
		k.mlfqDecayOne(n.Value)
	}
}

func (k *Kernel) mlfqDecayOne(t *TCB) {
	if t == k.idle {
		return
	}
	coeff := k.loadAvg.MulInt(2).Div(k.loadAvg.MulInt(2).AddInt(1))
	t.recentCpu = coeff.Mul(t.recentCpu).AddInt(t.nice)
}

// SetNice sets the calling thread's MLFQ nice value, recomputes its
// priority immediately, and checks for preemption.
func (k *Kernel) SetNice(nice int) {
	if nice < NiceMin || nice > NiceMax {
		k.fault("thread_set_nice: %d out of range", nice)
	}
	old := k.IntrDisable()
	defer k.IntrEnable(old)
	k.current.nice = nice
	k.mlfqRecomputeOne(k.current)
	k.preemptIfOutranked()
}

// GetNice returns the calling thread's nice value.
func (k *Kernel) GetNice() int {
	old := k.IntrDisable()
	defer k.IntrEnable(old)
	return k.current.nice
}

// GetLoadAvg returns 100*load_avg, rounded to the nearest integer, matching
// the original's reporting convention of shifting the fixed-point value
// into a human-readable percentage-like integer.
func (k *Kernel) GetLoadAvg() int {
	old := k.IntrDisable()
	defer k.IntrEnable(old)
	return k.loadAvg.MulInt(100).ToIntRound()
}

// GetRecentCPU returns 100*recent_cpu for the calling thread, rounded to
// the nearest integer.
func (k *Kernel) GetRecentCPU() int {
	old := k.IntrDisable()
	defer k.IntrEnable(old)
	return k.current.recentCpu.MulInt(100).ToIntRound()
}
