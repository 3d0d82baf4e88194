package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromIntToIntRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, -1, 59, -59, 12345} {
		assert.Equal(t, n, FromInt(n).ToIntTrunc())
	}
}

func TestToIntRound(t *testing.T) {
	assert.Equal(t, 2, FromInt(1).Add(FromInt(1).DivInt(2)).ToIntRound())
	assert.Equal(t, -2, FromInt(-1).Sub(FromInt(1).DivInt(2)).ToIntRound())
	assert.Equal(t, 3, FromInt(1).Add(FromInt(1).MulInt(3).DivInt(2)).ToIntRound())
}

func TestLoadAvgFormulaShape(t *testing.T) {
	// load_avg = (59/60)*load_avg + (1/60)*ready_threads, starting from 0
	// with one ready thread held steady should climb toward 1 (60) but never exceed it quickly.
	loadAvg := Zero
	fiftyNineSixtieths := FromInt(59).Div(FromInt(60))
	oneSixtieth := FromInt(1).Div(FromInt(60))
	for i := 0; i < 1000; i++ {
		loadAvg = fiftyNineSixtieths.Mul(loadAvg).Add(oneSixtieth.MulInt(1))
	}
	// should have converged very close to 1.0 after 1000 iterations.
	assert.InDelta(t, 1.0, float64(loadAvg)/float64(scale), 0.01)
}

func TestRecentCPUDecay(t *testing.T) {
	recentCPU := FromInt(100)
	loadAvg := FromInt(2)
	coeff := loadAvg.MulInt(2).Div(loadAvg.MulInt(2).AddInt(1))
	next := coeff.Mul(recentCPU).AddInt(0)
	assert.Less(t, next, recentCPU)
}
