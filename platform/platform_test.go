package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickSourceFires(t *testing.T) {
	ts, err := NewTickSource(5 * time.Millisecond)
	assert.NoError(t, err)
	defer ts.Close()

	select {
	case <-ts.Ticks():
	case <-time.After(time.Second):
		t.Fatal("tick source never fired")
	}
}

func TestTickSourceStopsAfterClose(t *testing.T) {
	ts, err := NewTickSource(2 * time.Millisecond)
	assert.NoError(t, err)
	assert.NoError(t, ts.Close())

	select {
	case <-ts.Ticks():
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPagePoolExhaustion(t *testing.T) {
	p := NewPagePool(2)
	a, ok := p.Alloc()
	assert.True(t, ok)
	assert.Len(t, a, PageSize)

	b, ok := p.Alloc()
	assert.True(t, ok)

	_, ok = p.Alloc()
	assert.False(t, ok)

	p.Free(a)
	_, ok = p.Alloc()
	assert.True(t, ok)

	p.Free(b)
}

func TestKernelAddressSpaceActivateIsNoop(t *testing.T) {
	var as KernelAddressSpace
	assert.NotPanics(t, func() { as.Activate() })
}
