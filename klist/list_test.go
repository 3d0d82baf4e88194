package klist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	node     Node[*item]
	priority int
}

func newItem(priority int) *item {
	it := &item{priority: priority}
	it.node.Value = it
	return it
}

func lessByPriority(a, b *item) bool {
	return a.priority > b.priority
}

func TestPushBackFIFO(t *testing.T) {
	l := New[*item]()
	a, b, c := newItem(1), newItem(1), newItem(1)
	l.PushBack(&a.node)
	l.PushBack(&b.node)
	l.PushBack(&c.node)

	assert.Equal(t, 3, l.Len())
	assert.Same(t, a, l.PopFront().Value)
	assert.Same(t, b, l.PopFront().Value)
	assert.Same(t, c, l.PopFront().Value)
	assert.True(t, l.Empty())
}

func TestInsertOrderedDescendingStable(t *testing.T) {
	l := New[*item]()
	lo1 := newItem(10)
	hi := newItem(40)
	lo2 := newItem(10)
	mid := newItem(20)

	l.InsertOrdered(&lo1.node, lessByPriority)
	l.InsertOrdered(&hi.node, lessByPriority)
	l.InsertOrdered(&lo2.node, lessByPriority)
	l.InsertOrdered(&mid.node, lessByPriority)

	var order []int
	for n := l.Front(); n != nil; n = n.Next() {
		order = append(order, n.Value.priority)
	}
	assert.Equal(t, []int{40, 20, 10, 10}, order)

	first := l.PopFront()
	assert.Same(t, hi, first.Value)
	assert.Same(t, mid, l.PopFront().Value)
	assert.Same(t, lo1, l.PopFront().Value) // equal priorities keep insertion order
	assert.Same(t, lo2, l.PopFront().Value)
}

func TestRemoveMidList(t *testing.T) {
	l := New[*item]()
	a, b, c := newItem(0), newItem(0), newItem(0)
	l.PushBack(&a.node)
	l.PushBack(&b.node)
	l.PushBack(&c.node)

	Remove(&b.node)
	assert.Equal(t, 2, l.Len())
	assert.False(t, b.node.Linked())

	var remaining []*item
	for n := l.Front(); n != nil; n = n.Next() {
		remaining = append(remaining, n.Value)
	}
	assert.Equal(t, []*item{a, c}, remaining)
}

func TestRemoveNotLinkedIsNoop(t *testing.T) {
	it := newItem(0)
	assert.NotPanics(t, func() { Remove(&it.node) })
}
