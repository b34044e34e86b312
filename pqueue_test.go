package decimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeHeapPopsInAscendingCostOrder(t *testing.T) {
	h := newEdgeHeap()
	h.push(Handle(3), 5.0)
	h.push(Handle(1), 1.0)
	h.push(Handle(2), 3.0)

	var order []Handle
	for {
		eh, _, ok := h.popMin()
		if !ok {
			break
		}
		order = append(order, eh)
	}
	assert.Equal(t, []Handle{1, 2, 3}, order)
}

func TestEdgeHeapTieBreaksByHandle(t *testing.T) {
	h := newEdgeHeap()
	h.push(Handle(9), 1.0)
	h.push(Handle(2), 1.0)
	h.push(Handle(5), 1.0)

	var order []Handle
	for {
		eh, _, ok := h.popMin()
		if !ok {
			break
		}
		order = append(order, eh)
	}
	assert.Equal(t, []Handle{2, 5, 9}, order)
}

func TestEdgeHeapPushReplacesStaleEntry(t *testing.T) {
	h := newEdgeHeap()
	h.push(Handle(1), 10.0)
	h.push(Handle(1), 2.0) // should supersede, not duplicate

	cost, ok := h.peekMinCost()
	require.True(t, ok)
	assert.Equal(t, 2.0, cost)

	eh, cost, ok := h.popMin()
	require.True(t, ok)
	assert.Equal(t, Handle(1), eh)
	assert.Equal(t, 2.0, cost)

	_, ok = h.popMin()
	assert.False(t, ok, "the superseded stale entry must never surface")
}

func TestEdgeHeapRemoveSkipsOnPop(t *testing.T) {
	h := newEdgeHeap()
	h.push(Handle(1), 1.0)
	h.push(Handle(2), 2.0)
	h.remove(Handle(1))

	eh, _, ok := h.popMin()
	require.True(t, ok)
	assert.Equal(t, Handle(2), eh)

	_, ok = h.popMin()
	assert.False(t, ok)
}

func TestEdgeHeapUpdateReprioritizes(t *testing.T) {
	h := newEdgeHeap()
	h.push(Handle(1), 5.0)
	h.push(Handle(2), 1.0)
	h.update(Handle(1), 0.5)

	eh, cost, ok := h.popMin()
	require.True(t, ok)
	assert.Equal(t, Handle(1), eh)
	assert.Equal(t, 0.5, cost)
}

func TestEdgeHeapUpdateOnUnknownHandleIsNoop(t *testing.T) {
	h := newEdgeHeap()
	h.push(Handle(1), 1.0)
	h.update(Handle(99), 0.0) // must not panic or insert
	assert.Equal(t, 1, h.Len())
}
