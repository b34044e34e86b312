package decimate

import "container/heap"

// opEntry is one pending collapse candidate living in a partition's
// heap: a per-edge cost snapshot, lazily invalidated by marking stale
// rather than removed from the middle of the heap, mirroring the
// teacher's EdgeHeap/SimplificationEdge pairing in
// mesh_simplification.go.
type opEntry struct {
	edge  Handle
	cost  float64
	stale bool
	index int // backpointer into the owning heap's backing slice
}

// edgeHeap is a binary min-heap over *opEntry keyed by (cost,
// tiebreak edge handle), implementing container/heap.Interface exactly
// as the teacher's EdgeHeap does, generalized with an
// edge-handle→*opEntry index so update/remove can locate an entry by
// handle instead of linear scan.
type edgeHeap struct {
	entries []*opEntry
	byEdge  map[Handle]*opEntry
}

func newEdgeHeap() *edgeHeap {
	h := &edgeHeap{byEdge: make(map[Handle]*opEntry)}
	heap.Init(h)
	return h
}

func (h *edgeHeap) Len() int { return len(h.entries) }

func (h *edgeHeap) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	return a.edge < b.edge // deterministic tiebreak
}

func (h *edgeHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}

func (h *edgeHeap) Push(x any) {
	e := x.(*opEntry)
	e.index = len(h.entries)
	h.entries = append(h.entries, e)
}

func (h *edgeHeap) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	h.entries = old[:n-1]
	e.index = -1
	return e
}

// push inserts a fresh operation for edge at the given cost, replacing
// any existing (now-stale) entry for the same edge.
func (h *edgeHeap) push(edge Handle, cost float64) {
	if old, ok := h.byEdge[edge]; ok {
		old.stale = true
	}
	e := &opEntry{edge: edge, cost: cost}
	h.byEdge[edge] = e
	heap.Push(h, e)
}

// popMin pops and returns the cheapest non-stale operation, discarding
// stale entries along the way. Returns ok=false when the heap is
// exhausted of live entries.
func (h *edgeHeap) popMin() (edge Handle, cost float64, ok bool) {
	for h.Len() > 0 {
		e := heap.Pop(h).(*opEntry)
		if e.stale {
			continue
		}
		delete(h.byEdge, e.edge)
		return e.edge, e.cost, true
	}
	return InvalidHandle, 0, false
}

// peekMinCost reports the cheapest non-stale operation's cost without
// removing it, skipping (and dropping) any stale head entries. Used by
// the driver to test an operation's cost against the current
// syncstep's ceiling before committing to a pop.
func (h *edgeHeap) peekMinCost() (cost float64, ok bool) {
	for h.Len() > 0 {
		e := h.entries[0]
		if !e.stale {
			return e.cost, true
		}
		heap.Pop(h)
	}
	return 0, false
}

// update reprioritizes edge's live operation to newCost in place, or
// is a no-op if edge has no live operation (it was already popped or
// never pushed).
func (h *edgeHeap) update(edge Handle, newCost float64) {
	e, ok := h.byEdge[edge]
	if !ok {
		return
	}
	e.cost = newCost
	heap.Fix(h, e.index)
}

// remove marks edge's live operation stale so a future pop discards it
// without disturbing heap order.
func (h *edgeHeap) remove(edge Handle) {
	e, ok := h.byEdge[edge]
	if !ok {
		return
	}
	e.stale = true
	delete(h.byEdge, edge)
}
