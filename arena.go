package decimate

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// Scalar is the set of vertex-buffer precisions the engine accepts,
// named in the configuration surface as VertexFormatFloat32 /
// VertexFormatFloat64. Arenas and Vec3 are generic over it so the same
// pool machinery backs either format.
type Scalar = constraints.Float

// Handle is a stable 32-bit index into an arena pool. The zero value is
// not reserved (index 0 is a valid live record); InvalidHandle is the
// sentinel meaning "none".
type Handle uint32

// InvalidHandle denotes the absence of a reference, matching the
// teacher's NewMesh defaults where zero-value pointer-likes meant
// empty.
const InvalidHandle Handle = ^Handle(0)

// Pool is a fixed-growth arena of T records addressed by Handle, with a
// free list of retired slots. It generalizes the teacher's
// TrianglePool/PointPool/MatrixPool trio in object_pool.go (each a
// flat slice with a bump index and a mutex) into one generic type that
// also supports retirement, since the decimation engine must reclaim
// merged vertices and degenerated triangles rather than only ever
// growing.
type Pool[T any] struct {
	mu    sync.Mutex
	items []T
	free  []Handle
	cap   int // vertexalloc-style upper bound; 0 means unbounded
}

// NewPool preallocates capacity items of storage, matching the
// teacher's NewTrianglePool(capacity)/NewPointPool(capacity)
// eager-allocation idiom so the steady-state loop never allocates.
func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{items: make([]T, 0, capacity)}
}

// SetLimit bounds the pool to at most n live+retired records ever
// allocated; Alloc beyond the limit reports ok=false so callers can
// degrade gracefully (§7 ResourceExhausted).
func (p *Pool[T]) SetLimit(n int) {
	p.mu.Lock()
	p.cap = n
	p.mu.Unlock()
}

// Alloc returns a handle to a fresh or recycled record, preferring the
// free list (a single retired handle push/pop, per §9's pointer-graph
// rationale) over growing the backing slice.
func (p *Pool[T]) Alloc() (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		var zero T
		p.items[h] = zero
		return h, true
	}

	if p.cap > 0 && len(p.items) >= p.cap {
		return InvalidHandle, false
	}

	p.items = append(p.items, *new(T))
	return Handle(len(p.items) - 1), true
}

// Release pushes h onto the free list for reuse. The caller is
// responsible for having already unlinked every reference to h.
func (p *Pool[T]) Release(h Handle) {
	p.mu.Lock()
	p.free = append(p.free, h)
	p.mu.Unlock()
}

// At returns a pointer to the record addressed by h. It does not lock:
// callers in the parallel driver hold partition ownership (or the
// syncstep barrier) before dereferencing, per the concurrency model in
// §5.
func (p *Pool[T]) At(h Handle) *T {
	return &p.items[h]
}

// Len reports the number of slots ever allocated (including retired
// ones still sitting in the free list).
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
