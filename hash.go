package decimate

import "sync"

// edgeKey is the canonical, unordered key for an edge: the two vertex
// handles with the smaller stored first.
type edgeKey struct{ lo, hi Handle }

func newEdgeKey(a, b Handle) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// triKey is the canonical key for a triangle: its three vertex handles
// sorted ascending, used to detect the duplicate triangles a collapse
// can produce.
type triKey [3]Handle

func newTriKey(a, b, c Handle) triKey {
	k := triKey{a, b, c}
	// 3-element sort, unrolled (no need for sort.Slice on a fixed triple).
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	if k[1] > k[2] {
		k[1], k[2] = k[2], k[1]
	}
	if k[0] > k[1] {
		k[0], k[1] = k[1], k[0]
	}
	return k
}

// hashShardCount is the number of independent lock domains per hash
// table. A fixed power-of-two shard count keyed by a cheap hash of
// the key gives each spatial partition (see partition.go) mostly
// independent lock traffic without coupling the hash table's internal
// layout to the partition count.
const hashShardCount = 64

// shardedHash is a concurrent map sharded across hashShardCount
// independent lock domains, so concurrent collapse workers touching
// different parts of the mesh rarely contend on the same mutex.
// findOrInsert/remove/lookup all resolve to exactly one shard's mutex.
type shardedHash[K comparable, V any] struct {
	shards [hashShardCount]struct {
		mu sync.Mutex
		m  map[K]V
	}
}

func newShardedHash[K comparable, V any]() *shardedHash[K, V] {
	h := &shardedHash[K, V]{}
	for i := range h.shards {
		h.shards[i].m = make(map[K]V)
	}
	return h
}

func shardIndex[K comparable](k K) uint64 {
	// fnv-1a-style mixing over the key's handles (one whole 32-bit
	// handle per step, not byte by byte) via a type switch on the two key
	// kinds this package ever hashes; avoids a reflect-based generic
	// hash for a fixed, small set of key types.
	switch v := any(k).(type) {
	case edgeKey:
		h := uint64(14695981039346656037)
		for _, b := range []Handle{v.lo, v.hi} {
			h ^= uint64(b)
			h *= 1099511628211
		}
		return h
	case triKey:
		h := uint64(14695981039346656037)
		for _, b := range v {
			h ^= uint64(b)
			h *= 1099511628211
		}
		return h
	default:
		return 0
	}
}

func (h *shardedHash[K, V]) shardFor(k K) *struct {
	mu sync.Mutex
	m  map[K]V
} {
	return &h.shards[shardIndex(k)%hashShardCount]
}

// FindOrInsert returns the existing value for k, or inserts and
// returns the value created by new_ if k was absent. inserted reports
// which happened, letting triangle insertion count collisions on the
// "already existed" branch.
func (h *shardedHash[K, V]) FindOrInsert(k K, new_ func() V) (v V, inserted bool) {
	s := h.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[k]; ok {
		return existing, false
	}
	v = new_()
	s.m[k] = v
	return v, true
}

// Lookup reports the value for k without inserting.
func (h *shardedHash[K, V]) Lookup(k K) (v V, ok bool) {
	s := h.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok = s.m[k]
	return
}

// Insert unconditionally sets k to v, overwriting any prior entry
// (used when an edge's canonical key changes after a collapse rewires
// one endpoint).
func (h *shardedHash[K, V]) Insert(k K, v V) {
	s := h.shardFor(k)
	s.mu.Lock()
	s.m[k] = v
	s.mu.Unlock()
}

// Remove deletes k if present.
func (h *shardedHash[K, V]) Remove(k K) {
	s := h.shardFor(k)
	s.mu.Lock()
	delete(s.m, k)
	s.mu.Unlock()
}
