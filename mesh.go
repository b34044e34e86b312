package decimate

import "sync/atomic"

// edgeFlags records per-edge state.
type edgeFlags uint16

const (
	edgeBoundary       edgeFlags = 1 << iota // exactly one incident triangle
	edgeLocked                               // BOUNDARY_LOCK: refuses collapse
	edgeNonManifold                          // more than 2 incident triangles
	edgeCrossPartition                       // endpoints' owning triangles span partitions
)

// vertexRecord holds one arena-pooled vertex. tris is the
// unordered incidence list; redirect is InvalidHandle until the
// vertex is merged away by a collapse.
type vertexRecord[F Scalar] struct {
	pos       Vec3[F]
	quadric   Quadric
	area      float64
	normal    Vec3[F]
	hasNormal bool
	tris      []Handle
	redirect  Handle
	partition int
	gen       uint32
}

func (v *vertexRecord[F]) live() bool { return v.redirect == InvalidHandle }

// triangleRecord holds one arena-pooled triangle: three
// vertex handles in winding order, the three edge handles bounding it,
// and its precomputed plane (reused both for vertex quadric refresh
// and orientation checks in collapse.go).
type triangleRecord struct {
	v         [3]Handle
	edges     [3]Handle
	nx, ny, nz, d float64
	area      float64
	partition int
	retired   bool
	gen       uint32
}

// edgeRecord holds one arena-pooled edge.
type edgeRecord struct {
	v0, v1    Handle // canonical: v0 < v1
	tris      []Handle
	cost      float64
	penalty   float64
	point     [3]float64
	partition int
	flags     edgeFlags
	retired   bool
	stale     bool
}

func (e *edgeRecord) key() edgeKey { return newEdgeKey(e.v0, e.v1) }

// mesh is the internal, generic-over-precision working representation
// built from a caller's Buffers and mutated in place by the collapse
// executor (collapse.go) until the parallel driver (driver.go)
// terminates. It owns every arena and canonical lookup table the
// engine needs.
type mesh[F Scalar] struct {
	vertices  *Pool[vertexRecord[F]]
	triangles *Pool[triangleRecord]
	edges     *Pool[edgeRecord]

	edgeIndex *shardedHash[edgeKey, Handle]
	triIndex  *shardedHash[triKey, Handle]

	liveTriangles int64
	liveVertices  int64
	collisions    atomic.Int64 // canonical-hash collision count
	decimations   atomic.Int64 // accepted collapse count

	windingCCW bool
}

// buildMesh constructs the internal mesh from buf: allocates the
// vertex/triangle/edge arenas, registers every triangle's three edges
// in the canonical hash, and accumulates area-weighted plane quadrics
// onto each vertex, mirroring the teacher's
// buildSimplificationMesh + computeQuadrics but against arena handles
// instead of pointer-linked structs.
func buildMesh[F Scalar](buf Buffers, windingCCW bool) *mesh[F] {
	vertexCap := buf.VertexCap()
	if vertexCap < buf.VertexCount() {
		vertexCap = buf.VertexCount()
	}

	m := &mesh[F]{
		vertices:   NewPool[vertexRecord[F]](vertexCap),
		triangles:  NewPool[triangleRecord](buf.TriangleCount()),
		edges:      NewPool[edgeRecord](buf.TriangleCount() * 2),
		edgeIndex:  newShardedHash[edgeKey, Handle](),
		triIndex:   newShardedHash[triKey, Handle](),
		windingCCW: windingCCW,
	}
	m.vertices.SetLimit(vertexCap)

	for i := 0; i < buf.VertexCount(); i++ {
		h, _ := m.vertices.Alloc()
		x, y, z := buf.VertexAt(i)
		v := m.vertices.At(h)
		v.pos = Vec3FromFloat64[F](x, y, z)
		v.redirect = InvalidHandle
		if nx, ny, nz, ok := buf.Normal(i); ok {
			v.normal = Vec3FromFloat64[F](nx, ny, nz)
			v.hasNormal = true
		}
	}
	m.liveVertices = int64(buf.VertexCount())

	for i := 0; i < buf.TriangleCount(); i++ {
		a, b, c := buf.TriangleAt(i)
		m.addTriangle(Handle(a), Handle(b), Handle(c))
	}

	for _, h := range m.allLiveEdges() {
		e := m.edges.At(h)
		if len(e.tris) == 1 {
			e.flags |= edgeBoundary
		} else if len(e.tris) > 2 {
			e.flags |= edgeNonManifold
		}
	}

	return m
}

// addTriangle allocates a triangle referencing (a,b,c), computes its
// plane, accumulates its area-weighted quadric onto the three
// vertices, and registers (or attaches to) its three canonical edges.
// Returns InvalidHandle without allocating if the triangle is
// degenerate (shared vertex, or zero area).
func (m *mesh[F]) addTriangle(a, b, c Handle) Handle {
	if a == b || b == c || a == c {
		return InvalidHandle
	}

	ax, ay, az := m.vertices.At(a).pos.Float64()
	bx, by, bz := m.vertices.At(b).pos.Float64()
	cx, cy, cz := m.vertices.At(c).pos.Float64()

	nx, ny, nz, d, ok := triangleNormal(ax, ay, az, bx, by, bz, cx, cy, cz)
	area := triangleArea2(ax, ay, az, bx, by, bz, cx, cy, cz) / 2
	if !ok {
		return InvalidHandle
	}

	th, _ := m.triangles.Alloc()
	t := m.triangles.At(th)
	t.v = [3]Handle{a, b, c}
	t.nx, t.ny, t.nz, t.d = nx, ny, nz, d
	t.area = area
	m.triIndex.Insert(newTriKey(a, b, c), th)

	q := NewQuadric(nx, ny, nz, d).Scale(area)
	for _, vh := range t.v {
		v := m.vertices.At(vh)
		v.quadric = v.quadric.Add(q)
		v.area += area
		v.tris = append(v.tris, th)
	}

	for i := 0; i < 3; i++ {
		va, vb := t.v[i], t.v[(i+1)%3]
		key := newEdgeKey(va, vb)
		eh, _ := m.edgeIndex.FindOrInsert(key, func() Handle {
			h, _ := m.edges.Alloc()
			e := m.edges.At(h)
			e.v0, e.v1 = key.lo, key.hi
			return h
		})
		e := m.edges.At(eh)
		e.tris = append(e.tris, th)
		t.edges[i] = eh
	}

	m.liveTriangles++
	return th
}

// allLiveEdges snapshots every currently-registered edge handle. Used
// at build time and in the cleanup stage; the hot collapse path never
// enumerates the whole table.
func (m *mesh[F]) allLiveEdges() []Handle {
	var out []Handle
	for i := range m.edgeIndex.shards {
		s := &m.edgeIndex.shards[i]
		s.mu.Lock()
		for _, h := range s.m {
			out = append(out, h)
		}
		s.mu.Unlock()
	}
	return out
}

// resolve follows redirect chains to find the live vertex a retired
// handle was merged into.
func (m *mesh[F]) resolve(h Handle) Handle {
	for {
		v := m.vertices.At(h)
		if v.redirect == InvalidHandle {
			return h
		}
		h = v.redirect
	}
}
