package decimate

// vsplit implements normal-vertex-splitting: after a
// collapse merges v1 into v0, v0's incident-triangle fan can contain
// more than one topologically disjoint wing (the two fans only share
// the vertex itself, never an edge) — the signature of a
// normal-discontinuity cluster that needs splitting back apart.
// Splitting a fan that merely has a sharp dihedral angle
// across a *shared* edge is not attempted: that edge would need to be
// duplicated too, not just the vertex.

// trianglesShareEdge reports whether a and b have a common edge
// handle, used to build the fan-adjacency graph at a vertex.
func trianglesShareEdge(a, b *triangleRecord) bool {
	for _, ea := range a.edges {
		for _, eb := range b.edges {
			if ea == eb {
				return true
			}
		}
	}
	return false
}

// fanUnionFind is a minimal union-find over a fixed-size index range,
// used to group a vertex's incident triangles into connected wings.
type fanUnionFind struct {
	parent []int
}

func newFanUnionFind(n int) *fanUnionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &fanUnionFind{parent: p}
}

func (u *fanUnionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *fanUnionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// trySplitVertex checks whether vh's incident live triangles
// decompose into more than one edge-connected wing; if so, every wing
// but one (chosen as described below) is moved onto a freshly allocated vertex carved from
// the vertex capacity headroom. A wing that cannot be allocated
// (headroom exhausted) is left attached to vh — a quality
// degradation, not a failure.
func trySplitVertex[F Scalar](m *mesh[F], vh Handle, log *logger) {
	v := m.vertices.At(vh)
	var tris []Handle
	for _, th := range v.tris {
		if !m.triangles.At(th).retired {
			tris = append(tris, th)
		}
	}
	if len(tris) < 2 {
		return
	}

	uf := newFanUnionFind(len(tris))
	for i := 0; i < len(tris); i++ {
		ti := m.triangles.At(tris[i])
		for j := i + 1; j < len(tris); j++ {
			if trianglesShareEdge(ti, m.triangles.At(tris[j])) {
				uf.union(i, j)
			}
		}
	}

	clusters := make(map[int][]Handle)
	order := make([]int, 0, len(tris))
	for i, th := range tris {
		r := uf.find(i)
		if _, ok := clusters[r]; !ok {
			order = append(order, r)
		}
		clusters[r] = append(clusters[r], th)
	}
	if len(clusters) < 2 {
		return
	}

	// Deterministic ordering: keep attached to vh the cluster whose
	// first triangle, in vh's incidence-list order, has the lowest
	// handle; process the rest in the same stable order so
	// single-threaded runs stay bit-identical.
	keep := order[0]
	for _, r := range order[1:] {
		if clusters[r][0] < clusters[keep][0] {
			keep = r
		}
	}

	for _, r := range order {
		if r == keep {
			continue
		}
		wing := clusters[r]
		splitOneWing(m, vh, wing, log)
	}

	rebuildIncidence(m, vh)
}

// splitOneWing moves wing's triangles off vh onto a freshly allocated
// vertex that copies vh's position and normal, and recomputes that
// vertex's quadric/area from exactly the triangles it now owns.
func splitOneWing[F Scalar](m *mesh[F], vh Handle, wing []Handle, log *logger) {
	newH, ok := m.vertices.Alloc()
	if !ok {
		if log != nil {
			log.resourceExhausted(vh)
		}
		return
	}

	m.liveVertices++

	v := m.vertices.At(vh)
	v2 := m.vertices.At(newH)
	v2.pos = v.pos
	v2.normal = v.normal
	v2.hasNormal = v.hasNormal
	v2.redirect = InvalidHandle
	v2.partition = v.partition

	seenEdge := make(map[Handle]bool)
	var q Quadric
	var area float64
	for _, th := range wing {
		t := m.triangles.At(th)
		for i, vv := range t.v {
			if vv == vh {
				t.v[i] = newH
			}
		}
		q = q.Add(NewQuadric(t.nx, t.ny, t.nz, t.d).Scale(t.area))
		area += t.area
		v2.tris = append(v2.tris, th)

		for _, eh := range t.edges {
			if seenEdge[eh] {
				continue
			}
			seenEdge[eh] = true
			e := m.edges.At(eh)
			if e.retired {
				continue
			}
			if e.v0 == vh {
				e.v0 = newH
			} else if e.v1 == vh {
				e.v1 = newH
			} else {
				continue
			}
			if e.v0 > e.v1 {
				e.v0, e.v1 = e.v1, e.v0
			}
			m.edgeIndex.Remove(newEdgeKey(vh, otherEndpoint(e, newH)))
			m.edgeIndex.Insert(e.key(), eh)
		}
	}
	v2.quadric = q
	v2.area = area
}

func otherEndpoint(e *edgeRecord, known Handle) Handle {
	if e.v0 == known {
		return e.v1
	}
	return e.v0
}

// rebuildIncidence drops retired/moved triangle references from vh's
// incidence list after one or more wings have been split off.
func rebuildIncidence[F Scalar](m *mesh[F], vh Handle) {
	v := m.vertices.At(vh)
	kept := v.tris[:0]
	for _, th := range v.tris {
		t := m.triangles.At(th)
		if t.retired || !hasVertex(t, vh) {
			continue
		}
		kept = append(kept, th)
	}
	v.tris = kept
}
