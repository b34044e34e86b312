package decimate

// collapseOutcome reports what happened when the executor attempted an
// edge collapse, letting the driver decide whether to requeue at a
// bumped cost (rejected) or proceed with requeueing the 1-ring
// (accepted).
type collapseOutcome int

const (
	collapseAccepted collapseOutcome = iota
	collapseRejectedDegenerate
	collapseRejectedFlip
	collapseRejectedNonManifold
	collapseRejectedLocked
)

// tryCollapse implements §4.G's validation, rewiring and recompute
// steps for an edge collapse; requeueing the 1-ring is done by the
// caller (processCollapse in driver.go). On rejection the mesh is left
// untouched and the caller re-pushes the edge at failCost.
// partitions/edgePartition let rewire invalidate the owning heap entry
// of any edge it retires as a rekeying duplicate; both may be nil when
// no heap bookkeeping is needed.
func tryCollapse[F Scalar](m *mesh[F], eh Handle, p costParams, partitions []*partitionState, edgePartition map[Handle]int) collapseOutcome {
	e := m.edges.At(eh)
	if e.retired {
		return collapseRejectedDegenerate
	}
	if e.flags&edgeLocked != 0 {
		return collapseRejectedLocked
	}

	v0h, v1h := m.resolve(e.v0), m.resolve(e.v1)
	if v0h == v1h {
		return collapseRejectedDegenerate
	}
	// Keep the lower handle, per §4.G.2's convention.
	if v0h > v1h {
		v0h, v1h = v1h, v0h
	}
	v0, v1 := m.vertices.At(v0h), m.vertices.At(v1h)

	merged := v0.quadric.Add(v1.quadric)
	v0x, v0y, v0z := v0.pos.Float64()
	v1x, v1y, v1z := v1.pos.Float64()
	px, py, pz, _ := collapsePoint(merged, v0x, v0y, v0z, v1x, v1y, v1z)

	sharedTris := make(map[Handle]bool, 2)
	for _, th := range v0.tris {
		t := m.triangles.At(th)
		if t.retired {
			continue
		}
		if hasVertex(t, v1h) {
			sharedTris[th] = true
		}
	}
	if len(sharedTris) == 0 || len(sharedTris) > 2 {
		// Zero shared triangles: not actually an edge (shouldn't
		// happen for a canonical edge key). More than two: already
		// non-manifold at this edge.
		return collapseRejectedNonManifold
	}

	if !validateOrientation(m, v0h, v1h, px, py, pz, sharedTris) {
		return collapseRejectedFlip
	}
	if !validateManifold(m, v0h, v1h, sharedTris) {
		return collapseRejectedNonManifold
	}

	rewire(m, eh, v0h, v1h, px, py, pz, merged, sharedTris, partitions, edgePartition)
	m.decimations.Add(1)
	return collapseAccepted
}

func hasVertex(t *triangleRecord, h Handle) bool {
	return t.v[0] == h || t.v[1] == h || t.v[2] == h
}

// validateOrientation implements §4.G.1's flip check: for every
// triangle incident to exactly one of v0/v1 (not shared), recompute
// its normal with that endpoint replaced by the collapse point and
// require a non-negative dot product against the pre-collapse normal
// (sign inverted when windingCCW is set).
func validateOrientation[F Scalar](m *mesh[F], v0h, v1h Handle, px, py, pz float64, shared map[Handle]bool) bool {
	check := func(vh Handle, tris []Handle) bool {
		for _, th := range tris {
			if shared[th] {
				continue
			}
			t := m.triangles.At(th)
			if t.retired {
				continue
			}
			pos := [3][3]float64{}
			for i, vv := range t.v {
				if vv == vh {
					pos[i] = [3]float64{px, py, pz}
				} else {
					x, y, z := m.vertices.At(vv).pos.Float64()
					pos[i] = [3]float64{x, y, z}
				}
			}
			nx, ny, nz, _, ok := triangleNormal(
				pos[0][0], pos[0][1], pos[0][2],
				pos[1][0], pos[1][1], pos[1][2],
				pos[2][0], pos[2][1], pos[2][2],
			)
			if !ok {
				return false
			}
			d := dotProduct(nx, ny, nz, t.nx, t.ny, t.nz)
			if m.windingCCW {
				d = -d
			}
			if d < 0 {
				return false
			}
		}
		return true
	}
	return check(v0h, m.vertices.At(v0h).tris) && check(v1h, m.vertices.At(v1h).tris)
}

// validateManifold implements §4.G.1's non-manifold-fan check: the
// vertices adjacent to both v0 and v1 must be exactly the apexes of
// the shared triangles.
func validateManifold[F Scalar](m *mesh[F], v0h, v1h Handle, shared map[Handle]bool) bool {
	neighbors := func(vh Handle) map[Handle]bool {
		out := make(map[Handle]bool)
		for _, th := range m.vertices.At(vh).tris {
			t := m.triangles.At(th)
			if t.retired {
				continue
			}
			for _, vv := range t.v {
				if vv != vh {
					out[vv] = true
				}
			}
		}
		return out
	}

	apexes := make(map[Handle]bool)
	for th := range shared {
		for _, vv := range m.triangles.At(th).v {
			apexes[vv] = true
		}
	}

	r0, r1 := neighbors(v0h), neighbors(v1h)
	for k := range r0 {
		if r1[k] && !apexes[k] {
			return false
		}
	}
	return true
}

// rewire implements §4.G.2/3: replaces v1 by v0 in all incident
// triangles, retires the triangles along the collapsed edge (the
// shared ones) and any that degenerate or duplicate as a result,
// re-keys every edge whose endpoint moved from v1 to v0 (merging it
// into a pre-existing edge of the same canonical identity where one
// already exists), moves v0 to the collapse point, and sets its
// quadric to the merged sum.
func rewire[F Scalar](m *mesh[F], eh, v0h, v1h Handle, px, py, pz float64, merged Quadric, shared map[Handle]bool, partitions []*partitionState, edgePartition map[Handle]int) {
	v1 := m.vertices.At(v1h)

	// Collect, before any triangle vertex is rewritten, every edge
	// handle that touches v1 (rekeyEdges) and every edge belonging to
	// a triangle that is about to retire (pruneEdges, which needs its
	// stale triangle reference dropped even when its own key is
	// unaffected by the merge).
	rekeyEdges := make(map[Handle]bool)
	pruneEdges := make(map[Handle]bool)
	for _, th := range v1.tris {
		t := m.triangles.At(th)
		if shared[th] {
			for _, teh := range t.edges {
				pruneEdges[teh] = true
			}
		}
		for i := 0; i < 3; i++ {
			if t.v[i] == v1h || t.v[(i+1)%3] == v1h {
				rekeyEdges[t.edges[i]] = true
			}
		}
	}
	delete(rekeyEdges, eh)
	delete(pruneEdges, eh)

	survivingTris := v1.tris[:0:0]
	for _, th := range v1.tris {
		if shared[th] {
			t := m.triangles.At(th)
			t.retired = true
			m.liveTriangles--
			continue
		}
		t := m.triangles.At(th)
		for i, vv := range t.v {
			if vv == v1h {
				t.v[i] = v0h
			}
		}
		survivingTris = append(survivingTris, th)
	}

	pruneRetiredTris := func(teh Handle) {
		te := m.edges.At(teh)
		live := te.tris[:0]
		for _, th := range te.tris {
			if !m.triangles.At(th).retired {
				live = append(live, th)
			}
		}
		te.tris = live
	}
	for teh := range pruneEdges {
		if !rekeyEdges[teh] {
			pruneRetiredTris(teh)
		}
	}

	// Re-key every edge whose identity moved from (v1,x) to (v0,x). If
	// that collides with a pre-existing (v0,x) edge (the flank edge of
	// a retiring shared triangle landing on the same canonical key as
	// the shared triangle's own untouched v0-side edge), merge the
	// loser into the winner: fold in its incidence list, redirect any
	// triangle.edges backpointer that still names it, and evict any
	// live heap entry for it so a stale handle never resurfaces.
	for teh := range rekeyEdges {
		te := m.edges.At(teh)
		if te.retired {
			continue
		}
		oldKey := te.key()
		pruneRetiredTris(teh)

		if te.v0 == v1h {
			te.v0 = v0h
		}
		if te.v1 == v1h {
			te.v1 = v0h
		}
		if te.v0 > te.v1 {
			te.v0, te.v1 = te.v1, te.v0
		}
		newKey := te.key()
		if newKey == oldKey {
			continue
		}

		m.edgeIndex.Remove(oldKey)
		winner, inserted := m.edgeIndex.FindOrInsert(newKey, func() Handle { return teh })
		if inserted || winner == teh {
			continue
		}

		we := m.edges.At(winner)
		we.tris = append(we.tris, te.tris...)
		we.flags &^= edgeBoundary | edgeNonManifold
		switch {
		case len(we.tris) == 1:
			we.flags |= edgeBoundary
		case len(we.tris) > 2:
			we.flags |= edgeNonManifold
		}
		if te.flags&edgeLocked != 0 {
			we.flags |= edgeLocked
		}
		te.retired = true
		for _, th := range we.tris {
			t := m.triangles.At(th)
			if t.retired {
				continue
			}
			for i := range t.edges {
				if t.edges[i] == teh {
					t.edges[i] = winner
				}
			}
		}
		if partitions != nil {
			if part, ok := edgePartition[teh]; ok && part >= 0 && part < len(partitions) {
				partitions[part].heap.remove(teh)
			}
		}
	}

	m.edgeIndex.Remove(newEdgeKey(v0h, v1h))
	m.edges.At(eh).retired = true

	v0 := m.vertices.At(v0h)
	seen := newTriSet(v0.tris)
	for _, th := range survivingTris {
		t := m.triangles.At(th)
		key := newTriKey(t.v[0], t.v[1], t.v[2])
		existing, inserted := m.triIndex.FindOrInsert(key, func() Handle { return th })
		if !inserted && existing != th {
			m.collisions.Add(1)
			t.retired = true
			m.liveTriangles--
			continue
		}
		if !seen[th] {
			v0.tris = append(v0.tris, th)
			seen[th] = true
		}
	}

	v1.redirect = v0h
	v0.quadric = merged
	v0.pos = Vec3FromFloat64[F](px, py, pz)
	v0.area += v1.area

	refreshTrianglePlanes(m, v0.tris)
}

func newTriSet(tris []Handle) map[Handle]bool {
	s := make(map[Handle]bool, len(tris))
	for _, h := range tris {
		s[h] = true
	}
	return s
}

// refreshTrianglePlanes recomputes the plane equation of every
// non-retired triangle in tris after a vertex has moved, per §4.G.3.
func refreshTrianglePlanes[F Scalar](m *mesh[F], tris []Handle) {
	for _, th := range tris {
		t := m.triangles.At(th)
		if t.retired {
			continue
		}
		v0, v1, v2 := m.vertices.At(t.v[0]), m.vertices.At(t.v[1]), m.vertices.At(t.v[2])
		x0, y0, z0 := v0.pos.Float64()
		x1, y1, z1 := v1.pos.Float64()
		x2, y2, z2 := v2.pos.Float64()
		if nx, ny, nz, d, ok := triangleNormal(x0, y0, z0, x1, y1, z1, x2, y2, z2); ok {
			t.nx, t.ny, t.nz, t.d = nx, ny, nz, d
		}
	}
}
