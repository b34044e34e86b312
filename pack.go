package decimate

// packMesh finalizes a decimation run: writes the live vertex
// positions and live triangle index triples back into buf, honoring
// whatever format/stride buf itself reports, and truncates buf's
// counts to the surviving extents.
func packMesh[F Scalar](m *mesh[F], buf Buffers) {
	newIndex := make(map[Handle]int)
	vi := 0
	for h := Handle(0); int(h) < m.vertices.Len(); h++ {
		v := m.vertices.At(h)
		if !v.live() {
			continue
		}
		x, y, z := v.pos.Float64()
		buf.SetVertex(vi, x, y, z)
		if v.hasNormal {
			nx, ny, nz := v.normal.Float64()
			buf.SetNormal(vi, nx, ny, nz)
		}
		newIndex[h] = vi
		vi++
	}
	buf.SetVertexCount(vi)

	ti := 0
	for h := Handle(0); int(h) < m.triangles.Len(); h++ {
		t := m.triangles.At(h)
		if t.retired {
			continue
		}
		a, aok := newIndex[m.resolve(t.v[0])]
		b, bok := newIndex[m.resolve(t.v[1])]
		c, cok := newIndex[m.resolve(t.v[2])]
		if !aok || !bok || !cok || a == b || b == c || a == c {
			continue
		}
		buf.SetTriangle(ti, a, b, c)
		ti++
	}
	buf.SetTriangleCount(ti)
}

// cloneBuffers makes an independent copy of buf's backing storage, so
// the budget driver can run a probe decimation without
// mutating the caller's real buffers. Supports the two concrete
// adapters this package provides; any other Buffers implementation is
// returned as is, not copied, so DecimateBudget's probe runs mutate
// it.
func cloneBuffers(buf Buffers) Buffers {
	switch b := buf.(type) {
	case *Float64Input:
		clone := NewFloat64Input(append([]float64(nil), b.Vertices...), append([]uint32(nil), b.Indices...), b.vertexCap)
		if b.Normals != nil {
			clone.Normals = append([]float64(nil), b.Normals...)
		}
		clone.vertexCount, clone.triCount = b.vertexCount, b.triCount
		return clone
	case *Float32Input:
		clone := NewFloat32Input(append([]float32(nil), b.Vertices...), append([]uint32(nil), b.Indices...), b.vertexCap)
		if b.Normals != nil {
			clone.Normals = append([]float32(nil), b.Normals...)
		}
		clone.vertexCount, clone.triCount = b.vertexCount, b.triCount
		return clone
	default:
		return buf
	}
}
