package decimate

// VertexFormat names the scalar precision of the caller's vertex
// buffer.
type VertexFormat int

const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat64
)

// IndexFormat names the integer width of the caller's index buffer.
type IndexFormat int

const (
	IndexFormatUint32 IndexFormat = iota
	IndexFormatInt32
)

// Buffers is an immutable, format-parameterized view over
// caller-owned vertex/index/normal buffers, read during BuildMesh and
// written back during Pack. It is
// the engine's only seam to the outside world — an OBJ loader, a
// command-line driver, or a vertex-cache optimizer (all explicitly out
// of scope for this package) can satisfy it without this package
// importing any of them, mirroring how the teacher's Mesh type in the
// deleted geometry.go never depended on obj_loader.go.
type Buffers interface {
	// VertexFormat and IndexFormat report the caller's storage
	// precision so the engine can dispatch to the matching generic
	// instantiation of the internal mesh.
	VertexFormat() VertexFormat
	IndexFormat() IndexFormat

	// VertexCount and TriangleCount report the buffers' current
	// extents. VertexCount may be smaller than the buffer's capacity;
	// VertexCap reports the capacity reserved for vertex splitting.
	VertexCount() int
	VertexCap() int
	TriangleCount() int

	// VertexAt and Normal read in float64 regardless of storage
	// precision; Normal's second return is false when no normal buffer
	// was supplied for that vertex.
	VertexAt(i int) (x, y, z float64)
	Normal(i int) (x, y, z float64, ok bool)

	// TriangleAt reads the three vertex indices of triangle i.
	TriangleAt(i int) (a, b, c int)

	// SetVertexCount/SetTriangleCount truncate or extend the live
	// extents during Pack finalization.
	SetVertexCount(n int)
	SetTriangleCount(n int)

	// SetVertex/SetNormal/SetTriangle write results back into the
	// caller's buffers at the configured stride, honoring whichever
	// format VertexFormat/IndexFormat reported.
	SetVertex(i int, x, y, z float64)
	SetNormal(i int, x, y, z float64)
	SetTriangle(i int, a, b, c int)
}

// Float64Input is a stride-aware Buffers adapter over caller-owned
// float64 vertex/normal slices and uint32 index slices, preallocated
// to vertexCap*stride so vertex splitting can write past the
// initial vertex count without reallocating.
type Float64Input struct {
	Vertices     []float64
	VertexStride int // components per vertex, minimum 3; NewFloat64Input sets 3, and 0 is not replaced by a default
	Normals      []float64
	Indices      []uint32
	vertexCount  int
	triCount     int
	vertexCap    int
}

// NewFloat64Input wraps already-loaded vertex/index slices. vertexCap
// bounds how many vertices the engine may ever allocate (including
// splits); it must be at least len(vertices)/stride. The caller is
// responsible for sizing Vertices/Normals to vertexCap*stride ahead of
// time when splitting is enabled.
func NewFloat64Input(vertices []float64, indices []uint32, vertexCap int) *Float64Input {
	stride := 3
	vertexCount := len(vertices) / stride
	if vertexCap < vertexCount {
		vertexCap = vertexCount
	}
	return &Float64Input{
		Vertices:     vertices,
		VertexStride: stride,
		Indices:      indices,
		vertexCount:  vertexCount,
		triCount:     len(indices) / 3,
		vertexCap:    vertexCap,
	}
}

func (f *Float64Input) VertexFormat() VertexFormat { return VertexFormatFloat64 }
func (f *Float64Input) IndexFormat() IndexFormat   { return IndexFormatUint32 }
func (f *Float64Input) VertexCount() int           { return f.vertexCount }
func (f *Float64Input) VertexCap() int             { return f.vertexCap }
func (f *Float64Input) TriangleCount() int         { return f.triCount }

func (f *Float64Input) VertexAt(i int) (float64, float64, float64) {
	o := i * f.VertexStride
	return f.Vertices[o], f.Vertices[o+1], f.Vertices[o+2]
}

func (f *Float64Input) Normal(i int) (float64, float64, float64, bool) {
	if f.Normals == nil {
		return 0, 0, 0, false
	}
	o := i * f.VertexStride
	return f.Normals[o], f.Normals[o+1], f.Normals[o+2], true
}

func (f *Float64Input) TriangleAt(i int) (int, int, int) {
	o := i * 3
	return int(f.Indices[o]), int(f.Indices[o+1]), int(f.Indices[o+2])
}

func (f *Float64Input) SetVertexCount(n int)   { f.vertexCount = n }
func (f *Float64Input) SetTriangleCount(n int) { f.triCount = n }

func (f *Float64Input) SetVertex(i int, x, y, z float64) {
	o := i * f.VertexStride
	f.Vertices[o], f.Vertices[o+1], f.Vertices[o+2] = x, y, z
}

func (f *Float64Input) SetNormal(i int, x, y, z float64) {
	if f.Normals == nil {
		return
	}
	o := i * f.VertexStride
	f.Normals[o], f.Normals[o+1], f.Normals[o+2] = x, y, z
}

func (f *Float64Input) SetTriangle(i int, a, b, c int) {
	o := i * 3
	f.Indices[o], f.Indices[o+1], f.Indices[o+2] = uint32(a), uint32(b), uint32(c)
}

// Float32Input is the float32-storage counterpart of Float64Input,
// satisfying the VertexFormatFloat32 configuration option while the
// engine's internal math still runs in float64 (quadric.go).
type Float32Input struct {
	Vertices     []float32
	VertexStride int
	Normals      []float32
	Indices      []uint32
	vertexCount  int
	triCount     int
	vertexCap    int
}

func NewFloat32Input(vertices []float32, indices []uint32, vertexCap int) *Float32Input {
	stride := 3
	vertexCount := len(vertices) / stride
	if vertexCap < vertexCount {
		vertexCap = vertexCount
	}
	return &Float32Input{
		Vertices:     vertices,
		VertexStride: stride,
		Indices:      indices,
		vertexCount:  vertexCount,
		triCount:     len(indices) / 3,
		vertexCap:    vertexCap,
	}
}

func (f *Float32Input) VertexFormat() VertexFormat { return VertexFormatFloat32 }
func (f *Float32Input) IndexFormat() IndexFormat   { return IndexFormatUint32 }
func (f *Float32Input) VertexCount() int           { return f.vertexCount }
func (f *Float32Input) VertexCap() int             { return f.vertexCap }
func (f *Float32Input) TriangleCount() int         { return f.triCount }

func (f *Float32Input) VertexAt(i int) (float64, float64, float64) {
	o := i * f.VertexStride
	return float64(f.Vertices[o]), float64(f.Vertices[o+1]), float64(f.Vertices[o+2])
}

func (f *Float32Input) Normal(i int) (float64, float64, float64, bool) {
	if f.Normals == nil {
		return 0, 0, 0, false
	}
	o := i * f.VertexStride
	return float64(f.Normals[o]), float64(f.Normals[o+1]), float64(f.Normals[o+2]), true
}

func (f *Float32Input) TriangleAt(i int) (int, int, int) {
	o := i * 3
	return int(f.Indices[o]), int(f.Indices[o+1]), int(f.Indices[o+2])
}

func (f *Float32Input) SetVertexCount(n int)   { f.vertexCount = n }
func (f *Float32Input) SetTriangleCount(n int) { f.triCount = n }

func (f *Float32Input) SetVertex(i int, x, y, z float64) {
	o := i * f.VertexStride
	f.Vertices[o], f.Vertices[o+1], f.Vertices[o+2] = float32(x), float32(y), float32(z)
}

func (f *Float32Input) SetNormal(i int, x, y, z float64) {
	if f.Normals == nil {
		return
	}
	o := i * f.VertexStride
	f.Normals[o], f.Normals[o+1], f.Normals[o+2] = float32(x), float32(y), float32(z)
}

func (f *Float32Input) SetTriangle(i int, a, b, c int) {
	o := i * 3
	f.Indices[o], f.Indices[o+1], f.Indices[o+2] = uint32(a), uint32(b), uint32(c)
}
