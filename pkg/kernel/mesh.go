package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene solid this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Area returns the total triangle area.
func (m *Mesh) Area() float64 {
	var total float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a := m.vertex(m.Indices[t])
		b := m.vertex(m.Indices[t+1])
		c := m.vertex(m.Indices[t+2])
		total += b.Sub(a).Cross(c.Sub(a)).Length() / 2
	}
	return total
}

// Volume returns the signed volume enclosed by the mesh. It is positive for
// closed meshes wound counter-clockwise seen from outside.
func (m *Mesh) Volume() float64 {
	var total float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a := m.vertex(m.Indices[t])
		b := m.vertex(m.Indices[t+1])
		c := m.vertex(m.Indices[t+2])
		total += a.Dot(b.Cross(c)) / 6
	}
	return total
}

func (m *Mesh) vertex(i uint32) v3.Vec {
	return v3.Vec{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}
