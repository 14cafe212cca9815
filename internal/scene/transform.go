package scene

import (
	"cogentcore.org/core/math32"
)

// Transform is a world placement: position, XYZ Euler rotation in radians,
// and uniform scale.
type Transform struct {
	Pos   math32.Vector3
	Rot   math32.Vector3
	Scale float32
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Apply maps a local-space point into world space.
func (t Transform) Apply(p math32.Vector3) math32.Vector3 {
	q := math32.NewQuatEuler(t.Rot)
	return p.MulQuat(q).MulScalar(t.Scale).Add(t.Pos)
}

// ApplyInverse maps a world-space point into the transform's local space.
func (t Transform) ApplyInverse(p math32.Vector3) math32.Vector3 {
	q := math32.NewQuatEuler(t.Rot)
	inv := q.Inverse()
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return p.Sub(t.Pos).MulQuat(inv).DivScalar(s)
}

// Mesh is an immutable triangle-mesh snapshot: local-space vertices and
// vertex-index triangles. The core builds its spatial structures from these
// snapshots; it never mutates them.
type Mesh struct {
	Vertices  []math32.Vector3
	Triangles [][3]int
}

// TriangleAt returns the triangle with the given index as a math32.Triangle.
func (m *Mesh) TriangleAt(i int) math32.Triangle {
	t := m.Triangles[i]
	return math32.NewTriangle(m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]])
}

// Bounds returns the local-space bounding box of the mesh.
func (m *Mesh) Bounds() math32.Box3 {
	b := math32.B3Empty()
	b.ExpandByPoints(m.Vertices)
	return b
}
