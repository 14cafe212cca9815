package spatial

import (
	"slices"

	"cogentcore.org/core/math32"

	"github.com/vk/crowdplace/internal/scene"
)

// rayEpsilon rejects self-intersections and degenerate triangle hits.
const rayEpsilon = 1e-6

// Hit describes one ray/surface intersection.
type Hit struct {
	Point  math32.Vector3
	Normal math32.Vector3
	Dist   float32
	// Tri is the index of the hit triangle in the source mesh.
	Tri int
}

type bvhNode struct {
	bounds      math32.Box3
	left, right int32
	// start/count index into the tree's triangle ordering; count > 0
	// marks a leaf.
	start, count int32
}

// BVH is an immutable bounding-volume hierarchy over a triangle mesh,
// supporting ray casts and nearest-surface-point queries.
type BVH struct {
	mesh  *scene.Mesh
	nodes []bvhNode
	tris  []int
	root  int32
}

const bvhLeafSize = 4

// NewBVH builds a hierarchy over the mesh. The mesh snapshot is retained
// and must not be mutated.
func NewBVH(m *scene.Mesh) *BVH {
	b := &BVH{mesh: m, root: -1}
	b.tris = make([]int, len(m.Triangles))
	centroids := make([]math32.Vector3, len(m.Triangles))
	for i := range m.Triangles {
		b.tris[i] = i
		tri := m.TriangleAt(i)
		centroids[i] = tri.Midpoint()
	}
	if len(b.tris) > 0 {
		b.root = b.split(centroids, 0, len(b.tris))
	}
	return b
}

func (b *BVH) split(centroids []math32.Vector3, start, end int) int32 {
	bounds := math32.B3Empty()
	for _, ti := range b.tris[start:end] {
		t := b.mesh.Triangles[ti]
		bounds.ExpandByPoint(b.mesh.Vertices[t[0]])
		bounds.ExpandByPoint(b.mesh.Vertices[t[1]])
		bounds.ExpandByPoint(b.mesh.Vertices[t[2]])
	}
	ni := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{bounds: bounds, left: -1, right: -1})
	if end-start <= bvhLeafSize {
		b.nodes[ni].start = int32(start)
		b.nodes[ni].count = int32(end - start)
		return ni
	}

	size := bounds.Size()
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > component(size, axis) {
		axis = 2
	}
	seg := b.tris[start:end]
	slices.SortFunc(seg, func(a, c int) int {
		av, cv := component(centroids[a], axis), component(centroids[c], axis)
		switch {
		case av < cv:
			return -1
		case av > cv:
			return 1
		default:
			return 0
		}
	})
	mid := start + (end-start)/2
	left := b.split(centroids, start, mid)
	right := b.split(centroids, mid, end)
	b.nodes[ni].left = left
	b.nodes[ni].right = right
	return ni
}

// RayCast intersects a ray with the surface and returns the closest hit
// along the (normalized) direction.
func (b *BVH) RayCast(origin, dir math32.Vector3) (Hit, bool) {
	if b.root < 0 || dir.Length() == 0 {
		return Hit{}, false
	}
	d := dir.Normal()
	best := Hit{Dist: math32.Inf(1), Tri: -1}
	b.castNode(b.root, origin, d, &best)
	if best.Tri < 0 {
		return Hit{}, false
	}
	return best, true
}

func (b *BVH) castNode(ni int32, origin, dir math32.Vector3, best *Hit) {
	n := &b.nodes[ni]
	if !rayIntersectsBox(origin, dir, n.bounds, best.Dist) {
		return
	}
	if n.count > 0 {
		for _, ti := range b.tris[n.start : n.start+n.count] {
			if h, ok := b.castTriangle(ti, origin, dir); ok && h.Dist < best.Dist {
				*best = h
			}
		}
		return
	}
	b.castNode(n.left, origin, dir, best)
	b.castNode(n.right, origin, dir, best)
}

// castTriangle runs the Moller-Trumbore intersection test.
func (b *BVH) castTriangle(ti int, origin, dir math32.Vector3) (Hit, bool) {
	t := b.mesh.Triangles[ti]
	v0 := b.mesh.Vertices[t[0]]
	e1 := b.mesh.Vertices[t[1]].Sub(v0)
	e2 := b.mesh.Vertices[t[2]].Sub(v0)

	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < rayEpsilon {
		return Hit{}, false
	}
	inv := 1 / det
	s := origin.Sub(v0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return Hit{}, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}
	dist := e2.Dot(q) * inv
	if dist < rayEpsilon {
		return Hit{}, false
	}
	normal := e1.Cross(e2).Normal()
	return Hit{
		Point:  origin.Add(dir.MulScalar(dist)),
		Normal: normal,
		Dist:   dist,
		Tri:    ti,
	}, true
}

func rayIntersectsBox(origin, dir math32.Vector3, box math32.Box3, maxDist float32) bool {
	tmin := float32(0)
	tmax := maxDist
	for axis := 0; axis < 3; axis++ {
		o := component(origin, axis)
		d := component(dir, axis)
		lo := component(box.Min, axis)
		hi := component(box.Max, axis)
		if math32.Abs(d) < rayEpsilon {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t0 := (lo - o) / d
		t1 := (hi - o) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math32.Max(tmin, t0)
		tmax = math32.Min(tmax, t1)
		if tmin > tmax {
			return false
		}
	}
	return true
}

// NearestPoint returns the closest point on the surface to p and its
// distance. The second return is false when the mesh has no triangles.
func (b *BVH) NearestPoint(p math32.Vector3) (math32.Vector3, float32, bool) {
	if b.root < 0 {
		return math32.Vector3{}, 0, false
	}
	best := math32.Inf(1)
	var bestPoint math32.Vector3
	b.nearestNode(b.root, p, &bestPoint, &best)
	return bestPoint, best, true
}

func (b *BVH) nearestNode(ni int32, p math32.Vector3, bestPoint *math32.Vector3, best *float32) {
	n := &b.nodes[ni]
	if n.bounds.DistanceToPoint(p) >= *best {
		return
	}
	if n.count > 0 {
		for _, ti := range b.tris[n.start : n.start+n.count] {
			t := b.mesh.Triangles[ti]
			cp := closestPointOnTriangle(p, b.mesh.Vertices[t[0]], b.mesh.Vertices[t[1]], b.mesh.Vertices[t[2]])
			if d := cp.DistanceTo(p); d < *best {
				*best = d
				*bestPoint = cp
			}
		}
		return
	}
	// Descend into the nearer child first to tighten the bound early.
	ld := b.nodes[n.left].bounds.DistanceToPoint(p)
	rd := b.nodes[n.right].bounds.DistanceToPoint(p)
	if ld <= rd {
		b.nearestNode(n.left, p, bestPoint, best)
		b.nearestNode(n.right, p, bestPoint, best)
	} else {
		b.nearestNode(n.right, p, bestPoint, best)
		b.nearestNode(n.left, p, bestPoint, best)
	}
}

// closestPointOnTriangle projects p onto triangle abc, clamping to edges and
// vertices as needed.
func closestPointOnTriangle(p, a, b, c math32.Vector3) math32.Vector3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.MulScalar(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.MulScalar(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).MulScalar(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.MulScalar(v)).Add(ac.MulScalar(w))
}
