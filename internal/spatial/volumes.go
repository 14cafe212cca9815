package spatial

import (
	"cogentcore.org/core/math32"
	"github.com/dhconnelly/rtreego"
)

// Volume is one padded bounding volume: an axis-aligned box or a sphere,
// described by a center and half-extents (spheres use HalfSize.X as radius).
type Volume struct {
	Center   math32.Vector3
	HalfSize math32.Vector3
	Sphere   bool
}

// Contains reports whether p lies inside the volume, boundary inclusive.
func (v Volume) Contains(p math32.Vector3) bool {
	d := p.Sub(v.Center)
	if v.Sphere {
		return d.Length() <= v.HalfSize.X
	}
	return math32.Abs(d.X) <= v.HalfSize.X &&
		math32.Abs(d.Y) <= v.HalfSize.Y &&
		math32.Abs(d.Z) <= v.HalfSize.Z
}

func (v Volume) bounds() (min, lengths [3]float64) {
	h := v.HalfSize
	if v.Sphere {
		h = math32.Vec3(v.HalfSize.X, v.HalfSize.X, v.HalfSize.X)
	}
	min = [3]float64{
		float64(v.Center.X - h.X),
		float64(v.Center.Y - h.Y),
		float64(v.Center.Z - h.Z),
	}
	for i, s := range [3]float32{h.X, h.Y, h.Z} {
		l := 2 * float64(s)
		if l <= 0 {
			l = 1e-9
		}
		lengths[i] = l
	}
	return min, lengths
}

type volumeEntry struct {
	rect  rtreego.Rect
	index int
}

func (e *volumeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// VolumeIndex is an immutable containment index over padded volumes. An
// R-tree narrows candidates to volumes whose AABB overlaps the query point;
// the exact box/sphere test runs on candidates only.
type VolumeIndex struct {
	tree *rtreego.Rtree
	vols []Volume
}

// NewVolumeIndex builds an index over the given volumes. The slice is
// copied.
func NewVolumeIndex(vols []Volume) (*VolumeIndex, error) {
	ix := &VolumeIndex{
		tree: rtreego.NewTree(3, 4, 16),
		vols: append([]Volume(nil), vols...),
	}
	for i, v := range ix.vols {
		min, lengths := v.bounds()
		rect, err := rtreego.NewRect(rtreego.Point(min[:]), lengths[:])
		if err != nil {
			return nil, err
		}
		ix.tree.Insert(&volumeEntry{rect: rect, index: i})
	}
	return ix, nil
}

// Len returns the number of indexed volumes.
func (ix *VolumeIndex) Len() int {
	return len(ix.vols)
}

// Intersections returns the indices of every volume containing p.
func (ix *VolumeIndex) Intersections(p math32.Vector3) []int {
	if len(ix.vols) == 0 {
		return nil
	}
	q := rtreego.Point{float64(p.X), float64(p.Y), float64(p.Z)}
	candidates := ix.tree.SearchIntersect(q.ToRect(1e-6))
	var out []int
	for _, c := range candidates {
		e := c.(*volumeEntry)
		if ix.vols[e.index].Contains(p) {
			out = append(out, e.index)
		}
	}
	return out
}

// ContainsPoint reports whether any indexed volume contains p.
func (ix *VolumeIndex) ContainsPoint(p math32.Vector3) bool {
	return len(ix.Intersections(p)) > 0
}
