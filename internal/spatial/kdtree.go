package spatial

import (
	"slices"

	"cogentcore.org/core/math32"
)

// Neighbor is one result of a k-d tree query.
type Neighbor struct {
	// Index is the position of the point in the slice the tree was built
	// from.
	Index int
	Point math32.Vector3
	Dist  float32
}

type kdNode struct {
	point       math32.Vector3
	index       int
	axis        int
	left, right int32
}

// KDTree is a balanced, immutable k-d tree over a point set.
type KDTree struct {
	nodes []kdNode
	root  int32
}

// NewKDTree builds a balanced tree over the given points. The points slice
// is not retained.
func NewKDTree(points []math32.Vector3) *KDTree {
	t := &KDTree{nodes: make([]kdNode, 0, len(points)), root: -1}
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.build(points, idx, 0)
	return t
}

func (t *KDTree) build(points []math32.Vector3, idx []int, depth int) int32 {
	if len(idx) == 0 {
		return -1
	}
	axis := depth % 3
	slices.SortFunc(idx, func(a, b int) int {
		av, bv := component(points[a], axis), component(points[b], axis)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	})
	mid := len(idx) / 2
	ni := int32(len(t.nodes))
	t.nodes = append(t.nodes, kdNode{
		point: points[idx[mid]],
		index: idx[mid],
		axis:  axis,
		left:  -1,
		right: -1,
	})
	left := t.build(points, idx[:mid], depth+1)
	right := t.build(points, idx[mid+1:], depth+1)
	t.nodes[ni].left = left
	t.nodes[ni].right = right
	return ni
}

func component(v math32.Vector3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Len returns the number of indexed points.
func (t *KDTree) Len() int {
	return len(t.nodes)
}

// Nearest returns the closest indexed point to p. The second return is
// false when the tree is empty.
func (t *KDTree) Nearest(p math32.Vector3) (Neighbor, bool) {
	if t.root < 0 {
		return Neighbor{}, false
	}
	best := Neighbor{Index: -1, Dist: math32.Inf(1)}
	t.nearest(t.root, p, &best)
	return best, true
}

func (t *KDTree) nearest(ni int32, p math32.Vector3, best *Neighbor) {
	if ni < 0 {
		return
	}
	n := &t.nodes[ni]
	if d := n.point.DistanceTo(p); d < best.Dist {
		*best = Neighbor{Index: n.index, Point: n.point, Dist: d}
	}
	delta := component(p, n.axis) - component(n.point, n.axis)
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.nearest(near, p, best)
	if math32.Abs(delta) < best.Dist {
		t.nearest(far, p, best)
	}
}

// InRange returns every indexed point within radius of p, unordered.
func (t *KDTree) InRange(p math32.Vector3, radius float32) []Neighbor {
	if t.root < 0 || radius < 0 {
		return nil
	}
	var out []Neighbor
	t.inRange(t.root, p, radius, &out)
	return out
}

func (t *KDTree) inRange(ni int32, p math32.Vector3, radius float32, out *[]Neighbor) {
	if ni < 0 {
		return
	}
	n := &t.nodes[ni]
	if d := n.point.DistanceTo(p); d <= radius {
		*out = append(*out, Neighbor{Index: n.index, Point: n.point, Dist: d})
	}
	delta := component(p, n.axis) - component(n.point, n.axis)
	if delta <= radius {
		t.inRange(n.left, p, radius, out)
	}
	if -delta <= radius {
		t.inRange(n.right, p, radius, out)
	}
}
