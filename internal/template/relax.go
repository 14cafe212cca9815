package template

import (
	"cogentcore.org/core/math32"

	"github.com/vk/crowdplace/internal/spatial"
)

// Relax declumps a position set with fixed-iteration local repulsion: each
// pass builds a fresh k-d tree, gathers every neighbor within twice the
// radius, and moves each point by the average of the per-neighbor repulsion
// (2r − d)/d, which falls linearly to zero at the range boundary.
//
// This is not a solver: it never checks convergence and always runs exactly
// iterations passes. Points are adjusted in place.
func Relax(positions []math32.Vector3, radius float32, iterations int) []math32.Vector3 {
	for it := 0; it < iterations; it++ {
		kd := spatial.NewKDTree(positions)
		for i := range positions {
			p := positions[i]
			neighbors := kd.InRange(p, 2*radius)
			var adjust math32.Vector3
			count := 0
			for _, nb := range neighbors {
				if nb.Index == i {
					continue
				}
				count++
				v := p.Sub(nb.Point)
				l := v.Length()
				if l == 0 {
					// Coincident points have no defined repulsion
					// direction.
					continue
				}
				adjust = adjust.Add(v.MulScalar((2*radius - l) / l))
			}
			if count > 0 {
				positions[i] = p.Add(adjust.DivScalar(float32(count)))
			}
		}
	}
	return positions
}
