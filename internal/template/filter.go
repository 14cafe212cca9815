package template

import (
	"fmt"
	"sync"

	"cogentcore.org/core/math32"

	"github.com/vk/crowdplace/internal/scene"
	"github.com/vk/crowdplace/internal/spatial"
)

// obstacleNode drops any request that lands inside the padded bounds of an
// obstacle. The padded volume index is built from the obstacle group's
// world bounds on first use and never rebuilt; obstacles moved after the
// first request keep their original footprint for the rest of the build.
type obstacleNode struct {
	base

	once sync.Once
	ix   *spatial.VolumeIndex
	err  error
}

func newObstacle(cfg Config) Node {
	return &obstacleNode{base: newBase("ObstacleNodeType", cfg)}
}

func (n *obstacleNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	if g := n.settings.String("obstacleGroup", ""); !q.GroupExists(g) {
		return fmt.Errorf("obstacle group not found: %q", g)
	}
	return nil
}

func (n *obstacleNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	n.once.Do(func() {
		margin := n.settings.Float32("margin", 0)
		pad := math32.Vec3(margin, margin, margin)
		var vols []spatial.Volume
		for _, member := range ec.Scene.GroupMembers(n.settings.String("obstacleGroup", "")) {
			box := ec.Scene.ObjectBounds(member)
			vols = append(vols, spatial.Volume{
				Center:   box.Center(),
				HalfSize: box.Size().MulScalar(0.5).Add(pad),
			})
		}
		n.ix, n.err = spatial.NewVolumeIndex(vols)
	})
	if n.err != nil {
		return n.err
	}
	if n.ix.ContainsPoint(req.Pos) {
		ec.DropBranch(n, "inside obstacle bounds")
		return nil
	}
	return n.placementChild("Template").Build(ec, req)
}

// groundNode drops requests onto a ground surface by casting rays straight
// down and straight up from the request position; the closer hit wins. A
// request over a hole in the ground is dropped.
//
// Rays are cast in the ground object's local frame offset by its origin,
// so the ground's own rotation and scale must be applied to its mesh; the
// stored hierarchy keeps the mesh in local space, so the cast happens over
// vertices transformed by rotation and scale only.
type groundNode struct {
	base

	once sync.Once
	bvh  *spatial.BVH
	gpos math32.Vector3
	err  error
}

func newGround(cfg Config) Node {
	return &groundNode{base: newBase("GroundNodeType", cfg)}
}

func (n *groundNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	obj := n.settings.String("groundMesh", "")
	if !q.ObjectExists(obj) {
		return fmt.Errorf("ground object not found: %q", obj)
	}
	if !q.HasMesh(obj) {
		return fmt.Errorf("ground object %q has no mesh data", obj)
	}
	return nil
}

func (n *groundNode) prepare(ec *EvalContext) error {
	n.once.Do(func() {
		name := n.settings.String("groundMesh", "")
		mesh, err := ec.Scene.ObjectMesh(name)
		if err != nil {
			n.err = err
			return
		}
		t := ec.Scene.ObjectTransform(name)
		n.gpos = t.Pos
		q := math32.NewQuatEuler(t.Rot)
		oriented := &scene.Mesh{
			Vertices:  make([]math32.Vector3, len(mesh.Vertices)),
			Triangles: mesh.Triangles,
		}
		for i, v := range mesh.Vertices {
			oriented.Vertices[i] = v.MulQuat(q).MulScalar(t.Scale)
		}
		n.bvh = spatial.NewBVH(oriented)
	})
	return n.err
}

func (n *groundNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	if err := n.prepare(ec); err != nil {
		return err
	}
	point := req.Pos.Sub(n.gpos)
	down, downOK := n.bvh.RayCast(point, math32.Vec3(0, 0, -1))
	up, upOK := n.bvh.RayCast(point, math32.Vec3(0, 0, 1))

	var hit spatial.Hit
	switch {
	case downOK && upOK:
		hit = down
		if up.Dist < down.Dist {
			hit = up
		}
	case downOK:
		hit = down
	case upOK:
		hit = up
	default:
		ec.DropBranch(n, "no ground surface above or below")
		return nil
	}
	req.Pos = hit.Point.Add(n.gpos)
	return n.placementChild("Template").Build(ec, req)
}
