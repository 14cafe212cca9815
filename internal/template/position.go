package template

import (
	"fmt"
	"sort"
	"sync"

	"cogentcore.org/core/math32"

	"github.com/vk/crowdplace/internal/scene"
	"github.com/vk/crowdplace/internal/spatial"
)

// randomPositioningNode scatters copies of the request inside a disc, a
// rectangle, or an angular sector, optionally relaxing the set before
// forwarding.
type randomPositioningNode struct {
	base
}

func newRandomPositioning(cfg Config) Node {
	return &randomPositioningNode{base: newBase("RandomPositionNodeType", cfg)}
}

func (n *randomPositioningNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	switch lt := n.settings.String("locationType", "radius"); lt {
	case "radius", "area", "sector":
	default:
		return fmt.Errorf("unknown location type %q", lt)
	}
	if n.settings.Int("noToPlace", 1) < 0 {
		return fmt.Errorf("noToPlace is negative")
	}
	return nil
}

// discLength draws a distance with density increasing toward the rim:
// the sum of two uniform draws folded back into [0, 1].
func discLength(ec *EvalContext) float32 {
	l := ec.Rand.Float32() + ec.Rand.Float32()
	if l > 1 {
		l = 2 - l
	}
	return l
}

func (n *randomPositioningNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	count := n.settings.Int("noToPlace", 1)
	q := math32.NewQuatEuler(req.Rot)

	positions := make([]math32.Vector3, 0, count)
	for i := 0; i < count; i++ {
		var diff math32.Vector3
		switch n.settings.String("locationType", "radius") {
		case "radius":
			angle := ec.Uniform(-math32.Pi, math32.Pi)
			length := discLength(ec) * n.settings.Float32("radius", 1)
			diff = math32.Vec3(math32.Sin(angle)*length, math32.Cos(angle)*length, 0)
		case "area":
			maxX := n.settings.Float32("MaxX", 1)
			maxY := n.settings.Float32("MaxY", 1)
			diff = math32.Vec3(
				ec.Rand.Float32()*maxX-maxX/2,
				ec.Rand.Float32()*maxY-maxY/2,
				0,
			)
		case "sector":
			half := math32.DegToRad(n.settings.Float32("sectorWidth", 0)) / 2
			angle := math32.DegToRad(n.settings.Float32("direction", 0)) + ec.Uniform(-half, half)
			length := discLength(ec) * n.settings.Float32("radius", 1)
			diff = math32.Vec3(math32.Sin(angle)*length, math32.Cos(angle)*length, 0)
		}
		positions = append(positions, req.Pos.Add(diff.MulQuat(q)))
	}

	if n.settings.Bool("relax", false) {
		Relax(positions,
			n.settings.Float32("relaxRadius", 1),
			n.settings.Int("relaxIterations", 1))
	}

	child := n.placementChild("Template")
	for _, p := range positions {
		fork := req.Fork()
		fork.Pos = p
		if err := child.Build(ec, fork); err != nil {
			return err
		}
	}
	return nil
}

// meshPositioningNode scatters the request across the surface of a guide
// mesh, sampling triangles proportionally to area. The mesh snapshot, the
// cumulative-area table and the re-projection BVH are built once on first
// use.
type meshPositioningNode struct {
	base

	once sync.Once
	mesh *scene.Mesh
	cum  []float32
	bvh  *spatial.BVH
	err  error
}

func newMeshPositioning(cfg Config) Node {
	return &meshPositioningNode{base: newBase("MeshPositionNodeType", cfg)}
}

func (n *meshPositioningNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	obj := n.settings.String("guideMesh", "")
	if !q.ObjectExists(obj) {
		return fmt.Errorf("guide mesh object not found: %q", obj)
	}
	if !q.HasMesh(obj) {
		return fmt.Errorf("guide object %q has no mesh data", obj)
	}
	return nil
}

func (n *meshPositioningNode) prepare(ec *EvalContext) error {
	n.once.Do(func() {
		mesh, err := ec.Scene.ObjectMesh(n.settings.String("guideMesh", ""))
		if err != nil {
			n.err = err
			return
		}
		n.mesh = mesh
		n.cum = make([]float32, len(mesh.Triangles))
		total := float32(0)
		for i := range mesh.Triangles {
			tri := mesh.TriangleAt(i)
			total += tri.Area()
			n.cum[i] = total
		}
		n.bvh = spatial.NewBVH(mesh)
	})
	return n.err
}

// samplePoint draws a uniformly distributed point on the surface, in mesh
// local space.
func (n *meshPositioningNode) samplePoint(ec *EvalContext) math32.Vector3 {
	total := n.cum[len(n.cum)-1]
	r := ec.Rand.Float32() * total
	ti := sort.Search(len(n.cum), func(i int) bool { return n.cum[i] >= r })
	if ti == len(n.cum) {
		ti = len(n.cum) - 1
	}
	t := n.mesh.Triangles[ti]
	a := n.mesh.Vertices[t[0]]
	ab := n.mesh.Vertices[t[1]].Sub(a)
	ac := n.mesh.Vertices[t[2]].Sub(a)
	u, v := ec.Rand.Float32(), ec.Rand.Float32()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	return a.Add(ab.MulScalar(u)).Add(ac.MulScalar(v))
}

func (n *meshPositioningNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	if err := n.prepare(ec); err != nil {
		return err
	}
	if len(n.cum) == 0 || n.cum[len(n.cum)-1] == 0 {
		return fmt.Errorf("guide mesh %q has no surface area", n.settings.String("guideMesh", ""))
	}

	// The output frame is either the guide object's world transform or the
	// request's own frame when sampling locally.
	var frame scene.Transform
	if n.settings.Bool("local", false) {
		frame = scene.Transform{Pos: req.Pos, Rot: req.Rot, Scale: req.Scale}
	} else {
		frame = ec.Scene.ObjectTransform(n.settings.String("guideMesh", ""))
	}

	count := n.settings.Int("noToPlace", 1)
	positions := make([]math32.Vector3, 0, count)
	for i := 0; i < count; i++ {
		positions = append(positions, frame.Apply(n.samplePoint(ec)))
	}

	if n.settings.Bool("relax", false) {
		Relax(positions,
			n.settings.Float32("relaxRadius", 1),
			n.settings.Int("relaxIterations", 1))
		// Relaxation pushes points off the surface; snap each back to the
		// nearest point on the mesh.
		for i, p := range positions {
			if near, _, ok := n.bvh.NearestPoint(frame.ApplyInverse(p)); ok {
				positions[i] = frame.Apply(near)
			}
		}
	}

	child := n.placementChild("Template")
	for _, p := range positions {
		fork := req.Fork()
		fork.Pos = p
		if err := child.Build(ec, fork); err != nil {
			return err
		}
	}
	return nil
}

// formationNode lays the request out on a grid in the request's own frame:
// rows along local X, columns along local Y, a partial final column when the
// count does not divide evenly.
type formationNode struct {
	base
}

func newFormation(cfg Config) Node {
	return &formationNode{base: newBase("FormationPositionNodeType", cfg)}
}

func (n *formationNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	if n.settings.Int("ArrayRows", 1) < 1 {
		return fmt.Errorf("ArrayRows must be at least 1")
	}
	if n.settings.Int("noToPlace", 1) < 0 {
		return fmt.Errorf("noToPlace is negative")
	}
	return nil
}

func (n *formationNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	q := math32.NewQuatEuler(req.Rot)
	diffRow := math32.Vec3(n.settings.Float32("ArrayRowMargin", 0), 0, 0).
		MulQuat(q).MulScalar(req.Scale)
	diffCol := math32.Vec3(0, n.settings.Float32("ArrayColumnMargin", 0), 0).
		MulQuat(q).MulScalar(req.Scale)

	child := n.placementChild("Template")
	count := n.settings.Int("noToPlace", 1)
	rows := n.settings.Int("ArrayRows", 1)

	place := func(col, row int) error {
		fork := req.Fork()
		fork.Pos = req.Pos.
			Add(diffCol.MulScalar(float32(col))).
			Add(diffRow.MulScalar(float32(row)))
		return child.Build(ec, fork)
	}
	for col := 0; col < count/rows; col++ {
		for row := 0; row < rows; row++ {
			if err := place(col, row); err != nil {
				return err
			}
		}
	}
	for row := 0; row < count%rows; row++ {
		if err := place(count/rows, row); err != nil {
			return err
		}
	}
	return nil
}

// targetNode forwards the request once per target: the members of a group,
// or the vertices of an object's mesh. The overwrite flag decides whether
// targets replace the request frame or compose with it.
type targetNode struct {
	base

	once sync.Once
	mesh *scene.Mesh
	err  error
}

func newTarget(cfg Config) Node {
	return &targetNode{base: newBase("TargetPositionNodeType", cfg)}
}

func (n *targetNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	switch tt := n.settings.String("targetType", "object"); tt {
	case "object":
		if g := n.settings.String("targetGroups", ""); !q.GroupExists(g) {
			return fmt.Errorf("target group not found: %q", g)
		}
	case "vertex":
		obj := n.settings.String("targetObject", "")
		if !q.ObjectExists(obj) {
			return fmt.Errorf("target object not found: %q", obj)
		}
		if !q.HasMesh(obj) {
			return fmt.Errorf("target object %q has no mesh data", obj)
		}
	default:
		return fmt.Errorf("unknown target type %q", tt)
	}
	return nil
}

func (n *targetNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	if n.settings.String("targetType", "object") == "object" {
		return n.buildObjects(ec, req)
	}
	return n.buildVertices(ec, req)
}

func (n *targetNode) buildObjects(ec *EvalContext, req *Request) error {
	child := n.placementChild("Template")
	overwrite := n.settings.Bool("overwritePosition", true)
	q := math32.NewQuatEuler(req.Rot)
	for _, member := range ec.Scene.GroupMembers(n.settings.String("targetGroups", "")) {
		t := ec.Scene.ObjectTransform(member)
		fork := req.Fork()
		if overwrite {
			fork.Pos = t.Pos
			fork.Rot = t.Rot
		} else {
			fork.Pos = req.Pos.Add(t.Pos.MulQuat(q).MulScalar(req.Scale))
			fork.Rot = req.Rot.Add(t.Rot)
		}
		if err := child.Build(ec, fork); err != nil {
			return err
		}
	}
	return nil
}

func (n *targetNode) buildVertices(ec *EvalContext, req *Request) error {
	obj := n.settings.String("targetObject", "")
	n.once.Do(func() {
		n.mesh, n.err = ec.Scene.ObjectMesh(obj)
	})
	if n.err != nil {
		return n.err
	}
	child := n.placementChild("Template")
	overwrite := n.settings.Bool("overwritePosition", true)
	t := ec.Scene.ObjectTransform(obj)
	q := math32.NewQuatEuler(req.Rot)
	for _, v := range n.mesh.Vertices {
		fork := req.Fork()
		if overwrite {
			fork.Pos = t.Apply(v)
			fork.Rot = t.Rot
		} else {
			fork.Pos = req.Pos.Add(v.MulQuat(q).MulScalar(req.Scale))
		}
		if err := child.Build(ec, fork); err != nil {
			return err
		}
	}
	return nil
}
