package template

import (
	"fmt"
	"strings"
	"sync"

	"cogentcore.org/core/math32"

	"github.com/vk/crowdplace/internal/scene"
	"github.com/vk/crowdplace/internal/spatial"
)

// offsetNode modifies the position and/or rotation of the request.
type offsetNode struct {
	base
}

func newOffset(cfg Config) Node {
	return &offsetNode{base: newBase("OffsetNodeType", cfg)}
}

func (n *offsetNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	if ref := n.settings.String("referenceObject", ""); ref != "" && !q.ObjectExists(ref) {
		return fmt.Errorf("reference object not found: %q", ref)
	}
	return nil
}

func (n *offsetNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	var pos, rot math32.Vector3
	if !n.settings.Bool("overwrite", false) {
		pos = req.Pos
		rot = req.Rot
	}
	if ref := n.settings.String("referenceObject", ""); ref != "" {
		t := ec.Scene.ObjectTransform(ref)
		pos = pos.Add(t.Pos)
		rot = rot.Add(t.Rot)
	}
	pos = pos.Add(n.settings.Vec3("locationOffset"))
	ro := n.settings.Vec3("rotationOffset")
	rot = rot.Add(math32.Vec3(math32.DegToRad(ro.X), math32.DegToRad(ro.Y), math32.DegToRad(ro.Z)))

	req.Pos = pos
	req.Rot = rot
	return n.placementChild("Template").Build(ec, req)
}

// randomNode randomly modifies rotation about the local vertical axis and
// uniform scale, and optionally draws a replacement material from the scene
// materials sharing a configured prefix.
type randomNode struct {
	base
}

func newRandom(cfg Config) Node {
	return &randomNode{base: newBase("RandomNodeType", cfg)}
}

func (n *randomNode) Validate(q scene.Queries) error {
	_, err := n.inputs.placement("Template")
	return err
}

func (n *randomNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	rotDiff := ec.Uniform(n.settings.Float32("minRandRot", 0), n.settings.Float32("maxRandRot", 0))
	q := math32.NewQuatEuler(req.Rot)
	q.SetMul(math32.NewQuatAxisAngle(math32.Vec3(0, 0, 1), math32.DegToRad(rotDiff)))
	req.Rot = q.ToEuler()

	req.Scale *= ec.Uniform(n.settings.Float32("minRandSz", 1), n.settings.Float32("maxRandSz", 1))

	if n.settings.Bool("randMat", false) {
		n.drawMaterial(ec, req)
	}
	return n.placementChild("Template").Build(ec, req)
}

// drawMaterial picks uniformly among prefix-matching materials. A missing
// prefix or an empty match set records no substitution; that is a warning,
// not a failure.
func (n *randomNode) drawMaterial(ec *EvalContext, req *Request) {
	prefix := n.settings.String("randMatPrefix", "")
	if prefix == "" {
		ec.Logger().Warn("Random material requested without a prefix.", "node", n.id)
		return
	}
	mats := ec.Scene.MaterialsWithPrefix(prefix)
	if len(mats) == 0 {
		ec.Logger().Warn("No materials match prefix.", "node", n.id, "prefix", prefix)
		return
	}
	slot := n.settings.String("slotName", "")
	req.Materials[slot] = mats[ec.Rand.Intn(len(mats))]
}

// pointTowardsNode rotates the request so local +Y points at a target: the
// target object's origin, or the nearest point on the target mesh. The mesh
// mode caches a k-d tree over the mesh vertices, so it finds the nearest
// vertex rather than the true nearest surface point; the approximation is
// intentional. The target transform is re-read on every build so a target
// moved between builds is still tracked.
type pointTowardsNode struct {
	base

	once sync.Once
	kd   *spatial.KDTree
	err  error
}

func newPointTowards(cfg Config) Node {
	return &pointTowardsNode{base: newBase("PointTowardsNodeType", cfg)}
}

func (n *pointTowardsNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	obj := n.settings.String("pointObject", "")
	if !q.ObjectExists(obj) {
		return fmt.Errorf("point object not found: %q", obj)
	}
	if n.settings.String("pointType", "OBJECT") == "MESH" && !q.HasMesh(obj) {
		return fmt.Errorf("point object %q has no mesh data", obj)
	}
	return nil
}

func (n *pointTowardsNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	objName := n.settings.String("pointObject", "")

	var point math32.Vector3
	if n.settings.String("pointType", "OBJECT") == "MESH" {
		n.once.Do(func() {
			mesh, err := ec.Scene.ObjectMesh(objName)
			if err != nil {
				n.err = err
				return
			}
			n.kd = spatial.NewKDTree(mesh.Vertices)
		})
		if n.err != nil {
			return n.err
		}
		t := ec.Scene.ObjectTransform(objName)
		nb, ok := n.kd.Nearest(t.ApplyInverse(req.Pos))
		if !ok {
			return fmt.Errorf("point object %q mesh has no vertices", objName)
		}
		point = t.Apply(nb.Point)
	} else {
		point = ec.Scene.ObjectTransform(objName).Pos
	}

	dir := point.Sub(req.Pos)
	if dir.Length() > 0 {
		req.Rot = trackEuler(dir)
	}
	return n.placementChild("Template").Build(ec, req)
}

// trackEuler returns Euler angles rotating local +Y onto dir with zero roll
// about the tracking axis, so local +Z stays as upright as the direction
// allows. Built as yaw about Z composed with pitch about the rotated X.
func trackEuler(dir math32.Vector3) math32.Vector3 {
	d := dir.Normal()
	yaw := math32.Atan2(-d.X, d.Y)
	pitch := math32.Asin(d.Z)
	q := math32.NewQuatAxisAngle(math32.Vec3(0, 0, 1), yaw)
	q.SetMul(math32.NewQuatAxisAngle(math32.Vec3(1, 0, 0), pitch))
	return q.ToEuler()
}

// randomMaterialNode picks a material by weighted random choice from a
// configured list and records it under a configured slot.
type randomMaterialNode struct {
	base
}

func newRandomMaterial(cfg Config) Node {
	return &randomMaterialNode{base: newBase("RandomMaterialNodeType", cfg)}
}

func (n *randomMaterialNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	list := n.settings.WeightedList("materials")
	if len(list) == 0 {
		return fmt.Errorf("material list is empty")
	}
	total := float32(0)
	for _, w := range list {
		if w.Name == "" {
			return fmt.Errorf("material list contains an unnamed entry")
		}
		if w.Weight < 0 {
			return fmt.Errorf("material %q has negative weight", w.Name)
		}
		total += w.Weight
	}
	if total <= 0 {
		return fmt.Errorf("material weights sum to zero")
	}
	return nil
}

func (n *randomMaterialNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	list := n.settings.WeightedList("materials")
	total := float32(0)
	for _, w := range list {
		total += w.Weight
	}
	// Draw in [0, total), then subtract weights in list order until the
	// running value goes non-positive.
	s := ec.Rand.Float32() * total
	chosen := list[len(list)-1].Name
	for _, w := range list {
		s -= w.Weight
		if s <= 0 {
			chosen = w.Name
			break
		}
	}
	req.Materials[n.settings.String("slotName", "")] = chosen
	return n.placementChild("Template").Build(ec, req)
}

// setTagNode sets one tag, overwriting any prior value for that name.
type setTagNode struct {
	base
}

func newSetTag(cfg Config) Node {
	return &setTagNode{base: newBase("SetTagNodeType", cfg)}
}

func (n *setTagNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	if strings.TrimSpace(n.settings.String("tagName", "")) == "" {
		return fmt.Errorf("tag name is empty")
	}
	return nil
}

func (n *setTagNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	req.Tags[n.settings.String("tagName", "")] = n.settings.Float32("tagValue", 0)
	return n.placementChild("Template").Build(ec, req)
}

// addToGroupNode redirects subsequent placement into a named group. A
// frozen existing group drops the branch; an existing auto group is reset
// first; a missing group is created.
type addToGroupNode struct {
	base
}

func newAddToGroup(cfg Config) Node {
	return &addToGroupNode{base: newBase("AddToGroupNodeType", cfg)}
}

func (n *addToGroupNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template"); err != nil {
		return err
	}
	if strings.TrimSpace(n.settings.String("groupName", "")) == "" {
		return fmt.Errorf("group name is empty")
	}
	return nil
}

func (n *addToGroupNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	name := n.settings.String("groupName", "")
	if kind := ec.Scene.PlacementGroupKind(name); kind != "" {
		if ec.Scene.IsGroupFrozen(name) {
			ec.DropBranch(n, "target group is frozen")
			return nil
		}
		if kind == scene.GroupAuto {
			if err := ec.Scene.ResetGroup(name); err != nil {
				return err
			}
		}
	} else if err := ec.Scene.CreatePlacementGroup(name); err != nil {
		return err
	}
	req.Group = name
	return n.placementChild("Template").Build(ec, req)
}
