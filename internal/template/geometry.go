package template

import (
	"fmt"
	"strings"

	"github.com/vk/crowdplace/internal/scene"
)

// objectInputNode duplicates a single scene object. In deferred mode the
// backend creates a placeholder and the result carries the source reference
// for later resolution.
type objectInputNode struct {
	base
}

func newObjectInput(cfg Config) Node {
	return &objectInputNode{base: newBase("ObjectInputNodeType", cfg)}
}

func (n *objectInputNode) Validate(q scene.Queries) error {
	if obj := n.settings.String("inputObject", ""); !q.ObjectExists(obj) {
		return fmt.Errorf("input object not found: %q", obj)
	}
	return nil
}

func (n *objectInputNode) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	n.countBuild()
	name := n.settings.String("inputObject", "")
	h, err := ec.Scene.DuplicateObject(name, deferred)
	if err != nil {
		return nil, fmt.Errorf("duplicating object %q: %w", name, err)
	}
	res := &GeoResult{Object: h}
	if deferred {
		res.Deferred = &scene.DeferredGeo{Object: name}
	}
	return res, nil
}

// groupInputNode duplicates every member of a scene group. The backend
// preserves the members' internal parent relationships and returns the
// duplicated armature as the top object, or a synthesized anchor when the
// group has none.
type groupInputNode struct {
	base
}

func newGroupInput(cfg Config) Node {
	return &groupInputNode{base: newBase("GroupInputNodeType", cfg)}
}

func (n *groupInputNode) Validate(q scene.Queries) error {
	if g := n.settings.String("inputGroup", ""); !q.GroupExists(g) {
		return fmt.Errorf("input group not found: %q", g)
	}
	return nil
}

func (n *groupInputNode) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	n.countBuild()
	group := n.settings.String("inputGroup", "")
	top, _, err := ec.Scene.DuplicateGroup(group, deferred)
	if err != nil {
		return nil, fmt.Errorf("duplicating group %q: %w", group, err)
	}
	res := &GeoResult{Object: top}
	if deferred {
		// The backend resolves the armature name when it resolves the
		// placeholder; only the source group travels with the result.
		res.Deferred = &scene.DeferredGeo{Group: group}
	}
	return res, nil
}

// parentNode attaches a child geometry to a named bone of a parent
// geometry's rig. The parent stays the top object; bone modifications
// recorded below the child surface upward through the parent's result.
type parentNode struct {
	base
}

func newParent(cfg Config) Node {
	return &parentNode{base: newBase("ParentNodeType", cfg)}
}

func (n *parentNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.geometry("Parent Group"); err != nil {
		return err
	}
	if _, err := n.inputs.geometry("Child Object"); err != nil {
		return err
	}
	if strings.TrimSpace(n.settings.String("parentTo", "")) == "" {
		return fmt.Errorf("parent bone name is empty")
	}
	return nil
}

func (n *parentNode) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	n.countBuild()
	parent, err := n.geometryChild("Parent Group").Construct(ec, req, deferred)
	if err != nil {
		return nil, err
	}
	child, err := n.geometryChild("Child Object").Construct(ec, req, deferred)
	if err != nil {
		return nil, err
	}
	bone := n.settings.String("parentTo", "")
	if err := ec.Scene.AttachToBone(child.Object, parent.Object, bone); err != nil {
		return nil, fmt.Errorf("attaching to bone %q: %w", bone, err)
	}
	for b, attrs := range child.BoneMods {
		for attr, tag := range attrs {
			parent.SetBoneMod(b, attr, tag)
		}
	}
	return parent, nil
}

// linkGroupNode brings in geometry stored in an external source: the backend
// link-duplicates the named group along with its rig and constrains the
// configured bone. Linked data is already lightweight, so the deferred flag
// has no effect here.
type linkGroupNode struct {
	base
}

func newLinkGroup(cfg Config) Node {
	return &linkGroupNode{base: newBase("LinkGroupNodeType", cfg)}
}

func (n *linkGroupNode) Validate(q scene.Queries) error {
	if strings.TrimSpace(n.settings.String("sourcePath", "")) == "" {
		return fmt.Errorf("source path is empty")
	}
	if strings.TrimSpace(n.settings.String("groupName", "")) == "" {
		return fmt.Errorf("group name is empty")
	}
	return nil
}

func (n *linkGroupNode) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	n.countBuild()
	obj, rig, err := ec.Scene.LinkExternalGroup(
		n.settings.String("sourcePath", ""),
		n.settings.String("groupName", ""),
		n.settings.String("rigObject", ""),
		n.settings.String("constrainBone", ""),
	)
	if err != nil {
		return nil, fmt.Errorf("linking group %q: %w", n.settings.String("groupName", ""), err)
	}
	return &GeoResult{
		Object:        obj,
		Rig:           rig,
		ConstrainBone: n.settings.String("constrainBone", ""),
	}, nil
}

// modifyBoneNode records a bone-attribute override driven by a tag. It
// makes no backend call; the modification rides the result up to the agent.
type modifyBoneNode struct {
	base
}

func newModifyBone(cfg Config) Node {
	return &modifyBoneNode{base: newBase("ModifyBoneNodeType", cfg)}
}

func (n *modifyBoneNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.geometry("Objects"); err != nil {
		return err
	}
	if strings.TrimSpace(n.settings.String("boneName", "")) == "" {
		return fmt.Errorf("bone name is empty")
	}
	if strings.TrimSpace(n.settings.String("tagName", "")) == "" {
		return fmt.Errorf("tag name is empty")
	}
	return nil
}

func (n *modifyBoneNode) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	n.countBuild()
	res, err := n.geometryChild("Objects").Construct(ec, req, deferred)
	if err != nil {
		return nil, err
	}
	res.SetBoneMod(
		n.settings.String("boneName", ""),
		n.settings.String("attribute", ""),
		n.settings.String("tagName", ""),
	)
	return res, nil
}
