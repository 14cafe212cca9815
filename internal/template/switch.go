package template

import (
	"github.com/vk/crowdplace/internal/scene"
)

// combineNode delegates an independent copy of the incoming request to
// every connected input, in declared order. Side effects only; nothing is
// merged.
type combineNode struct {
	base
}

func newCombine(cfg Config) Node {
	return &combineNode{base: newBase("CombineNodeType", cfg)}
}

func (n *combineNode) Validate(q scene.Queries) error {
	for _, b := range n.inputs {
		if _, err := n.inputs.placement(b.Slot); err != nil {
			return err
		}
	}
	return nil
}

func (n *combineNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	for _, b := range n.inputs {
		child := n.placementChild(b.Slot)
		if err := child.Build(ec, req.Fork()); err != nil {
			return err
		}
	}
	return nil
}

// switchNode forwards to input "Template 1" with probability switchAmount,
// else to "Template 2". One draw decides the whole branch.
type switchNode struct {
	base
}

func newSwitch(cfg Config) Node {
	return &switchNode{base: newBase("TemplateSwitchNodeType", cfg)}
}

func (n *switchNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.placement("Template 1"); err != nil {
		return err
	}
	_, err := n.inputs.placement("Template 2")
	return err
}

func (n *switchNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	// Float32 draws in [0, 1), so switchAmount 1 always selects input 1
	// and 0 never does.
	if ec.Rand.Float32() < n.settings.Float32("switchAmount", 0.5) {
		return n.placementChild("Template 1").Build(ec, req)
	}
	return n.placementChild("Template 2").Build(ec, req)
}

// geoSwitchNode is the geometry-family switch over "Object 1"/"Object 2".
type geoSwitchNode struct {
	base
}

func newGeoSwitch(cfg Config) Node {
	return &geoSwitchNode{base: newBase("GeoSwitchNodeType", cfg)}
}

func (n *geoSwitchNode) Validate(q scene.Queries) error {
	if _, err := n.inputs.geometry("Object 1"); err != nil {
		return err
	}
	_, err := n.inputs.geometry("Object 2")
	return err
}

func (n *geoSwitchNode) Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error) {
	n.countBuild()
	if ec.Rand.Float32() < n.settings.Float32("switchAmount", 0.5) {
		return n.geometryChild("Object 1").Construct(ec, req, deferred)
	}
	return n.geometryChild("Object 2").Construct(ec, req, deferred)
}
