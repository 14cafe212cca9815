package template

import (
	"fmt"

	"github.com/vk/crowdplace/internal/scene"
)

// agentNode is the terminal placement node: it constructs its geometry
// subtree, applies the request's final transform and material substitutions,
// and registers the agent with the backend.
type agentNode struct {
	base
}

func newAgent(cfg Config) Node {
	return &agentNode{base: newBase("TemplateNodeType", cfg)}
}

func (n *agentNode) Validate(q scene.Queries) error {
	_, err := n.inputs.geometry("Objects")
	return err
}

func (n *agentNode) Build(ec *EvalContext, req *Request) error {
	n.countBuild()
	deferGeo := n.settings.Bool("deferGeo", false)
	res, err := n.geometryChild("Objects").Construct(ec, req.Fork(), deferGeo)
	if err != nil {
		return err
	}

	t := scene.Transform{Pos: req.Pos, Rot: req.Rot, Scale: req.Scale}
	if err := ec.Scene.SetTransform(res.Object, t); err != nil {
		return fmt.Errorf("placing agent geometry: %w", err)
	}
	if len(req.Materials) > 0 {
		if err := ec.Scene.ApplyMaterials(res.Object, req.Materials); err != nil {
			return fmt.Errorf("applying materials: %w", err)
		}
	}

	tags := make(map[string]float32, len(req.Tags))
	for k, v := range req.Tags {
		tags[k] = v
	}
	agent := scene.Agent{
		Object:        res.Object,
		Brain:         n.settings.String("brainType", ""),
		Group:         req.Group,
		Tags:          tags,
		Rig:           res.Rig,
		ConstrainBone: res.ConstrainBone,
		BoneMods:      res.BoneMods,
		Deferred:      res.Deferred,
	}
	if err := ec.Scene.RegisterAgent(agent); err != nil {
		return fmt.Errorf("registering agent: %w", err)
	}
	ec.notePlaced()
	return nil
}
