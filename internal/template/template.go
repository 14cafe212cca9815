package template

import (
	"fmt"

	"github.com/vk/crowdplace/internal/model"
	"github.com/vk/crowdplace/internal/scene"
)

// Node is the contract every graph node implements, regardless of family.
type Node interface {
	// ID returns the stable identifier of this node instance.
	ID() string
	// Kind returns the registered node-kind identifier.
	Kind() string
	// BuildCount returns how many times this node has been evaluated
	// since construction. Diagnostic only.
	BuildCount() int
	// Validate checks input slots and settings. It is pure, touches only
	// the read-only scene queries, and is safe to call repeatedly.
	Validate(q scene.Queries) error
}

// Template is a placement node: it consumes a Request and either mutates and
// forwards it, forks it, or terminally creates an agent.
type Template interface {
	Node
	Build(ec *EvalContext, req *Request) error
}

// GeoTemplate is a geometry node: it constructs or composes the visual
// representation an agent references.
type GeoTemplate interface {
	Node
	Construct(ec *EvalContext, req *Request, deferred bool) (*GeoResult, error)
}

// Bound binds one named input slot to the child nodes feeding it.
type Bound struct {
	Slot  string
	Nodes []Node
}

// Inputs is a node's input bindings, in declared order.
type Inputs []Bound

// Nodes returns the children bound to slot, or nil.
func (in Inputs) Nodes(slot string) []Node {
	for _, b := range in {
		if b.Slot == slot {
			return b.Nodes
		}
	}
	return nil
}

// placement resolves slot to exactly one placement-family child.
func (in Inputs) placement(slot string) (Template, error) {
	n, err := in.one(slot)
	if err != nil {
		return nil, err
	}
	t, ok := n.(Template)
	if !ok {
		return nil, fmt.Errorf("input %q must be a placement node, got geometry node %q", slot, n.Kind())
	}
	return t, nil
}

// geometry resolves slot to exactly one geometry-family child.
func (in Inputs) geometry(slot string) (GeoTemplate, error) {
	n, err := in.one(slot)
	if err != nil {
		return nil, err
	}
	g, ok := n.(GeoTemplate)
	if !ok {
		return nil, fmt.Errorf("input %q must be a geometry node, got placement node %q", slot, n.Kind())
	}
	return g, nil
}

func (in Inputs) one(slot string) (Node, error) {
	nodes := in.Nodes(slot)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("input %q is not connected", slot)
	}
	if len(nodes) > 1 {
		return nil, fmt.Errorf("input %q binds %d nodes, want exactly 1", slot, len(nodes))
	}
	return nodes[0], nil
}

// Config is what the registry hands a node constructor.
type Config struct {
	ID       string
	Settings model.Settings
	Inputs   Inputs
}

type base struct {
	id       string
	kind     string
	settings model.Settings
	inputs   Inputs
	builds   int
}

func newBase(kind string, cfg Config) base {
	return base{id: cfg.ID, kind: kind, settings: cfg.Settings, inputs: cfg.Inputs}
}

func (b *base) ID() string      { return b.id }
func (b *base) Kind() string    { return b.kind }
func (b *base) BuildCount() int { return b.builds }

func (b *base) countBuild() { b.builds++ }

// placementChild returns the validated placement child of slot. Evaluation
// only runs after the whole graph validated, so resolution cannot fail here.
func (b *base) placementChild(slot string) Template {
	t, _ := b.inputs.placement(slot)
	return t
}

func (b *base) geometryChild(slot string) GeoTemplate {
	g, _ := b.inputs.geometry(slot)
	return g
}
