package model

// GraphSpec is the format-agnostic representation of an entire placement
// graph: a flat collection of node descriptions keyed by their stable IDs.
type GraphSpec struct {
	Nodes []*NodeSpec
}

// Node returns the node description with the given ID, or nil.
func (g *GraphSpec) Node(id string) *NodeSpec {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeSpec is the format-agnostic representation of a single graph node.
type NodeSpec struct {
	// ID is the stable, host-assigned identifier of this node instance.
	ID string
	// Kind names the node behavior, resolved against the template registry.
	// Example: "RandomPositionNodeType".
	Kind string
	// Inputs binds named input slots to child node IDs, in declared order.
	// Most slots bind exactly one child; fan-out slots may bind several.
	Inputs []Input
	// Settings holds the node's configuration values.
	Settings Settings
}

// Input binds one named input slot to the IDs of the child nodes feeding it.
type Input struct {
	Slot string
	Refs []string
}

// InputRefs returns the child IDs bound to the given slot, or nil when the
// slot is not bound.
func (n *NodeSpec) InputRefs(slot string) []string {
	for _, in := range n.Inputs {
		if in.Slot == slot {
			return in.Refs
		}
	}
	return nil
}
