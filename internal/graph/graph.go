package graph

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/vk/crowdplace/internal/ctxlog"
	"github.com/vk/crowdplace/internal/model"
	"github.com/vk/crowdplace/internal/scene"
	"github.com/vk/crowdplace/internal/template"
)

// Graph is a fully constructed placement graph, ready for validation and
// building. Node instances are shared: a node referenced from two parents
// exists once and accumulates one build count.
type Graph struct {
	nodes     map[string]template.Node
	validated bool
}

// Stats summarizes one build.
type Stats struct {
	// Placed is the number of agents registered with the backend.
	Placed int
	// Dropped is the number of branches discarded by runtime conditions
	// such as obstacle hits or failed ground casts.
	Dropped int
}

// New constructs node instances for every node in the graph spec, resolving input
// references through the registry. Unknown kinds, dangling references, and
// reference cycles fail construction.
func New(spec *model.GraphSpec, reg *template.Registry) (*Graph, error) {
	b := &builder{
		spec:  spec,
		reg:   reg,
		built: make(map[string]template.Node),
		state: make(map[string]int),
	}
	for _, ns := range spec.Nodes {
		if _, err := b.node(ns.ID); err != nil {
			return nil, err
		}
	}
	return &Graph{nodes: b.built}, nil
}

const (
	stateBuilding = 1
	stateDone     = 2
)

type builder struct {
	spec  *model.GraphSpec
	reg   *template.Registry
	built map[string]template.Node
	// state tracks the DFS color of each node for cycle detection.
	state map[string]int
}

func (b *builder) node(id string) (template.Node, error) {
	switch b.state[id] {
	case stateDone:
		return b.built[id], nil
	case stateBuilding:
		return nil, fmt.Errorf("reference cycle through node %q", id)
	}
	ns := b.spec.Node(id)
	if ns == nil {
		return nil, fmt.Errorf("node not found: %q", id)
	}
	b.state[id] = stateBuilding

	var inputs template.Inputs
	for _, in := range ns.Inputs {
		bound := template.Bound{Slot: in.Slot}
		for _, ref := range in.Refs {
			child, err := b.node(ref)
			if err != nil {
				return nil, fmt.Errorf("node %q input %q: %w", id, in.Slot, err)
			}
			bound.Nodes = append(bound.Nodes, child)
		}
		inputs = append(inputs, bound)
	}

	n, err := b.reg.New(ns.Kind, template.Config{
		ID:       ns.ID,
		Settings: ns.Settings,
		Inputs:   inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	b.state[id] = stateDone
	b.built[id] = n
	return n, nil
}

// Node returns a constructed node by ID, or nil.
func (g *Graph) Node(id string) template.Node {
	return g.nodes[id]
}

// Len returns the number of constructed nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate runs every node's checks against the scene. All nodes are
// checked even when early ones fail; the returned error aggregates one
// issue per offending node. Building is refused until validation passes.
func (g *Graph) Validate(ctx context.Context, q scene.Queries) error {
	logger := ctxlog.FromContext(ctx)
	var issues []Issue
	for id, n := range g.nodes {
		if err := n.Validate(q); err != nil {
			issues = append(issues, Issue{NodeID: id, Kind: n.Kind(), Err: err})
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	logger.Debug("Graph validated.", "nodes", len(g.nodes))
	g.validated = true
	return nil
}

// Build evaluates the graph from the named entry node with the given seed
// request. The entry must be a placement node. Dropped branches are normal
// control flow; a backend error aborts the build with side effects already
// applied left in place.
func (g *Graph) Build(ctx context.Context, entry string, backend scene.Backend, req *template.Request, rng *rand.Rand) (Stats, error) {
	if !g.validated {
		return Stats{}, fmt.Errorf("graph has not been validated")
	}
	n, ok := g.nodes[entry]
	if !ok {
		return Stats{}, fmt.Errorf("entry node not found: %q", entry)
	}
	t, ok := n.(template.Template)
	if !ok {
		return Stats{}, fmt.Errorf("entry node %q is a geometry node", entry)
	}

	ctx = ctxlog.With(ctx, "run", uuid.NewString()[:8])
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build starting.", "entry", entry)

	ec := template.NewEvalContext(ctx, backend, rng)
	err := t.Build(ec, req)
	stats := Stats{Placed: ec.Placed(), Dropped: ec.Dropped()}
	if err != nil {
		return stats, fmt.Errorf("building from %q: %w", entry, err)
	}
	logger.Debug("Build finished.", "entry", entry, "placed", stats.Placed, "dropped", stats.Dropped)
	return stats, nil
}
