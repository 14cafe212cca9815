// Package graph turns a declarative node description into an executable
// placement graph.
//
// Construction resolves every node's input references through the node
// registry, children first; reference cycles are configuration errors and
// fail construction. Validation then runs every node's own checks against
// the read-only scene queries, collecting one issue per offending node, and
// building is refused until validation has passed. A build walks the graph
// top-down from a named entry node, single-threaded, and reports how many
// agents it placed and how many branches runtime conditions dropped.
package graph
