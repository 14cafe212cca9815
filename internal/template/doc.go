// Package template implements the node behaviors of the placement graph.
//
// Templates are a description of how to create some arrangement of agents.
// They come in two families that never mix: placement templates consume a
// Request and end in agent creation; geometry templates construct the visual
// representation an agent references and return a GeoResult. Family
// compatibility of every input slot is checked during validation, before any
// evaluation happens.
//
// Node kinds are registered by identifier in a Registry; Builtins returns a
// registry with every kind in this package. Evaluation state (the scene
// backend, the random source, branch accounting) travels in an EvalContext.
package template
