// Package model provides the declarative, in-memory description of a
// placement graph. Its core purpose is to give the surrounding application a
// strongly-typed blueprint to hand to the graph builder.
//
// The model is built around two structures:
//
//   - GraphSpec: the root container holding every node description. It is a
//     flat set; the graph shape is implied by input bindings.
//
//   - NodeSpec: one node of the graph. It names the node kind (resolved
//     against the template registry), binds named input slots to child node
//     IDs, and carries the node's settings.
//
// Loading and saving graph descriptions is entirely the host's concern: this
// package defines no file format and performs no I/O. The host constructs a
// GraphSpec however it likes (its own editor state, its own persistence) and
// hands it to the graph builder.
package model
