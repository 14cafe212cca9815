// Package scene defines the boundary between the placement core and the host
// application that owns actual objects, materials, meshes and rigs.
//
// The core never touches scene storage directly. Nodes validate against the
// read-only Queries capability set and, during a build, instruct the full
// Backend to duplicate objects, link external groups, attach bones and
// register agents. Handles returned by the backend are opaque to the core.
package scene
