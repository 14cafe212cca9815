package scene

import (
	"cogentcore.org/core/math32"
)

// Handle is an opaque reference to a scene object owned by the backend.
type Handle string

// Nil is the absent handle.
const Nil Handle = ""

// GroupKind classifies a placement group in the host's group registry.
type GroupKind string

const (
	// GroupAuto groups are regenerated on every build and may be reset.
	GroupAuto GroupKind = "auto"
	// GroupManual groups are curated by the user and are never reset.
	GroupManual GroupKind = "manual"
)

// Queries is the read-only capability set used during validation. All
// methods must be pure: validation runs before any build and may be repeated.
type Queries interface {
	// ObjectExists reports whether a scene object with the name exists.
	ObjectExists(name string) bool
	// GroupExists reports whether a scene group with the name exists.
	GroupExists(name string) bool
	// HasMesh reports whether the named object carries triangle mesh data.
	HasMesh(name string) bool
}

// Backend is the full capability set nodes call into during a build.
type Backend interface {
	Queries

	// ObjectTransform returns the world transform of a named object.
	ObjectTransform(name string) Transform
	// ObjectMesh returns an immutable triangle-mesh snapshot of a named
	// object, in the object's local space.
	ObjectMesh(name string) (*Mesh, error)
	// ObjectBounds returns the world-space bounding box of a named object.
	ObjectBounds(name string) math32.Box3
	// GroupMembers returns the object names belonging to a named group.
	GroupMembers(group string) []string
	// MaterialsWithPrefix returns the material names sharing a prefix.
	MaterialsWithPrefix(prefix string) []string

	// IsGroupFrozen reports whether placement into the group is frozen.
	IsGroupFrozen(group string) bool
	// PlacementGroupKind returns the kind of an existing placement group,
	// or "" when the group is not registered.
	PlacementGroupKind(group string) GroupKind
	// ResetGroup clears an auto placement group before it is reused.
	ResetGroup(group string) error
	// CreatePlacementGroup registers a new placement group.
	CreatePlacementGroup(group string) error

	// DuplicateObject copies a named object. In deferred mode the backend
	// creates a lightweight placeholder that it resolves itself at a later
	// stage.
	DuplicateObject(name string, deferred bool) (Handle, error)
	// DuplicateGroup copies every member of a named group, preserving the
	// members' internal parent relationships and re-targeting armature
	// modifiers to the duplicated armature. The returned top handle is the
	// duplicated armature or, when the group has none, an anchor object
	// synthesized at the lowest member.
	DuplicateGroup(group string, deferred bool) (top Handle, members []Handle, err error)
	// LinkExternalGroup duplicate-links a group and rig stored in an
	// external source and constrains the named bone.
	LinkExternalGroup(sourcePath, group, rigObject, constrainBone string) (obj, rig Handle, err error)
	// AttachToBone parents child to a named bone of parent through a
	// child-of relationship using the bone's inverse bind matrix.
	AttachToBone(child, parent Handle, bone string) error
	// SetTransform applies a world transform to a constructed object.
	SetTransform(h Handle, t Transform) error
	// ApplyMaterials applies material substitutions to a constructed
	// object; keys are original material names, values replacements.
	ApplyMaterials(h Handle, subs map[string]string) error
	// RegisterAgent hands a fully placed agent to the host simulation.
	RegisterAgent(a Agent) error
}

// Agent is the final product of one placement branch: everything the host
// needs to register one agent.
type Agent struct {
	Object        Handle
	Brain         string
	Group         string
	Tags          map[string]float32
	Rig           Handle
	ConstrainBone string
	// BoneMods maps bone name to attribute-name → tag-name overrides
	// accumulated by the geometry subgraph.
	BoneMods map[string]map[string]string
	// Deferred carries the unresolved source reference when the agent's
	// geometry was constructed in deferred mode.
	Deferred *DeferredGeo
}

// DeferredGeo is the unresolved reference carried by a deferred geometry
// placeholder, resolved by the backend at a later stage.
type DeferredGeo struct {
	// Object is the source object name for a deferred object duplicate.
	Object string
	// Group and Armature identify a deferred group duplicate.
	Group    string
	Armature string
}
