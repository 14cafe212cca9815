package template

import (
	"cogentcore.org/core/math32"

	"github.com/vk/crowdplace/internal/scene"
)

// Request is the payload passed top-down through placement nodes. A request
// describes where and how one agent (or one branch of agents) should be
// created.
//
// Requests have value semantics at fan-out points: a node delegating to more
// than one child hands every branch an independent Fork, so tag and material
// mutations in one branch are never visible in a sibling.
type Request struct {
	Pos math32.Vector3
	// Rot holds XYZ Euler angles in radians.
	Rot   math32.Vector3
	Scale float32
	// Tags seed the created agent's initial tag set.
	Tags map[string]float32
	// Group names the placement group agents of this branch join.
	Group string
	// Materials maps original material names to their replacements,
	// applied when the branch's geometry is constructed.
	Materials map[string]string
}

// NewRequest returns a request at the origin with unit scale.
func NewRequest() *Request {
	return &Request{
		Scale:     1,
		Tags:      make(map[string]float32),
		Materials: make(map[string]string),
	}
}

// Fork returns an independent copy of the request. The tag and material
// maps are duplicated.
func (r *Request) Fork() *Request {
	cp := *r
	cp.Tags = make(map[string]float32, len(r.Tags))
	for k, v := range r.Tags {
		cp.Tags[k] = v
	}
	cp.Materials = make(map[string]string, len(r.Materials))
	for k, v := range r.Materials {
		cp.Materials[k] = v
	}
	return &cp
}

// GeoResult is the payload returned bottom-up through geometry nodes: the
// constructed object plus the rig-binding metadata accumulated along the
// way.
type GeoResult struct {
	// Object is the constructed or duplicated top-level object.
	Object scene.Handle
	// Rig optionally overrides the rig the host binds the agent to.
	Rig scene.Handle
	// ConstrainBone names the rig bone constrained to the object.
	ConstrainBone string
	// BoneMods maps bone name to attribute-name → tag-name overrides.
	BoneMods map[string]map[string]string
	// Deferred carries the unresolved source reference when construction
	// was deferred to the backend.
	Deferred *scene.DeferredGeo
}

// SetBoneMod records one bone-attribute-to-tag override.
func (g *GeoResult) SetBoneMod(bone, attribute, tag string) {
	if g.BoneMods == nil {
		g.BoneMods = make(map[string]map[string]string)
	}
	if g.BoneMods[bone] == nil {
		g.BoneMods[bone] = make(map[string]string)
	}
	g.BoneMods[bone][attribute] = tag
}
