package template

// Builtins returns a registry holding every built-in node kind.
func Builtins() *Registry {
	r := NewRegistry()

	// Placement family.
	r.Register("CombineNodeType", newCombine)
	r.Register("TemplateSwitchNodeType", newSwitch)
	r.Register("OffsetNodeType", newOffset)
	r.Register("RandomNodeType", newRandom)
	r.Register("PointTowardsNodeType", newPointTowards)
	r.Register("RandomMaterialNodeType", newRandomMaterial)
	r.Register("SetTagNodeType", newSetTag)
	r.Register("AddToGroupNodeType", newAddToGroup)
	r.Register("RandomPositionNodeType", newRandomPositioning)
	r.Register("MeshPositionNodeType", newMeshPositioning)
	r.Register("FormationPositionNodeType", newFormation)
	r.Register("TargetPositionNodeType", newTarget)
	r.Register("ObstacleNodeType", newObstacle)
	r.Register("GroundNodeType", newGround)
	r.Register("TemplateNodeType", newAgent)

	// Geometry family.
	r.Register("ObjectInputNodeType", newObjectInput)
	r.Register("GroupInputNodeType", newGroupInput)
	r.Register("GeoSwitchNodeType", newGeoSwitch)
	r.Register("ParentNodeType", newParent)
	r.Register("LinkGroupNodeType", newLinkGroup)
	r.Register("ModifyBoneNodeType", newModifyBone)

	return r
}
