package template

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/crowdplace/internal/inmemoryscene"
	"github.com/vk/crowdplace/internal/model"
	"github.com/vk/crowdplace/internal/scene"
)

func TestOffset_ComposesWithRequest(t *testing.T) {
	spy := newSpy()
	n := newOffset(Config{
		ID: "off",
		Settings: model.Settings{
			"locationOffset": math32.Vec3(1, 0, 0),
			"rotationOffset": math32.Vec3(0, 0, 90),
		},
		Inputs: bind("Template", spy),
	}).(Template)
	ec := testEC(t, nil, 1)
	req := NewRequest()
	req.Pos = math32.Vec3(5, 5, 0)
	require.NoError(t, n.Build(ec, req))

	require.Len(t, spy.reqs, 1)
	assert.Equal(t, math32.Vec3(6, 5, 0), spy.reqs[0].Pos)
	assert.InDelta(t, math32.DegToRad(90), spy.reqs[0].Rot.Z, 1e-5)
}

func TestOffset_OverwriteDiscardsRequestFrame(t *testing.T) {
	spy := newSpy()
	n := newOffset(Config{
		ID: "off",
		Settings: model.Settings{
			"overwrite":      true,
			"locationOffset": math32.Vec3(2, 3, 4),
		},
		Inputs: bind("Template", spy),
	}).(Template)
	ec := testEC(t, nil, 1)
	req := NewRequest()
	req.Pos = math32.Vec3(100, 100, 100)
	req.Rot = math32.Vec3(1, 1, 1)
	require.NoError(t, n.Build(ec, req))

	require.Len(t, spy.reqs, 1)
	assert.Equal(t, math32.Vec3(2, 3, 4), spy.reqs[0].Pos)
	assert.Equal(t, math32.Vector3{}, spy.reqs[0].Rot)
}

func TestOffset_ReferenceObject(t *testing.T) {
	backend := inmemoryscene.New()
	backend.AddObject(inmemoryscene.Object{
		Name:      "anchor",
		Transform: scene.Transform{Pos: math32.Vec3(10, 0, 0), Scale: 1},
	})
	spy := newSpy()
	n := newOffset(Config{
		ID: "off",
		Settings: model.Settings{
			"referenceObject": "anchor",
			"locationOffset":  math32.Vec3(0, 1, 0),
		},
		Inputs: bind("Template", spy),
	}).(Template)
	require.NoError(t, n.Validate(backend))

	ec := testEC(t, backend, 1)
	require.NoError(t, n.Build(ec, NewRequest()))
	require.Len(t, spy.reqs, 1)
	assert.Equal(t, math32.Vec3(10, 1, 0), spy.reqs[0].Pos)
}

func TestOffset_ValidateMissingReference(t *testing.T) {
	n := newOffset(Config{
		ID:       "off",
		Settings: model.Settings{"referenceObject": "ghost"},
		Inputs:   bind("Template", newSpy()),
	})
	require.Error(t, n.Validate(inmemoryscene.New()))
}

func TestRandom_RotationAndScaleWithinBounds(t *testing.T) {
	spy := newSpy()
	n := newRandom(Config{
		ID: "rnd",
		Settings: model.Settings{
			"minRandRot": float32(-30), "maxRandRot": float32(30),
			"minRandSz": float32(0.5), "maxRandSz": float32(1.5),
		},
		Inputs: bind("Template", spy),
	}).(Template)
	ec := testEC(t, nil, 7)
	for i := 0; i < 500; i++ {
		require.NoError(t, n.Build(ec, NewRequest()))
	}
	limit := math32.DegToRad(30) + 1e-4
	for _, r := range spy.reqs {
		assert.LessOrEqual(t, math32.Abs(r.Rot.Z), limit)
		assert.GreaterOrEqual(t, r.Scale, float32(0.5))
		assert.Less(t, r.Scale, float32(1.5))
	}
}

func TestRandom_MaterialDrawFromPrefix(t *testing.T) {
	backend := inmemoryscene.New()
	backend.AddMaterials("skin.a", "skin.b", "metal.a")
	spy := newSpy()
	n := newRandom(Config{
		ID: "rnd",
		Settings: model.Settings{
			"randMat": true, "randMatPrefix": "skin.", "slotName": "body",
		},
		Inputs: bind("Template", spy),
	}).(Template)
	ec := testEC(t, backend, 3)
	require.NoError(t, n.Build(ec, NewRequest()))

	require.Len(t, spy.reqs, 1)
	got := spy.reqs[0].Materials["body"]
	assert.Contains(t, []string{"skin.a", "skin.b"}, got)
}

func TestRandom_MaterialPrefixWithoutMatchLeavesRequestUnchanged(t *testing.T) {
	spy := newSpy()
	n := newRandom(Config{
		ID: "rnd",
		Settings: model.Settings{
			"randMat": true, "randMatPrefix": "missing.",
		},
		Inputs: bind("Template", spy),
	}).(Template)
	ec := testEC(t, nil, 3)
	require.NoError(t, n.Build(ec, NewRequest()))

	require.Len(t, spy.reqs, 1)
	assert.Empty(t, spy.reqs[0].Materials)
}

func TestRandomMaterial_WeightedProportion(t *testing.T) {
	spy := newSpy()
	n := newRandomMaterial(Config{
		ID: "mat",
		Settings: model.Settings{
			"slotName": "body",
			"materials": []model.Weighted{
				{Name: "common", Weight: 3},
				{Name: "rare", Weight: 1},
			},
		},
		Inputs: bind("Template", spy),
	}).(Template)
	require.NoError(t, n.Validate(inmemoryscene.New()))

	ec := testEC(t, nil, 42)
	const draws = 10000
	for i := 0; i < draws; i++ {
		require.NoError(t, n.Build(ec, NewRequest()))
	}
	common := 0
	for _, r := range spy.reqs {
		if r.Materials["body"] == "common" {
			common++
		}
	}
	assert.InDelta(t, 0.75, float64(common)/draws, 0.02)
}

func TestRandomMaterial_ValidateRejectsBadLists(t *testing.T) {
	cases := []struct {
		name string
		list []model.Weighted
	}{
		{name: "empty", list: nil},
		{name: "unnamed entry", list: []model.Weighted{{Weight: 1}}},
		{name: "negative weight", list: []model.Weighted{{Name: "a", Weight: -1}}},
		{name: "zero total", list: []model.Weighted{{Name: "a"}, {Name: "b"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := newRandomMaterial(Config{
				ID:       "mat",
				Settings: model.Settings{"materials": tc.list},
				Inputs:   bind("Template", newSpy()),
			})
			require.Error(t, n.Validate(inmemoryscene.New()))
		})
	}
}

func TestSetTag_Overwrites(t *testing.T) {
	spy := newSpy()
	n := newSetTag(Config{
		ID:       "tag",
		Settings: model.Settings{"tagName": "speed", "tagValue": float32(2)},
		Inputs:   bind("Template", spy),
	}).(Template)
	ec := testEC(t, nil, 1)
	req := NewRequest()
	req.Tags["speed"] = 1
	require.NoError(t, n.Build(ec, req))

	require.Len(t, spy.reqs, 1)
	assert.Equal(t, float32(2), spy.reqs[0].Tags["speed"])
}

func TestAddToGroup(t *testing.T) {
	t.Run("frozen group drops the branch", func(t *testing.T) {
		backend := inmemoryscene.New()
		backend.AddPlacementGroup("crowd", scene.GroupManual, true)
		spy := newSpy()
		n := newAddToGroup(Config{
			ID:       "grp",
			Settings: model.Settings{"groupName": "crowd"},
			Inputs:   bind("Template", spy),
		}).(Template)
		ec := testEC(t, backend, 1)
		require.NoError(t, n.Build(ec, NewRequest()))
		assert.Empty(t, spy.reqs)
		assert.Equal(t, 1, ec.Dropped())
	})

	t.Run("auto group is reset and reused", func(t *testing.T) {
		backend := inmemoryscene.New()
		backend.AddPlacementGroup("crowd", scene.GroupAuto, false)
		spy := newSpy()
		n := newAddToGroup(Config{
			ID:       "grp",
			Settings: model.Settings{"groupName": "crowd"},
			Inputs:   bind("Template", spy),
		}).(Template)
		ec := testEC(t, backend, 1)
		require.NoError(t, n.Build(ec, NewRequest()))
		require.Len(t, spy.reqs, 1)
		assert.Equal(t, "crowd", spy.reqs[0].Group)
		assert.Equal(t, []string{"crowd"}, backend.GroupResets)
	})

	t.Run("missing group is created", func(t *testing.T) {
		backend := inmemoryscene.New()
		spy := newSpy()
		n := newAddToGroup(Config{
			ID:       "grp",
			Settings: model.Settings{"groupName": "fresh"},
			Inputs:   bind("Template", spy),
		}).(Template)
		ec := testEC(t, backend, 1)
		require.NoError(t, n.Build(ec, NewRequest()))
		require.Len(t, spy.reqs, 1)
		assert.Equal(t, "fresh", spy.reqs[0].Group)
		assert.Equal(t, scene.GroupAuto, backend.PlacementGroupKind("fresh"))
	})
}

func TestPointTowards_ObjectMode(t *testing.T) {
	backend := inmemoryscene.New()
	backend.AddObject(inmemoryscene.Object{
		Name:      "beacon",
		Transform: scene.Transform{Pos: math32.Vec3(0, 10, 0), Scale: 1},
	})
	spy := newSpy()
	n := newPointTowards(Config{
		ID:       "pt",
		Settings: model.Settings{"pointObject": "beacon", "pointType": "OBJECT"},
		Inputs:   bind("Template", spy),
	}).(Template)
	require.NoError(t, n.Validate(backend))

	ec := testEC(t, backend, 1)
	require.NoError(t, n.Build(ec, NewRequest()))

	// Target straight ahead on +Y: no rotation needed.
	require.Len(t, spy.reqs, 1)
	assert.InDelta(t, 0, float64(spy.reqs[0].Rot.Length()), 1e-5)
}

func TestPointTowards_MeshModeUsesNearestVertex(t *testing.T) {
	backend := inmemoryscene.New()
	backend.AddObject(inmemoryscene.Object{
		Name:      "wall",
		Transform: scene.Identity(),
		Mesh: &scene.Mesh{
			Vertices: []math32.Vector3{
				{X: 0, Y: 5, Z: 0},
				{X: 100, Y: 5, Z: 0},
			},
			Triangles: nil,
		},
	})
	spy := newSpy()
	n := newPointTowards(Config{
		ID:       "pt",
		Settings: model.Settings{"pointObject": "wall", "pointType": "MESH"},
		Inputs:   bind("Template", spy),
	}).(Template)
	ec := testEC(t, backend, 1)
	require.NoError(t, n.Build(ec, NewRequest()))

	// The request sits at the origin; the nearest vertex is straight up +Y.
	require.Len(t, spy.reqs, 1)
	assert.InDelta(t, 0, float64(spy.reqs[0].Rot.Length()), 1e-5)
}

func TestPointTowards_MeshModeTracksMovedTarget(t *testing.T) {
	backend := inmemoryscene.New()
	wall := inmemoryscene.Object{
		Name:      "wall",
		Transform: scene.Identity(),
		Mesh: &scene.Mesh{
			Vertices:  []math32.Vector3{{X: 0, Y: 5, Z: 0}},
			Triangles: nil,
		},
	}
	backend.AddObject(wall)
	spy := newSpy()
	n := newPointTowards(Config{
		ID:       "pt",
		Settings: model.Settings{"pointObject": "wall", "pointType": "MESH"},
		Inputs:   bind("Template", spy),
	}).(Template)
	ec := testEC(t, backend, 1)
	require.NoError(t, n.Build(ec, NewRequest()))

	// Move the wall behind the request and build again: the cached vertex
	// tree is in local space, so the new transform must be picked up.
	wall.Transform.Pos = math32.Vec3(0, -10, 0)
	backend.AddObject(wall)
	require.NoError(t, n.Build(ec, NewRequest()))

	require.Len(t, spy.reqs, 2)
	q := math32.NewQuatEuler(spy.reqs[1].Rot)
	got := math32.Vec3(0, 1, 0).MulQuat(q)
	assert.InDelta(t, 0, float64(got.X), 1e-4)
	assert.InDelta(t, -1, float64(got.Y), 1e-4)
	assert.InDelta(t, 0, float64(got.Z), 1e-4)
}

func TestTrackEuler_PointsLocalYAtDirection(t *testing.T) {
	cases := []struct {
		name string
		dir  math32.Vector3
	}{
		{name: "+Y", dir: math32.Vec3(0, 1, 0)},
		{name: "+X", dir: math32.Vec3(1, 0, 0)},
		{name: "diagonal", dir: math32.Vec3(1, 1, 1)},
		{name: "-Y", dir: math32.Vec3(0, -1, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			euler := trackEuler(tc.dir)
			q := math32.NewQuatEuler(euler)
			got := math32.Vec3(0, 1, 0).MulQuat(q)
			want := tc.dir.Normal()
			assert.InDelta(t, float64(want.X), float64(got.X), 1e-4)
			assert.InDelta(t, float64(want.Y), float64(got.Y), 1e-4)
			assert.InDelta(t, float64(want.Z), float64(got.Z), 1e-4)
		})
	}
}
