package template

import (
	"errors"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/crowdplace/internal/inmemoryscene"
	"github.com/vk/crowdplace/internal/model"
	"github.com/vk/crowdplace/internal/scene"
)

func TestAgent_RegistersPlacedAgent(t *testing.T) {
	backend := inmemoryscene.New()
	geo := newSpyGeo(&GeoResult{
		Object:        "body#1",
		Rig:           "rig#1",
		ConstrainBone: "root",
	})
	n := newAgent(Config{
		ID:       "agent",
		Settings: model.Settings{"brainType": "walker"},
		Inputs:   bind("Objects", geo),
	}).(Template)
	require.NoError(t, n.Validate(backend))

	ec := testEC(t, backend, 1)
	req := NewRequest()
	req.Pos = math32.Vec3(1, 2, 3)
	req.Scale = 2
	req.Group = "crowd"
	req.Tags["speed"] = 0.7
	req.Materials["skin"] = "skin.b"
	require.NoError(t, n.Build(ec, req))

	assert.Equal(t, 1, ec.Placed())
	require.Len(t, backend.Agents, 1)
	a := backend.Agents[0]
	assert.Equal(t, scene.Handle("body#1"), a.Object)
	assert.Equal(t, "walker", a.Brain)
	assert.Equal(t, "crowd", a.Group)
	assert.Equal(t, scene.Handle("rig#1"), a.Rig)
	assert.Equal(t, "root", a.ConstrainBone)
	assert.Equal(t, float32(0.7), a.Tags["speed"])

	assert.Equal(t, scene.Transform{Pos: math32.Vec3(1, 2, 3), Scale: 2},
		backend.Transforms["body#1"])
	assert.Equal(t, map[string]string{"skin": "skin.b"}, backend.Materials["body#1"])
}

func TestAgent_TagsAreCopied(t *testing.T) {
	backend := inmemoryscene.New()
	n := newAgent(Config{
		ID:       "agent",
		Settings: model.Settings{},
		Inputs:   bind("Objects", newSpyGeo(&GeoResult{Object: "o#1"})),
	}).(Template)
	ec := testEC(t, backend, 1)
	req := NewRequest()
	req.Tags["speed"] = 1
	require.NoError(t, n.Build(ec, req))

	req.Tags["speed"] = 9
	assert.Equal(t, float32(1), backend.Agents[0].Tags["speed"])
}

func TestAgent_DeferGeoPropagates(t *testing.T) {
	backend := inmemoryscene.New()
	geo := newSpyGeo(&GeoResult{Object: "o#1", Deferred: &scene.DeferredGeo{Object: "tree"}})
	n := newAgent(Config{
		ID:       "agent",
		Settings: model.Settings{"deferGeo": true},
		Inputs:   bind("Objects", geo),
	}).(Template)
	ec := testEC(t, backend, 1)
	require.NoError(t, n.Build(ec, NewRequest()))

	require.Len(t, geo.deferred, 1)
	assert.True(t, geo.deferred[0])
	require.NotNil(t, backend.Agents[0].Deferred)
	assert.Equal(t, "tree", backend.Agents[0].Deferred.Object)
}

func TestAgent_NoMaterialSubstitutionsSkipsApply(t *testing.T) {
	backend := inmemoryscene.New()
	n := newAgent(Config{
		ID:       "agent",
		Settings: model.Settings{},
		Inputs:   bind("Objects", newSpyGeo(&GeoResult{Object: "o#1"})),
	}).(Template)
	ec := testEC(t, backend, 1)
	require.NoError(t, n.Build(ec, NewRequest()))

	assert.NotContains(t, backend.Materials, scene.Handle("o#1"))
}

func TestAgent_BackendFailureAborts(t *testing.T) {
	backend := inmemoryscene.New()
	backend.FailWith("registerAgent", errors.New("host rejected agent"))
	n := newAgent(Config{
		ID:       "agent",
		Settings: model.Settings{},
		Inputs:   bind("Objects", newSpyGeo(&GeoResult{Object: "o#1"})),
	}).(Template)
	ec := testEC(t, backend, 1)
	err := n.Build(ec, NewRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host rejected agent")
	assert.Zero(t, ec.Placed())
}

func TestAgent_ValidateNeedsGeometryInput(t *testing.T) {
	n := newAgent(Config{
		ID:       "agent",
		Settings: model.Settings{},
		Inputs:   bind("Objects", newSpy()),
	})
	require.Error(t, n.Validate(inmemoryscene.New()))
}
