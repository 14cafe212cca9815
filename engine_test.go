package crowdplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/crowdplace/internal/inmemoryscene"
	"github.com/vk/crowdplace/internal/model"
	"github.com/vk/crowdplace/internal/scene"
)

func marketSpec() *model.GraphSpec {
	return &model.GraphSpec{Nodes: []*model.NodeSpec{
		{
			ID:   "stalls",
			Kind: "FormationPositionNodeType",
			Inputs: []model.Input{
				{Slot: "Template", Refs: []string{"vendor"}},
			},
			Settings: model.Settings{
				"noToPlace":         6,
				"ArrayRows":         2,
				"ArrayRowMargin":    float32(2),
				"ArrayColumnMargin": float32(3),
			},
		},
		{
			ID:   "vendor",
			Kind: "TemplateNodeType",
			Inputs: []model.Input{
				{Slot: "Objects", Refs: []string{"mesh"}},
			},
			Settings: model.Settings{"brainType": "vendor"},
		},
		{
			ID:       "mesh",
			Kind:     "ObjectInputNodeType",
			Settings: model.Settings{"inputObject": "stall"},
		},
	}}
}

func TestEngine_LoadAndBuild(t *testing.T) {
	backend := inmemoryscene.New()
	backend.AddObject(inmemoryscene.Object{Name: "stall", Transform: scene.Identity()})

	e := New(backend, nil)
	require.NoError(t, e.Load(context.Background(), marketSpec()))

	stats, err := e.Build(context.Background(), "stalls", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Placed)
	assert.Len(t, backend.Agents, 6)
	assert.Equal(t, 6, e.Node("vendor").BuildCount())
}

func TestEngine_LoadRejectsInvalidGraph(t *testing.T) {
	// The referenced scene object does not exist, so validation must fail.
	e := New(inmemoryscene.New(), nil)
	err := e.Load(context.Background(), marketSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stall")
}

func TestEngine_BuildWithoutLoad(t *testing.T) {
	e := New(inmemoryscene.New(), nil)
	_, err := e.Build(context.Background(), "stalls", nil, 1)
	require.Error(t, err)
}

func TestEngine_SameSeedReplaysPlacement(t *testing.T) {
	spec := &model.GraphSpec{Nodes: []*model.NodeSpec{
		{
			ID:   "scatter",
			Kind: "RandomPositionNodeType",
			Inputs: []model.Input{
				{Slot: "Template", Refs: []string{"agent"}},
			},
			Settings: model.Settings{
				"locationType": "radius",
				"noToPlace":    20,
				"radius":       float32(5),
			},
		},
		{
			ID:   "agent",
			Kind: "TemplateNodeType",
			Inputs: []model.Input{
				{Slot: "Objects", Refs: []string{"mesh"}},
			},
			Settings: model.Settings{"brainType": "walker"},
		},
		{
			ID:       "mesh",
			Kind:     "ObjectInputNodeType",
			Settings: model.Settings{"inputObject": "person"},
		},
	}}

	run := func() []scene.Transform {
		backend := inmemoryscene.New()
		backend.AddObject(inmemoryscene.Object{Name: "person", Transform: scene.Identity()})
		e := New(backend, nil)
		require.NoError(t, e.Load(context.Background(), spec))
		_, err := e.Build(context.Background(), "scatter", nil, 99)
		require.NoError(t, err)
		out := make([]scene.Transform, 0, len(backend.Agents))
		for _, a := range backend.Agents {
			out = append(out, backend.Transforms[a.Object])
		}
		return out
	}

	assert.Equal(t, run(), run())
}
