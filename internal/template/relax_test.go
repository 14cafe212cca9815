package template

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
)

func TestRelax_PushesClosePointsApart(t *testing.T) {
	positions := []math32.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 0.1, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
	}
	Relax(positions, 0.5, 4)

	sep := positions[0].DistanceTo(positions[1])
	assert.Greater(t, sep, float32(0.1))
	// The far point has no neighbors in range and never moves.
	assert.Equal(t, math32.Vec3(10, 0, 0), positions[2])
}

func TestRelax_ZeroRadiusIsIdentity(t *testing.T) {
	positions := []math32.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 2, Z: 3},
	}
	want := append([]math32.Vector3(nil), positions...)
	Relax(positions, 0, 10)
	assert.Equal(t, want, positions)
}

func TestRelax_IsolatedPointsUntouched(t *testing.T) {
	positions := []math32.Vector3{
		{X: 0, Y: 0, Z: 0},
		{X: 100, Y: 0, Z: 0},
	}
	want := append([]math32.Vector3(nil), positions...)
	Relax(positions, 1, 3)
	assert.Equal(t, want, positions)
}
