package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
)

func chain() *geo.Geometry {
	return &geo.Geometry{
		Description: geo.Description{TextureWidth: 16, TextureHeight: 16},
		Bones: []geo.Bone{
			// child listed before its parent on purpose
			{Name: "arm", Parent: "body", Pivot: [3]float64{0, 10, 0}},
			{Name: "body", Pivot: [3]float64{0, 0, 0}, Rotation: [3]float64{0, 90, 0}},
		},
	}
}

func TestWorldMatricesInheritParent(t *testing.T) {
	g := chain()
	worlds := BuildWorldMatrices(g, nil)
	require.Len(t, worlds, 2)

	// arm has no rotation of its own, so it carries the body's 90° yaw
	p := worlds[0].MulPoint(mathutil.Vec3{1, 0, 0})
	assert.InDelta(t, 0, p[0], 1e-9)
	assert.InDelta(t, -1, p[2], 1e-9)
}

func TestPoseOffsets(t *testing.T) {
	g := chain()
	worlds := BuildWorldMatrices(g, map[int]Pose{
		1: {Rotation: mathutil.Vec3{0, -90, 0}, Position: mathutil.Vec3{0, 2, 0}},
	})
	p := worlds[1].MulPoint(mathutil.Vec3{1, 0, 0})
	assert.InDelta(t, 1, p[0], 1e-9)
	assert.InDelta(t, 2, p[1], 1e-9)
}

func TestPoseScaleDefaultsToOne(t *testing.T) {
	g := &geo.Geometry{Bones: []geo.Bone{{Name: "b"}}}
	worlds := BuildWorldMatrices(g, map[int]Pose{0: {Scale: mathutil.Vec3{2, 0, 0}}})
	p := worlds[0].MulPoint(mathutil.Vec3{1, 1, 1})
	assert.Equal(t, mathutil.Vec3{2, 1, 1}, p)
}

func TestCyclicParentsTerminate(t *testing.T) {
	g := &geo.Geometry{Bones: []geo.Bone{
		{Name: "a", Parent: "b"},
		{Name: "b", Parent: "a"},
	}}
	worlds := BuildWorldMatrices(g, nil)
	assert.Len(t, worlds, 2)
}

func TestApplyTransforms(t *testing.T) {
	worlds := []mathutil.Mat4{mathutil.Translate(mathutil.Vec3{0, 5, 0})}
	parts := []geo.Part{
		{Bone: 0, Quads: []geo.Quad{{Pos: [4]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}}}},
		{Bone: 7, Quads: []geo.Quad{{Pos: [4]mathutil.Vec3{{0, 0, 0}}}}},
	}
	out := ApplyTransforms(parts, worlds)
	require.Len(t, out, 2)
	assert.Equal(t, mathutil.Vec3{1, 6, 0}, out[0].Pos[2])
	assert.Equal(t, mathutil.Vec3{0, 0, 0}, out[1].Pos[0])
	// source parts are untouched
	assert.Equal(t, mathutil.Vec3{1, 1, 0}, parts[0].Quads[0].Pos[2])
}
