package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drape/internal/cloth"
	"github.com/Faultbox/drape/internal/engine/debug"
	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/collision"
	"github.com/Faultbox/drape/pkg/math"
)

func newScene(t *testing.T) *Scene {
	t.Helper()
	cfg := cloth.DefaultConfig()
	cfg.Grid.Columns, cfg.Grid.Rows = 6, 6
	center := math.Vec3{X: -0.3, Y: 0, Z: 0.1}
	s, err := New(cfg, []physics.Collider{
		physics.NewSphere(0.1, center),
		physics.NewCube(0.1, center),
		nil,
	})
	require.NoError(t, err)
	return s
}

func TestNewRejectsEmptyCycle(t *testing.T) {
	_, err := New(cloth.DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrEmptyCycle)
}

func TestPauseAndStepOnce(t *testing.T) {
	s := newScene(t)

	assert.True(t, s.Update(0.016))
	assert.Equal(t, uint64(1), s.Sim().Stats().Frame)

	require.True(t, s.TogglePause())
	assert.False(t, s.Update(0.016))
	assert.Equal(t, uint64(1), s.Sim().Stats().Frame)

	s.StepOnce()
	assert.True(t, s.Update(0.016))
	assert.False(t, s.Update(0.016), "single step is consumed")
	assert.Equal(t, uint64(2), s.Sim().Stats().Frame)
}

func TestCycleCollider(t *testing.T) {
	s := newScene(t)
	assert.Equal(t, "sphere", ShapeName(s.Collider()))
	require.Len(t, s.Sim().Colliders(), 1)

	assert.Equal(t, "cube", ShapeName(s.CycleCollider()))
	assert.Nil(t, s.CycleCollider())
	assert.Empty(t, s.Sim().Colliders())
	assert.Nil(t, s.ColliderLines())

	assert.Equal(t, "sphere", ShapeName(s.CycleCollider()))
	assert.Len(t, s.ColliderLines(), 3*debug.DefaultSphereSegments*2*3)
}

func TestToggles(t *testing.T) {
	s := newScene(t)

	assert.Equal(t, collision.StrategyLinear, s.ToggleStrategy())
	assert.Equal(t, collision.StrategyLinear, s.Sim().Config().Collision.Strategy)
	assert.Equal(t, collision.StrategyBVH, s.ToggleStrategy())

	friction := s.Sim().Config().Collision.Friction.Enabled
	assert.Equal(t, !friction, s.ToggleFriction())

	assert.True(t, s.ToggleWind())
	assert.True(t, s.Sim().Wind().Options().Enabled)

	self := s.Sim().Config().SelfCollision
	assert.Equal(t, !self, s.ToggleSelfCollision())
}

func TestToggleOrientationRebuilds(t *testing.T) {
	s := newScene(t)
	for i := 0; i < 5; i++ {
		s.Update(0.016)
	}

	assert.Equal(t, cloth.Horizontal, s.ToggleOrientation())
	assert.Zero(t, s.Sim().Stats().Frame)
	for _, p := range s.Sim().Particles() {
		assert.False(t, p.Pinned, "horizontal cloth has no pins")
	}
	assert.Equal(t, cloth.Vertical, s.ToggleOrientation())
}

func TestBVHLines(t *testing.T) {
	s := newScene(t)
	assert.Nil(t, s.BVHLines())

	s.ToggleBVH()
	all := len(s.BVHLines())
	assert.Equal(t, s.Sim().BVH().Stats().Nodes*debug.BoxVertexCount*3, all)

	assert.Equal(t, 0, s.CycleBVHDepth())
	assert.Len(t, s.BVHLines(), debug.BoxVertexCount*3)

	depth := s.Sim().BVH().Stats().Depth
	for i := 0; i < depth; i++ {
		s.CycleBVHDepth()
	}
	assert.Equal(t, -1, s.BVHDepth, "wraps back to the full tree")
}

func TestViewBoundsIncludeColliders(t *testing.T) {
	s := newScene(t)
	lo, hi := s.ViewBounds()
	clo, chi := s.Collider().Bounds()
	assert.LessOrEqual(t, lo.X, clo.X)
	assert.GreaterOrEqual(t, hi.Z, chi.Z)

	floor := s.FloorLines()
	require.NotEmpty(t, floor)
	for i := 1; i < len(floor); i += 3 {
		assert.Less(t, floor[i], clo.Y)
	}
}

func TestStatus(t *testing.T) {
	s := newScene(t)
	s.Update(0.016)
	s.TogglePause()
	status := s.Status()
	assert.Contains(t, status, "frame 1")
	assert.Contains(t, status, "sphere bvh")
	assert.Contains(t, status, "paused")
}

func TestGrabHoldsParticle(t *testing.T) {
	s := newScene(t)
	g := s.Sim().Config().Grid
	free := g.Index(g.Columns-1, g.Rows-1)

	require.True(t, s.Grab(free))
	target := math.Vec3{X: 0.2, Y: 0.5, Z: 0.1}
	s.DragTo(target)
	for i := 0; i < 10; i++ {
		s.Update(0.016)
	}
	p := s.Sim().Particles()[free]
	assert.Equal(t, target, p.Position)
	assert.True(t, p.Pinned)

	s.Release()
	assert.False(t, s.Sim().Particles()[free].Pinned, "pin state restored")
	_, held := s.Grabbed()
	assert.False(t, held)
}

func TestGrabKeepsPinnedParticlesPinned(t *testing.T) {
	s := newScene(t)
	pinned := s.Sim().Config().Grid.Index(0, 0)
	require.True(t, s.Sim().Particles()[pinned].Pinned)

	require.True(t, s.Grab(pinned))
	s.Release()
	assert.True(t, s.Sim().Particles()[pinned].Pinned)

	assert.False(t, s.Grab(-1))
	assert.False(t, s.Grab(len(s.Sim().Particles())))
}

func TestResetDropsGrab(t *testing.T) {
	s := newScene(t)
	require.True(t, s.Grab(3))
	s.Reset()
	_, held := s.Grabbed()
	assert.False(t, held)
}
