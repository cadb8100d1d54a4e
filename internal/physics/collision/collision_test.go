package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/bvh"
	"github.com/Faultbox/drape/pkg/math"
)

// flatSheet lays an n×n sheet in the XZ plane at height y, falling slowly.
func flatSheet(n int, spacing, y float32) ([]physics.Particle, []uint32) {
	particles := make([]physics.Particle, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pos := math.Vec3{X: float32(i) * spacing, Y: y, Z: float32(j) * spacing}
			p := physics.NewParticle(pos, false)
			p.SetPreviousPosition(pos.Add(math.Vec3{X: 0.002, Y: 0.004}))
			particles = append(particles, p)
		}
	}
	var indices []uint32
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1; j++ {
			a := uint32(i*n + j)
			b := uint32((i+1)*n + j)
			c := uint32(i*n + j + 1)
			d := uint32((i+1)*n + j + 1)
			indices = append(indices, a, b, c, d, c, b)
		}
	}
	return particles, indices
}

func TestStrategiesAgree(t *testing.T) {
	tests := []struct {
		name     string
		collider physics.Collider
	}{
		{"sphere", physics.NewSphere(0.1, math.Vec3{X: 0.35, Y: -0.05, Z: 0.35})},
		{"cube", physics.NewCube(0.2, math.Vec3{X: 0.2, Y: -0.095, Z: 0.5})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTree, indices := flatSheet(10, 0.05, 0)
			linear := append([]physics.Particle(nil), withTree...)
			tree := bvh.New(withTree, indices)

			opts := DefaultOptions()
			opts.Strategy = StrategyBVH
			rb := NewResolver(opts)
			opts.Strategy = StrategyLinear
			rl := NewResolver(opts)

			gotBVH := rb.ResolveTriangles(withTree, tree, indices, tt.collider, 0.016, nil)
			gotLinear := rl.ResolveTriangles(linear, nil, indices, tt.collider, 0.016, nil)

			require.NotEmpty(t, gotLinear)
			assert.Equal(t, gotLinear, gotBVH)
			assert.Less(t, rb.Stats().Candidates, rl.Stats().Candidates, "tree prunes")
			assert.Equal(t, rl.Stats().Colliding, rb.Stats().Colliding)

			for i := range linear {
				a, b := withTree[i].Position, linear[i].Position
				assert.InDelta(t, b.X, a.X, 1e-6, "particle %d", i)
				assert.InDelta(t, b.Y, a.Y, 1e-6, "particle %d", i)
				assert.InDelta(t, b.Z, a.Z, 1e-6, "particle %d", i)
			}
		})
	}
}

func TestCollidingIndicesAreWholeTriangles(t *testing.T) {
	particles, indices := flatSheet(6, 0.05, 0)
	r := NewResolver(DefaultOptions())
	got := r.ResolveTriangles(particles, bvh.New(particles, indices), indices,
		physics.NewSphere(0.06, math.Vec3{X: 0.1, Z: 0.1}), 0.016, nil)

	require.NotEmpty(t, got)
	require.Zero(t, len(got)%3)
	for i := 0; i < len(got); i += 3 {
		assert.NotEqual(t, got[i], got[i+1])
		assert.NotEqual(t, got[i+1], got[i+2])
		assert.NotEqual(t, got[i], got[i+2])
	}
}

func TestMissedColliderLeavesParticlesAlone(t *testing.T) {
	particles, indices := flatSheet(5, 0.05, 0)
	before := append([]physics.Particle(nil), particles...)

	r := NewResolver(DefaultOptions())
	got := r.ResolveTriangles(particles, bvh.New(particles, indices), indices,
		physics.NewSphere(0.1, math.Vec3{Y: 2}), 0.016, nil)

	assert.Empty(t, got)
	assert.Equal(t, before, particles)
	assert.Zero(t, r.Stats().Candidates)
}

func TestPinnedVerticesDoNotMove(t *testing.T) {
	particles, indices := flatSheet(4, 0.05, 0)
	for i := range particles {
		particles[i].Pinned = true
	}
	before := append([]physics.Particle(nil), particles...)

	r := NewResolver(DefaultOptions())
	got := r.ResolveTriangles(particles, nil, indices, physics.NewCube(1, math.Vec3{}), 0.016, nil)

	assert.NotEmpty(t, got, "pinned triangles still report contact")
	assert.Equal(t, before, particles)
}

func TestMalformedBufferNeverPanics(t *testing.T) {
	particles, indices := flatSheet(3, 0.05, 0)
	good := len(indices) / 3
	bad := append(append([]uint32(nil), indices...), 0, 1, 500, 2, 3)

	for _, strategy := range []Strategy{StrategyBVH, StrategyLinear} {
		t.Run(strategy.String(), func(t *testing.T) {
			ps := append([]physics.Particle(nil), particles...)
			opts := DefaultOptions()
			opts.Strategy = strategy
			r := NewResolver(opts)

			var got []uint32
			require.NotPanics(t, func() {
				got = r.ResolveTriangles(ps, bvh.New(ps, bad), bad, physics.NewCube(2, math.Vec3{}), 0.016, nil)
			})
			assert.Len(t, got, 3*good)
			for _, idx := range got {
				assert.Less(t, idx, uint32(len(ps)))
			}
		})
	}
}

func TestDegenerateTriangleIsSkipped(t *testing.T) {
	particles := []physics.Particle{
		physics.NewParticle(math.Vec3{}, false),
		physics.NewParticle(math.Vec3{X: 0.01}, false),
		physics.NewParticle(math.Vec3{X: 0.02}, false),
	}
	r := NewResolver(DefaultOptions())
	got := r.ResolveTriangles(particles, nil, []uint32{0, 1, 2}, physics.NewSphere(0.5, math.Vec3{}), 0.016, nil)

	assert.Empty(t, got)
	assert.Equal(t, 1, r.Stats().Skipped)
	for _, p := range particles {
		assert.True(t, p.Position.IsFinite())
	}
}

func TestFrictionNeverReversesTangentialVelocity(t *testing.T) {
	r := NewResolver(DefaultOptions())
	vt := math.Vec3{X: 0.02}

	small := r.friction(vt, 1, 10, 0.016)
	assert.Greater(t, small.X, float32(0))
	assert.Less(t, small.X, vt.X)

	huge := r.friction(vt, 1e9, 10, 0.016)
	assert.Equal(t, vt, huge, "clamped to the full tangential velocity")

	r.opts.Friction.Enabled = false
	assert.Equal(t, math.Vec3{}, r.friction(vt, 1e9, 10, 0.016))
}

func TestFrictionPicksStaticBelowThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.Friction = Friction{Enabled: true, Static: 0.8, Kinetic: 0.2, Threshold: 0.01}
	r := NewResolver(opts)

	const force, mass, dt = 1, 10, 0.1
	slow := r.friction(math.Vec3{X: 0.005}, force, mass, dt)
	fast := r.friction(math.Vec3{X: 0.5}, force, mass, dt)

	assert.InDelta(t, 0.8*force*dt*dt/mass, slow.X, 1e-6)
	assert.InDelta(t, 0.2*force*dt*dt/mass, fast.X, 1e-6)
}

func TestResponseModes(t *testing.T) {
	sphere := physics.NewSphere(0.05, math.Vec3{X: 0.05, Y: 0.02, Z: 0.05})
	tests := []struct {
		mode      ResponseMode
		wantMoved bool
	}{
		{ResponseSubstep, true},
		{ResponseDeferred, false},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			particles, indices := flatSheet(4, 0.05, 0)
			before := append([]physics.Particle(nil), particles...)
			opts := DefaultOptions()
			opts.Response = tt.mode

			got := NewResolver(opts).ResolveTriangles(particles, nil, indices, sphere, 0.016, nil)
			require.NotEmpty(t, got)

			var moved bool
			for _, idx := range got {
				if particles[idx].Position.Distance(before[idx].Position) > 1e-6 {
					moved = true
				}
			}
			assert.Equal(t, tt.wantMoved, moved)
		})
	}
}

func TestSpherePushOut(t *testing.T) {
	sphere := physics.NewSphere(0.1, math.Vec3{X: 0.3, Y: -0.2, Z: 0.1})
	particles := []physics.Particle{physics.NewParticle(sphere.Center, false)}

	r := NewResolver(DefaultOptions())
	moved := r.ResolveParticles(particles, sphere)

	assert.Equal(t, 1, moved)
	assert.GreaterOrEqual(t, particles[0].Position.Distance(sphere.Center), sphere.Radius)
	assert.True(t, particles[0].Position.IsFinite())
}

func TestCubePushOutReflectsInwardVelocity(t *testing.T) {
	cube := physics.NewCube(0.4, math.Vec3{})
	p := physics.NewParticle(math.Vec3{X: 0.05, Y: 0.19, Z: -0.02}, false)
	p.SetPreviousPosition(p.Position.Add(math.Vec3{X: -0.01, Y: 0.02}))
	particles := []physics.Particle{p}

	r := NewResolver(DefaultOptions())
	require.Equal(t, 1, r.ResolveParticles(particles, cube))

	got := particles[0]
	assert.GreaterOrEqual(t, got.Position.Y, cube.Center.Y+cube.HalfLength)
	v := got.Velocity()
	assert.Greater(t, v.Y, float32(0), "normal velocity now points out")
	assert.InDelta(t, 0.02*0.5, v.Y, 1e-6)
	assert.InDelta(t, 0.01, v.X, 1e-6, "tangential velocity kept")
}

func TestResolveParticlesSkipsPinnedAndOutside(t *testing.T) {
	sphere := physics.NewSphere(0.1, math.Vec3{})
	particles := []physics.Particle{
		physics.NewParticle(math.Vec3{}, true),
		physics.NewParticle(math.Vec3{X: 1}, false),
	}
	r := NewResolver(DefaultOptions())
	assert.Zero(t, r.ResolveParticles(particles, sphere))
	assert.Equal(t, math.Vec3{}, particles[0].Position)
	assert.Zero(t, r.ResolveParticles(particles, nil))
}

func TestSelfCollisionSeparatesPair(t *testing.T) {
	for _, mode := range []SelfMode{SelfBruteForce, SelfGrid} {
		t.Run(mode.String(), func(t *testing.T) {
			particles := []physics.Particle{
				physics.NewParticle(math.Vec3{}, false),
				physics.NewParticle(math.Vec3{X: 0.004}, false),
			}
			r := 2 * particles[0].Radius
			before := particles[0].Position.Distance(particles[1].Position)
			require.Less(t, before, r)

			opts := DefaultOptions()
			opts.Self = mode
			res := NewResolver(opts)
			assert.Equal(t, 2, res.SelfCollide(particles))

			after := particles[0].Position.Distance(particles[1].Position)
			assert.Greater(t, after, before)
			assert.LessOrEqual(t, after, r+1e-6)
		})
	}
}

func TestSelfCollisionLeavesResidualOverlapInCluster(t *testing.T) {
	particles := []physics.Particle{
		physics.NewParticle(math.Vec3{}, false),
		physics.NewParticle(math.Vec3{X: 0.004}, false),
		physics.NewParticle(math.Vec3{X: 0.008}, false),
	}
	NewResolver(DefaultOptions()).SelfCollide(particles)

	// One pass does not converge: the first pair still overlaps.
	d := particles[0].Position.Distance(particles[1].Position)
	assert.Less(t, d, particles[0].Radius+particles[1].Radius)
	assert.InDelta(t, 0.00475, d, 1e-5)
}

func TestSelfCollisionPinnedIsObstacle(t *testing.T) {
	particles := []physics.Particle{
		physics.NewParticle(math.Vec3{}, true),
		physics.NewParticle(math.Vec3{Y: 0.002}, false),
	}
	before := particles[1].Velocity()
	NewResolver(DefaultOptions()).SelfCollide(particles)

	assert.Equal(t, math.Vec3{}, particles[0].Position)
	assert.InDelta(t, 0.006, particles[1].Position.Y, 1e-6)
	assert.Equal(t, before, particles[1].Velocity(), "separation keeps velocity")
}

func TestSelfCollisionSkipsCoincident(t *testing.T) {
	particles := []physics.Particle{
		physics.NewParticle(math.Vec3{X: 1}, false),
		physics.NewParticle(math.Vec3{X: 1}, false),
	}
	assert.Zero(t, NewResolver(DefaultOptions()).SelfCollide(particles))
	assert.True(t, particles[0].Position.IsFinite())
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"bvh", StrategyBVH, false},
		{"BVH", StrategyBVH, false},
		{"linear", StrategyLinear, false},
		{"", StrategyBVH, false},
		{"octree", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSelfMode("grid")
	assert.NoError(t, err)
	_, err = ParseResponseMode("later")
	assert.Error(t, err)
}

func benchmarkResolve(b *testing.B, strategy Strategy) {
	particles, indices := flatSheet(48, 0.02, 0)
	tree := bvh.New(particles, indices)
	opts := DefaultOptions()
	opts.Strategy = strategy
	r := NewResolver(opts)
	sphere := physics.NewSphere(0.05, math.Vec3{X: 0.3, Y: -0.04, Z: 0.3})
	snapshot := append([]physics.Particle(nil), particles...)

	var out []uint32
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(particles, snapshot)
		out = r.ResolveTriangles(particles, tree, indices, sphere, 0.016, out[:0])
	}
}

func BenchmarkResolveBVH(b *testing.B)    { benchmarkResolve(b, StrategyBVH) }
func BenchmarkResolveLinear(b *testing.B) { benchmarkResolve(b, StrategyLinear) }
