package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/drape/pkg/math"
)

func TestVerletMatchesConstantAcceleration(t *testing.T) {
	p := NewParticle(math.Vec3{X: 1, Y: 2, Z: 3}, false)
	force := math.Vec3{X: 0.5, Y: -2, Z: 0}
	const dt = float32(0.01)
	const steps = 200

	for i := 0; i < steps; i++ {
		p.ApplyForce(force)
		p.Update(dt)
	}

	a := force.Scale(1 / p.Mass)
	tt := dt * steps
	// x(t) = x0 + v0·t + ½at², v0 = 0
	want := math.Vec3{X: 1, Y: 2, Z: 3}.Add(a.Scale(0.5 * tt * tt))
	// Verlet started from rest leads the closed form by ½·a·dt·t.
	tol := float64(a.Length()*dt*tt) + 1e-5

	assert.InDelta(t, want.X, p.Position.X, tol)
	assert.InDelta(t, want.Y, p.Position.Y, tol)
	assert.InDelta(t, want.Z, p.Position.Z, tol)

	// The discrete trajectory is exact: x_n = x0 + a·dt²·n(n+1)/2.
	discrete := math.Vec3{X: 1, Y: 2, Z: 3}.Add(a.Scale(dt * dt * steps * (steps + 1) / 2))
	assert.InDelta(t, discrete.Y, p.Position.Y, 1e-3)
	assert.Equal(t, math.Vec3{}, p.Acceleration, "acceleration resets after update")
}

func TestPinnedParticleNeverMoves(t *testing.T) {
	start := math.Vec3{X: 0.2, Y: 0.3, Z: -0.1}
	p := NewParticle(start, true)

	for i := 0; i < 50; i++ {
		p.ApplyForce(math.Vec3{X: 100, Y: -100, Z: 3})
		p.Update(0.016)
	}

	assert.Equal(t, start, p.Position)
	assert.Equal(t, start, p.PreviousPosition)
	assert.Equal(t, math.Vec3{}, p.Acceleration)
}

func TestSetPositionZeroesVelocity(t *testing.T) {
	p := NewParticle(math.Vec3{}, false)
	p.SetPreviousPosition(math.Vec3{X: -1})
	require.NotEqual(t, math.Vec3{}, p.Velocity())

	p.SetPosition(math.Vec3{Y: 1})
	assert.Equal(t, math.Vec3{}, p.Velocity())

	p.SetPreviousPosition(math.Vec3{Y: 0.5})
	v := p.Velocity()
	p.Translate(math.Vec3{X: 3})
	assert.Equal(t, v, p.Velocity(), "translate keeps velocity")
	assert.Equal(t, math.Vec3{X: 3, Y: 1}, p.Position)
}

func TestSpringForcesAreOpposite(t *testing.T) {
	tests := []struct {
		name string
		a, b math.Vec3
		rest float32
	}{
		{"stretched", math.Vec3{}, math.Vec3{X: 2}, 1},
		{"compressed", math.Vec3{}, math.Vec3{X: 0.3, Y: 0.4}, 1},
		{"at rest", math.Vec3{}, math.Vec3{Z: 1}, 1},
		{"diagonal", math.Vec3{X: -1, Y: 2, Z: 0.5}, math.Vec3{X: 1, Y: -0.5, Z: 2}, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			particles := []Particle{NewParticle(tt.a, false), NewParticle(tt.b, false)}
			s := Spring{A: 0, B: 1, K: 50, RestLength: tt.rest}
			s.Update(particles)

			fa := particles[0].Acceleration.Scale(particles[0].Mass)
			fb := particles[1].Acceleration.Scale(particles[1].Mass)
			sum := fa.Add(fb)
			assert.InDelta(t, 0, sum.Length(), 1e-5)

			want := s.Force(particles)
			assert.InDelta(t, want.X, fb.X, 1e-5)
			assert.InDelta(t, want.Y, fb.Y, 1e-5)
			assert.InDelta(t, want.Z, fb.Z, 1e-5)
		})
	}
}

func TestSpringPullsStretchedEndsTogether(t *testing.T) {
	particles := []Particle{NewParticle(math.Vec3{}, false), NewParticle(math.Vec3{X: 2}, false)}
	s := NewSpring(particles, 0, 1, 10, Structural)
	assert.InDelta(t, 2, s.RestLength, 1e-6)

	s.RestLength = 1
	f := s.Force(particles)
	assert.InDelta(t, -10, f.X, 1e-5, "force on B points back toward A")
}

func TestSpringCoincidentEndpointsProduceNoForce(t *testing.T) {
	particles := []Particle{NewParticle(math.Vec3{X: 1}, false), NewParticle(math.Vec3{X: 1}, false)}
	s := Spring{A: 0, B: 1, K: 50, RestLength: 0.05}
	s.Update(particles)

	assert.True(t, particles[0].Acceleration.IsFinite())
	assert.Equal(t, math.Vec3{}, particles[1].Acceleration)
}

func TestCubeContainment(t *testing.T) {
	c := NewCube(0.4, math.Vec3{X: 1, Y: -1, Z: 0.5})
	const eps = 0.02

	assert.True(t, c.Contains(c.Center), "center always collides")
	for axis := 0; axis < 3; axis++ {
		for _, sign := range []float32{-1, 1} {
			var d math.Vec3
			switch axis {
			case 0:
				d.X = sign * (c.HalfLength + eps)
			case 1:
				d.Y = sign * (c.HalfLength + eps)
			case 2:
				d.Z = sign * (c.HalfLength + eps)
			}
			assert.False(t, c.Contains(c.Center.Add(d)), "axis %d sign %v", axis, sign)
		}
	}
}

func TestSphereContainment(t *testing.T) {
	s := NewSphere(0.5, math.Vec3{Y: 1})
	assert.True(t, s.Contains(s.Center))
	assert.True(t, s.Contains(math.Vec3{Y: 1.5}), "surface counts")
	assert.False(t, s.Contains(math.Vec3{Y: 1.51}))
	assert.True(t, s.Inflate(0.02).Contains(math.Vec3{Y: 1.51}))
}

func TestColliderExit(t *testing.T) {
	t.Run("sphere radial", func(t *testing.T) {
		s := NewSphere(1, math.Vec3{})
		surface, n := s.Exit(math.Vec3{X: 0.2})
		assert.Equal(t, math.Vec3{X: 1}, surface)
		assert.Equal(t, math.Vec3{X: 1}, n)
	})
	t.Run("sphere center", func(t *testing.T) {
		s := NewSphere(0.1, math.Vec3{})
		surface, n := s.Exit(math.Vec3{})
		assert.Equal(t, math.Vec3{Y: 1}, n)
		assert.GreaterOrEqual(t, surface.Length(), s.Radius)
	})
	t.Run("cube nearest face", func(t *testing.T) {
		c := NewCube(2, math.Vec3{})
		surface, n := c.Exit(math.Vec3{X: 0.1, Y: -0.8, Z: 0.3})
		assert.Equal(t, math.Vec3{Y: -1}, n)
		assert.Equal(t, math.Vec3{X: 0.1, Y: -1, Z: 0.3}, surface)
	})
}

func TestColliderBounds(t *testing.T) {
	var colliders = []Collider{NewCube(1, math.Vec3{X: 1}), NewSphere(0.5, math.Vec3{X: 1})}
	for _, c := range colliders {
		lo, hi := c.Bounds()
		assert.Equal(t, math.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, lo)
		assert.Equal(t, math.Vec3{X: 1.5, Y: 0.5, Z: 0.5}, hi)
	}
}
