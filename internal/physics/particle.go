// Package physics provides the point masses, springs and rigid colliders the
// cloth is built from.
package physics

import "github.com/Faultbox/drape/pkg/math"

// Default particle properties.
const (
	DefaultMass   = 10.0
	DefaultRadius = 0.005
)

// Particle is a point mass advanced by position Verlet integration.
// Velocity is implicit: Position - PreviousPosition per step.
type Particle struct {
	Position         math.Vec3
	PreviousPosition math.Vec3
	Acceleration     math.Vec3
	Mass             float32
	Radius           float32
	Pinned           bool
}

// NewParticle creates a particle at rest at pos.
func NewParticle(pos math.Vec3, pinned bool) Particle {
	return Particle{
		Position:         pos,
		PreviousPosition: pos,
		Mass:             DefaultMass,
		Radius:           DefaultRadius,
		Pinned:           pinned,
	}
}

// ApplyForce accumulates force/mass into the acceleration. No-op when pinned.
func (p *Particle) ApplyForce(force math.Vec3) {
	if p.Pinned {
		return
	}
	p.Acceleration = p.Acceleration.Add(force.Scale(1 / p.Mass))
}

// Update advances the particle by dt with Störmer-Verlet and clears the
// accumulated acceleration. No-op when pinned.
//
// The scheme is explicit: keep dt small and forces bounded, nothing clamps
// the implied velocity.
func (p *Particle) Update(dt float32) {
	if p.Pinned {
		return
	}
	current := p.Position
	p.Position = current.Scale(2).Sub(p.PreviousPosition).Add(p.Acceleration.Scale(dt * dt))
	p.PreviousPosition = current
	p.Acceleration = math.Vec3{}
}

// SetPosition snaps the particle to pos and zeroes its velocity.
func (p *Particle) SetPosition(pos math.Vec3) {
	p.Position = pos
	p.PreviousPosition = pos
}

// SetPreviousPosition overrides the velocity history.
func (p *Particle) SetPreviousPosition(pos math.Vec3) {
	p.PreviousPosition = pos
}

// Translate moves both the position and its history by delta, which
// displaces the particle without changing its velocity.
func (p *Particle) Translate(delta math.Vec3) {
	p.Position = p.Position.Add(delta)
	p.PreviousPosition = p.PreviousPosition.Add(delta)
}

// Velocity returns the displacement of the last step.
func (p *Particle) Velocity() math.Vec3 {
	return p.Position.Sub(p.PreviousPosition)
}
