package collision

import "github.com/Faultbox/drape/internal/physics"

// ResolveParticles pushes every free particle found inside c (inflated by the
// contact offset) out to the surface. The particle receives a repulsion force
// proportional to the penetration and keeps its tangential velocity, while
// inward normal velocity is reflected and scaled by the restitution.
// It returns the number of particles moved.
func (r *Resolver) ResolveParticles(particles []physics.Particle, c physics.Collider) int {
	if c == nil {
		return 0
	}
	inflated := c.Inflate(r.opts.ContactOffset)

	moved := 0
	for i := range particles {
		p := &particles[i]
		if p.Pinned || !inflated.Contains(p.Position) {
			continue
		}

		surface, normal := inflated.Exit(p.Position)
		depth := surface.Sub(p.Position).Dot(normal)
		velocity := p.Velocity()

		p.ApplyForce(normal.Scale(r.opts.Repulsion * abs(depth)))
		if vn := velocity.Dot(normal); vn < 0 {
			velocity = velocity.Sub(normal.Scale(vn * (1 + r.opts.Restitution)))
		}
		p.SetPosition(surface)
		p.SetPreviousPosition(surface.Sub(velocity))
		moved++
	}
	r.stats.ParticleContacts += moved
	return moved
}
