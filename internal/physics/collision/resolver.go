package collision

import (
	gomath "math"
	"slices"

	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/bvh"
	"github.com/Faultbox/drape/pkg/math"
)

// contact is a triangle found penetrating a collider. Depths are measured
// against the state before any contact of the same pass was resolved.
type contact struct {
	tri    int32
	normal math.Vec3
	depth  [3]float32
}

// Resolver runs the collision passes. It keeps scratch buffers between calls
// and is not safe for concurrent use.
type Resolver struct {
	opts  Options
	stats Stats

	candidates []int32
	contacts   []contact
	grid       map[cellKey][]int32
}

// NewResolver creates a resolver with opts.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Options returns the current options.
func (r *Resolver) Options() Options {
	return r.opts
}

// SetOptions replaces the options. Takes effect on the next pass.
func (r *Resolver) SetOptions(opts Options) {
	r.opts = opts
}

// Stats returns counters accumulated since the last ResetStats.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the counters.
func (r *Resolver) ResetStats() {
	r.stats = Stats{}
}

// ResolveTriangles detects every triangle of indices touching c (inflated by
// the contact offset), resolves the contacts in buffer order and appends the
// three particle indices of each colliding triangle to colliding.
//
// With StrategyBVH the tree prunes candidates; a nil tree falls back to a
// linear scan. The tree must have been built over the same particles and
// indices and refit since they last moved. Malformed triangles are skipped.
func (r *Resolver) ResolveTriangles(particles []physics.Particle, tree *bvh.BVH, indices []uint32, c physics.Collider, dt float32, colliding []uint32) []uint32 {
	if c == nil {
		return colliding
	}
	inflated := c.Inflate(r.opts.ContactOffset)

	r.candidates = r.candidates[:0]
	if r.opts.Strategy == StrategyBVH && tree != nil {
		r.candidates = tree.Query(overlapFunc(inflated), r.candidates)
		slices.Sort(r.candidates)
	} else {
		for t := 0; t < len(indices)/3; t++ {
			r.candidates = append(r.candidates, int32(t))
		}
	}
	r.stats.Candidates += len(r.candidates)

	r.contacts = r.contacts[:0]
	for _, t := range r.candidates {
		ct, ok, valid := detect(particles, indices, t, inflated)
		if !valid {
			r.stats.Skipped++
			continue
		}
		if ok {
			r.contacts = append(r.contacts, ct)
		}
	}

	for _, ct := range r.contacts {
		i := 3 * int(ct.tri)
		for k := 0; k < 3; k++ {
			r.resolveVertex(&particles[indices[i+k]], ct.normal, ct.depth[k], dt)
		}
		colliding = append(colliding, indices[i], indices[i+1], indices[i+2])
	}
	r.stats.Colliding += len(r.contacts)
	return colliding
}

// overlapFunc returns the box predicate used to prune the tree for c.
func overlapFunc(c physics.Collider) func(bvh.AABB) bool {
	switch v := c.(type) {
	case physics.Sphere:
		return func(b bvh.AABB) bool {
			return b.IntersectsSphere(v.Center, v.Radius)
		}
	default:
		lo, hi := c.Bounds()
		box := bvh.AABB{Min: lo, Max: hi}
		return box.Intersects
	}
}

// detect runs the narrow phase for triangle t. valid is false for triangles
// that reference missing particles or have no area.
func detect(particles []physics.Particle, indices []uint32, t int32, c physics.Collider) (ct contact, hit, valid bool) {
	i := 3 * int(t)
	if i+2 >= len(indices) {
		return ct, false, false
	}
	n := uint32(len(particles))
	i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
	if i0 >= n || i1 >= n || i2 >= n {
		return ct, false, false
	}

	v0, v1, v2 := particles[i0].Position, particles[i1].Position, particles[i2].Position
	normal, ok := v1.Sub(v0).Cross(v2.Sub(v0)).TryNormalize()
	if !ok {
		return ct, false, false
	}

	if !c.Contains(v0) && !c.Contains(v1) && !c.Contains(v2) {
		return ct, false, true
	}

	center := math.Centroid(v0, v1, v2)
	ct = contact{
		tri:    t,
		normal: normal,
		depth: [3]float32{
			normal.Dot(center.Sub(v0)),
			normal.Dot(center.Sub(v1)),
			normal.Dot(center.Sub(v2)),
		},
	}
	return ct, true, true
}

// resolveVertex applies the contact response to one particle: penalty force,
// restitution on the normal velocity, Coulomb friction on the tangential
// velocity and a positional correction for negative depth.
func (r *Resolver) resolveVertex(p *physics.Particle, normal math.Vec3, depth, dt float32) {
	if p.Pinned {
		return
	}

	velocity := p.Velocity()
	repulsion := normal.Scale(r.opts.Repulsion * abs(depth))
	p.ApplyForce(repulsion)
	if r.opts.Response == ResponseSubstep {
		p.Update(dt)
	}

	vn := normal.Scale(velocity.Dot(normal))
	vt := velocity.Sub(vn)
	next := vt.Sub(vn.Scale(r.opts.Restitution))
	next = next.Sub(r.friction(vt, repulsion.Length(), p.Mass, dt))

	p.SetPreviousPosition(p.Position.Sub(next))

	if depth < 0 {
		p.Translate(normal.Scale(-depth))
	}
}

// friction returns the per-step displacement removed from the tangential
// velocity vt. Its magnitude is μ·|R|·dt²/m and never exceeds |vt|, so
// friction stops sliding but cannot reverse it.
func (r *Resolver) friction(vt math.Vec3, normalForce, mass, dt float32) math.Vec3 {
	f := r.opts.Friction
	if !f.Enabled || mass <= 0 {
		return math.Vec3{}
	}
	speed := vt.Length()
	if speed <= math.Epsilon {
		return math.Vec3{}
	}

	mu := f.Kinetic
	if speed < f.Threshold {
		mu = f.Static
	}
	drop := mu * normalForce * dt * dt / mass
	if drop > speed {
		drop = speed
	}
	return vt.Scale(drop / speed)
}

func abs(x float32) float32 {
	return float32(gomath.Abs(float64(x)))
}
