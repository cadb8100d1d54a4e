package collision

import (
	gomath "math"

	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/pkg/math"
)

// cellKey addresses one cell of the self-collision hash grid.
type cellKey struct {
	X, Y, Z int32
}

func posToCell(p math.Vec3, size float32) cellKey {
	return cellKey{
		X: int32(gomath.Floor(float64(p.X / size))),
		Y: int32(gomath.Floor(float64(p.Y / size))),
		Z: int32(gomath.Floor(float64(p.Z / size))),
	}
}

// SelfCollide separates overlapping particles in a single pass. Each free
// particle is pushed away from every particle it overlaps by half the
// penetration, so a pair separates symmetrically over its two visits. Pinned
// particles never move but still push others. Coincident particles have no
// separating direction and are left alone.
//
// The pass does not iterate to a fixed point: clusters of three or more
// mutually overlapping particles can keep some overlap until later frames.
// It returns the number of particles moved.
func (r *Resolver) SelfCollide(particles []physics.Particle) int {
	var moved int
	if r.opts.Self == SelfGrid {
		moved = r.selfGrid(particles)
	} else {
		moved = selfBrute(particles)
	}
	r.stats.SelfContacts += moved
	return moved
}

func selfBrute(particles []physics.Particle) int {
	moved := 0
	for i := range particles {
		p := &particles[i]
		if p.Pinned {
			continue
		}
		pos := p.Position
		for j := range particles {
			if j != i {
				pos = separate(pos, p.Radius, &particles[j])
			}
		}
		if pos != p.Position {
			p.Translate(pos.Sub(p.Position))
			moved++
		}
	}
	return moved
}

func (r *Resolver) selfGrid(particles []physics.Particle) int {
	var maxRadius float32
	for i := range particles {
		if particles[i].Radius > maxRadius {
			maxRadius = particles[i].Radius
		}
	}
	if maxRadius <= 0 {
		return 0
	}
	size := 2 * maxRadius

	if r.grid == nil {
		r.grid = make(map[cellKey][]int32)
	}
	// Cells left behind by a moving cloth are dropped once they dominate.
	if len(r.grid) > 4*len(particles) {
		clear(r.grid)
	}
	for k, v := range r.grid {
		r.grid[k] = v[:0]
	}
	for i := range particles {
		cell := posToCell(particles[i].Position, size)
		r.grid[cell] = append(r.grid[cell], int32(i))
	}

	moved := 0
	for i := range particles {
		p := &particles[i]
		if p.Pinned {
			continue
		}
		pos := p.Position
		cell := posToCell(pos, size)
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					for _, j := range r.grid[cellKey{cell.X + dx, cell.Y + dy, cell.Z + dz}] {
						if int(j) != i {
							pos = separate(pos, p.Radius, &particles[j])
						}
					}
				}
			}
		}
		if pos != p.Position {
			p.Translate(pos.Sub(p.Position))
			moved++
		}
	}
	return moved
}

// separate pushes pos (with radius) half the penetration away from other.
func separate(pos math.Vec3, radius float32, other *physics.Particle) math.Vec3 {
	d := pos.Sub(other.Position)
	combined := radius + other.Radius
	if d.LengthSquared() >= combined*combined {
		return pos
	}
	dist := d.Length()
	normal, ok := d.TryNormalize()
	if !ok {
		return pos
	}
	return pos.Add(normal.Scale((combined - dist) * 0.5))
}
