// Package cloth assembles a mass-spring cloth on a rectangular grid and
// steps it through forces, integration and collision every frame.
package cloth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/pkg/math"
)

// ErrInvalidGrid is returned for grids that cannot form a single triangle
// or have non-positive spacing or mass.
var ErrInvalidGrid = errors.New("invalid cloth grid")

// Orientation selects how the grid is laid out in space.
type Orientation uint8

const (
	// Vertical hangs the cloth in the XY plane with its top row pinned.
	Vertical Orientation = iota
	// Horizontal lays the cloth flat in the XZ plane with nothing pinned.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation accepts "vertical" or "horizontal".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "":
		return Vertical, nil
	case "horizontal":
		return Horizontal, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q", s)
	}
}

// Grid describes the particle lattice.
type Grid struct {
	Columns     int
	Rows        int
	Spacing     float32
	Offset      math.Vec3
	Orientation Orientation
	Mass        float32
	Radius      float32
}

// DefaultGrid is a 10×10 hanging cloth, 5 cm between particles.
func DefaultGrid() Grid {
	return Grid{
		Columns:     10,
		Rows:        10,
		Spacing:     0.05,
		Offset:      math.Vec3{X: -0.5, Y: 0.3},
		Orientation: Vertical,
		Mass:        physics.DefaultMass,
		Radius:      physics.DefaultRadius,
	}
}

// Validate reports grids that cannot be assembled.
func (g Grid) Validate() error {
	switch {
	case g.Columns < 2 || g.Rows < 2:
		return fmt.Errorf("%w: need at least 2×2 particles, got %d×%d", ErrInvalidGrid, g.Columns, g.Rows)
	case g.Spacing <= 0:
		return fmt.Errorf("%w: spacing %v", ErrInvalidGrid, g.Spacing)
	case g.Mass <= 0:
		return fmt.Errorf("%w: mass %v", ErrInvalidGrid, g.Mass)
	case g.Radius < 0:
		return fmt.Errorf("%w: radius %v", ErrInvalidGrid, g.Radius)
	}
	return nil
}

// Index returns the particle index of column i, row j. Storage is
// column-major.
func (g Grid) Index(i, j int) int {
	return i*g.Rows + j
}

// Particles creates the lattice at rest.
func (g Grid) Particles() []physics.Particle {
	particles := make([]physics.Particle, 0, g.Columns*g.Rows)
	for i := 0; i < g.Columns; i++ {
		for j := 0; j < g.Rows; j++ {
			var local math.Vec3
			pinned := false
			if g.Orientation == Vertical {
				local = math.Vec3{X: float32(i) * g.Spacing, Y: -float32(j) * g.Spacing}
				pinned = j == 0
			} else {
				local = math.Vec3{X: float32(i) * g.Spacing, Z: float32(j) * g.Spacing}
			}
			p := physics.NewParticle(g.Offset.Add(local), pinned)
			p.Mass = g.Mass
			p.Radius = g.Radius
			particles = append(particles, p)
		}
	}
	return particles
}

// Springs links the lattice: structural springs to the right and below,
// shear springs across both cell diagonals and bend springs two apart along
// each axis. Rest lengths come from the current particle positions.
func (g Grid) Springs(particles []physics.Particle, m Material) []physics.Spring {
	springs := make([]physics.Spring, 0, g.SpringCount())
	for i := 0; i < g.Columns; i++ {
		for j := 0; j < g.Rows; j++ {
			idx := g.Index(i, j)
			if i+1 < g.Columns {
				springs = append(springs, physics.NewSpring(particles, idx, g.Index(i+1, j), m.K, physics.Structural))
			}
			if j+1 < g.Rows {
				springs = append(springs, physics.NewSpring(particles, idx, g.Index(i, j+1), m.K, physics.Structural))
			}
			if i+1 < g.Columns && j+1 < g.Rows {
				springs = append(springs,
					physics.NewSpring(particles, idx, g.Index(i+1, j+1), m.ShearK(), physics.Shear),
					physics.NewSpring(particles, g.Index(i+1, j), g.Index(i, j+1), m.ShearK(), physics.Shear),
				)
			}
			if i+2 < g.Columns {
				springs = append(springs, physics.NewSpring(particles, idx, g.Index(i+2, j), m.BendK(), physics.Bend))
			}
			if j+2 < g.Rows {
				springs = append(springs, physics.NewSpring(particles, idx, g.Index(i, j+2), m.BendK(), physics.Bend))
			}
		}
	}
	return springs
}

// SpringCount returns the number of springs Springs creates.
func (g Grid) SpringCount() int {
	c, r := g.Columns, g.Rows
	structural := (c-1)*r + c*(r-1)
	shear := 2 * (c - 1) * (r - 1)
	bend := max(c-2, 0)*r + c*max(r-2, 0)
	return structural + shear + bend
}

// Indices tessellates every cell into two triangles with a fixed winding.
func (g Grid) Indices() []uint32 {
	indices := make([]uint32, 0, (g.Columns-1)*(g.Rows-1)*6)
	for i := 0; i < g.Columns-1; i++ {
		for j := 0; j < g.Rows-1; j++ {
			a := uint32(g.Index(i, j))
			b := uint32(g.Index(i+1, j))
			c := uint32(g.Index(i, j+1))
			d := uint32(g.Index(i+1, j+1))
			indices = append(indices, a, b, c, d, c, b)
		}
	}
	return indices
}
