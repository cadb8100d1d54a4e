package physics

import "github.com/Faultbox/drape/pkg/math"

// SpringKind classifies a spring by its place in the grid topology.
type SpringKind uint8

const (
	Structural SpringKind = iota
	Shear
	Bend
)

func (k SpringKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	default:
		return "unknown"
	}
}

// Spring is an undamped Hookean link between two particles of the same
// store. A and B index that store; the store must outlive the spring.
type Spring struct {
	A, B       int32
	K          float32
	RestLength float32
	Kind       SpringKind
}

// NewSpring links a and b with a rest length equal to their current distance.
func NewSpring(particles []Particle, a, b int, k float32, kind SpringKind) Spring {
	return Spring{
		A:          int32(a),
		B:          int32(b),
		K:          k,
		RestLength: particles[a].Position.Distance(particles[b].Position),
		Kind:       kind,
	}
}

// Force returns the force exerted on B. A receives the negation.
// Coincident endpoints have no defined direction and produce no force.
func (s Spring) Force(particles []Particle) math.Vec3 {
	delta := particles[s.B].Position.Sub(particles[s.A].Position)
	length := delta.Length()
	dir, ok := delta.TryNormalize()
	if !ok {
		return math.Vec3{}
	}
	return dir.Scale(-s.K * (length - s.RestLength))
}

// Update applies Hooke's law to both endpoints.
func (s Spring) Update(particles []Particle) {
	f := s.Force(particles)
	particles[s.B].ApplyForce(f)
	particles[s.A].ApplyForce(f.Neg())
}
