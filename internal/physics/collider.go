package physics

import (
	gomath "math"

	"github.com/Faultbox/drape/pkg/math"
)

// Collider is a rigid primitive the cloth collides with. The set is closed:
// callers switch on Cube and Sphere.
type Collider interface {
	// Contains reports whether p lies inside or on the surface.
	Contains(p math.Vec3) bool
	// Inflate returns the same shape grown by margin on every side.
	Inflate(margin float32) Collider
	// Bounds returns the axis-aligned box enclosing the shape.
	Bounds() (lo, hi math.Vec3)
	// Exit returns the surface point nearest to an interior point p and the
	// outward normal there.
	Exit(p math.Vec3) (surface, normal math.Vec3)

	isCollider()
}

// Cube is an axis-aligned cube.
type Cube struct {
	Center     math.Vec3
	HalfLength float32
}

// NewCube builds a cube from its full side length.
func NewCube(size float32, center math.Vec3) Cube {
	return Cube{Center: center, HalfLength: size / 2}
}

func (Cube) isCollider() {}

// Contains is an inclusive box test.
func (c Cube) Contains(p math.Vec3) bool {
	h := c.HalfLength
	return p.X >= c.Center.X-h && p.X <= c.Center.X+h &&
		p.Y >= c.Center.Y-h && p.Y <= c.Center.Y+h &&
		p.Z >= c.Center.Z-h && p.Z <= c.Center.Z+h
}

func (c Cube) Inflate(margin float32) Collider {
	return Cube{Center: c.Center, HalfLength: c.HalfLength + margin}
}

func (c Cube) Bounds() (math.Vec3, math.Vec3) {
	h := math.Splat(c.HalfLength)
	return c.Center.Sub(h), c.Center.Add(h)
}

// Exit pushes through the face closest to p. Ties resolve X before Y before Z.
func (c Cube) Exit(p math.Vec3) (math.Vec3, math.Vec3) {
	local := p.Sub(c.Center)
	best := -1
	bestGap := float32(gomath.MaxFloat32)
	var sign float32 = 1
	for axis := 0; axis < 3; axis++ {
		v := local.Axis(axis)
		s := float32(1)
		if v < 0 {
			s = -1
		}
		gap := c.HalfLength - v*s
		if gap < bestGap {
			best, bestGap, sign = axis, gap, s
		}
	}

	surface := p
	var normal math.Vec3
	switch best {
	case 0:
		surface.X = c.Center.X + sign*c.HalfLength
		normal.X = sign
	case 1:
		surface.Y = c.Center.Y + sign*c.HalfLength
		normal.Y = sign
	default:
		surface.Z = c.Center.Z + sign*c.HalfLength
		normal.Z = sign
	}
	return surface, normal
}

// Sphere is a solid ball.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// NewSphere builds a sphere.
func NewSphere(radius float32, center math.Vec3) Sphere {
	return Sphere{Center: center, Radius: radius}
}

func (Sphere) isCollider() {}

// Contains compares squared distances, so the surface counts as inside.
func (s Sphere) Contains(p math.Vec3) bool {
	return p.Sub(s.Center).LengthSquared() <= s.Radius*s.Radius
}

func (s Sphere) Inflate(margin float32) Collider {
	return Sphere{Center: s.Center, Radius: s.Radius + margin}
}

func (s Sphere) Bounds() (math.Vec3, math.Vec3) {
	r := math.Splat(s.Radius)
	return s.Center.Sub(r), s.Center.Add(r)
}

// Exit projects radially. A point at the exact center leaves through +Y.
func (s Sphere) Exit(p math.Vec3) (math.Vec3, math.Vec3) {
	normal, ok := p.Sub(s.Center).TryNormalize()
	if !ok {
		normal = math.Vec3{Y: 1}
	}
	return s.Center.Add(normal.Scale(s.Radius)), normal
}
