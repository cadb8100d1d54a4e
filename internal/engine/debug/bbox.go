// Package debug generates line geometry for debug overlays: BVH boxes,
// collider outlines, springs and the floor grid. Every generator appends
// [x, y, z] triples, two vertices per line segment, to dst.
package debug

import (
	gomath "math"

	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/bvh"
	"github.com/Faultbox/drape/pkg/math"
)

// BoxVertexCount is the number of vertices for a box wireframe (12 edges × 2).
const BoxVertexCount = 24

// DefaultSphereSegments is the segment count of each sphere great circle.
const DefaultSphereSegments = 32

// AppendBox appends the 12 edges of the box [lo, hi].
func AppendBox(dst []float32, lo, hi math.Vec3) []float32 {
	minX, minY, minZ := lo.X, lo.Y, lo.Z
	maxX, maxY, maxZ := hi.X, hi.Y, hi.Z
	return append(dst,
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	)
}

// AppendSphere appends three axis-aligned great circles.
func AppendSphere(dst []float32, center math.Vec3, radius float32, segments int) []float32 {
	if segments < 3 {
		segments = DefaultSphereSegments
	}
	step := 2 * gomath.Pi / float64(segments)
	for axis := 0; axis < 3; axis++ {
		for i := 0; i < segments; i++ {
			a := circlePoint(axis, float64(i)*step, radius)
			b := circlePoint(axis, float64(i+1)*step, radius)
			a, b = a.Add(center), b.Add(center)
			dst = append(dst, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
		}
	}
	return dst
}

func circlePoint(axis int, angle float64, r float32) math.Vec3 {
	s := r * float32(gomath.Sin(angle))
	c := r * float32(gomath.Cos(angle))
	switch axis {
	case 0:
		return math.Vec3{Y: c, Z: s}
	case 1:
		return math.Vec3{X: c, Z: s}
	default:
		return math.Vec3{X: c, Y: s}
	}
}

// AppendCollider outlines a cube as its box and a sphere as great circles.
func AppendCollider(dst []float32, c physics.Collider) []float32 {
	switch s := c.(type) {
	case physics.Cube:
		lo, hi := s.Bounds()
		return AppendBox(dst, lo, hi)
	case physics.Sphere:
		return AppendSphere(dst, s.Center, s.Radius, DefaultSphereSegments)
	}
	return dst
}

// AppendBVH appends the box of every node down to maxDepth (root = 0).
// A negative maxDepth draws the whole tree.
func AppendBVH(dst []float32, tree *bvh.BVH, maxDepth int) []float32 {
	if tree == nil {
		return dst
	}
	tree.Walk(func(n *bvh.Node, depth int) {
		if maxDepth >= 0 && depth > maxDepth {
			return
		}
		if n.Box.Valid() {
			dst = AppendBox(dst, n.Box.Min, n.Box.Max)
		}
	})
	return dst
}

// AppendSprings appends one segment per spring of the given kind.
func AppendSprings(dst []float32, particles []physics.Particle, springs []physics.Spring, kind physics.SpringKind) []float32 {
	for _, s := range springs {
		if s.Kind != kind {
			continue
		}
		a, b := particles[s.A].Position, particles[s.B].Position
		dst = append(dst, a.X, a.Y, a.Z, b.X, b.Y, b.Z)
	}
	return dst
}
