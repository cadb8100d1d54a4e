// Package bvh implements a bounding volume hierarchy over the cloth's
// triangles. The tree is built once from rest positions and refit every frame.
package bvh

import (
	gomath "math"

	"github.com/Faultbox/drape/pkg/math"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will overwrite.
func EmptyAABB() AABB {
	return AABB{
		Min: math.Splat(gomath.MaxFloat32),
		Max: math.Splat(-gomath.MaxFloat32),
	}
}

// Extend grows the box to include p.
func (b AABB) Extend(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Expand grows the box by margin on every side.
func (b AABB) Expand(margin float32) AABB {
	m := math.Splat(margin)
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Valid reports min <= max on every axis.
func (b AABB) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Extent returns Max - Min.
func (b AABB) Extent() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// LongestAxis returns 0, 1 or 2. X wins only if strictly longest, then Y.
func (b AABB) LongestAxis() int {
	e := b.Extent()
	switch {
	case e.X > e.Y && e.X > e.Z:
		return 0
	case e.Y > e.Z:
		return 1
	default:
		return 2
	}
}

// Contains reports whether p is inside the box, boundary included.
func (b AABB) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsBox reports whether other lies entirely inside b.
func (b AABB) ContainsBox(other AABB) bool {
	return b.Contains(other.Min) && b.Contains(other.Max)
}

// Intersects is the separating-axis test for two boxes. Touching counts.
func (b AABB) Intersects(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// IntersectsSphere clamps the center into the box and compares distances.
func (b AABB) IntersectsSphere(center math.Vec3, radius float32) bool {
	closest := center.Clamp(b.Min, b.Max)
	return center.Sub(closest).LengthSquared() <= radius*radius
}
