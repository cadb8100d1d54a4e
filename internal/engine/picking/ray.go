// Package picking provides ray casting from screen coordinates and
// selection of the particle nearest a ray.
package picking

import (
	gomath "math"

	"github.com/Faultbox/drape/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	// Normalized device coords (-1 to 1), Y flipped
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1.0, 1.0})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1.0, 1.0})

	dir, ok := farWorld.Sub(nearWorld).TryNormalize()
	if !ok {
		dir = math.Vec3{Z: -1}
	}
	return Ray{Origin: nearWorld, Direction: dir}
}

func unproject(inv math.Mat4, ndc math.Vec4) math.Vec3 {
	w := inv.MulVec4(ndc)
	if w[3] != 0 {
		w[0] /= w[3]
		w[1] /= w[3]
		w[2] /= w[3]
	}
	return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlane intersects the ray with the plane through point with the
// given normal. Returns the distance along the ray and whether the plane is
// hit in front of the origin.
func (r Ray) IntersectPlane(point, normal math.Vec3) (t float32, ok bool) {
	denom := r.Direction.Dot(normal)
	if gomath.Abs(float64(denom)) < 1e-6 {
		return 0, false // Ray parallel to plane
	}
	t = point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectAABB tests ray intersection with the box [lo, hi] using slabs.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(lo, hi math.Vec3) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin.Axis(axis), r.Direction.Axis(axis)
		slabLo, slabHi := lo.Axis(axis), hi.Axis(axis)
		if d == 0 {
			if o < slabLo || o > slabHi {
				return 0, false
			}
			continue
		}
		t1 := (slabLo - o) / d
		t2 := (slabHi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// DistanceToPoint returns the distance from p to the ray and the distance
// along the ray of the closest approach. Points behind the origin measure
// from the origin.
func (r Ray) DistanceToPoint(p math.Vec3) (dist, t float32) {
	t = max(p.Sub(r.Origin).Dot(r.Direction), 0)
	return p.Distance(r.At(t)), t
}

// NearestPoint returns the index of the point closest to the ray within
// maxDist. Among points equally close the one nearer the origin wins.
func (r Ray) NearestPoint(points []math.Vec3, maxDist float32) (int, bool) {
	best := -1
	var bestDist, bestT float32
	for i, p := range points {
		d, t := r.DistanceToPoint(p)
		if d > maxDist {
			continue
		}
		if best < 0 || d < bestDist || (d == bestDist && t < bestT) {
			best, bestDist, bestT = i, d, t
		}
	}
	return best, best >= 0
}
