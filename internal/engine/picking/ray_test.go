package picking

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/drape/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-3
}

func TestScreenToRayCenterLooksAtTarget(t *testing.T) {
	eye := math.Vec3{Z: 2}
	vp := math.Perspective(0.8, 1, 0.1, 10).Mul(math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1}))

	r := ScreenToRay(50, 50, 100, 100, vp.Inverse())
	if !near(r.Direction.X, 0) || !near(r.Direction.Y, 0) || !near(r.Direction.Z, -1) {
		t.Errorf("Direction = %+v, want (0, 0, -1)", r.Direction)
	}
	if !near(r.Origin.Z, 1.9) {
		t.Errorf("Origin = %+v, want on the near plane", r.Origin)
	}
}

func TestScreenToRayTopIsUp(t *testing.T) {
	vp := math.Perspective(0.8, 1, 0.1, 10).Mul(math.LookAt(math.Vec3{Z: 2}, math.Vec3{}, math.Vec3{Y: 1}))
	r := ScreenToRay(50, 0, 100, 100, vp.Inverse())
	if r.Direction.Y <= 0 {
		t.Errorf("top of screen should point up, got %+v", r.Direction)
	}
}

func TestIntersectPlane(t *testing.T) {
	r := Ray{Origin: math.Vec3{Y: 1}, Direction: math.Vec3{Y: -1}}
	tt, ok := r.IntersectPlane(math.Vec3{Y: 0.25}, math.Vec3{Y: 1})
	if !ok || !near(tt, 0.75) {
		t.Errorf("IntersectPlane = %v, %v; want 0.75, true", tt, ok)
	}
	if _, ok := r.IntersectPlane(math.Vec3{Y: 2}, math.Vec3{Y: 1}); ok {
		t.Error("plane behind the origin must miss")
	}
	if _, ok := r.IntersectPlane(math.Vec3{}, math.Vec3{X: 1}); ok {
		t.Error("parallel plane must miss")
	}
}

func TestIntersectAABB(t *testing.T) {
	lo, hi := math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1}

	r := Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}
	if tt, ok := r.IntersectAABB(lo, hi); !ok || !near(tt, 4) {
		t.Errorf("entry = %v, %v; want 4, true", tt, ok)
	}

	inside := Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}
	if tt, ok := inside.IntersectAABB(lo, hi); !ok || !near(tt, 1) {
		t.Errorf("exit = %v, %v; want 1, true", tt, ok)
	}

	miss := Ray{Origin: math.Vec3{Y: 3, Z: 5}, Direction: math.Vec3{Z: -1}}
	if _, ok := miss.IntersectAABB(lo, hi); ok {
		t.Error("offset ray must miss")
	}
}

func TestNearestPoint(t *testing.T) {
	r := Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}
	points := []math.Vec3{
		{X: 0.5},           // off by 0.5
		{X: 0.01, Z: -1},   // off by 0.01, farther
		{Y: 0.01, Z: 1},    // off by 0.01, nearer
		{X: 0.001, Z: 100}, // behind the origin
	}

	i, ok := r.NearestPoint(points, 0.05)
	if !ok || i != 2 {
		t.Errorf("NearestPoint = %d, %v; want 2, true", i, ok)
	}
	if _, ok := r.NearestPoint(points[:1], 0.05); ok {
		t.Error("point outside maxDist must not be picked")
	}
}
