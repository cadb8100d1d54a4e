package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if _, ok := (Vec3{}).TryNormalize(); ok {
		t.Error("TryNormalize on zero vector should report false")
	}
	if got := (Vec3{1e-9, 0, 0}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize of tiny vector = %v, want zero", got)
	}
}

func TestVec3MinMaxClamp(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -1}

	if got, want := a.Min(b), (Vec3{1, 2, -2}); got != want {
		t.Errorf("Min() = %v, want %v", got, want)
	}
	if got, want := a.Max(b), (Vec3{3, 5, -1}); got != want {
		t.Errorf("Max() = %v, want %v", got, want)
	}

	got := Vec3{-3, 0.5, 9}.Clamp(Splat(0), Splat(1))
	if want := (Vec3{0, 0.5, 1}); got != want {
		t.Errorf("Clamp() = %v, want %v", got, want)
	}
}

func TestVec3Axis(t *testing.T) {
	v := Vec3{7, 8, 9}
	for i, want := range []float32{7, 8, 9} {
		if got := v.Axis(i); got != want {
			t.Errorf("Axis(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestVec3IsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"finite", Vec3{1, 2, 3}, true},
		{"nan", Vec3{float32(math.NaN()), 0, 0}, false},
		{"inf", Vec3{0, float32(math.Inf(1)), 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	got := Centroid(Vec3{0, 0, 0}, Vec3{3, 0, 0}, Vec3{0, 3, 0})
	if got.Distance(Vec3{1, 1, 0}) > 1e-6 {
		t.Errorf("Centroid() = %v, want (1,1,0)", got)
	}
}
