package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslateVec3(t *testing.T) {
	m := Translate(5, 10, 15)
	got := m.TransformVec3(Vec3{1, 1, 1})
	want := Vec3{6, 11, 16}
	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})

	p := m.TransformVec3(Vec3{0, 0, 5})
	if p.Length() > 1e-5 {
		t.Errorf("eye should map to origin, got %v", p)
	}
	c := m.TransformVec3(Vec3{})
	if c.Z > -4.999 || c.Z < -5.001 {
		t.Errorf("center should be 5 units down -Z, got %v", c)
	}
}

func TestInverseUndoesViewProjection(t *testing.T) {
	vp := Perspective(0.8, 1.5, 0.1, 10).Mul(LookAt(Vec3{X: 1, Y: 2, Z: 3}, Vec3{}, Vec3{Y: 1}))
	p := vp.Inverse().Mul(vp)
	id := Identity()
	for i := range p {
		if math.Abs(float64(p[i]-id[i])) > 1e-3 {
			t.Fatalf("inverse * m [%d] = %v, want %v", i, p[i], id[i])
		}
	}
}

func TestMulVec4(t *testing.T) {
	v := Translate(1, 2, 3).MulVec4(Vec4{1, 1, 1, 1})
	if v != (Vec4{2, 3, 4, 1}) {
		t.Errorf("MulVec4 = %v", v)
	}
}
