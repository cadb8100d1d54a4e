package lighting

import (
	gomath "math"
	"testing"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float32
		x, y, z  float64
	}{
		{0, 90, 0, 1, 0},
		{0, 0, 0, 0, 1},
		{90, 0, 1, 0, 0},
	}
	for _, tt := range tests {
		d := SunDirection(tt.lon, tt.lat)
		if gomath.Abs(float64(d.X)-tt.x) > 1e-6 || gomath.Abs(float64(d.Y)-tt.y) > 1e-6 || gomath.Abs(float64(d.Z)-tt.z) > 1e-6 {
			t.Errorf("SunDirection(%v, %v) = %+v", tt.lon, tt.lat, d)
		}
	}

	d := SunDirection(DefaultLongitude, DefaultLatitude)
	if l := d.Length(); gomath.Abs(float64(l)-1) > 1e-6 {
		t.Errorf("default direction length = %v, want 1", l)
	}
}
