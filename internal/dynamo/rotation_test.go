package dynamo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestEulerRoundTrip(t *testing.T) {
	tests := []mgl64.Vec3{
		{0, 0, 0},
		{0.5, 0, 0},
		{0, 0.3, 0},
		{0, 0, -1.2},
		{0.4, -0.2, 2.5},
		{-3.0, 1.0, 0.1},
	}

	for _, e := range tests {
		got := EulerFromQuat(QuatFromEuler(e))
		if !got.ApproxEqualThreshold(e, 1e-12) {
			t.Errorf("EulerFromQuat(QuatFromEuler(%v)) = %v", e, got)
		}
	}
}

func TestEulerFromQuat_SingleAxis(t *testing.T) {
	for i := 0; i < 3; i++ {
		q := mgl64.QuatRotate(0.75, Axis(i))
		e := EulerFromQuat(q)
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 0.75
			}
			if math.Abs(e[j]-want) > 1e-12 {
				t.Errorf("axis %d: euler[%d] = %v, want %v", i, j, e[j], want)
			}
		}
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{2*math.Pi + 0.1, 0.1},
		{-0.1, -0.1},
	}

	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSingleAxis(t *testing.T) {
	tests := []struct {
		w    mgl64.Vec3
		axis int
		ok   bool
	}{
		{mgl64.Vec3{0.5, 0, 0}, 0, true},
		{mgl64.Vec3{0, -2, 0}, 1, true},
		{mgl64.Vec3{0, 0, 3}, 2, true},
		{mgl64.Vec3{0, 0, 0}, -1, false},
		{mgl64.Vec3{0.1, 5.0, 0.1}, -1, false},
	}

	for _, tt := range tests {
		axis, ok := SingleAxis(tt.w)
		if axis != tt.axis || ok != tt.ok {
			t.Errorf("SingleAxis(%v) = (%d, %v), want (%d, %v)", tt.w, axis, ok, tt.axis, tt.ok)
		}
	}
}
