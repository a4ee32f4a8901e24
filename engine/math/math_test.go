package math

import (
	m "math"
	"testing"
)

const tolerance = 1e-4

func TestMat4InverseRoundTrip(t *testing.T) {
	tr := NewTransformFromPositionRotationScale(
		NewVec3(1, -2, 3),
		NewQuatFromEuler(NewVec3(0.3, -0.2, 1.1)),
		NewVec3(2, 2, 2),
	)
	local := tr.GetLocal()
	product := local.Mul(local.Inverse())
	if !product.Compare(NewMat4Identity(), tolerance) {
		t.Fatalf("M * M^-1 is not identity: %v", product.Data)
	}
}

func TestQuaternionEulerRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		euler Vec3
	}{
		{"zero", NewVec3(0, 0, 0)},
		{"roll", NewVec3(0.5, 0, 0)},
		{"pitch", NewVec3(0, -0.7, 0)},
		{"yaw", NewVec3(0, 0, 2.5)},
		{"mixed", NewVec3(0.1, 0.2, -1.3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewQuatFromEuler(tc.euler).ToEuler()
			if !got.Compare(tc.euler, tolerance) {
				t.Errorf("expected %v, got %v", tc.euler, got)
			}
		})
	}
}

func TestQuaternionToMat4Normalizes(t *testing.T) {
	q := Quaternion{X: 0, Y: 0, Z: 0, W: 4}
	if !q.ToMat4().Compare(NewMat4Identity(), tolerance) {
		t.Errorf("non unit identity quaternion should produce the identity matrix")
	}
}

func TestTransformTranslation(t *testing.T) {
	tr := NewTransformFromPosition(NewVec3(0, 0, 5))
	got := tr.GetLocal().Translation()
	if got != NewVec4(0, 0, 5, 1) {
		t.Errorf("expected (0,0,5,1), got %v", got)
	}
}

func TestTransformDirtyFlag(t *testing.T) {
	tr := NewTransform()
	if !tr.IsDirty() {
		t.Fatal("new transform should start dirty")
	}
	first := tr.GetLocal()
	if tr.IsDirty() {
		t.Fatal("read should clear the dirty flag")
	}
	second := tr.GetLocal()
	if first != second {
		t.Error("consecutive reads without mutation must be identical")
	}

	tr.SetPosition(NewVec3(4, 5, 6))
	if !tr.IsDirty() {
		t.Fatal("mutator should set the dirty flag")
	}
	if got := tr.GetLocal().Translation(); got != NewVec4(4, 5, 6, 1) {
		t.Errorf("expected translation (4,5,6,1), got %v", got)
	}
	inv := tr.GetInverse()
	if p := NewVec3(4, 5, 6).Transform(inv); !p.Compare(NewVec3Zero(), tolerance) {
		t.Errorf("inverse should map the position back to the origin, got %v", p)
	}
}

func TestClampAndInRange(t *testing.T) {
	if Clamp(5, 1, 3) != 3 || Clamp(-1, 1, 3) != 1 || Clamp(2, 1, 3) != 2 {
		t.Error("clamp returned a value outside the range")
	}
	if !InRange(200, 1, 200) || InRange(500, 1, 200) || InRange(0, 1, 200) {
		t.Error("in range bounds are inclusive on both ends")
	}
	if got := RadToDeg(DegToRad(90)); m.Abs(float64(got-90)) > 1e-3 {
		t.Errorf("expected 90 degrees, got %f", got)
	}
}
