// SPDX-License-Identifier: Unlicense OR MIT

package event

import (
	"math"
	"testing"

	"github.com/oakwm/oak/f32"
)

func TestTouchUpdateForRootTransformScalesRadii(t *testing.T) {
	ev := Touch{Location: f32.Pt(10, 10), Root: f32.Pt(10, 10), RadiusX: 4, RadiusY: 2}
	tr := f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(2, 3))

	got := ev.UpdateForRootTransform(tr)
	if got.Location != f32.Pt(20, 30) {
		t.Errorf("location = %v, want (20, 30)", got.Location)
	}
	if got.RadiusX != 8 || got.RadiusY != 6 {
		t.Errorf("radii = (%g, %g), want (8, 6)", got.RadiusX, got.RadiusY)
	}
}

func TestTouchUpdateForRootTransformKeepsRadiiUnderRotation(t *testing.T) {
	ev := Touch{Location: f32.Pt(10, 0), Root: f32.Pt(10, 0), RadiusX: 4, RadiusY: 2}
	tr := f32.Affine2D{}.Rotate(f32.Point{}, float32(math.Pi/2))

	got := ev.UpdateForRootTransform(tr)
	const tol = 1e-4
	if math.Abs(float64(got.RadiusX-4)) > tol || math.Abs(float64(got.RadiusY-2)) > tol {
		t.Errorf("radii = (%g, %g), want (4, 2) under a pure rotation", got.RadiusX, got.RadiusY)
	}
}
