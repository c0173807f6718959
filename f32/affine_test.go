// SPDX-License-Identifier: Unlicense OR MIT

package f32

import (
	"math"
	"testing"
)

func approxEq(p1, p2 Point) bool {
	dx, dy := float64(p2.X-p1.X), float64(p2.Y-p1.Y)
	return math.Hypot(dx, dy) < 1e-5
}

func TestAffineRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		tr   Affine2D
		in   Point
		out  Point
	}{
		{"offset", Affine2D{}.Offset(Pt(3, -2)), Pt(1, 1), Pt(4, -1)},
		{"scale", Affine2D{}.Scale(Point{}, Pt(2, -3)), Pt(2, 1), Pt(4, -3)},
		{"scale about a point", Affine2D{}.Scale(Pt(4, 5), Pt(2, 3)), Pt(-1, -1), Pt(-6, -13)},
		{"rotate", Affine2D{}.Rotate(Point{}, float32(math.Pi/2)), Pt(1, 0), Pt(0, 1)},
		{"rotate about a point", Affine2D{}.Rotate(Pt(1, 1), float32(-math.Pi/2)), Pt(-1, -1), Pt(-1, 3)},
		{"shear", Affine2D{}.Shear(Point{}, float32(math.Pi/4), 0), Pt(1, 1), Pt(2, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.tr.Transform(tc.in)
			if !approxEq(got, tc.out) {
				t.Errorf("transform = %v, want %v", got, tc.out)
			}
			back := tc.tr.Invert().Transform(got)
			if !approxEq(back, tc.in) {
				t.Errorf("inverse round trip = %v, want %v", back, tc.in)
			}
		})
	}
}

func TestAffineCompositionOrder(t *testing.T) {
	move := Affine2D{}.Offset(Pt(10, 20))
	grow := Affine2D{}.Scale(Point{}, Pt(3, 3))

	chained := Affine2D{}.Offset(Pt(10, 20)).Scale(Point{}, Pt(3, 3))
	if got := grow.Mul(move); got != chained {
		t.Errorf("Mul = %v, want the chained transform %v", got, chained)
	}
}

func TestAffineElems(t *testing.T) {
	sx, hx, ox, hy, sy, oy := Affine2D{}.Scale(Point{}, Pt(2, 3)).Offset(Pt(4, 5)).Elems()
	if sx != 2 || sy != 3 || ox != 4 || oy != 5 || hx != 0 || hy != 0 {
		t.Errorf("elems = (%g %g %g %g %g %g), want (2 0 4 0 3 5)", sx, hx, ox, hy, sy, oy)
	}
}

func TestAffineSplit(t *testing.T) {
	tr := Affine2D{}.Rotate(Point{}, float32(math.Pi/3)).Offset(Pt(7, -4))
	srs, off := tr.Split()
	if off != Pt(7, -4) {
		t.Errorf("offset part = %v, want (7, -4)", off)
	}
	if got := srs.Offset(off); got != tr {
		t.Errorf("recombined = %v, want %v", got, tr)
	}
}
