// SPDX-License-Identifier: Unlicense OR MIT

package fling

import (
	"testing"
	"time"
)

func TestDecomposeQR(t *testing.T) {
	A := &matrix{
		rows: 3, cols: 3,
		data: []float32{
			2, -1, 4,
			0, 3, 1,
			1, 2, -2,
		},
	}
	Q, Rt, ok := decomposeQR(A)
	if !ok {
		t.Fatal("decomposeQR failed")
	}
	if QR := Q.mul(Rt.transpose()); !A.approxEqual(QR) {
		t.Fatalf("Q*R = %v, want %v", QR, A)
	}
	ident := &matrix{
		rows: 3, cols: 3,
		data: []float32{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
	}
	if QtQ := Q.transpose().mul(Q); !QtQ.approxEqual(ident) {
		t.Fatalf("Q not orthonormal: Qt*Q = %v", QtQ)
	}
}

func TestPolyFit(t *testing.T) {
	tests := []struct {
		name string
		x, y []float32
		want coefficients
	}{
		{"constant", []float32{-1, 0, 2}, []float32{4, 4, 4}, coefficients{4, 0, 0}},
		{"line", []float32{0, 1, 2}, []float32{3, 5, 7}, coefficients{3, 2, 0}},
		{"parabola", []float32{-1, 0, 1}, []float32{1, 0, 1}, coefficients{0, 0, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := polyFit(tc.x, tc.y)
			if !ok {
				t.Fatal("polyFit failed")
			}
			if !got.approxEqual(tc.want) {
				t.Fatalf("fit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEstimateLinearMotion(t *testing.T) {
	var e Extrapolation
	for i := 0; i <= 3; i++ {
		e.Sample(time.Duration(i*20)*time.Millisecond, float32(i*40))
	}
	est := e.Estimate()
	if est.Velocity < 1999 || est.Velocity > 2001 {
		t.Errorf("velocity = %g, want 2000", est.Velocity)
	}
	if est.Distance < 119 || est.Distance > 121 {
		t.Errorf("distance = %g, want 120", est.Distance)
	}
}

func TestEstimateNeedsEnoughSamples(t *testing.T) {
	var e Extrapolation
	e.Sample(0, 0)
	e.Sample(10*time.Millisecond, 20)
	if est := e.Estimate(); est != (Estimate{}) {
		t.Errorf("estimate = %+v, want zero with two samples", est)
	}

	e.Sample(20*time.Millisecond, 40)
	if est := e.Estimate(); est.Velocity == 0 {
		t.Error("velocity = 0 with three samples of steady motion")
	}

	e.Reset()
	if est := e.Estimate(); est != (Estimate{}) {
		t.Errorf("estimate = %+v after reset, want zero", est)
	}
}

func TestEstimateIgnoresStaleSamples(t *testing.T) {
	var e Extrapolation
	// An ancient outlier followed by steady recent motion.
	e.Sample(0, 10000)
	e.Sample(200*time.Millisecond, 0)
	e.Sample(210*time.Millisecond, 20)
	e.Sample(220*time.Millisecond, 40)
	est := e.Estimate()
	if est.Velocity < 1999 || est.Velocity > 2001 {
		t.Errorf("velocity = %g, want 2000 from the recent samples only", est.Velocity)
	}
}
