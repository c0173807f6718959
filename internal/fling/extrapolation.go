// SPDX-License-Identifier: Unlicense OR MIT

// Package fling estimates one-dimensional pointer velocities from a
// short history of timed samples, using polynomial regression over the
// most recent samples.
package fling

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Extrapolation computes a 1-dimensional velocity estimate for a set
// of timed points using polynomial least-squares regression.
type Extrapolation struct {
	// Index into points of the next sample to write.
	idx int
	// Filled is the number of valid entries in points.
	filled int
	points [historySize]sample

	lastValue float32
}

// Estimate is the result of an extrapolation: the velocity at the most
// recent sample and the distance travelled over the sample window.
type Estimate struct {
	Velocity float32
	Distance float32
}

type sample struct {
	t time.Duration
	v float32
}

type matrix struct {
	rows, cols int
	data       []float32
}

type coefficients [degree + 1]float32

const (
	degree      = 2
	historySize = 20
	// maxAge is the oldest sample to consider for estimation.
	maxAge = 100 * time.Millisecond
)

// SampleDelta adds a relative sample to the estimation.
func (e *Extrapolation) SampleDelta(t time.Duration, delta float32) {
	val := delta + e.lastValue
	e.Sample(t, val)
}

// Sample adds an absolute sample to the estimation.
func (e *Extrapolation) Sample(t time.Duration, val float32) {
	e.lastValue = val
	if e.filled > 0 && e.get(0).t == t {
		// Survive samples with duplicate timestamps.
		e.points[(e.idx-1+historySize)%historySize].v = val
		return
	}
	e.points[e.idx] = sample{t: t, v: val}
	e.idx = (e.idx + 1) % historySize
	if e.filled < historySize {
		e.filled++
	}
}

// Reset discards the sample history.
func (e *Extrapolation) Reset() {
	*e = Extrapolation{}
}

// Estimate returns the velocity and distance implied by the recent
// sample history, or the zero Estimate if there are not enough recent
// samples.
func (e *Extrapolation) Estimate() Estimate {
	if e.filled < degree+1 {
		return Estimate{}
	}
	times := make([]float32, 0, e.filled)
	values := make([]float32, 0, e.filled)
	newest := e.get(0)
	for i := 0; i < e.filled; i++ {
		p := e.get(i)
		age := newest.t - p.t
		if age > maxAge {
			break
		}
		times = append(times, float32(-age.Seconds()))
		values = append(values, p.v-newest.v)
	}
	if len(times) < degree+1 {
		return Estimate{}
	}
	coef, ok := polyFit(times, values)
	if !ok {
		return Estimate{}
	}
	// Times are relative to the newest sample, so the velocity at the
	// newest sample is the first-order coefficient.
	return Estimate{
		Velocity: coef[1],
		Distance: values[0] - values[len(values)-1],
	}
}

// get returns the i'th newest sample; get(0) is the most recent.
func (e *Extrapolation) get(i int) sample {
	return e.points[(e.idx-1-i+2*historySize)%historySize]
}

// polyFit computes the least squares polynomial fit of the points
// (X, Y). The result is indexed by power: a fit y = c0 + c1*x + c2*x²
// is returned as [c0 c1 c2].
func polyFit(X, Y []float32) (coefficients, bool) {
	if len(X) != len(Y) || len(X) < degree+1 {
		return coefficients{}, false
	}
	// Vandermonde matrix of X.
	v := newMatrix(len(X), degree+1)
	for i, x := range X {
		pow := float32(1)
		for j := 0; j <= degree; j++ {
			v.set(i, j, pow)
			pow *= x
		}
	}
	q, rt, ok := decomposeQR(v)
	if !ok {
		return coefficients{}, false
	}
	// Solve R*c = transpose(Q)*Y by back substitution, using the
	// transposed R for contiguous column access.
	var c coefficients
	for i := degree; i >= 0; i-- {
		c[i] = q.dotCol(i, Y)
		for j := i + 1; j <= degree; j++ {
			c[i] -= rt.get(j, i) * c[j]
		}
		d := rt.get(i, i)
		if d == 0 {
			return coefficients{}, false
		}
		c[i] /= d
	}
	return c, true
}

// decomposeQR computes the thin QR decomposition of A through modified
// Gram-Schmidt orthogonalization. It returns Q and the transpose of R,
// or ok false if A's columns are linearly dependent.
func decomposeQR(A *matrix) (q, rt *matrix, ok bool) {
	m, n := A.rows, A.cols
	if m < n {
		return nil, nil, false
	}
	q = newMatrix(m, n)
	rt = newMatrix(n, n)
	col := make([]float32, m)
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			col[i] = A.get(i, j)
		}
		for i := 0; i < j; i++ {
			r := q.dotCol(i, col)
			rt.set(j, i, r)
			for k := 0; k < m; k++ {
				col[k] -= r * q.get(k, i)
			}
		}
		var norm float32
		for _, v := range col {
			norm += v * v
		}
		norm = float32(math.Sqrt(float64(norm)))
		if norm == 0 || math.IsNaN(float64(norm)) || math.IsInf(float64(norm), 0) {
			return nil, nil, false
		}
		rt.set(j, j, norm)
		for k := 0; k < m; k++ {
			q.set(k, j, col[k]/norm)
		}
	}
	return q, rt, true
}

func newMatrix(rows, cols int) *matrix {
	return &matrix{
		rows: rows, cols: cols,
		data: make([]float32, rows*cols),
	}
}

func (m *matrix) get(row, col int) float32 {
	return m.data[row*m.cols+col]
}

func (m *matrix) set(row, col int, v float32) {
	m.data[row*m.cols+col] = v
}

// dotCol returns the dot product of the col'th column of m and v.
func (m *matrix) dotCol(col int, v []float32) float32 {
	var dot float32
	for i := 0; i < m.rows; i++ {
		dot += m.get(i, col) * v[i]
	}
	return dot
}

func (m *matrix) transpose() *matrix {
	t := newMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.set(j, i, m.get(i, j))
		}
	}
	return t
}

func (m *matrix) mul(m2 *matrix) *matrix {
	if m.cols != m2.rows {
		panic("mismatched matrices")
	}
	r := newMatrix(m.rows, m2.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m2.cols; j++ {
			var v float32
			for k := 0; k < m.cols; k++ {
				v += m.get(i, k) * m2.get(k, j)
			}
			r.set(i, j, v)
		}
	}
	return r
}

func (m *matrix) approxEqual(m2 *matrix) bool {
	if m.rows != m2.rows || m.cols != m2.cols {
		return false
	}
	for i, v := range m.data {
		if !approxEqual(v, m2.data[i]) {
			return false
		}
	}
	return true
}

func (c coefficients) approxEqual(c2 coefficients) bool {
	for i, v := range c {
		if !approxEqual(v, c2[i]) {
			return false
		}
	}
	return true
}

func approxEqual(a, b float32) bool {
	del := a - b
	if del < 0 {
		del = -del
	}
	tol := float32(1e-3)
	max := float32(1)
	if a > max {
		max = a
	} else if a < -max {
		max = -a
	}
	if b > max {
		max = b
	} else if b < -max {
		max = -b
	}
	return del <= tol*max
}

func (m *matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		b.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(strconv.FormatFloat(float64(m.get(i, j)), 'g', 5, 32))
		}
		b.WriteString("]\n")
	}
	return b.String()
}
