package cqknp

import "math"

// Data is an in-memory copy of a problem instance. Engines that keep the
// problem on the Go side embed it; others use it to validate LoadSet input.
type Data struct {
	C     []float64 // linear costs
	D     []float64 // quadratic costs
	A     []float64 // lower bounds, -Inf when unbounded
	B     []float64 // upper bounds, +Inf when unbounded
	V     float64
	Sense Sense
}

// NewData copies the LoadSet arguments, filling nil slices with their
// defaults and mapping infinite bounds and volume to the sentinel.
func NewData(n int, c, d, a, b []float64, v float64, sense Sense) (*Data, error) {
	if n < 0 {
		return nil, Usagef("LoadSet", "negative item count %d", n)
	}
	if sense != Equality && sense != LessOrEqual {
		return nil, Usagef("LoadSet", "unknown sense %d", int(sense))
	}

	var err error
	data := &Data{V: Canon(v), Sense: sense}
	if data.C, err = expand("C", n, c, 0); err != nil {
		return nil, err
	}
	if data.D, err = expand("D", n, d, 0); err != nil {
		return nil, err
	}
	if data.A, err = expand("A", n, a, -Inf); err != nil {
		return nil, err
	}
	if data.B, err = expand("B", n, b, Inf); err != nil {
		return nil, err
	}
	for i := range data.A {
		data.A[i] = Canon(data.A[i])
		data.B[i] = Canon(data.B[i])
	}
	return data, nil
}

// expand copies the first n values of slice, or returns n copies of
// fillValue when slice is nil.
func expand(name string, n int, slice []float64, fillValue float64) ([]float64, error) {
	result := make([]float64, n)
	if slice == nil {
		for i := range result {
			result[i] = fillValue
		}
		return result, nil
	}
	if len(slice) < n {
		return nil, Usagef("LoadSet", "%s has %d values, want %d", name, len(slice), n)
	}
	copy(result, slice[:n])
	return result, nil
}

// N returns the number of items.
func (d *Data) N() int {
	return len(d.C)
}

// Scatter stores vals into dst at the positions addressed by (idx, start,
// stop). conv, if not nil, is applied to each value.
func Scatter(op string, dst, vals []float64, idx []int, start, stop int, conv func(float64) float64) error {
	pos, err := Positions(op, len(dst), len(vals), idx, start, stop)
	if err != nil {
		return err
	}
	for k, i := range pos {
		v := vals[k]
		if conv != nil {
			v = conv(v)
		}
		dst[i] = v
	}
	return nil
}

// Gather copies the values of src at the positions addressed by (idx,
// start, stop) into out.
func Gather(op string, src, out []float64, idx []int, start, stop int) error {
	pos, err := Positions(op, len(src), len(out), idx, start, stop)
	if err != nil {
		return err
	}
	for k, i := range pos {
		out[k] = src[i]
	}
	return nil
}

// DefaultEps is the feasibility tolerance engines start with. It equals the
// default primal feasibility tolerance of HiGHS, so that every engine gives
// the same verdict on a volume at the edge of reach.
const DefaultEps = 1e-7

// Feasible reports whether the box and knapsack constraints admit a point,
// allowing the knapsack a violation of tol·max(|V|, 1).
func (d *Data) Feasible(tol float64) bool {
	loSum, hiSum := 0.0, 0.0
	loInf, hiInf := false, false
	for i := range d.A {
		if d.A[i] > d.B[i] {
			return false
		}
		if IsNegInf(d.A[i]) {
			loInf = true
		} else {
			loSum += d.A[i]
		}
		if IsPosInf(d.B[i]) {
			hiInf = true
		} else {
			hiSum += d.B[i]
		}
	}
	slack := tol * max(math.Abs(d.V), 1)
	if !loInf && loSum > d.V+slack {
		return false
	}
	if d.Sense == Equality && !hiInf && hiSum < d.V-slack {
		return false
	}
	return true
}
