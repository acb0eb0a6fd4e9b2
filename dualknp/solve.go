package dualknp

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/bartolsthoorn/gocqknp/cqknp"
)

// result is the outcome of one solve.
type result struct {
	status cqknp.Status
	x      []float64
	lambda float64
	fo     float64
}

// problem is the solver's view of the data, with the sentinel bounds
// turned into IEEE infinities.
type problem struct {
	c, d, a, b []float64
	v          float64
	sense      cqknp.Sense
}

func newProblem(data *cqknp.Data) *problem {
	p := &problem{
		c:     data.C,
		d:     data.D,
		a:     make([]float64, data.N()),
		b:     make([]float64, data.N()),
		v:     ieee(data.V),
		sense: data.Sense,
	}
	for i := range p.a {
		p.a[i] = ieee(data.A[i])
		p.b[i] = ieee(data.B[i])
	}
	return p
}

func ieee(v float64) float64 {
	switch {
	case cqknp.IsPosInf(v):
		return math.Inf(1)
	case cqknp.IsNegInf(v):
		return math.Inf(-1)
	}
	return v
}

// solve minimizes Σ cᵢxᵢ + dᵢxᵢ² over the box and the knapsack row.
//
// For a multiplier λ on the row every item minimizes (cᵢ+λ)x + dᵢx² over
// [aᵢ, bᵢ] on its own. The sum of these minimizers is nonincreasing in λ
// and piecewise linear between breakpoints, where an item hits a bound or a
// linear item turns over. solve brackets V between breakpoints, then
// interpolates.
func solve(data *cqknp.Data, tol float64) result {
	n := data.N()
	if n == 0 {
		return result{status: cqknp.OK, x: []float64{}}
	}
	for _, q := range data.D {
		if q < 0 {
			return result{status: cqknp.Error}
		}
	}
	if !data.Feasible(tol) {
		return result{status: cqknp.Unfeasible}
	}

	p := newProblem(data)
	if math.IsInf(p.v, 0) {
		// only an unconstrained LessOrEqual row survives Feasible
		if p.sense == cqknp.Equality || p.v < 0 {
			return result{status: cqknp.Unfeasible}
		}
		if p.descends() {
			return result{status: cqknp.Unbounded}
		}
		return p.finish(0, math.Inf(1))
	}
	if p.unbounded() {
		return result{status: cqknp.Unbounded}
	}

	lambda := p.multiplier()
	target := p.v
	if p.sense == cqknp.LessOrEqual && lambda == 0 {
		_, hi := p.sum(0)
		target = min(p.v, hi)
	}
	return p.finish(lambda, target)
}

// unbounded reports whether two linear items with infinite bounds open a
// descent ray along the row, or, for LessOrEqual, whether a single one can
// decrease without limit at negative cost.
func (p *problem) unbounded() bool {
	// up: linear items that can grow to +∞, down: to -∞
	upMin, upMin2, upIdx := math.Inf(1), math.Inf(1), -1
	downMax, downMax2, downIdx := math.Inf(-1), math.Inf(-1), -1
	for i := range p.c {
		if p.d[i] != 0 {
			continue
		}
		if math.IsInf(p.b[i], 1) {
			switch {
			case p.c[i] < upMin:
				upMin2, upMin, upIdx = upMin, p.c[i], i
			case p.c[i] < upMin2:
				upMin2 = p.c[i]
			}
		}
		if math.IsInf(p.a[i], -1) {
			switch {
			case p.c[i] > downMax:
				downMax2, downMax, downIdx = downMax, p.c[i], i
			case p.c[i] > downMax2:
				downMax2 = p.c[i]
			}
		}
	}

	if p.sense == cqknp.LessOrEqual && downMax > 0 {
		return true
	}
	if upIdx < 0 || downIdx < 0 {
		return false
	}
	if upIdx != downIdx {
		return upMin < downMax
	}
	// a free item cannot trade with itself
	return upMin2 < downMax || upMin < downMax2
}

// descends reports whether a linear item alone has a descent ray, which
// matters once the row no longer binds.
func (p *problem) descends() bool {
	for i := range p.c {
		if p.d[i] != 0 {
			continue
		}
		if (p.c[i] < 0 && math.IsInf(p.b[i], 1)) || (p.c[i] > 0 && math.IsInf(p.a[i], -1)) {
			return true
		}
	}
	return false
}

// x returns the minimizer of item i for the multiplier lambda, as the
// interval [lo, hi]. Only linear items on their turning point have lo < hi.
func (p *problem) x(i int, lambda float64) (lo, hi float64) {
	g := p.c[i] + lambda
	if p.d[i] > 0 {
		x := min(max(-g/(2*p.d[i]), p.a[i]), p.b[i])
		return x, x
	}
	switch {
	case g > 0:
		return p.a[i], p.a[i]
	case g < 0:
		return p.b[i], p.b[i]
	}
	return p.a[i], p.b[i]
}

// sum returns the range of Σxᵢ(lambda).
func (p *problem) sum(lambda float64) (lo, hi float64) {
	for i := range p.c {
		l, h := p.x(i, lambda)
		lo += l
		hi += h
	}
	return lo, hi
}

// domain returns the multipliers for which no linear item runs off to an
// infinite bound.
func (p *problem) domain() (lo, hi float64) {
	lo, hi = math.Inf(-1), math.Inf(1)
	for i := range p.c {
		if p.d[i] != 0 {
			continue
		}
		if math.IsInf(p.b[i], 1) {
			lo = max(lo, -p.c[i])
		}
		if math.IsInf(p.a[i], -1) {
			hi = min(hi, -p.c[i])
		}
	}
	return lo, hi
}

// breakpoints returns the sorted multipliers in [lo, hi] where an item
// changes regime.
func (p *problem) breakpoints(lo, hi float64) []float64 {
	ts := make([]float64, 0, 2*len(p.c)+1)
	add := func(t float64) {
		if t >= lo && t <= hi && !math.IsInf(t, 0) {
			ts = append(ts, t)
		}
	}
	for i := range p.c {
		if p.d[i] == 0 {
			add(-p.c[i])
			continue
		}
		add(-p.c[i] - 2*p.d[i]*p.b[i])
		add(-p.c[i] - 2*p.d[i]*p.a[i])
	}
	if p.sense == cqknp.LessOrEqual {
		add(0)
	}
	if len(ts) == 0 {
		// quadratic items without bounds only: one affine piece
		ts = append(ts, 0)
	}
	slices.Sort(ts)
	return slices.Compact(ts)
}

// slope returns Σ 1/(2dᵢ) over the quadratic items that are strictly
// inside their box beyond the extreme breakpoints: below all of them when
// left is set, above all of them otherwise.
func (p *problem) slope(left bool) float64 {
	s := 0.0
	for i := range p.c {
		if p.d[i] == 0 {
			continue
		}
		if (left && math.IsInf(p.b[i], 1)) || (!left && math.IsInf(p.a[i], -1)) {
			s += 1 / (2 * p.d[i])
		}
	}
	return s
}

// multiplier returns λ such that V lies in the range of Σxᵢ(λ). For
// LessOrEqual λ is not negative.
func (p *problem) multiplier() float64 {
	dlo, dhi := p.domain()
	if p.sense == cqknp.LessOrEqual && dlo <= 0 {
		if lo, _ := p.sum(0); lo <= p.v {
			return 0
		}
	}

	ts := p.breakpoints(dlo, dhi)
	k, _ := slices.BinarySearchFunc(ts, p.v, func(t, v float64) int {
		// first breakpoint whose lowest sum reaches v
		if lo, _ := p.sum(t); lo <= v {
			return 1
		}
		return -1
	})

	if k == len(ts) {
		t := ts[k-1]
		lo, _ := p.sum(t)
		if s := p.slope(false); s > 0 {
			return t + (lo-p.v)/s
		}
		return t
	}

	t := ts[k]
	_, hi := p.sum(t)
	if hi >= p.v {
		return t
	}
	if k == 0 {
		if s := p.slope(true); s > 0 {
			return t - (p.v-hi)/s
		}
		return t
	}

	// Σx is affine on (prev, t), from loPrev down to hi
	prev := ts[k-1]
	loPrev, _ := p.sum(prev)
	return prev + (loPrev-p.v)/(loPrev-hi)*(t-prev)
}

// finish evaluates the minimizers at lambda and spreads target - Σfixed
// over the linear items on their turning point.
func (p *problem) finish(lambda, target float64) result {
	n := len(p.c)
	x := make([]float64, n)
	var flex []int
	for i := range x {
		lo, hi := p.x(i, lambda)
		if lo == hi {
			x[i] = lo
			continue
		}
		flex = append(flex, i)
		switch {
		case !math.IsInf(lo, 0):
			x[i] = lo
		case !math.IsInf(hi, 0):
			x[i] = hi
		}
	}

	if len(flex) > 0 && !math.IsInf(target, 0) {
		delta := target - floats.Sum(x)
		for _, i := range flex {
			if delta == 0 {
				break
			}
			if delta > 0 {
				step := min(delta, p.b[i]-x[i])
				x[i] += step
				delta -= step
			} else {
				step := max(delta, p.a[i]-x[i])
				x[i] += step
				delta -= step
			}
		}
	}

	sq := make([]float64, n)
	floats.MulTo(sq, x, x)
	fo := floats.Dot(p.c, x) + floats.Dot(p.d, sq)
	return result{status: cqknp.OK, x: x, lambda: lambda, fo: fo}
}
