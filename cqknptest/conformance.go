// Package cqknptest checks that a cqknp.Problem implementation honours the
// contract: addressing, infinity translation, status handling and the
// optimal values of small hand-solved instances.
//
// An engine package runs the suite from its own tests:
//
//	func TestConformance(t *testing.T) {
//		cqknptest.Run(t, func(t *testing.T) cqknp.Problem {
//			p, err := mysolver.New()
//			require.NoError(t, err)
//			return p
//		})
//	}
package cqknptest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartolsthoorn/gocqknp/cqknp"
)

// Tol is the absolute tolerance for solution values.
const Tol = 1e-5

// Factory returns a fresh, empty engine. The suite closes it.
type Factory func(t *testing.T) cqknp.Problem

// Run runs every conformance check against engines made by newProblem.
func Run(t *testing.T, newProblem Factory) {
	open := func(t *testing.T) cqknp.Problem {
		p := newProblem(t)
		t.Cleanup(func() {
			assert.NoError(t, p.Close())
		})
		return p
	}

	for _, tc := range []struct {
		name string
		fn   func(t *testing.T, p cqknp.Problem)
	}{
		{"Symmetric", testSymmetric},
		{"Idempotence", testIdempotence},
		{"LinearItems", testLinearItems},
		{"LessOrEqualSlack", testLessOrEqualSlack},
		{"LessOrEqualBinding", testLessOrEqualBinding},
		{"Defaults", testDefaults},
		{"Empty", testEmpty},
		{"RangeMutation", testRangeMutation},
		{"SparseMutation", testSparseMutation},
		{"SparseWindow", testSparseWindow},
		{"SingleSetters", testSingleSetters},
		{"SingleGetters", testSingleGetters},
		{"InfinityRoundTrip", testInfinityRoundTrip},
		{"ChangeResetsStatus", testChangeResetsStatus},
		{"CrossedBounds", testCrossedBounds},
		{"VolumeOutOfReach", testVolumeOutOfReach},
		{"InfiniteVolume", testInfiniteVolume},
		{"Unbounded", testUnbounded},
		{"Preconditions", testPreconditions},
		{"Close", testClose},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, open(t))
		})
	}
}

// Solve runs SolveKNP and requires the given status.
func Solve(t *testing.T, p cqknp.Problem, want cqknp.Status) {
	t.Helper()
	got, err := p.SolveKNP()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// RequireSolution solves p and compares the solution to x and objective.
func RequireSolution(t *testing.T, p cqknp.Problem, x []float64, fo float64) {
	t.Helper()
	Solve(t, p, cqknp.OK)

	gotX, err := p.KNPGetX()
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, gotX, Tol)

	gotFO, err := p.KNPGetFO()
	require.NoError(t, err)
	assert.InDelta(t, fo, gotFO, Tol)
}

// RequireOptimum is RequireSolution plus a check of the multiplier.
func RequireOptimum(t *testing.T, p cqknp.Problem, x []float64, fo, pi float64) {
	t.Helper()
	RequireSolution(t, p, x, fo)

	gotPi, err := p.KNPGetPi()
	require.NoError(t, err)
	assert.InDelta(t, pi, gotPi, Tol)
}

func filled(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func loadSymmetric(t *testing.T, p cqknp.Problem) {
	require.NoError(t, p.LoadSet(3,
		[]float64{1, 1, 1},
		[]float64{1, 1, 1},
		[]float64{0, 0, 0},
		[]float64{10, 10, 10},
		3, cqknp.Equality))
}

func testSymmetric(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)
	assert.Equal(t, 3, p.KNPNum())
	assert.Equal(t, cqknp.Equality, p.KNPSense())
	assert.Equal(t, 3.0, p.KNPVlm())

	RequireOptimum(t, p, []float64{1, 1, 1}, 6, 3)
}

func testIdempotence(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)
	Solve(t, p, cqknp.OK)

	x1, err := p.KNPGetX()
	require.NoError(t, err)
	fo1, err := p.KNPGetFO()
	require.NoError(t, err)

	fo2, err := p.KNPGetFO()
	require.NoError(t, err)
	assert.Equal(t, fo1, fo2)

	x2, err := p.KNPGetX()
	require.NoError(t, err)
	assert.Equal(t, x1, x2)

	// the returned vector is a copy
	x2[0] = 42
	x3, err := p.KNPGetX()
	require.NoError(t, err)
	assert.Equal(t, x1, x3)

	Solve(t, p, cqknp.OK)
	fo3, err := p.KNPGetFO()
	require.NoError(t, err)
	assert.InDelta(t, fo1, fo3, Tol)
}

func testLinearItems(t *testing.T, p cqknp.Problem) {
	require.NoError(t, p.LoadSet(2,
		[]float64{1, 2},
		[]float64{0, 0},
		[]float64{0, 0},
		[]float64{5, 5},
		3, cqknp.Equality))

	RequireOptimum(t, p, []float64{3, 0}, 3, 1)
}

func testLessOrEqualSlack(t *testing.T, p cqknp.Problem) {
	require.NoError(t, p.LoadSet(2,
		[]float64{1, 1},
		[]float64{1, 1},
		[]float64{0, 0},
		[]float64{10, 10},
		5, cqknp.LessOrEqual))

	RequireOptimum(t, p, []float64{0, 0}, 0, 0)
}

func testLessOrEqualBinding(t *testing.T, p cqknp.Problem) {
	require.NoError(t, p.LoadSet(2,
		[]float64{-4, -2},
		[]float64{1, 1},
		[]float64{0, 0},
		[]float64{10, 10},
		2, cqknp.LessOrEqual))

	RequireOptimum(t, p, []float64{1.5, 0.5}, -4.5, -1)
}

func testDefaults(t *testing.T, p cqknp.Problem) {
	require.NoError(t, p.LoadSet(2, nil, []float64{1, 1}, nil, nil, 4, cqknp.Equality))

	out := make([]float64, 2)
	require.NoError(t, p.KNPLCosts(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{0, 0}, out)
	require.NoError(t, p.KNPLBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{-cqknp.Inf, -cqknp.Inf}, out)
	require.NoError(t, p.KNPUBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{cqknp.Inf, cqknp.Inf}, out)

	RequireOptimum(t, p, []float64{2, 2}, 8, 4)
}

func testEmpty(t *testing.T, p cqknp.Problem) {
	for _, sense := range []cqknp.Sense{cqknp.Equality, cqknp.LessOrEqual} {
		require.NoError(t, p.LoadSet(0, nil, nil, nil, nil, 7, sense))
		assert.Equal(t, 0, p.KNPNum())

		Solve(t, p, cqknp.OK)
		x, err := p.KNPGetX()
		require.NoError(t, err)
		assert.Empty(t, x)

		fo, err := p.KNPGetFO()
		require.NoError(t, err)
		assert.Equal(t, 0.0, fo)

		pi, err := p.KNPGetPi()
		require.NoError(t, err)
		assert.Equal(t, 0.0, pi)

		// every bulk call addresses nothing
		require.NoError(t, p.ChgLCosts(nil, nil, 0, cqknp.End))
		require.NoError(t, p.KNPUBnds(nil, []int{0, 1}, 0, cqknp.End))
	}
}

func loadTen(t *testing.T, p cqknp.Problem) {
	c := make([]float64, 10)
	for i := range c {
		c[i] = float64(i)
	}
	require.NoError(t, p.LoadSet(10, c, filled(10, 1), filled(10, 0), filled(10, 10), 5, cqknp.Equality))
}

func testRangeMutation(t *testing.T, p cqknp.Problem) {
	loadTen(t, p)

	require.NoError(t, p.ChgLCosts([]float64{-1, -2, -3}, nil, 2, 5))

	out := make([]float64, 10)
	require.NoError(t, p.KNPLCosts(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{0, 1, -1, -2, -3, 5, 6, 7, 8, 9}, out)

	// the window is clipped to the item range
	part := make([]float64, 3)
	require.NoError(t, p.KNPLCosts(part, nil, -4, 3))
	assert.Equal(t, []float64{0, 1, -1}, part)
	require.NoError(t, p.KNPLCosts(part, nil, 8, 100))
	assert.Equal(t, []float64{8, 9}, part[:2])
}

func testSparseMutation(t *testing.T, p cqknp.Problem) {
	loadTen(t, p)

	require.NoError(t, p.ChgLBnds([]float64{1, 2, 3}, []int{1, 4, 7}, 0, cqknp.End))

	out := make([]float64, 10)
	require.NoError(t, p.KNPLBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{0, 1, 0, 0, 2, 0, 0, 3, 0, 0}, out)

	sparse := make([]float64, 3)
	require.NoError(t, p.KNPLBnds(sparse, []int{1, 4, 7}, 0, cqknp.End))
	assert.Equal(t, []float64{1, 2, 3}, sparse)

	// the lower bounds now fill the knapsack: x sits on them and the
	// multiplier is not unique
	require.NoError(t, p.ChgVlm(6))
	RequireSolution(t, p, out, 1+1+4*2+4+7*3+9)
}

func testSparseWindow(t *testing.T, p cqknp.Problem) {
	loadTen(t, p)

	// only item 4 lies in [2, 7)
	require.NoError(t, p.ChgUBnds([]float64{6}, []int{1, 4, 7}, 2, 7))

	out := make([]float64, 10)
	require.NoError(t, p.KNPUBnds(out, nil, 0, cqknp.End))
	want := filled(10, 10)
	want[4] = 6
	assert.Equal(t, want, out)
}

func testSingleSetters(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)

	require.NoError(t, p.ChgLCost(0, -2))
	require.NoError(t, p.ChgQCost(1, 3))
	require.NoError(t, p.ChgLBnd(2, 1))
	require.NoError(t, p.ChgUBnd(2, 4))

	out := make([]float64, 3)
	require.NoError(t, p.KNPLCosts(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{-2, 1, 1}, out)
	require.NoError(t, p.KNPQCosts(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{1, 3, 1}, out)
	require.NoError(t, p.KNPLBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{0, 0, 1}, out)
	require.NoError(t, p.KNPUBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, []float64{10, 10, 4}, out)

	for _, err := range []error{
		p.ChgLCost(3, 0),
		p.ChgQCost(-1, 0),
		p.ChgLBnd(10, 0),
		p.ChgUBnd(-5, 0),
	} {
		assert.ErrorIs(t, err, cqknp.ErrUsage)
	}
}

func testSingleGetters(t *testing.T, p cqknp.Problem) {
	require.NoError(t, p.LoadSet(2,
		[]float64{-1, 4},
		[]float64{0.5, 0},
		[]float64{math.Inf(-1), 2},
		[]float64{7, math.Inf(1)},
		3, cqknp.Equality))

	for _, tc := range []struct {
		name string
		get  func(int) (float64, error)
		want []float64
	}{
		{"KNPLCost", p.KNPLCost, []float64{-1, 4}},
		{"KNPQCost", p.KNPQCost, []float64{0.5, 0}},
		{"KNPLBnd", p.KNPLBnd, []float64{-cqknp.Inf, 2}},
		{"KNPUBnd", p.KNPUBnd, []float64{7, cqknp.Inf}},
	} {
		for i, want := range tc.want {
			got, err := tc.get(i)
			require.NoError(t, err, "%s(%d)", tc.name, i)
			assert.Equal(t, want, got, "%s(%d)", tc.name, i)
		}
		_, err := tc.get(2)
		assert.ErrorIs(t, err, cqknp.ErrUsage, "%s past the end", tc.name)
		_, err = tc.get(-1)
		assert.ErrorIs(t, err, cqknp.ErrUsage, "%s before the start", tc.name)
	}

	require.NoError(t, p.ChgQCost(1, 2.5))
	got, err := p.KNPQCost(1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)
}

func testInfinityRoundTrip(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)

	require.NoError(t, p.ChgUBnd(0, math.Inf(1)))
	require.NoError(t, p.ChgLBnd(1, math.Inf(-1)))
	require.NoError(t, p.ChgUBnd(2, cqknp.Inf))

	out := make([]float64, 3)
	require.NoError(t, p.KNPUBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, cqknp.Inf, out[0])
	assert.Equal(t, cqknp.Inf, out[2])
	assert.Equal(t, 10.0, out[1])

	require.NoError(t, p.KNPLBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, -cqknp.Inf, out[1])

	// the symmetric optimum is interior, the bounds do not move it
	RequireOptimum(t, p, []float64{1, 1, 1}, 6, 3)
}

func testChangeResetsStatus(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)
	Solve(t, p, cqknp.OK)

	require.NoError(t, p.ChgVlm(6))
	assert.Equal(t, 6.0, p.KNPVlm())

	_, err := p.KNPGetX()
	assert.ErrorIs(t, err, cqknp.ErrUsage)
	_, err = p.KNPGetFO()
	assert.ErrorIs(t, err, cqknp.ErrUsage)

	RequireOptimum(t, p, []float64{2, 2, 2}, 18, 5)
}

func testCrossedBounds(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)
	require.NoError(t, p.ChgLBnd(1, 20))

	Solve(t, p, cqknp.Unfeasible)
	fo, err := p.KNPGetFO()
	require.NoError(t, err)
	assert.Equal(t, cqknp.Inf, fo)

	_, err = p.KNPGetX()
	assert.ErrorIs(t, err, cqknp.ErrUsage)
}

func testVolumeOutOfReach(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)
	require.NoError(t, p.ChgVlm(31))

	Solve(t, p, cqknp.Unfeasible)

	// relaxing the sense makes the same volume reachable
	require.NoError(t, p.LoadSet(3, filled(3, 1), filled(3, 1), filled(3, 0), filled(3, 10), 31, cqknp.LessOrEqual))
	RequireOptimum(t, p, []float64{0, 0, 0}, 0, 0)
}

func testInfiniteVolume(t *testing.T, p cqknp.Problem) {
	// each item alone is cheapest at x = 1
	require.NoError(t, p.LoadSet(3, filled(3, -2), filled(3, 1), filled(3, 0), filled(3, 10), math.Inf(1), cqknp.Equality))
	Solve(t, p, cqknp.Unfeasible)
	fo, err := p.KNPGetFO()
	require.NoError(t, err)
	assert.Equal(t, cqknp.Inf, fo)

	require.NoError(t, p.ChgVlm(math.Inf(-1)))
	assert.Equal(t, -cqknp.Inf, p.KNPVlm())
	Solve(t, p, cqknp.Unfeasible)

	// an infinite LessOrEqual volume leaves the row inactive
	require.NoError(t, p.LoadSet(3, filled(3, -2), filled(3, 1), filled(3, 0), filled(3, 10), math.Inf(1), cqknp.LessOrEqual))
	assert.Equal(t, cqknp.Inf, p.KNPVlm())
	RequireOptimum(t, p, []float64{1, 1, 1}, -3, 0)

	require.NoError(t, p.ChgVlm(math.Inf(-1)))
	Solve(t, p, cqknp.Unfeasible)

	require.NoError(t, p.ChgVlm(3))
	RequireSolution(t, p, []float64{1, 1, 1}, -3)
}

func testUnbounded(t *testing.T, p cqknp.Problem) {
	// x0 = -x1 can grow without limit while -x0 decreases
	require.NoError(t, p.LoadSet(2,
		[]float64{-1, 0},
		[]float64{0, 0},
		[]float64{0, math.Inf(-1)},
		[]float64{math.Inf(1), 0},
		0, cqknp.Equality))

	Solve(t, p, cqknp.Unbounded)
	fo, err := p.KNPGetFO()
	require.NoError(t, err)
	assert.Equal(t, -cqknp.Inf, fo)
}

func testPreconditions(t *testing.T, p cqknp.Problem) {
	_, err := p.SolveKNP()
	assert.ErrorIs(t, err, cqknp.ErrUsage, "solve before load")

	err = p.LoadSet(3, []float64{1, 2}, nil, nil, nil, 0, cqknp.Equality)
	assert.ErrorIs(t, err, cqknp.ErrUsage, "short cost slice")
	err = p.LoadSet(-1, nil, nil, nil, nil, 0, cqknp.Equality)
	assert.ErrorIs(t, err, cqknp.ErrUsage, "negative size")

	loadSymmetric(t, p)

	_, err = p.KNPGetX()
	assert.ErrorIs(t, err, cqknp.ErrUsage, "solution before solve")
	_, err = p.KNPGetPi()
	assert.ErrorIs(t, err, cqknp.ErrUsage, "multiplier before solve")

	err = p.KNPLCosts(make([]float64, 2), nil, 0, cqknp.End)
	assert.ErrorIs(t, err, cqknp.ErrUsage, "short output buffer")
	err = p.ChgQCosts([]float64{1}, []int{0, 2}, 0, cqknp.End)
	assert.ErrorIs(t, err, cqknp.ErrUsage, "short value slice")

	assert.ErrorIs(t, p.SetEps(0), cqknp.ErrUsage)
	assert.ErrorIs(t, p.SetEps(-1e-6), cqknp.ErrUsage)
	require.NoError(t, p.SetEps(1e-8))

	// a failed call leaves the problem intact
	RequireOptimum(t, p, []float64{1, 1, 1}, 6, 3)
}

func testClose(t *testing.T, p cqknp.Problem) {
	loadSymmetric(t, p)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err := p.SolveKNP()
	assert.ErrorIs(t, err, cqknp.ErrUsage)
}
