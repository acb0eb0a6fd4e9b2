package dualknp

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/cqknptest"
)

func TestConformance(t *testing.T) {
	cqknptest.Run(t, func(t *testing.T) cqknp.Problem {
		s := New()
		s.SetLog(testr.NewWithOptions(t, testr.Options{Verbosity: 2}), 2)
		return s
	})
}

func load(t *testing.T, n int, c, d, a, b []float64, v float64, sense cqknp.Sense) *Solver {
	t.Helper()
	s := New()
	require.NoError(t, s.LoadSet(n, c, d, a, b, v, sense))
	return s
}

func TestStatuses(t *testing.T) {
	inf := math.Inf(1)
	for _, tc := range []struct {
		name       string
		c, d, a, b []float64
		v          float64
		sense      cqknp.Sense
		want       cqknp.Status
	}{
		{
			name: "free item absorbs any volume",
			c:    []float64{2, 1}, d: []float64{0, 1},
			a: []float64{-inf, 0}, b: []float64{inf, 4},
			v: 100, sense: cqknp.Equality, want: cqknp.OK,
		},
		{
			name: "free item cannot trade with itself",
			c:    []float64{-3}, d: []float64{0},
			a: []float64{-inf}, b: []float64{inf},
			v: 1, sense: cqknp.Equality, want: cqknp.OK,
		},
		{
			name: "two free items with different costs",
			c:    []float64{-3, -2}, d: []float64{0, 0},
			a: []float64{-inf, -inf}, b: []float64{inf, inf},
			v: 1, sense: cqknp.Equality, want: cqknp.Unbounded,
		},
		{
			name: "two free items with equal costs",
			c:    []float64{5, 5}, d: []float64{0, 0},
			a: []float64{-inf, -inf}, b: []float64{inf, inf},
			v: 1, sense: cqknp.Equality, want: cqknp.OK,
		},
		{
			name: "decreasing a positive cost item",
			c:    []float64{1, 0}, d: []float64{0, 1},
			a: []float64{-inf, 0}, b: []float64{0, 1},
			v: 0, sense: cqknp.LessOrEqual, want: cqknp.Unbounded,
		},
		{
			name: "quadratic item bounds the ray",
			c:    []float64{-1, 0}, d: []float64{0, 1},
			a: []float64{0, -inf}, b: []float64{inf, inf},
			v: 0, sense: cqknp.Equality, want: cqknp.OK,
		},
		{
			name: "lower bounds exceed the volume",
			c:    []float64{0, 0}, d: []float64{1, 1},
			a: []float64{2, 2}, b: []float64{5, 5},
			v: 3, sense: cqknp.LessOrEqual, want: cqknp.Unfeasible,
		},
		{
			name: "unconstrained row",
			c:    []float64{1, -1}, d: []float64{1, 1},
			a: nil, b: nil,
			v: inf, sense: cqknp.LessOrEqual, want: cqknp.OK,
		},
		{
			name: "unconstrained row with a descent ray",
			c:    []float64{-1}, d: []float64{0},
			a: []float64{0}, b: []float64{inf},
			v: inf, sense: cqknp.LessOrEqual, want: cqknp.Unbounded,
		},
		{
			name: "infinite volume equality",
			c:    []float64{0}, d: []float64{1},
			a: nil, b: nil,
			v: inf, sense: cqknp.Equality, want: cqknp.Unfeasible,
		},
		{
			name: "nonconvex item",
			c:    []float64{0}, d: []float64{-1},
			a: []float64{0}, b: []float64{1},
			v: 1, sense: cqknp.Equality, want: cqknp.Error,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := load(t, len(tc.c), tc.c, tc.d, tc.a, tc.b, tc.v, tc.sense)
			got, err := s.SolveKNP()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			if got == cqknp.OK {
				requireKKT(t, s)
			}
		})
	}
}

func TestUnconstrainedRow(t *testing.T) {
	s := load(t, 2, []float64{1, -1}, []float64{1, 1}, nil, nil, math.Inf(1), cqknp.LessOrEqual)
	assert.Equal(t, cqknp.Inf, s.KNPVlm())

	cqknptest.RequireOptimum(t, s, []float64{-0.5, 0.5}, -0.5, 0)
}

func TestFreeItemAbsorbsVolume(t *testing.T) {
	s := load(t, 2, []float64{2, 1}, []float64{0, 1}, []float64{math.Inf(-1), 0}, []float64{math.Inf(1), 4}, 100, cqknp.Equality)

	// π = 2 fixes x1 = (2-1)/2, the free item takes the rest
	cqknptest.RequireOptimum(t, s, []float64{99.5, 0.5}, 199+0.5+0.25, 2)
}

func TestDefaultTolerance(t *testing.T) {
	assert.Equal(t, cqknp.DefaultEps, New().eps)

	// within DefaultEps of the reachable range
	s := load(t, 2, nil, []float64{1, 1}, []float64{0, 0}, []float64{1, 1}, 2+1e-8, cqknp.Equality)
	cqknptest.RequireSolution(t, s, []float64{1, 1}, 2)
}

func TestEpsWidensFeasibility(t *testing.T) {
	s := load(t, 2, nil, []float64{1, 1}, []float64{0, 0}, []float64{1, 1}, 2+1e-5, cqknp.Equality)

	cqknptest.Solve(t, s, cqknp.Unfeasible)

	require.NoError(t, s.SetEps(1e-5))
	cqknptest.RequireSolution(t, s, []float64{1, 1}, 2)
}

// TestRandomKKT checks the optimality conditions on random instances.
func TestRandomKKT(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for run := 0; run < 500; run++ {
		n := 1 + rng.IntN(30)
		c := make([]float64, n)
		d := make([]float64, n)
		a := make([]float64, n)
		b := make([]float64, n)
		sumA, sumB := 0.0, 0.0
		for i := range c {
			c[i] = rng.Float64()*20 - 10
			a[i] = rng.Float64()*10 - 5
			b[i] = a[i] + rng.Float64()*10
			if rng.IntN(2) == 0 {
				d[i] = 0.1 + rng.Float64()*5
			}
			sumA += a[i]
			sumB += b[i]
		}

		sense := cqknp.Equality
		v := sumA + rng.Float64()*(sumB-sumA)
		if rng.IntN(3) == 0 {
			sense = cqknp.LessOrEqual
			v += rng.Float64() * 5
		}

		s := load(t, n, c, d, a, b, v, sense)
		got, err := s.SolveKNP()
		require.NoError(t, err)
		require.Equal(t, cqknp.OK, got, "run %d", run)
		requireKKT(t, s)
	}
}

// requireKKT checks primal feasibility, stationarity and complementary
// slackness of the reported solution.
func requireKKT(t *testing.T, s *Solver) {
	t.Helper()
	const tol = 1e-6

	x, err := s.KNPGetX()
	require.NoError(t, err)
	pi, err := s.KNPGetPi()
	require.NoError(t, err)

	data := s.data
	total := 0.0
	for i, xi := range x {
		a, b := ieee(data.A[i]), ieee(data.B[i])
		require.GreaterOrEqual(t, xi, a-tol, "item %d below its bound", i)
		require.LessOrEqual(t, xi, b+tol, "item %d above its bound", i)

		g := data.C[i] + 2*data.D[i]*xi - pi
		scale := 1 + math.Abs(pi)
		switch {
		case xi > a+tol && xi < b-tol:
			assert.InDelta(t, 0, g, tol*scale, "item %d is interior", i)
		case xi <= a+tol && xi < b-tol:
			assert.GreaterOrEqual(t, g, -tol*scale, "item %d at its lower bound", i)
		case xi >= b-tol && xi > a+tol:
			assert.LessOrEqual(t, g, tol*scale, "item %d at its upper bound", i)
		}
		total += xi
	}

	if math.IsInf(ieee(data.V), 1) {
		assert.Zero(t, pi)
		return
	}
	scale := 1 + math.Abs(data.V)
	if data.Sense == cqknp.Equality {
		assert.InDelta(t, data.V, total, tol*scale)
		return
	}
	assert.LessOrEqual(t, total, data.V+tol*scale)
	assert.LessOrEqual(t, pi, tol)
	if total < data.V-tol*scale {
		assert.InDelta(t, 0, pi, tol)
	}
}

func TestClosedSolver(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())

	err := s.LoadSet(1, nil, nil, nil, nil, 0, cqknp.Equality)
	assert.ErrorIs(t, err, cqknp.ErrUsage)
	assert.ErrorIs(t, s.SetEps(1), cqknp.ErrUsage)
	assert.Zero(t, s.KNPNum())
}

func BenchmarkSolve(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	const n = 10000
	c := make([]float64, n)
	d := make([]float64, n)
	hi := make([]float64, n)
	for i := range c {
		c[i] = rng.Float64()*100 - 50
		d[i] = rng.Float64() * 10
		hi[i] = 1 + rng.Float64()*9
	}
	s := New()
	if err := s.LoadSet(n, c, d, make([]float64, n), hi, n, cqknp.Equality); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.SolveKNP(); err != nil {
			b.Fatal(err)
		}
	}
}
