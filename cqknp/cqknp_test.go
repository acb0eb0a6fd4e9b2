package cqknp

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		idx         []int
		start, stop int
		want        []int
	}{
		{"range", 10, nil, 2, 5, []int{2, 3, 4}},
		{"range to end", 4, nil, 0, End, []int{0, 1, 2, 3}},
		{"negative start", 3, nil, -4, 2, []int{0, 1}},
		{"empty range", 10, nil, 5, 5, nil},
		{"inverted range", 10, nil, 6, 2, nil},
		{"sparse", 10, []int{1, 4, 7}, 0, 10, []int{1, 4, 7}},
		{"sparse skips below start", 10, []int{1, 4, 7}, 2, 10, []int{4, 7}},
		{"sparse stops at stop", 10, []int{1, 4, 7, 9}, 0, 7, []int{1, 4}},
		{"sparse clipped to n", 5, []int{1, 4, 7}, 0, End, []int{1, 4}},
		{"no items", 0, nil, 0, End, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.n, tt.idx, tt.start, tt.stop))
		})
	}
}

func TestPositionsShortBuffer(t *testing.T) {
	_, err := Positions("ChgLCosts", 10, 2, nil, 2, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)

	var ue *UsageError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "ChgLCosts", ue.Op)
}

func TestCheckItem(t *testing.T) {
	assert.NoError(t, CheckItem("ChgLCost", 3, 0))
	assert.NoError(t, CheckItem("ChgLCost", 3, 2))
	assert.ErrorIs(t, CheckItem("ChgLCost", 3, 3), ErrUsage)
	assert.ErrorIs(t, CheckItem("ChgLCost", 3, -1), ErrUsage)
}

func TestInfinityTranslation(t *testing.T) {
	assert.True(t, IsPosInf(Inf))
	assert.True(t, IsPosInf(math.Inf(1)))
	assert.False(t, IsPosInf(1e300))
	assert.True(t, IsNegInf(-Inf))
	assert.True(t, IsNegInf(math.Inf(-1)))

	assert.Equal(t, Inf, Canon(math.Inf(1)))
	assert.Equal(t, -Inf, Canon(math.Inf(-1)))
	assert.Equal(t, 3.5, Canon(3.5))

	engineInf := math.Inf(1)
	assert.Equal(t, engineInf, ToEngine(Inf, engineInf))
	assert.Equal(t, -engineInf, ToEngine(-Inf, engineInf))
	assert.Equal(t, 7.0, ToEngine(7, engineInf))

	assert.Equal(t, Inf, FromEngine(engineInf, engineInf))
	assert.Equal(t, -Inf, FromEngine(-engineInf, engineInf))
	assert.Equal(t, -2.0, FromEngine(-2, engineInf))

	// a finite engine infinity must not leak out as a large number
	assert.Equal(t, Inf, FromEngine(1e30, 1e30))
}

func TestNewDataDefaults(t *testing.T) {
	data, err := NewData(3, nil, nil, nil, nil, 4, LessOrEqual)
	require.NoError(t, err)

	assert.Equal(t, 3, data.N())
	assert.Equal(t, []float64{0, 0, 0}, data.C)
	assert.Equal(t, []float64{0, 0, 0}, data.D)
	assert.Equal(t, []float64{-Inf, -Inf, -Inf}, data.A)
	assert.Equal(t, []float64{Inf, Inf, Inf}, data.B)
	assert.Equal(t, 4.0, data.V)
	assert.Equal(t, LessOrEqual, data.Sense)
}

func TestNewDataCopiesInput(t *testing.T) {
	c := []float64{1, 2}
	b := []float64{math.Inf(1), 5}
	data, err := NewData(2, c, nil, nil, b, 0, Equality)
	require.NoError(t, err)

	c[0] = 100
	assert.Equal(t, 1.0, data.C[0])
	assert.Equal(t, Inf, data.B[0])
}

func TestNewDataErrors(t *testing.T) {
	_, err := NewData(-1, nil, nil, nil, nil, 0, Equality)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = NewData(3, []float64{1}, nil, nil, nil, 0, Equality)
	assert.ErrorIs(t, err, ErrUsage)

	_, err = NewData(1, nil, nil, nil, nil, 0, Sense(9))
	assert.ErrorIs(t, err, ErrUsage)
}

func TestScatterGather(t *testing.T) {
	dst := make([]float64, 10)
	require.NoError(t, Scatter("ChgLCosts", dst, []float64{1, 2, 3}, nil, 2, 5, nil))
	assert.Equal(t, []float64{0, 0, 1, 2, 3, 0, 0, 0, 0, 0}, dst)

	require.NoError(t, Scatter("ChgLBnds", dst, []float64{-7, math.Inf(-1)}, []int{1, 8}, 0, End, Canon))
	assert.Equal(t, -7.0, dst[1])
	assert.Equal(t, -Inf, dst[8])

	out := make([]float64, 3)
	require.NoError(t, Gather("KNPLCosts", dst, out, []int{1, 3, 8}, 0, End))
	assert.Equal(t, []float64{-7, 2, -Inf}, out)
}

func TestFeasible(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []float64
		v     float64
		sense Sense
		want  bool
	}{
		{"inside", []float64{0, 0}, []float64{1, 1}, 1, Equality, true},
		{"volume too large", []float64{0, 0}, []float64{1, 1}, 3, Equality, false},
		{"volume too large but inequality", []float64{0, 0}, []float64{1, 1}, 3, LessOrEqual, true},
		{"volume too small", []float64{1, 1}, []float64{2, 2}, 1, LessOrEqual, false},
		{"crossed bounds", []float64{2, 0}, []float64{1, 1}, 1, LessOrEqual, false},
		{"infinite upper", []float64{0, 0}, []float64{Inf, 1}, 1e9, Equality, true},
		{"infinite lower", []float64{-Inf, 5}, []float64{1, 6}, -1e9, Equality, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := NewData(len(tt.a), nil, nil, tt.a, tt.b, tt.v, tt.sense)
			require.NoError(t, err)
			assert.Equal(t, tt.want, data.Feasible(1e-9))
		})
	}
}

func TestErrors(t *testing.T) {
	engineFault := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", &EngineError{Op: "LoadSet", Err: engineFault})
	assert.ErrorIs(t, err, ErrEngine)
	assert.ErrorIs(t, err, engineFault)
	assert.NotErrorIs(t, err, ErrUsage)

	cerr := &ConsistencyError{Op: "SolveKNP", Reference: OK, Candidate: Unfeasible}
	assert.ErrorIs(t, cerr, ErrConsistency)
	assert.Contains(t, cerr.Error(), "reference OK, candidate Unfeasible")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Stopped", Stopped.String())
	assert.Equal(t, "Unknown", Status(42).String())
	assert.True(t, Stopped.HasSolution())
	assert.False(t, Unbounded.HasSolution())
	assert.True(t, Unbounded.HasObjective())
	assert.False(t, NotSolved.HasObjective())
	assert.Equal(t, "LessOrEqual", LessOrEqual.String())
}
