package instance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/dualknp"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{MinSize: 1, MaxSize: 10, Change: 1}, false},
		{"single size", Config{MinSize: 5, MaxSize: 5, Change: 0.5}, false},
		{"zero size", Config{MinSize: 0, MaxSize: 10, Change: 1}, true},
		{"inverted sizes", Config{MinSize: 10, MaxSize: 5, Change: 1}, true},
		{"no change", Config{MinSize: 1, MaxSize: 10, Change: 0}, true},
		{"change above one", Config{MinSize: 1, MaxSize: 10, Change: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextIsDeterministic(t *testing.T) {
	cfg := Config{MinSize: 1, MaxSize: 50, Change: 1}
	g1, err := New(cfg, 42)
	require.NoError(t, err)
	g2, err := New(cfg, 42)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, g1.Next(), g2.Next())
	}
}

func TestNextShape(t *testing.T) {
	g, err := New(Config{MinSize: 3, MaxSize: 40, Change: 1}, 1)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		in := g.Next()
		n := in.N()
		require.GreaterOrEqual(t, n, 3)
		require.Less(t, n, 40)
		require.Len(t, in.D, n)
		require.Len(t, in.A, n)
		require.Len(t, in.B, n)

		assert.GreaterOrEqual(t, in.V, 0.0)
		assert.Less(t, in.V, 1000.0)
		for j := 0; j < n; j++ {
			assert.LessOrEqual(t, in.A[j], in.B[j])
			assert.GreaterOrEqual(t, in.D[j], 0.0)
			assert.False(t, math.IsNaN(in.C[j]))
		}
	}
}

func TestPerturbKeepsEnginesInStep(t *testing.T) {
	for _, change := range []float64{1, 0.3, 0.01} {
		g, err := New(Config{MinSize: 20, MaxSize: 60, Change: change}, 7)
		require.NoError(t, err)

		in := g.Next()
		first, second := dualknp.New(), dualknp.New()
		require.NoError(t, in.Load(first))
		require.NoError(t, in.Load(second))

		for k := Change(0); k < 8; k++ {
			require.NoError(t, g.Perturb(in, k, first, second))

			for _, p := range []cqknp.Problem{first, second} {
				requireHolds(t, p, in)
			}
		}
	}
}

func requireHolds(t *testing.T, p cqknp.Problem, in *Instance) {
	t.Helper()
	n := in.N()
	out := make([]float64, n)

	require.NoError(t, p.KNPLCosts(out, nil, 0, cqknp.End))
	assert.Equal(t, in.C, out)
	require.NoError(t, p.KNPQCosts(out, nil, 0, cqknp.End))
	assert.Equal(t, in.D, out)
	require.NoError(t, p.KNPLBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, canon(in.A), out)
	require.NoError(t, p.KNPUBnds(out, nil, 0, cqknp.End))
	assert.Equal(t, canon(in.B), out)
	assert.Equal(t, in.V, p.KNPVlm())
}

func canon(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = cqknp.Canon(v)
	}
	return out
}

func TestWindow(t *testing.T) {
	g, err := New(Config{MinSize: 1, MaxSize: 2, Change: 0.1}, 3)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		start, stop := g.window(100)
		require.GreaterOrEqual(t, start, 0)
		require.Greater(t, stop, start)
		require.LessOrEqual(t, stop, 100)
		require.LessOrEqual(t, stop-start, 15)
	}

	g.cfg.Change = 1
	start, stop := g.window(100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 100, stop)
}
