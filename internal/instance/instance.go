// Package instance generates random Continuous Quadratic Knapsack instances
// and random incremental changes to them.
//
// About one item in ten is linear. Linear items have nonnegative costs
// (rarely a negative one) and almost always finite bounds; quadratic items
// have an infinite bound on either side half of the time. Volumes are
// drawn from [0, 1000).
package instance

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/bartolsthoorn/gocqknp/cqknp"
)

// Change selects what Perturb modifies.
type Change uint8

const (
	Costs Change = 1 << iota
	Bounds
	Volume

	All = Costs | Bounds | Volume
)

// Config holds the generator parameters.
type Config struct {
	MinSize int     // smallest item count
	MaxSize int     // item counts are drawn from [MinSize, MaxSize)
	Change  float64 // share of the items touched by one Perturb, 1 for all
}

// Validate checks the parameters.
func (c Config) Validate() error {
	if c.MinSize < 1 {
		return fmt.Errorf("min size must be at least 1, got %d", c.MinSize)
	}
	if c.MaxSize < c.MinSize {
		return fmt.Errorf("max size %d is below min size %d", c.MaxSize, c.MinSize)
	}
	if c.Change <= 0 || c.Change > 1 {
		return fmt.Errorf("change must be in (0, 1], got %g", c.Change)
	}
	return nil
}

// Instance is a generated problem, kept in step with the engines it was
// loaded into by Perturb.
type Instance struct {
	C, D, A, B []float64
	V          float64
	Sense      cqknp.Sense
}

// N returns the number of items.
func (in *Instance) N() int {
	return len(in.C)
}

// Load loads the instance into p.
func (in *Instance) Load(p cqknp.Problem) error {
	return p.LoadSet(in.N(), in.C, in.D, in.A, in.B, in.V, in.Sense)
}

// Generator draws instances from a seeded source.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a generator. Equal seeds give equal sequences.
func New(cfg Config, seed uint64) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Next returns a new instance.
func (g *Generator) Next() *Instance {
	n := g.cfg.MinSize
	if span := g.cfg.MaxSize - g.cfg.MinSize; span > 0 {
		n += g.rng.IntN(span)
	}

	in := &Instance{}
	in.C, in.D = g.costs(n)
	in.A, in.B = g.bounds(in.D)
	in.V = g.volume()
	in.Sense = cqknp.Equality
	if g.rng.Float64() > 0.5 {
		in.Sense = cqknp.LessOrEqual
	}
	return in
}

// uniform returns n values drawn from [lo, hi).
func (g *Generator) uniform(n int, lo, hi float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = g.rng.Float64()
	}
	floats.Scale(hi-lo, s)
	floats.AddConst(lo, s)
	return s
}

func (g *Generator) costs(n int) (c, d []float64) {
	c = g.uniform(n, -50, 50)
	d = g.uniform(n, 0, 100)
	for i := range d {
		if g.rng.Float64() >= 0.1 {
			continue
		}
		d[i] = 0
		if g.rng.Float64() >= 0.01 {
			c[i] = g.rng.Float64() * 100
		}
	}
	return c, d
}

func (g *Generator) bounds(d []float64) (a, b []float64) {
	a = g.uniform(len(d), -50, 50)
	b = g.uniform(len(d), -50, 50)
	for i := range d {
		pInf := 0.5
		if d[i] == 0 {
			pInf = 0.01
		}
		if g.rng.Float64() < pInf {
			a[i] = math.Inf(-1)
		}
		if g.rng.Float64() < pInf {
			b[i] = math.Inf(1)
		}
		a[i] = min(a[i], b[i])
	}
	return a, b
}

func (g *Generator) volume() float64 {
	return g.rng.Float64() * 1000
}

// window returns the item range one change touches.
func (g *Generator) window(n int) (start, stop int) {
	if g.cfg.Change >= 1 {
		return 0, n
	}
	touched := int(float64(n) * g.cfg.Change)
	count := max(int(float64(touched)*(g.rng.Float64()+0.5)), 1)
	start = g.rng.IntN(n - touched)
	return start, min(start+count, n)
}

// Perturb regenerates the selected parts of in over random item windows
// and applies the same changes to every engine in ps, through the range
// form of the Chg* methods.
func (g *Generator) Perturb(in *Instance, what Change, ps ...cqknp.Problem) error {
	n := in.N()
	if n == 0 {
		return nil
	}

	if what&Costs != 0 {
		c, d := g.costs(n)
		start, stop := g.window(n)
		if err := apply(in.C, c, start, stop, ps, cqknp.Problem.ChgLCosts); err != nil {
			return err
		}
		if g.cfg.Change < 1 && g.rng.Float64() < 0.5 {
			start, stop = g.window(n)
		}
		if err := apply(in.D, d, start, stop, ps, cqknp.Problem.ChgQCosts); err != nil {
			return err
		}
	}

	if what&Bounds != 0 {
		a, b := g.bounds(in.D)
		start, stop := g.window(n)
		if err := apply(in.A, a, start, stop, ps, cqknp.Problem.ChgLBnds); err != nil {
			return err
		}
		if g.cfg.Change < 1 && g.rng.Float64() < 0.5 {
			start, stop = g.window(n)
		}
		if err := apply(in.B, b, start, stop, ps, cqknp.Problem.ChgUBnds); err != nil {
			return err
		}
	}

	if what&Volume != 0 {
		in.V = g.volume()
		for _, p := range ps {
			if err := p.ChgVlm(in.V); err != nil {
				return err
			}
		}
	}
	return nil
}

type bulkChange func(p cqknp.Problem, vals []float64, idx []int, start, stop int) error

// apply copies fresh[start:stop] into dst and sends it to every engine.
func apply(dst, fresh []float64, start, stop int, ps []cqknp.Problem, chg bulkChange) error {
	copy(dst[start:stop], fresh[start:stop])
	for _, p := range ps {
		if err := chg(p, dst[start:stop], nil, start, stop); err != nil {
			return err
		}
	}
	return nil
}
