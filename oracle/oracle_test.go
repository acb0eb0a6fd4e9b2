package oracle

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/dualknp"
	"github.com/bartolsthoorn/gocqknp/internal/instance"
)

// stub is a dualknp engine that records its calls and can be told to lie.
type stub struct {
	*dualknp.Solver
	name    string
	journal *[]string

	status   *cqknp.Status
	foShift  float64
	failOn   string
	closeErr error
}

func newStub(name string, journal *[]string) *stub {
	return &stub{Solver: dualknp.New(), name: name, journal: journal}
}

func (s *stub) record(op string) error {
	*s.journal = append(*s.journal, s.name+"."+op)
	if op == s.failOn {
		return cqknp.Usagef(op, "%s refuses", s.name)
	}
	return nil
}

func (s *stub) LoadSet(n int, c, d, a, b []float64, v float64, sense cqknp.Sense) error {
	if err := s.record("LoadSet"); err != nil {
		return err
	}
	return s.Solver.LoadSet(n, c, d, a, b, v, sense)
}

func (s *stub) ChgLCosts(vals []float64, idx []int, start, stop int) error {
	if err := s.record("ChgLCosts"); err != nil {
		return err
	}
	return s.Solver.ChgLCosts(vals, idx, start, stop)
}

func (s *stub) ChgVlm(v float64) error {
	if err := s.record("ChgVlm"); err != nil {
		return err
	}
	return s.Solver.ChgVlm(v)
}

func (s *stub) SolveKNP() (cqknp.Status, error) {
	if err := s.record("SolveKNP"); err != nil {
		return cqknp.Error, err
	}
	status, err := s.Solver.SolveKNP()
	if s.status != nil {
		return *s.status, err
	}
	return status, err
}

func (s *stub) KNPGetFO() (float64, error) {
	if err := s.record("KNPGetFO"); err != nil {
		return 0, err
	}
	fo, err := s.Solver.KNPGetFO()
	return fo + s.foShift, err
}

func (s *stub) KNPGetX() ([]float64, error) {
	if err := s.record("KNPGetX"); err != nil {
		return nil, err
	}
	return s.Solver.KNPGetX()
}

func (s *stub) Close() error {
	_ = s.record("Close")
	_ = s.Solver.Close()
	return s.closeErr
}

var _ = Describe("Oracle", func() {
	var (
		journal []string
		ref     *stub
		cand    *stub
		o       *Oracle[*stub, *stub]
	)

	load := func() {
		Expect(o.LoadSet(3,
			[]float64{1, 1, 1},
			[]float64{1, 1, 1},
			[]float64{0, 0, 0},
			[]float64{10, 10, 10},
			3, cqknp.Equality)).To(Succeed())
	}

	BeforeEach(func() {
		journal = nil
		ref = newStub("ref", &journal)
		cand = newStub("cand", &journal)
		o = New(ref, cand)
		o.SetLog(GinkgoLogr, 1)
	})

	It("should expose both engines", func() {
		Expect(o.Reference()).To(BeIdenticalTo(ref))
		Expect(o.Candidate()).To(BeIdenticalTo(cand))
	})

	Context("when forwarding changes", func() {
		It("should call the reference before the candidate", func() {
			load()
			Expect(o.ChgLCosts([]float64{2}, nil, 0, 1)).To(Succeed())
			Expect(o.ChgVlm(4)).To(Succeed())

			Expect(journal).To(Equal([]string{
				"ref.LoadSet", "cand.LoadSet",
				"ref.ChgLCosts", "cand.ChgLCosts",
				"ref.ChgVlm", "cand.ChgVlm",
			}))

			out := make([]float64, 3)
			Expect(cand.KNPLCosts(out, nil, 0, cqknp.End)).To(Succeed())
			Expect(out).To(Equal([]float64{2, 1, 1}))
			Expect(cand.KNPVlm()).To(Equal(4.0))
		})

		It("should stop at a failing reference", func() {
			load()
			ref.failOn = "ChgVlm"

			err := o.ChgVlm(4)
			Expect(errors.Is(err, cqknp.ErrUsage)).To(BeTrue())
			Expect(journal).NotTo(ContainElement("cand.ChgVlm"))
		})

		It("should report a failing candidate", func() {
			load()
			cand.failOn = "ChgLCosts"

			err := o.ChgLCosts([]float64{2}, nil, 0, 1)
			Expect(errors.Is(err, cqknp.ErrUsage)).To(BeTrue())
			Expect(journal).To(ContainElements("ref.ChgLCosts", "cand.ChgLCosts"))
		})

		It("should forward single-item changes and tolerances", func() {
			load()
			Expect(o.ChgQCost(0, 2)).To(Succeed())
			Expect(o.ChgLBnd(1, 0.5)).To(Succeed())
			Expect(o.ChgUBnd(2, 9)).To(Succeed())
			Expect(o.SetEps(1e-7)).To(Succeed())

			for _, p := range []cqknp.Problem{ref, cand} {
				out := make([]float64, 3)
				Expect(p.KNPQCosts(out, nil, 0, cqknp.End)).To(Succeed())
				Expect(out).To(Equal([]float64{2, 1, 1}))
				Expect(p.KNPLBnds(out, nil, 0, cqknp.End)).To(Succeed())
				Expect(out).To(Equal([]float64{0, 0.5, 0}))
				Expect(p.KNPUBnds(out, nil, 0, cqknp.End)).To(Succeed())
				Expect(out).To(Equal([]float64{10, 10, 9}))
			}
		})
	})

	Context("when solving", func() {
		It("should return the common status", func() {
			load()
			status, err := o.SolveKNP()
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(cqknp.OK))
		})

		It("should detect a status disagreement", func() {
			Expect(o.LoadSet(1,
				[]float64{0},
				[]float64{0},
				[]float64{math.Inf(-1)},
				[]float64{math.Inf(1)},
				0, cqknp.Equality)).To(Succeed())
			lie := cqknp.Unfeasible
			cand.status = &lie

			status, err := o.SolveKNP()
			Expect(status).To(Equal(cqknp.OK))

			var ce *cqknp.ConsistencyError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Op).To(Equal("SolveKNP"))
			Expect(ce.Reference).To(Equal(cqknp.OK))
			Expect(ce.Candidate).To(Equal(cqknp.Unfeasible))
			Expect(errors.Is(err, cqknp.ErrConsistency)).To(BeTrue())
		})

		It("should propagate an engine error without comparing", func() {
			load()
			cand.failOn = "SolveKNP"

			status, err := o.SolveKNP()
			Expect(errors.Is(err, cqknp.ErrUsage)).To(BeTrue())
			Expect(errors.Is(err, cqknp.ErrConsistency)).To(BeFalse())
			Expect(status).To(Equal(cqknp.OK), "the reference status")
		})
	})

	Context("when reading the objective", func() {
		BeforeEach(func() {
			load()
			_, err := o.SolveKNP()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should compare on every call", func() {
			fo1, err := o.KNPGetFO()
			Expect(err).NotTo(HaveOccurred())
			fo2, err := o.KNPGetFO()
			Expect(err).NotTo(HaveOccurred())

			Expect(fo1).To(Equal(fo2))
			Expect(fo1).To(BeNumerically("~", 6, 1e-9))
			Expect(journal).To(HaveLen(2 + 2 + 4))
			Expect(journal[len(journal)-2:]).To(Equal([]string{"ref.KNPGetFO", "cand.KNPGetFO"}))
		})

		It("should accept a gap within the tolerance", func() {
			cand.foShift = 1e-9
			_, err := o.KNPGetFO()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject a gap beyond the tolerance", func() {
			cand.foShift = 1e-3

			fo, err := o.KNPGetFO()
			Expect(fo).To(BeNumerically("~", 6, 1e-9))

			var ce *cqknp.ConsistencyError
			Expect(errors.As(err, &ce)).To(BeTrue())
			Expect(ce.Op).To(Equal("KNPGetFO"))
			Expect(ce.Candidate).To(BeNumerically("~", 6.001, 1e-9))
		})
	})

	Context("when reading anything else", func() {
		It("should ask the reference only", func() {
			load()
			_, err := o.SolveKNP()
			Expect(err).NotTo(HaveOccurred())
			journal = nil

			x, err := o.KNPGetX()
			Expect(err).NotTo(HaveOccurred())
			Expect(x).To(HaveLen(3))
			pi, err := o.KNPGetPi()
			Expect(err).NotTo(HaveOccurred())
			Expect(pi).To(BeNumerically("~", 3, 1e-9))

			Expect(o.KNPLCost(1)).To(Equal(1.0))
			Expect(o.KNPQCost(2)).To(Equal(1.0))
			Expect(o.KNPLBnd(0)).To(Equal(0.0))
			Expect(o.KNPUBnd(0)).To(Equal(10.0))
			Expect(o.KNPNum()).To(Equal(3))
			Expect(o.KNPVlm()).To(Equal(3.0))
			Expect(o.KNPSense()).To(Equal(cqknp.Equality))

			Expect(journal).To(Equal([]string{"ref.KNPGetX"}))
		})
	})

	Context("when closing", func() {
		It("should close the candidate, then the reference", func() {
			Expect(o.Close()).To(Succeed())
			Expect(journal).To(Equal([]string{"cand.Close", "ref.Close"}))
		})

		It("should close the reference even if the candidate fails", func() {
			boom := errors.New("boom")
			cand.closeErr = boom

			err := o.Close()
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(journal).To(ContainElement("ref.Close"))
		})
	})
})

var _ = DescribeTable("Agree",
	func(ref, cand float64, want bool) {
		Expect(Agree(ref, cand)).To(Equal(want))
	},
	Entry("equal values", 5.0, 5.0, true),
	Entry("small values use an absolute floor", 0.0, 5e-7, true),
	Entry("small values beyond the floor", 0.0, 2e-6, false),
	Entry("large values are relative", 1e9, 1e9+100, true),
	Entry("large values beyond the tolerance", 1e9, 1e9+2000, false),
	Entry("both infinite", cqknp.Inf, cqknp.Inf, true),
	Entry("opposite infinities", cqknp.Inf, -cqknp.Inf, false),
)

var _ = Describe("Random cross-check", func() {
	It("should find two breakpoint engines in agreement", func() {
		g, err := instance.New(instance.Config{MinSize: 1, MaxSize: 60, Change: 0.3}, 2024)
		Expect(err).NotTo(HaveOccurred())

		for run := 0; run < 50; run++ {
			o := New(dualknp.New(), dualknp.New())
			in := g.Next()
			Expect(in.Load(o)).To(Succeed())

			for k := 0; k < 16; k++ {
				Expect(g.Perturb(in, instance.Change(k%8), o)).To(Succeed())

				status, err := o.SolveKNP()
				Expect(err).NotTo(HaveOccurred(), "run %d, cycle %d", run, k)
				if status == cqknp.OK {
					_, err = o.KNPGetFO()
					Expect(err).NotTo(HaveOccurred(), "run %d, cycle %d", run, k)
				}
			}
			Expect(o.Close()).To(Succeed())
		}
	})
})
