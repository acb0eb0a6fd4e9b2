package main

import (
	"fmt"
	"log"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/highs"
	"github.com/bartolsthoorn/gocqknp/highsknp"
)

func main() {
	// Minimize: x + y + x² + 2y²
	// Subject to: x + y = 3, 0 <= x,y <= 10
	env, err := highs.Acquire()
	if err != nil {
		log.Fatal(err)
	}
	defer env.Release()

	model := highs.Model{
		ColCosts: []float64{1.0, 1.0},
		ColLower: []float64{0.0, 0.0},
		ColUpper: []float64{10.0, 10.0},
		Hessian:  []float64{2.0, 4.0}, // 0.5 * Hessian[i] * x[i]²
	}
	model.AddDenseRow(3.0, []float64{1.0, 1.0}, 3.0) // x + y = 3

	solution, err := model.Solve(env, highs.WithOutput(false))
	if err != nil {
		log.Fatal(err)
	}
	if solution.IsOptimal() {
		fmt.Printf("x = %.2f, y = %.2f\n", solution.ColValues[0], solution.ColValues[1])
		fmt.Printf("Objective = %.2f\n", solution.Objective)
	}

	// The same problem through the knapsack interface, then re-solved with
	// a cheaper y.
	knp, err := highsknp.New()
	if err != nil {
		log.Fatal(err)
	}
	defer knp.Close()

	err = knp.LoadSet(2, []float64{1, 1}, []float64{1, 2}, []float64{0, 0}, []float64{10, 10}, 3, cqknp.Equality)
	if err != nil {
		log.Fatal(err)
	}
	for _, cost := range []float64{1, -5} {
		if err := knp.ChgLCost(1, cost); err != nil {
			log.Fatal(err)
		}
		if status, err := knp.SolveKNP(); err != nil || status != cqknp.OK {
			log.Fatalf("status %s: %v", status, err)
		}
		x, _ := knp.KNPGetX()
		fo, _ := knp.KNPGetFO()
		pi, _ := knp.KNPGetPi()
		fmt.Printf("c_y = %g: x = %.2f, y = %.2f, objective = %.2f, pi = %.2f\n", cost, x[0], x[1], fo, pi)
	}
}
