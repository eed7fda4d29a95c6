package optimize

import (
	"math"
	"testing"
)

func TestMinimizeSphere(t *testing.T) {
	t.Parallel()
	problem := Problem{
		Func: func(x []float64) float64 {
			s := 0.0
			for _, v := range x {
				s += (v - 1) * (v - 1)
			}
			return s
		},
		Bounds: [][2]float64{{-10, 10}, {-10, 10}},
	}
	res := Minimize(problem, []float64{5, -5}, Settings{FuncEvaluations: 500})
	if res.F > 1e-3 {
		t.Errorf("Minimize sphere: f=%v at x=%v, want near 0", res.F, res.X)
	}
	for _, v := range res.X {
		if math.Abs(v-1) > 0.1 {
			t.Errorf("Minimize sphere: x=%v, want near [1,1]", res.X)
		}
	}
}

func TestMinimizeRespectsBounds(t *testing.T) {
	t.Parallel()
	problem := Problem{
		Func: func(x []float64) float64 {
			return -(x[0]) // wants to run to +inf
		},
		Bounds: [][2]float64{{0, 1}},
	}
	res := Minimize(problem, []float64{0.5}, Settings{FuncEvaluations: 200})
	if res.X[0] < 0 || res.X[0] >= 1 {
		t.Errorf("Minimize escaped bounds: x=%v", res.X)
	}
}

func TestMinimizeZeroDimensional(t *testing.T) {
	t.Parallel()
	problem := Problem{Func: func(x []float64) float64 { return 42 }}
	res := Minimize(problem, nil, Settings{FuncEvaluations: 10})
	if res.F != 42 {
		t.Errorf("Minimize() with no free coordinates = %v, want 42", res.F)
	}
}

func TestMinimizeHonorsEvaluationBudget(t *testing.T) {
	t.Parallel()
	problem := Problem{
		Func: func(x []float64) float64 {
			return x[0] * x[0]
		},
		Bounds: [][2]float64{{-100, 100}},
	}
	res := Minimize(problem, []float64{50}, Settings{FuncEvaluations: 20})
	if res.Stats.FuncEvaluations > 20 {
		t.Errorf("Minimize used %d evaluations, budget was 20", res.Stats.FuncEvaluations)
	}
}
