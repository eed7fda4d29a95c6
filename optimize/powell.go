package optimize

import (
	"math"
	"time"
)

// phi is the golden ratio used to bracket a 1-D line minimum, the same
// constant gonum's own Brent method bracketing used (optimize/brent.go).
const phi = 1.618033988749895

// goldenSectionIters bounds the bisection refinement of each bracketed
// 1-D line search.
const goldenSectionIters = 40

// Minimize runs Powell's method: starting from x0, it repeatedly
// line-minimizes along a set of search directions (initially the
// coordinate axes), replacing the direction that contributed the
// largest decrease with the net displacement of the round, until the
// function-evaluation budget in settings is exhausted, the deadline
// passes, or a round no longer changes the objective value.
//
// Points outside problem.Bounds are never passed to problem.Func; they
// score settings.PenaltyValue instead.
func Minimize(problem Problem, x0 []float64, settings Settings) Result {
	n := len(x0)
	if settings.FuncEvaluations <= 0 {
		settings.FuncEvaluations = 500
	}
	if settings.PenaltyValue == 0 {
		settings.PenaltyValue = 1e15
	}

	evals := 0
	objective := func(x []float64) float64 {
		for i, b := range problem.Bounds {
			if x[i] < b[0] || x[i] >= b[1] {
				return settings.PenaltyValue
			}
		}
		evals++
		return problem.Func(x)
	}

	x := append([]float64(nil), x0...)
	fx := objective(x)

	if n == 0 {
		return Result{X: x, F: fx, Stats: Stats{FuncEvaluations: evals}}
	}

	directions := identityDirections(n)

	for evals < settings.FuncEvaluations {
		if pastDeadline(settings.Deadline) {
			break
		}
		x0Round := append([]float64(nil), x...)
		f0Round := fx

		biggestDrop := 0.0
		biggestDropIdx := 0

		for i, d := range directions {
			if evals >= settings.FuncEvaluations || pastDeadline(settings.Deadline) {
				break
			}
			newX, newF, _ := lineMinimize(objective, x, d, settings.FuncEvaluations-evals)
			if fx-newF > biggestDrop {
				biggestDrop = fx - newF
				biggestDropIdx = i
			}
			x, fx = newX, newF
		}

		// Extrapolate along the net displacement of this round and try
		// replacing the direction that contributed the biggest single
		// drop with it, the classical Powell update.
		net := make([]float64, n)
		extrapolated := make([]float64, n)
		for i := range net {
			net[i] = x[i] - x0Round[i]
			extrapolated[i] = x[i] + net[i]
		}
		for i, b := range problem.Bounds {
			extrapolated[i] = math.Min(math.Max(extrapolated[i], b[0]), b[1]-1e-12)
		}
		if evals < settings.FuncEvaluations {
			fExtra := objective(extrapolated)
			if fExtra < f0Round {
				directions[biggestDropIdx] = net
			}
		}

		if math.Abs(f0Round-fx) < 1e-12*(math.Abs(f0Round)+math.Abs(fx)+1e-12) {
			break
		}
	}

	return Result{X: x, F: fx, Stats: Stats{FuncEvaluations: evals}}
}

func pastDeadline(deadline time.Time) bool {
	return !deadline.IsZero() && !time.Now().Before(deadline)
}

func identityDirections(n int) [][]float64 {
	dirs := make([][]float64, n)
	for i := range dirs {
		d := make([]float64, n)
		d[i] = 1
		dirs[i] = d
	}
	return dirs
}

// lineMinimize finds, approximately, the scalar step t minimizing
// objective(x + t*d), using a bounded golden-section search around a
// bracket straddling the minimum. It returns the new point, its value,
// and the number of objective evaluations consumed (capped at budget).
func lineMinimize(objective func([]float64) float64, x, d []float64, budget int) ([]float64, float64, int) {
	if budget < 3 {
		return append([]float64(nil), x...), objective(x), 1
	}
	at := func(t float64) []float64 {
		p := make([]float64, len(x))
		for i := range p {
			p[i] = x[i] + t*d[i]
		}
		return p
	}

	evals := 0
	eval := func(t float64) float64 {
		evals++
		return objective(at(t))
	}

	// Bracket [a, b, c] with f(b) <= f(a), f(b) <= f(c), growing by phi.
	a, b := 0.0, 1e-2
	fa, fb := eval(a), eval(b)
	if fb > fa {
		a, b = b, a
		fa, fb = fb, fa
	}
	c := b + phi*(b-a)
	fc := eval(c)
	for fc < fb && evals < budget {
		a, b, c = b, c, c+phi*(c-b)
		fa, fb = fb, fc
		fc = eval(c)
	}

	lo, hi := math.Min(a, c), math.Max(a, c)
	if lo > hi {
		lo, hi = hi, lo
	}
	bestT, bestF := b, fb

	for i := 0; i < goldenSectionIters && evals+2 <= budget; i++ {
		mid := (lo + hi) / 2
		left := mid - (hi-lo)/(2*phi)
		right := mid + (hi-lo)/(2*phi)
		fl, fr := eval(left), eval(right)
		if fl < fr {
			hi = right
		} else {
			lo = left
		}
		if fl < bestF {
			bestT, bestF = left, fl
		}
		if fr < bestF {
			bestT, bestF = right, fr
		}
	}

	return at(bestT), bestF, evals
}
