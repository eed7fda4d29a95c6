// Package ei ties the two posterior graphs together into candidate
// generation and Expected Improvement scoring: draw a candidate from the
// below posterior, score it by the log-density ratio against the above
// posterior (a Monte Carlo estimator of Bergstra et al.'s EI criterion),
// and refine its continuous coordinates with the derivative-free
// optimizer in package optimize.
package ei

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/tpe-go/tpe/errs"
	"github.com/tpe-go/tpe/optimize"
	"github.com/tpe-go/tpe/posterior"
	"github.com/tpe-go/tpe/space"
)

// RefineBudget is the function-evaluation budget given to the Powell
// refinement step.
const RefineBudget = 500

// boundsEps/boundsMax bound the refiner's search box for families with no
// natural finite support.
const (
	boundsEps = 1e-12
	boundsMax = 1e4
	snapEps   = 1e-8
)

// Candidate is a scored, possibly-refined suggestion.
type Candidate struct {
	Bindings space.Bindings
	Score    float64 // ell_below - ell_above; larger is better
}

// Evaluate draws nCandidates samples from below, scores each by EI, and
// returns the best one. When nCandidates == 1 (the common case) the
// winning draw is further refined by Powell's method over its continuous
// coordinates. Refinement only makes sense for a single candidate — with
// more than one, the best of the raw draws is returned unrefined.
func Evaluate(rng *rand.Rand, below, above posterior.Graph, nCandidates int) (Candidate, error) {
	if nCandidates < 1 {
		return Candidate{}, errs.New(errs.InvalidArgument, "nCandidates must be >= 1, got %d", nCandidates)
	}

	best := Candidate{Score: math.Inf(-1)}
	for i := 0; i < nCandidates; i++ {
		b, err := below.Sample(rng)
		if err != nil {
			return Candidate{}, err
		}
		score, err := score(b, below, above)
		if err != nil {
			return Candidate{}, err
		}
		if score > best.Score {
			best = Candidate{Bindings: b, Score: score}
		}
	}

	if nCandidates > 1 {
		return best, nil
	}

	refined, err := refine(rng, best, below, above)
	if err != nil {
		return Candidate{}, err
	}
	return refined, nil
}

func score(b space.Bindings, below, above posterior.Graph) (float64, error) {
	lBelow, err := below.LogLikelihood(b)
	if err != nil {
		return 0, err
	}
	lAbove, err := above.LogLikelihood(b)
	if err != nil {
		return 0, err
	}
	return lBelow - lAbove, nil
}

// refinableParam pairs a continuous parameter with its index into the
// optimizer's coordinate vector.
type refinableParam struct {
	param space.Parameter
	idx   int
}

// refine runs Powell's method over candidate's continuous coordinates
// (every family but randint, which has no derivative to refine along).
// If the refined point escapes its bounds, or scores worse than the
// pre-refinement candidate, refine falls back to that candidate instead.
func refine(rng *rand.Rand, candidate Candidate, below, above posterior.Graph) (Candidate, error) {
	var refinable []refinableParam
	for _, p := range below.Space.Params {
		if !p.Family.IsContinuous() || !p.Active(candidate.Bindings) {
			continue
		}
		refinable = append(refinable, refinableParam{param: p, idx: len(refinable)})
	}
	if len(refinable) == 0 {
		return candidate, nil
	}

	x0 := make([]float64, len(refinable))
	bounds := make([][2]float64, len(refinable))
	for _, rp := range refinable {
		x0[rp.idx] = candidate.Bindings[rp.param.NodeID]
		bounds[rp.idx] = refineBounds(rp.param)
	}

	snap := func(x []float64) space.Bindings {
		b := space.Bindings{}
		for k, v := range candidate.Bindings {
			b[k] = v
		}
		for _, rp := range refinable {
			b[rp.param.NodeID] = snapParam(rp.param, x[rp.idx])
		}
		return b
	}

	objective := func(x []float64) float64 {
		b := snap(x)
		s, err := score(b, below, above)
		if err != nil {
			return 1e15
		}
		return -s // Powell minimizes; EI maximizes.
	}

	result := optimize.Minimize(optimize.Problem{Func: objective, Bounds: bounds}, x0, optimize.Settings{
		FuncEvaluations: RefineBudget,
		PenaltyValue:    1e15,
	})

	refinedBindings := snap(result.X)
	for i, b := range bounds {
		if result.X[i] < b[0] || result.X[i] >= b[1] {
			// Numerical drift escaped bounds; fall back to the pre-refinement candidate.
			return candidate, nil
		}
	}

	refinedScore, err := score(refinedBindings, below, above)
	if err != nil {
		return candidate, nil
	}
	if refinedScore < candidate.Score {
		return candidate, nil
	}
	return Candidate{Bindings: refinedBindings, Score: refinedScore}, nil
}

// refineBounds returns the natural-scale optimizer search box for a
// continuous parameter family: lognormal families use [eps, M], non-log
// normals use [-M, M], uniforms use their own (low, high), and
// log-uniforms use their log-scale (low, high) exponentiated.
func refineBounds(p space.Parameter) [2]float64 {
	switch p.Family {
	case space.Uniform, space.QUniform:
		return [2]float64{p.Low, p.High}
	case space.LogUniform, space.QLogUniform:
		return [2]float64{math.Exp(p.Low), math.Exp(p.High)}
	case space.NormalFamily, space.QNormal:
		return [2]float64{-boundsMax, boundsMax}
	case space.LogNormal, space.QLogNormal:
		return [2]float64{boundsEps, boundsMax}
	default:
		return [2]float64{-boundsMax, boundsMax}
	}
}

// snapParam applies the discretized-coordinate snap ceil(x/q+eps)*q for
// q-prefixed families, and returns x unchanged otherwise.
func snapParam(p space.Parameter, x float64) float64 {
	if p.Q <= 0 {
		return x
	}
	return math.Ceil(x/p.Q+snapEps) * p.Q
}
