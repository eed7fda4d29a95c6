// Package adapters implements one distribution adapter per supported
// search-space family: each wraps the adaptive Parzen estimator (package
// parzen) and the GMM1/LGMM1 sampler-and-lpdf pair (package numeric) into
// a posterior sampler + log-density for one parameter, given that
// parameter's filtered observations.
package adapters

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/tpe-go/tpe/errs"
	"github.com/tpe-go/tpe/numeric"
	"github.com/tpe-go/tpe/parzen"
	"github.com/tpe-go/tpe/space"
)

// Posterior is what every adapter produces: a sampler and a log-density
// evaluator over this parameter's posterior, conditioned on the
// observations the adapter was built from.
type Posterior interface {
	// Sample draws one value from the posterior.
	Sample(rng *rand.Rand) (float64, error)
	// LPDF evaluates the log-density of the posterior at each point in xs.
	LPDF(xs []float64) []float64
}

// New builds the Posterior for parameter p given its filtered
// observations obs and the mixture's prior weight.
func New(p space.Parameter, obs []float64, priorWeight float64) (Posterior, error) {
	switch p.Family {
	case space.Uniform:
		return newGMM(obs, (p.Low+p.High)/2, p.High-p.Low, priorWeight, 0, numeric.Bounds{Low: p.Low, High: p.High, Truncated: true}), nil
	case space.QUniform:
		return newGMM(obs, (p.Low+p.High)/2, p.High-p.Low, priorWeight, p.Q, numeric.Bounds{Low: p.Low, High: p.High, Truncated: true}), nil
	case space.LogUniform:
		logObs := logAll(obs)
		priorMu, priorSigma := (p.Low+p.High)/2, p.High-p.Low
		logBounds := numeric.Bounds{Low: p.Low, High: p.High, Truncated: true}
		natBounds := numeric.Bounds{Low: math.Exp(p.Low), High: math.Exp(p.High), Truncated: true}
		return newLGMMBounds(logObs, priorMu, priorSigma, priorWeight, 0, logBounds, natBounds), nil
	case space.QLogUniform:
		logObs := logAll(obs)
		priorMu, priorSigma := (p.Low+p.High)/2, p.High-p.Low
		logBounds := numeric.Bounds{Low: p.Low, High: p.High, Truncated: true}
		natBounds := numeric.Bounds{Low: math.Exp(p.Low), High: math.Exp(p.High), Truncated: true}
		return newLGMMBounds(logObs, priorMu, priorSigma, priorWeight, p.Q, logBounds, natBounds), nil
	case space.NormalFamily:
		return newGMM(obs, p.Mu, p.Sigma, priorWeight, 0, numeric.Bounds{}), nil
	case space.QNormal:
		return newGMM(obs, p.Mu, p.Sigma, priorWeight, p.Q, numeric.Bounds{}), nil
	case space.LogNormal:
		logObs := logAll(obs)
		return newLGMMBounds(logObs, p.Mu, p.Sigma, priorWeight, 0, numeric.Bounds{}, numeric.Bounds{}), nil
	case space.QLogNormal:
		logObs := logAll(obs)
		return newLGMMBounds(logObs, p.Mu, p.Sigma, priorWeight, p.Q, numeric.Bounds{}, numeric.Bounds{}), nil
	case space.RandInt:
		return newRandInt(obs, p.Upper, priorWeight), nil
	default:
		return nil, errs.New(errs.Unsupported, "unknown distribution family %q", p.Family)
	}
}

func logAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = math.Log(math.Max(x, numeric.Eps))
	}
	return out
}

// gmm is the Posterior for the non-log families (uniform/quniform/normal/
// qnormal): a GMM1 mixture built by the adaptive Parzen estimator.
type gmm struct {
	mixture parzen.Mixture
	q       float64
	bounds  numeric.Bounds
}

func newGMM(obs []float64, priorMu, priorSigma, priorWeight, q float64, bounds numeric.Bounds) Posterior {
	return gmm{
		mixture: parzen.Estimate(obs, priorMu, priorSigma, priorWeight),
		q:       q,
		bounds:  bounds,
	}
}

func (g gmm) Sample(rng *rand.Rand) (float64, error) {
	return numeric.GMM1Sample(rng, g.mixture.Weights, g.mixture.Means, g.mixture.Sigmas, g.q, g.bounds)
}

func (g gmm) LPDF(xs []float64) []float64 {
	return numeric.GMM1LPDF(xs, g.mixture.Weights, g.mixture.Means, g.mixture.Sigmas, g.q, g.bounds)
}

// lgmm is the Posterior for the log families (loguniform/qloguniform/
// lognormal/qlognormal): an LGMM1 mixture built from log-space
// observations, since a log-uniform or log-normal prior is, by
// definition, a normal distribution over log(x).
//
// logBounds and natBounds carry the same support expressed in the two
// scales the sampler and the density need it in: LGMM1Sample rejects on
// the log-scale draw (logBounds) before exponentiating it, while
// LGMM1LPDF integrates the density directly over natural-scale x
// (natBounds). The two differ by an exp() for the log-uniform families
// and are both empty for the unbounded lognormal families.
type lgmm struct {
	mixture   parzen.Mixture
	q         float64
	logBounds numeric.Bounds
	natBounds numeric.Bounds
}

func newLGMMBounds(logObs []float64, priorMu, priorSigma, priorWeight, q float64, logBounds, natBounds numeric.Bounds) Posterior {
	return lgmm{
		mixture:   parzen.Estimate(logObs, priorMu, priorSigma, priorWeight),
		q:         q,
		logBounds: logBounds,
		natBounds: natBounds,
	}
}

func (l lgmm) Sample(rng *rand.Rand) (float64, error) {
	return numeric.LGMM1Sample(rng, l.mixture.Weights, l.mixture.Means, l.mixture.Sigmas, l.q, l.logBounds)
}

func (l lgmm) LPDF(xs []float64) []float64 {
	return numeric.LGMM1LPDF(xs, l.mixture.Weights, l.mixture.Means, l.mixture.Sigmas, l.q, l.natBounds)
}

// randIntPosterior is the categorical adapter for randint: a bincount
// over obs with a priorWeight pseudocount added to every bin, normalized,
// sampled categorically.
type randIntPosterior struct {
	probs []float64
}

func newRandInt(obs []float64, upper int, priorWeight float64) Posterior {
	counts := make([]float64, upper)
	for _, o := range obs {
		k := int(o)
		if k >= 0 && k < upper {
			counts[k]++
		}
	}
	total := 0.0
	for k := range counts {
		counts[k] += priorWeight
		total += counts[k]
	}
	for k := range counts {
		counts[k] /= total
	}
	return randIntPosterior{probs: counts}
}

func (r randIntPosterior) Sample(rng *rand.Rand) (float64, error) {
	target := rng.Float64()
	cum := 0.0
	for k, p := range r.probs {
		cum += p
		if target < cum {
			return float64(k), nil
		}
	}
	return float64(len(r.probs) - 1), nil
}

func (r randIntPosterior) LPDF(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		k := int(x)
		if k < 0 || k >= len(r.probs) {
			out[i] = math.Inf(-1)
			continue
		}
		out[i] = math.Log(math.Max(r.probs[k], numeric.Eps))
	}
	return out
}
