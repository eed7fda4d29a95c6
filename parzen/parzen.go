// Package parzen implements the adaptive Parzen estimator Bergstra et al.
// use to turn a set of observed hyperparameter values into a kernel
// density estimate: given a vector of observations and a prior (mean,
// sigma), it produces the (weights, means, sigmas) mixture-model
// parameterization that every distribution adapter samples and scores
// from. Each observation becomes the mean of its own Gaussian component,
// sized by the distance to its farther neighbor rather than a fixed
// bandwidth, plus one extra component carrying the prior.
package parzen

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Mixture is a 1-D Gaussian mixture model: weights, means, and sigmas of
// equal length with sum(weights) == 1, weights >= 0, sigmas > 0.
type Mixture struct {
	Weights []float64
	Means   []float64
	Sigmas  []float64
}

// Estimate builds the adaptive Parzen mixture for obs given priorMu,
// priorSigma, and priorWeight (the multiplicative weight on the
// synthetic prior component).
func Estimate(obs []float64, priorMu, priorSigma, priorWeight float64) Mixture {
	n := len(obs)

	switch n {
	case 0:
		return Mixture{
			Weights: []float64{1},
			Means:   []float64{priorMu},
			Sigmas:  []float64{priorSigma},
		}
	case 1:
		return Mixture{
			Weights: []float64{0.5, 0.5},
			Means:   []float64{obs[0], priorMu},
			Sigmas:  []float64{0.5 * priorSigma, priorSigma},
		}
	}

	// Sort permutation of obs, tracked so the per-point sigma can be
	// unpermuted back into the caller's original order.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return obs[order[i]] < obs[order[j]] })
	sorted := make([]float64, n)
	for i, idx := range order {
		sorted[i] = obs[idx]
	}

	sortedSigma := make([]float64, n)
	for i := 1; i < n-1; i++ {
		sortedSigma[i] = math.Max(sorted[i]-sorted[i-1], sorted[i+1]-sorted[i])
	}
	if n > 2 {
		sortedSigma[0] = sorted[2] - sorted[0]
		sortedSigma[n-1] = sorted[n-1] - sorted[n-3]
	} else {
		sortedSigma[0] = sorted[1] - sorted[0]
		sortedSigma[1] = sorted[1] - sorted[0]
	}

	// Unpermute sigma back into obs order, then append the prior as the
	// (n+1)-th component.
	means := make([]float64, n+1)
	sigmas := make([]float64, n+1)
	for i, idx := range order {
		means[idx] = obs[idx]
		sigmas[idx] = sortedSigma[i]
	}
	means[n] = priorMu
	sigmas[n] = priorSigma

	// Clamp every sigma to [priorSigma/sqrt(n+2), priorSigma] so a cluster
	// of nearly-identical observations can't collapse to a near-zero
	// bandwidth, and no component can be wider than the prior itself.
	lo := priorSigma / math.Sqrt(float64(n+2))
	for i := range sigmas {
		sigmas[i] = math.Min(math.Max(sigmas[i], lo), priorSigma)
	}

	// Weight observations by recency (1, 2, ..., n) and the prior at
	// n*priorWeight, then normalize to sum to 1.
	weights := make([]float64, n+1)
	for i := 0; i < n; i++ {
		weights[i] = float64(i + 1)
	}
	weights[n] = float64(n) * priorWeight
	total := floats.Sum(weights)
	floats.Scale(1/total, weights)

	return Mixture{Weights: weights, Means: means, Sigmas: sigmas}
}
