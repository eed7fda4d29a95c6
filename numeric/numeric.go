// Package numeric implements the Gaussian and log-Gaussian primitives a
// tree-structured Parzen estimator is built on: normal/lognormal CDF and
// log-density, a numerically stable row-wise logsumexp, and a pair of
// truncated, optionally discretized Gaussian (GMM1) and log-Gaussian
// (LGMM1) mixture samplers with matching log-density evaluators.
package numeric

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tpe-go/tpe/errs"
)

// Eps is the floor used to keep sigmas and log arguments away from zero.
const Eps = 1e-12

// MaxRejectionAttempts bounds the truncated-rejection sampling loop in
// GMM1Sample/LGMM1Sample before it fails with a Degenerate error.
const MaxRejectionAttempts = 1e4

// NormalCDF returns Φ((x-mu)/sigma), with sigma lower-clamped to Eps.
func NormalCDF(x, mu, sigma float64) float64 {
	sigma = math.Max(sigma, Eps)
	return 0.5 * (1 + math.Erf((x-mu)/(sigma*math.Sqrt2)))
}

// NormalLPDF returns the log-density of N(mu, sigma) at x.
func NormalLPDF(x, mu, sigma float64) float64 {
	sigma = math.Max(sigma, Eps)
	z := (x - mu) / sigma
	return -0.5*z*z - math.Log(sigma*math.Sqrt(2*math.Pi))
}

// LognormalCDF returns the CDF of a lognormal(mu, sigma) at x. x must be
// non-negative; values below Eps are clamped to Eps before taking the log,
// so the result is approximately 0 rather than NaN. A negative x is an
// InvalidArgument error.
func LognormalCDF(x, mu, sigma float64) (float64, error) {
	if x < 0 {
		return 0, errs.New(errs.InvalidArgument, "lognormal_cdf: x must be non-negative, got %v", x)
	}
	return NormalCDF(math.Log(math.Max(x, Eps)), mu, sigma), nil
}

// LognormalLPDF returns ln p(x) for x ~ lognormal(mu, sigma), x > 0.
func LognormalLPDF(x, mu, sigma float64) float64 {
	sigma = math.Max(sigma, Eps)
	x = math.Max(x, Eps)
	z := (math.Log(x) - mu) / sigma
	return -0.5*z*z - math.Log(sigma*x*math.Sqrt(2*math.Pi))
}

// QLognormalLPDF returns ln P(x-q < X <= x) for X ~ lognormal(mu,
// sigma) quantized on a grid of step q, computed as the log of the CDF
// difference over [x-q, x]. When q is small relative to x the direct
// subtraction loses precision; in that regime the interval mass is
// approximated via the local density times q instead of differencing two
// nearly-equal CDF values.
func QLognormalLPDF(x, mu, sigma, q float64) float64 {
	if q/math.Max(x, Eps) < 1e-4 {
		// The two CDFs are too close together to subtract safely;
		// fall back to density * width, which is what the CDF
		// difference converges to as q shrinks.
		return LognormalLPDF(x, mu, sigma) + math.Log(q)
	}
	hi, err := LognormalCDF(x, mu, sigma)
	if err != nil {
		hi = 0
	}
	lo, err := LognormalCDF(x-q, mu, sigma)
	if err != nil {
		lo = 0
	}
	return math.Log(math.Max(hi-lo, Eps))
}

// LogSumExpRows computes, for each row of m, log(sum(exp(row))), using the
// subtract-the-row-max trick so it neither overflows nor underflows for
// rows spanning [-1e300, 1e300]. Mirrors gonum/floats.LogSumExp applied
// row-wise over a *mat.Dense rather than a single slice.
func LogSumExpRows(m *mat.Dense) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = floats.LogSumExp(mat.Row(nil, i, m))
	}
	return out
}

// Bounds expresses an optional truncation window; Truncated reports
// whether the window is active (Low < High).
type Bounds struct {
	Low, High float64
	Truncated bool
}

// GMM1Sample draws one sample from a 1-D Gaussian mixture with the given
// component weights, means, and sigmas. When q > 0 the draw is rounded up
// to a multiple of q (floored at q). When bounds.Truncated, the
// draw is rejection-sampled until it lands in [bounds.Low, bounds.High),
// failing with a Degenerate error after MaxRejectionAttempts tries.
func GMM1Sample(rng *rand.Rand, weights, means, sigmas []float64, q float64, bounds Bounds) (float64, error) {
	draw := func() float64 {
		k := categoricalDraw(rng, weights)
		x := means[k] + sigmas[k]*rng.NormFloat64()
		if q > 0 {
			x = math.Max(math.Ceil(x/q)*q, q)
		}
		return x
	}
	if !bounds.Truncated {
		return draw(), nil
	}
	for attempt := 0; attempt < MaxRejectionAttempts; attempt++ {
		x := draw()
		if x >= bounds.Low && x < bounds.High {
			return x, nil
		}
	}
	return 0, errs.New(errs.Degenerate, "GMM1Sample: exceeded %v rejection attempts", MaxRejectionAttempts)
}

// GMM1LPDF evaluates the log-density of the mixture described by weights,
// means, sigmas at every point in xs. If q > 0 the mixture is treated as
// discretized on a grid of step q and the exact interval mass
// w_k*(Φ(x)-Φ(x-q)) is used instead of the continuous density. bounds, if
// Truncated, renormalizes by the mixture's total acceptance probability.
func GMM1LPDF(xs, weights, means, sigmas []float64, q float64, bounds Bounds) []float64 {
	n, k := len(xs), len(weights)

	pAccept := 1.0
	if bounds.Truncated {
		pAccept = 0
		for j := 0; j < k; j++ {
			pAccept += weights[j] * (NormalCDF(bounds.High, means[j], sigmas[j]) - NormalCDF(bounds.Low, means[j], sigmas[j]))
		}
		pAccept = math.Max(pAccept, Eps)
	}

	if q > 0 {
		out := make([]float64, n)
		for s := 0; s < n; s++ {
			mass := 0.0
			for j := 0; j < k; j++ {
				mass += weights[j] * (NormalCDF(xs[s], means[j], sigmas[j]) - NormalCDF(xs[s]-q, means[j], sigmas[j]))
			}
			out[s] = math.Log(math.Max(mass/pAccept, Eps))
		}
		return out
	}

	m := mat.NewDense(n, k, nil)
	for s := 0; s < n; s++ {
		for j := 0; j < k; j++ {
			z := (xs[s] - means[j]) / sigmas[j]
			logCoef := math.Log(weights[j]/(sigmas[j]*math.Sqrt(2*math.Pi))) - math.Log(pAccept)
			m.Set(s, j, logCoef-0.5*z*z)
		}
	}
	return LogSumExpRows(m)
}

// LGMM1Sample draws one sample from the log-space mixture, i.e. exp(x)
// where x ~ GMM1(weights, means, sigmas). q, if positive, is applied in
// natural scale to the exponentiated draw. bounds, if Truncated, are
// compared against the *log-scale* draw before exponentiation, since that
// is the variable the underlying normal mixture is actually drawn on.
func LGMM1Sample(rng *rand.Rand, weights, means, sigmas []float64, q float64, bounds Bounds) (float64, error) {
	draw := func() (float64, float64) {
		k := categoricalDraw(rng, weights)
		logX := means[k] + sigmas[k]*rng.NormFloat64()
		x := math.Exp(logX)
		if q > 0 {
			x = math.Max(math.Ceil(x/q)*q, q)
		}
		return logX, x
	}
	if !bounds.Truncated {
		_, x := draw()
		return x, nil
	}
	for attempt := 0; attempt < MaxRejectionAttempts; attempt++ {
		logX, x := draw()
		if logX >= bounds.Low && logX < bounds.High {
			return x, nil
		}
	}
	return 0, errs.New(errs.Degenerate, "LGMM1Sample: exceeded %v rejection attempts", MaxRejectionAttempts)
}

// LGMM1LPDF evaluates the log-density of the lognormal mixture at every
// point in xs (natural scale). bounds, when Truncated, are natural-scale
// bounds on x, since the density itself (unlike LGMM1Sample's rejection
// test) is expressed as a natural-scale integral over x.
func LGMM1LPDF(xs, weights, means, sigmas []float64, q float64, bounds Bounds) []float64 {
	n, k := len(xs), len(weights)

	pAccept := 1.0
	if bounds.Truncated {
		pAccept = 0
		for j := 0; j < k; j++ {
			hi, errHi := LognormalCDF(bounds.High, means[j], sigmas[j])
			lo, errLo := LognormalCDF(bounds.Low, means[j], sigmas[j])
			if errHi != nil {
				hi = 1
			}
			if errLo != nil {
				lo = 0
			}
			pAccept += weights[j] * (hi - lo)
		}
		pAccept = math.Max(pAccept, Eps)
	}

	out := make([]float64, n)
	for s := 0; s < n; s++ {
		if xs[s] <= 0 {
			out[s] = math.Inf(-1)
			continue
		}
		if q > 0 {
			m := mat.NewDense(1, k, nil)
			for j := 0; j < k; j++ {
				hi, _ := LognormalCDF(xs[s], means[j], sigmas[j])
				lo, _ := LognormalCDF(math.Max(xs[s]-q, 0), means[j], sigmas[j])
				mass := weights[j] * (hi - lo)
				m.Set(0, j, math.Log(math.Max(mass, Eps))-math.Log(pAccept))
			}
			out[s] = floats.LogSumExp(mat.Row(nil, 0, m))
			continue
		}
		m := mat.NewDense(1, k, nil)
		for j := 0; j < k; j++ {
			m.Set(0, j, LognormalLPDF(xs[s], means[j], sigmas[j])+math.Log(weights[j])-math.Log(pAccept))
		}
		out[s] = floats.LogSumExp(mat.Row(nil, 0, m))
	}
	return out
}

// categoricalDraw picks an index k with probability proportional to
// weights[k]; weights need not be pre-normalized.
func categoricalDraw(rng *rand.Rand, weights []float64) int {
	total := floats.Sum(weights)
	target := rng.Float64() * total
	cum := 0.0
	for k, w := range weights {
		cum += w
		if target < cum {
			return k
		}
	}
	return len(weights) - 1
}
