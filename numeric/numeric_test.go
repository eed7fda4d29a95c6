package numeric

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

func TestNormalCDFMonotone(t *testing.T) {
	t.Parallel()
	prev := NormalCDF(-5, 0, 1)
	for x := -4.0; x <= 5; x++ {
		cur := NormalCDF(x, 0, 1)
		if cur < prev {
			t.Fatalf("NormalCDF not monotone at x=%v: %v < %v", x, cur, prev)
		}
		prev = cur
	}
	if !scalar.EqualWithinAbsOrRel(NormalCDF(0, 0, 1), 0.5, 1e-9, 1e-9) {
		t.Errorf("NormalCDF(0,0,1) = %v, want 0.5", NormalCDF(0, 0, 1))
	}
}

func TestLognormalCDFNegativeInput(t *testing.T) {
	t.Parallel()
	if _, err := LognormalCDF(-1, 0, 1); err == nil {
		t.Fatal("expected error for negative x")
	}
}

func TestLogSumExpRowsAgreesWithNaive(t *testing.T) {
	t.Parallel()
	cases := [][]float64{
		{1, 2, 3, 4, 5},
		{-1001, -1002, -1003, -1004, -1005},
		{1, 2},
	}
	for _, row := range cases {
		m := rowMatrix(row)
		got := LogSumExpRows(m)[0]
		naive := naiveLogSumExp(row)
		if math.Abs(got-naive) > 1e-9 {
			t.Errorf("LogSumExpRows(%v) = %v, want %v", row, got, naive)
		}
	}
}

func TestLogSumExpRowsNoOverflow(t *testing.T) {
	t.Parallel()
	row := []float64{1e300, -1e300, 500}
	got := LogSumExpRows(rowMatrix(row))[0]
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("LogSumExpRows produced non-finite result: %v", got)
	}
}

// A properly normalized density integrates to 1 over its support; check
// that truncation renormalizes GMM1LPDF rather than merely masking it.
func TestGMM1LPDFIntegratesToOne(t *testing.T) {
	t.Parallel()
	weights := []float64{1}
	means := []float64{0}
	sigmas := []float64{1}
	bounds := Bounds{Low: -3, High: 3, Truncated: true}

	const n = 6000
	step := (bounds.High - bounds.Low) / n
	total := 0.0
	for i := 0; i < n; i++ {
		x := bounds.Low + (float64(i)+0.5)*step
		lp := GMM1LPDF([]float64{x}, weights, means, sigmas, 0, bounds)[0]
		total += math.Exp(lp) * step
	}
	if math.Abs(total-1) > 1e-3 {
		t.Errorf("truncated GMM1 density integrates to %v, want ~1", total)
	}
}

// GMM1Sample's empirical histogram should match the density GMM1LPDF
// assigns to each bin; checked via a coarse histogram with a loose
// tolerance to keep the unit test fast.
func TestGMM1SampleMatchesLPDF(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	weights := []float64{0.3, 0.7}
	means := []float64{-1, 1}
	sigmas := []float64{0.5, 0.5}

	const nSamples = 20000
	const nBins = 20
	lo, hi := -4.0, 4.0
	counts := make([]float64, nBins)
	for i := 0; i < nSamples; i++ {
		x, err := GMM1Sample(rng, weights, means, sigmas, 0, Bounds{})
		if err != nil {
			t.Fatalf("GMM1Sample: %v", err)
		}
		if x < lo || x >= hi {
			continue
		}
		b := int((x - lo) / (hi - lo) * nBins)
		counts[b]++
	}
	binWidth := (hi - lo) / nBins
	for b := 0; b < nBins; b++ {
		mid := lo + (float64(b)+0.5)*binWidth
		lp := GMM1LPDF([]float64{mid}, weights, means, sigmas, 0, Bounds{})[0]
		expected := math.Exp(lp) * binWidth * nSamples
		empirical := counts[b]
		if expected > 50 && math.Abs(empirical-expected)/expected > 0.25 {
			t.Errorf("bin %d: empirical=%v expected=%v", b, empirical, expected)
		}
	}
}

// LGMM1 samples are strictly positive and respect natural-scale bounds
// under truncation.
func TestLGMM1SamplePositiveAndBounded(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(2))
	weights := []float64{1}
	means := []float64{0}
	sigmas := []float64{1}
	bounds := Bounds{Low: math.Log(1e-2), High: math.Log(10), Truncated: true}

	for i := 0; i < 500; i++ {
		x, err := LGMM1Sample(rng, weights, means, sigmas, 0, bounds)
		if err != nil {
			t.Fatalf("LGMM1Sample: %v", err)
		}
		if x <= 0 {
			t.Fatalf("LGMM1Sample produced non-positive value %v", x)
		}
		if x < 1e-2 || x >= 10 {
			t.Fatalf("LGMM1Sample escaped bounds: %v", x)
		}
	}
}

func TestGMM1SampleRejectionBudgetExceeded(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	weights := []float64{1}
	means := []float64{1000}
	sigmas := []float64{0.01}
	bounds := Bounds{Low: -1, High: 1, Truncated: true}

	_, err := GMM1Sample(rng, weights, means, sigmas, 0, bounds)
	if err == nil {
		t.Fatal("expected Degenerate error for an unreachable truncation window")
	}
}

func rowMatrix(row []float64) *mat.Dense {
	return mat.NewDense(1, len(row), append([]float64(nil), row...))
}

func naiveLogSumExp(row []float64) float64 {
	max := row[0]
	for _, v := range row {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, 1) {
		return max
	}
	sum := 0.0
	for _, v := range row {
		sum += math.Exp(v - max)
	}
	return max + math.Log(sum)
}
