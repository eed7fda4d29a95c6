package posterior

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tpe-go/tpe/filter"
	"github.com/tpe-go/tpe/space"
)

func sampleTrials() []space.Trial {
	trials := make([]space.Trial, 0, 10)
	xs := []float64{-3, -2, -1, 0, 1, 2, 3, 4, 5, 6}
	for i, x := range xs {
		trials = append(trials, space.Trial{
			Tid:    i,
			Spec:   space.Bindings{"x": x},
			Result: space.Result{Status: space.StatusOK, Loss: x * x},
		})
	}
	return trials
}

func TestBuildIsPureFunctionOfInputs(t *testing.T) {
	t.Parallel()
	sp := space.Space{Params: []space.Parameter{{NodeID: "x", Family: space.NormalFamily, Mu: 0, Sigma: 1}}}
	trials := sampleTrials()
	lossIdxs, lossVals := space.Losses(trials)

	g1, err := Build(sp, trials, lossIdxs, lossVals, 0.3, 0.3, filter.Below)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := Build(sp, trials, lossIdxs, lossVals, 0.3, 0.3, filter.Below)
	if err != nil {
		t.Fatal(err)
	}

	probe := []float64{-1, 0, 1, 2}
	lp1 := g1.Posteriors["x"].LPDF(probe)
	lp2 := g2.Posteriors["x"].LPDF(probe)
	if diff := cmp.Diff(lp1, lp2, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Build is not a pure function of its inputs (-first +second):\n%s", diff)
	}
}

func TestLogLikelihoodZeroFillsInactiveParameter(t *testing.T) {
	t.Parallel()
	sp := space.Space{Params: []space.Parameter{
		{NodeID: "choice", Family: space.RandInt, Upper: 2},
		{NodeID: "x", Family: space.NormalFamily, Mu: 0, Sigma: 1, ActiveWhen: func(b space.Bindings) bool {
			return b["choice"] == 0
		}},
	}}
	trials := []space.Trial{
		{Tid: 0, Spec: space.Bindings{"choice": 0, "x": 1}, Result: space.Result{Status: space.StatusOK, Loss: 1}},
		{Tid: 1, Spec: space.Bindings{"choice": 1}, Result: space.Result{Status: space.StatusOK, Loss: 2}},
	}
	lossIdxs, lossVals := space.Losses(trials)
	g, err := Build(sp, trials, lossIdxs, lossVals, 0.5, 0.3, filter.Below)
	if err != nil {
		t.Fatal(err)
	}

	ll, err := g.LogLikelihood(space.Bindings{"choice": 1})
	if err != nil {
		t.Fatal(err)
	}
	// only "choice" is active; "x" is zero-filled (skipped), not an error.
	want := g.Posteriors["choice"].LPDF([]float64{1})[0]
	if ll != want {
		t.Errorf("LogLikelihood = %v, want %v (choice-only contribution)", ll, want)
	}
}
