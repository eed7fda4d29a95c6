// Package posterior builds the below_gamma and above_gamma posterior
// graphs a tree-structured Parzen estimator scores candidates against: a
// direct flat table of parameter_id -> adapters.Posterior, built by
// walking space.Space once per side and filtering each parameter's
// observations through package filter. Conditional activation is carried
// directly by space.Parameter.ActiveWhen and consulted by the
// log-likelihood assembler below.
package posterior

import (
	"golang.org/x/exp/rand"

	"github.com/tpe-go/tpe/adapters"
	"github.com/tpe-go/tpe/errs"
	"github.com/tpe-go/tpe/filter"
	"github.com/tpe-go/tpe/space"
)

// Graph is one side (below_gamma or above_gamma) of the posterior
// construction: a Posterior per parameter node id, keyed the same way
// the source's post_idxs/post_vals nodes were keyed by node id.
type Graph struct {
	Space      space.Space
	Posteriors map[string]adapters.Posterior
}

// Build constructs one posterior Graph for the given side, given the full
// trial history, the global loss (tid, loss) pairs, gamma, and
// prior_weight. Called once for each side of the gamma split.
func Build(sp space.Space, trials []space.Trial, lossIdxs []int, lossVals []float64, gamma, priorWeight float64, side filter.Side) (Graph, error) {
	posteriors := make(map[string]adapters.Posterior, len(sp.Params))
	for _, p := range sp.Params {
		obsIdxs, obsVals := space.Observe(trials, p.NodeID)
		filtered, err := filter.Split(obsIdxs, obsVals, lossIdxs, lossVals, gamma, side)
		if err != nil {
			return Graph{}, err
		}
		post, err := adapters.New(p, filtered, priorWeight)
		if err != nil {
			return Graph{}, err
		}
		posteriors[p.NodeID] = post
	}
	return Graph{Space: sp, Posteriors: posteriors}, nil
}

// LogLikelihood scores a single candidate binding under this graph's
// posteriors: the sum of LPDF contributions from every parameter active
// at that binding, with inactive parameters simply skipped rather than
// penalized.
func (g Graph) LogLikelihood(b space.Bindings) (float64, error) {
	total := 0.0
	for _, p := range g.Space.Params {
		if !p.Active(b) {
			continue
		}
		v, ok := b[p.NodeID]
		if !ok {
			return 0, errs.New(errs.InvalidArgument, "binding missing active parameter %q", p.NodeID)
		}
		post, ok := g.Posteriors[p.NodeID]
		if !ok {
			return 0, errs.New(errs.InvalidArgument, "no posterior built for parameter %q", p.NodeID)
		}
		total += post.LPDF([]float64{v})[0]
	}
	return total, nil
}

// Sample draws one full candidate binding from every active parameter's
// posterior, honoring conditional activation the way space.SampleSpace
// does.
func (g Graph) Sample(rng *rand.Rand) (space.Bindings, error) {
	b := make(space.Bindings, len(g.Space.Params))
	for _, p := range g.Space.Params {
		if !p.Active(b) {
			continue
		}
		post, ok := g.Posteriors[p.NodeID]
		if !ok {
			return nil, errs.New(errs.InvalidArgument, "no posterior built for parameter %q", p.NodeID)
		}
		v, err := post.Sample(rng)
		if err != nil {
			return nil, err
		}
		b[p.NodeID] = v
	}
	return b, nil
}
