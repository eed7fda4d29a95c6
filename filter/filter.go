// Package filter splits a parameter's observations into "below" and
// "above" a loss quantile gamma, preserving tid order within each side.
package filter

import (
	"math"
	"sort"

	"github.com/tpe-go/tpe/errs"
)

// Side selects which half of the gamma split to keep.
type Side int

// Supported sides.
const (
	Below Side = iota
	Above
)

// Split partitions lossIdxs (sorted ascending by lossVals) into the
// n_below = ceil(gamma*len(lossVals)) lowest-loss tids and the remainder,
// then returns, in ascending tid order, the observation values from
// (obsIdxs, obsVals) whose tid falls on the requested side. Ties in loss
// are broken by whatever stable position the tid had in lossIdxs;
// callers must not depend on that order.
func Split(obsIdxs []int, obsVals []float64, lossIdxs []int, lossVals []float64, gamma float64, side Side) ([]float64, error) {
	if gamma <= 0 || gamma >= 1 {
		return nil, errs.New(errs.InvalidArgument, "gamma must be in (0, 1), got %v", gamma)
	}
	if len(obsIdxs) != len(obsVals) {
		return nil, errs.New(errs.InvalidArgument, "obsIdxs/obsVals length mismatch: %d != %d", len(obsIdxs), len(obsVals))
	}

	order := make([]int, len(lossIdxs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return lossVals[order[i]] < lossVals[order[j]] })

	nBelow := int(math.Ceil(gamma * float64(len(lossVals))))
	inBelow := make(map[int]bool, nBelow)
	for _, i := range order[:nBelow] {
		inBelow[lossIdxs[i]] = true
	}

	var kept []int
	for _, tid := range obsIdxs {
		want := inBelow[tid]
		if side == Above {
			want = !want
		}
		if want {
			kept = append(kept, tid)
		}
	}

	idxOf := make(map[int]int, len(obsIdxs))
	for i, tid := range obsIdxs {
		idxOf[tid] = i
	}
	sort.Ints(kept)

	out := make([]float64, len(kept))
	for i, tid := range kept {
		out[i] = obsVals[idxOf[tid]]
	}
	return out, nil
}

// NBelow returns ceil(gamma*n), the size of the "below" loss set,
// exposed for callers that need it without performing a split.
func NBelow(n int, gamma float64) int {
	return int(math.Ceil(gamma * float64(n)))
}
