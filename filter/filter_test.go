package filter

import (
	"testing"
)

func TestSplitSizesAndDisjoint(t *testing.T) {
	t.Parallel()
	lossIdxs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	lossVals := []float64{9, 0, 8, 1, 7, 2, 6, 3, 5, 4}
	gamma := 0.3

	below, err := Split(lossIdxs, lossVals, lossIdxs, lossVals, gamma, Below)
	if err != nil {
		t.Fatal(err)
	}
	above, err := Split(lossIdxs, lossVals, lossIdxs, lossVals, gamma, Above)
	if err != nil {
		t.Fatal(err)
	}

	wantBelow := NBelow(len(lossVals), gamma)
	if len(below) != wantBelow {
		t.Errorf("len(below) = %d, want %d", len(below), wantBelow)
	}
	if len(above) != len(lossVals)-wantBelow {
		t.Errorf("len(above) = %d, want %d", len(above), len(lossVals)-wantBelow)
	}

	seen := map[float64]bool{}
	for _, v := range below {
		seen[v] = true
	}
	for _, v := range above {
		if seen[v] {
			t.Errorf("value %v present on both sides", v)
		}
	}
}

func TestSplitRejectsBadGamma(t *testing.T) {
	t.Parallel()
	if _, err := Split(nil, nil, []int{0}, []float64{1}, 0, Below); err == nil {
		t.Fatal("expected error for gamma=0")
	}
	if _, err := Split(nil, nil, []int{0}, []float64{1}, 1, Below); err == nil {
		t.Fatal("expected error for gamma=1")
	}
}

func TestSplitKeepsOnlyObservedTids(t *testing.T) {
	t.Parallel()
	// Parameter only observed on a subset of tids (conditional activation).
	obsIdxs := []int{1, 3, 4}
	obsVals := []float64{10, 30, 40}
	lossIdxs := []int{0, 1, 2, 3, 4}
	lossVals := []float64{5, 1, 4, 2, 3}

	below, err := Split(obsIdxs, obsVals, lossIdxs, lossVals, 0.4, Below)
	if err != nil {
		t.Fatal(err)
	}
	// below set by loss: tids 1 (loss1), 3(loss2) -> n_below=ceil(0.4*5)=2
	if len(below) != 2 {
		t.Fatalf("len(below) = %d, want 2", len(below))
	}
}
