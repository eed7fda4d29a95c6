package distuv

import (
	"golang.org/x/exp/rand"
)

// RandInt is the discrete uniform distribution over {0, ..., Upper-1}.
type RandInt struct {
	Upper int
	Src   *rand.Rand
}

// Rand returns a random sample drawn from the distribution.
func (r RandInt) Rand() int {
	return r.Src.Intn(r.Upper)
}
