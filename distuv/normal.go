package distuv

import (
	"golang.org/x/exp/rand"
)

// Normal is the normal (Gaussian) distribution, parameterized by mean and
// standard deviation.
type Normal struct {
	Mu, Sigma float64
	Src       *rand.Rand
}

// Rand returns a random sample drawn from the distribution.
func (n Normal) Rand() float64 {
	return n.Mu + n.Sigma*n.Src.NormFloat64()
}
