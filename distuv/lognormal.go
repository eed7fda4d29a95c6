package distuv

import (
	"math"

	"golang.org/x/exp/rand"
)

// LogNormal is the distribution of X = exp(Y) for Y ~ Normal(Mu, Sigma).
type LogNormal struct {
	Mu, Sigma float64
	Src       *rand.Rand
}

// Rand returns a random sample drawn from the distribution.
func (l LogNormal) Rand() float64 {
	return math.Exp(l.Mu + l.Sigma*l.Src.NormFloat64())
}
