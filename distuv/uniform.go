package distuv

import (
	"golang.org/x/exp/rand"
)

// Uniform is the continuous uniform distribution over [Low, High).
type Uniform struct {
	Low, High float64
	Src       *rand.Rand
}

// Rand returns a random sample drawn from the distribution.
func (u Uniform) Rand() float64 {
	return u.Low + u.Src.Float64()*(u.High-u.Low)
}
