// Package choice implements weighted and uniform categorical sampling. Every
// draw goes through an injected Source so simulations stay reproducible from
// a seed and tests can script exact outcomes.
package choice

import "errors"

// ErrEmptyOrZeroSum is returned when there is nothing to sample from: no
// items, or all weights are zero.
var ErrEmptyOrZeroSum = errors.New("empty or zero-sum weight vector")

// Source yields uniform variates in [0, 1). *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// WeightedChoiceIndex returns an index i with probability
// weights[i] / sum(weights). Weights must be non-negative.
func WeightedChoiceIndex(src Source, weights []float64) (int, error) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if len(weights) == 0 || sum == 0 {
		return 0, ErrEmptyOrZeroSum
	}
	u := src.Float64() * sum
	var acc float64
	for i, w := range weights {
		acc += w
		if u < acc {
			return i, nil
		}
	}
	// Arithmetic cancellation can leave u a hair past the accumulated sum;
	// fall back to the last positively weighted index.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i, nil
		}
	}
	return 0, ErrEmptyOrZeroSum
}

// UniformIndex returns an index in [0, n) with equal probability, the
// equal-weights form of WeightedChoiceIndex.
func UniformIndex(src Source, n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyOrZeroSum
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i, nil
}
