// Package face implements the descriptor matching engine: pure
// comparison of fixed-length numeric vectors produced by an external
// face extraction capability.
package face

import (
	"fmt"
	"math"

	"github.com/facegate/facegate/pkg/domain"
)

const (
	// DefaultDimensions is the descriptor length used across the system.
	DefaultDimensions = 128

	// DefaultThreshold is the maximum Euclidean distance accepted as a
	// match.
	DefaultThreshold = 0.45
)

// Result is the outcome of a descriptor comparison. Distance is rounded
// to 4 decimal digits for reporting; the match decision uses full
// precision.
type Result struct {
	Match     bool    `json:"match"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// Matcher compares descriptors of a fixed dimensionality against a
// distance threshold. It holds no state and is safe for concurrent use.
type Matcher struct {
	Dimensions int
	Threshold  float64
}

// NewMatcher creates a matcher, applying defaults for zero values.
func NewMatcher(dimensions int, threshold float64) Matcher {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Dimensions: dimensions, Threshold: threshold}
}

// Validate checks that a descriptor has the configured dimensionality
// and contains only finite numbers. Violations are never silently
// coerced.
func (m Matcher) Validate(descriptor []float64) error {
	if len(descriptor) != m.Dimensions {
		return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrMalformedDescriptor, m.Dimensions, len(descriptor))
	}
	for i, v := range descriptor {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: element %d is not a finite number", domain.ErrMalformedDescriptor, i)
		}
	}
	return nil
}

// Compare computes the Euclidean distance between two descriptors and
// reports whether it falls within the threshold. Deterministic for
// identical inputs; performs no I/O.
func (m Matcher) Compare(a, b []float64) (Result, error) {
	if err := m.Validate(a); err != nil {
		return Result{}, err
	}
	if err := m.Validate(b); err != nil {
		return Result{}, err
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	distance := math.Sqrt(sum)

	return Result{
		Match:     distance <= m.Threshold,
		Distance:  roundDistance(distance),
		Threshold: m.Threshold,
	}, nil
}

// roundDistance rounds to 4 decimal digits for logs and responses.
func roundDistance(d float64) float64 {
	return math.Round(d*10000) / 10000
}
