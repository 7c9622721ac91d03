package trend

import "math"

// Direction classifies the recent slope of a metric.
type Direction int

const (
	Stagnant Direction = iota
	Up
	Down
)

// SlopeThreshold is the minimum absolute least-squares slope, in the
// series' native units per sample, for a series to count as moving.
// Applied uniformly regardless of metric scale, matching the upstream
// scanner.
const SlopeThreshold = 0.05

// String returns the lowercase name used in display and sort keys.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "stagnant"
	}
}

// Arrow returns the glyph shown next to sparklines.
func (d Direction) Arrow() string {
	switch d {
	case Up:
		return "↗"
	case Down:
		return "↘"
	default:
		return "→"
	}
}

// Classify fits an ordinary least-squares line over the series using
// the sample index as x, and classifies the slope sign against
// SlopeThreshold. Index-based x keeps the result insensitive to
// irregular sampling gaps. Fewer than two points is always Stagnant.
// The function is pure: identical input ordering gives identical
// output.
func Classify(values []float64) Direction {
	n := len(values)
	if n < 2 {
		return Stagnant
	}

	// OLS slope with x = 0..n-1.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return Stagnant
	}
	slope := (fn*sumXY - sumX*sumY) / denom

	if math.Abs(slope) < SlopeThreshold {
		return Stagnant
	}
	if slope > 0 {
		return Up
	}
	return Down
}
