package grid

import (
	"math"

	"tableflip.dev/lifedots/pkg/lifecal"
)

const (
	// NoHover marks the absence of a hovered cell.
	NoHover = -1

	falloff  = 5.0
	emphasis = 0.5
)

// Distance is the Euclidean distance between two cells laid out in rows of
// WeeksPerYear.
func Distance(a, b int) float64 {
	dr := float64(a/lifecal.WeeksPerYear - b/lifecal.WeeksPerYear)
	dc := float64(a%lifecal.WeeksPerYear - b%lifecal.WeeksPerYear)
	return math.Sqrt(dr*dr + dc*dc)
}

// Weight is the display scale of index while hovered is under the pointer.
// It is 1.5 at the hovered cell and decays toward 1.0.
func Weight(index, hovered int) float64 {
	if hovered < 0 {
		return 1.0
	}
	return 1 + math.Exp(-Distance(index, hovered)/falloff)*emphasis
}

// Weights computes Weight for every index in [0, total).
func Weights(total, hovered int) []float64 {
	out := make([]float64, total)
	for i := range out {
		out[i] = Weight(i, hovered)
	}
	return out
}
