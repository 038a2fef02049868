// Package quality scores overall image quality with a contrast/brightness
// heuristic. It has no learned component and runs on every frame, including
// ones where no face was found.
package quality

import (
	"math"

	"github.com/visioncraft-labs/emoscope/internal/vision"
)

const (
	// contrastScale maps a grayscale standard deviation of 50 to full
	// contrast credit.
	contrastScale = 50.0
	// brightnessScale maps full 8-bit brightness to full credit.
	brightnessScale = 255.0
	// neutralQuality is reported when assessment cannot run. A cosmetic
	// metric must never fail the analysis that carries it.
	neutralQuality = 0.5
)

// Assess returns a quality score in [0,1]:
// min(1, (stddev/50 + mean/255) / 2) over the grayscale frame. Degenerate
// frames score the neutral 0.5.
func Assess(frame *vision.Frame) float64 {
	if frame == nil || len(frame.Pix) == 0 {
		return neutralQuality
	}

	gray := frame.Gray()
	n := float64(len(gray.Pix))

	var sum float64
	for _, p := range gray.Pix {
		sum += float64(p)
	}
	mean := sum / n

	var varSum float64
	for _, p := range gray.Pix {
		d := float64(p) - mean
		varSum += d * d
	}
	contrast := math.Sqrt(varSum / n)

	q := (contrast/contrastScale + mean/brightnessScale) / 2
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return neutralQuality
	}
	return math.Min(1.0, q)
}
