// Package detector finds face rectangles in frames. Two implementations are
// provided: a Haar cascade backed by OpenCV and a pure-Go pigo cascade for
// deployments without the OpenCV runtime.
package detector

import (
	"fmt"
	"sort"

	"github.com/visioncraft-labs/emoscope/internal/vision"
)

// Locator runs a multi-scale face detector over a frame. An empty result is
// a normal outcome, not an error; errors are reserved for detector-level
// failures. Regions come back in scan order, top-left to bottom-right.
type Locator interface {
	Locate(frame *vision.Frame) ([]vision.Region, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds the sliding-window parameters shared by both cascade
// implementations.
type Config struct {
	// ScaleFactor is the per-step window growth, e.g. 1.1. Values closer
	// to 1 trade speed for recall.
	ScaleFactor float64

	// MinNeighbors is the number of overlapping detections required to
	// keep a candidate (Haar only; pigo clusters by IoU instead).
	MinNeighbors int

	// MinSize and MaxSize bound the face rectangle side length in pixels.
	// MaxSize 0 means unbounded.
	MinSize int
	MaxSize int
}

// DefaultConfig returns the baseline parameters used for still-image
// analysis.
func DefaultConfig() Config {
	return Config{
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinSize:      30,
		MaxSize:      300,
	}
}

// StreamingConfig returns the tuned parameters for live feeds: a finer
// scale step for accuracy on small frames, fewer neighbors for speed, and a
// larger minimum size to skip background faces.
func StreamingConfig() Config {
	return Config{
		ScaleFactor:  1.05,
		MinNeighbors: 3,
		MinSize:      40,
		MaxSize:      300,
	}
}

func (c Config) validate() error {
	if c.ScaleFactor <= 1.0 {
		return fmt.Errorf("scale factor must be > 1.0, got %f", c.ScaleFactor)
	}
	if c.MinSize <= 0 {
		return fmt.Errorf("min size must be positive, got %d", c.MinSize)
	}
	if c.MaxSize != 0 && c.MaxSize < c.MinSize {
		return fmt.Errorf("max size %d below min size %d", c.MaxSize, c.MinSize)
	}
	return nil
}

// sortScanOrder orders regions top-left to bottom-right so the "first face"
// choice downstream is stable across detector backends.
func sortScanOrder(regions []vision.Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Y != regions[j].Y {
			return regions[i].Y < regions[j].Y
		}
		return regions[i].X < regions[j].X
	})
}

// clamp fits a region inside the frame, dropping it when nothing remains.
func clamp(r vision.Region, f *vision.Frame) (vision.Region, bool) {
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.X+r.Width > f.Width {
		r.Width = f.Width - r.X
	}
	if r.Y+r.Height > f.Height {
		r.Height = f.Height - r.Y
	}
	if r.Width <= 0 || r.Height <= 0 {
		return vision.Region{}, false
	}
	return r, true
}
