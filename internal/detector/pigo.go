package detector

import (
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/visioncraft-labs/emoscope/internal/vision"
)

const (
	// pigoShiftFactor is the window shift as a fraction of its size.
	pigoShiftFactor = 0.1
	// pigoIoUThreshold clusters overlapping detections, playing the role
	// minNeighbors has for the Haar backend.
	pigoIoUThreshold = 0.2
	// pigoQualityThreshold filters low-confidence clusters.
	pigoQualityThreshold = 5.0
)

// Pigo is a pure-Go cascade detector. Unlike the Haar backend it needs no
// OpenCV runtime and the classifier is safe for concurrent use.
type Pigo struct {
	classifier *pigo.Pigo
	cfg        Config
}

// NewPigo unpacks a binary pigo cascade. Failure is a startup configuration
// error.
func NewPigo(cascade []byte, cfg Config) (*Pigo, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("pigo detector config: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpack pigo cascade: %w", err)
	}
	return &Pigo{classifier: classifier, cfg: cfg}, nil
}

// NewPigoFromFile reads and unpacks the cascade at path.
func NewPigoFromFile(path string, cfg Config) (*Pigo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pigo cascade %q: %w", path, err)
	}
	return NewPigo(data, cfg)
}

func (p *Pigo) Locate(frame *vision.Frame) ([]vision.Region, error) {
	gray := frame.Gray()

	maxSize := p.cfg.MaxSize
	if maxSize == 0 {
		maxSize = gray.Width
		if gray.Height > maxSize {
			maxSize = gray.Height
		}
	}

	params := pigo.CascadeParams{
		MinSize:     p.cfg.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: p.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   gray.Height,
			Cols:   gray.Width,
			Dim:    gray.Width,
		},
	}

	dets := p.classifier.RunCascade(params, 0.0)
	dets = p.classifier.ClusterDetections(dets, pigoIoUThreshold)

	regions := make([]vision.Region, 0, len(dets))
	for _, det := range dets {
		if det.Q < pigoQualityThreshold {
			continue
		}
		// pigo reports a center point and scale; convert to the corner
		// form the rest of the pipeline uses.
		region, ok := clamp(vision.Region{
			X:      det.Col - det.Scale/2,
			Y:      det.Row - det.Scale/2,
			Width:  det.Scale,
			Height: det.Scale,
		}, frame)
		if ok {
			regions = append(regions, region)
		}
	}
	sortScanOrder(regions)
	return regions, nil
}

func (p *Pigo) Close() error {
	return nil
}
