package detector

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/visioncraft-labs/emoscope/internal/vision"
)

// Haar wraps an OpenCV Haar cascade classifier. The classifier object is not
// safe for concurrent detection, so calls are serialized behind a mutex.
type Haar struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	cfg        Config
	closed     bool
}

// NewHaar loads the cascade file at path. A missing or empty cascade is a
// configuration error reported at startup, never per request.
func NewHaar(path string, cfg Config) (*Haar, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("haar detector config: %w", err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		_ = classifier.Close()
		return nil, fmt.Errorf("load haar cascade %q", path)
	}

	return &Haar{classifier: classifier, cfg: cfg}, nil
}

func (h *Haar) Locate(frame *vision.Frame) ([]vision.Region, error) {
	gray := frame.Gray()

	mat, err := gocv.NewMatFromBytes(gray.Height, gray.Width, gocv.MatTypeCV8U, gray.Pix)
	if err != nil {
		return nil, fmt.Errorf("frame to mat: %w", err)
	}
	defer mat.Close()

	maxSize := h.cfg.MaxSize
	if maxSize == 0 {
		maxSize = gray.Width
		if gray.Height > maxSize {
			maxSize = gray.Height
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("haar detector is closed")
	}
	rects := h.classifier.DetectMultiScaleWithParams(
		mat,
		h.cfg.ScaleFactor,
		h.cfg.MinNeighbors,
		0,
		image.Pt(h.cfg.MinSize, h.cfg.MinSize),
		image.Pt(maxSize, maxSize),
	)
	h.mu.Unlock()

	regions := make([]vision.Region, 0, len(rects))
	for _, r := range rects {
		region, ok := clamp(vision.Region{
			X:      r.Min.X,
			Y:      r.Min.Y,
			Width:  r.Dx(),
			Height: r.Dy(),
		}, frame)
		if ok {
			regions = append(regions, region)
		}
	}
	sortScanOrder(regions)
	return regions, nil
}

func (h *Haar) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.classifier.Close()
}
