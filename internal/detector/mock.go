package detector

import (
	"github.com/visioncraft-labs/emoscope/internal/vision"
)

// Mock is a test implementation of Locator. It lets tests control the
// detection outcome.
type Mock struct {
	regions []vision.Region
	err     error
	calls   int
}

// NewMock creates a Mock that detects nothing.
func NewMock() *Mock {
	return &Mock{}
}

// SetRegions sets the regions returned by Locate.
func (m *Mock) SetRegions(regions ...vision.Region) {
	m.regions = regions
}

// SetError sets the error returned by Locate.
func (m *Mock) SetError(err error) {
	m.err = err
}

// Calls reports how many times Locate ran.
func (m *Mock) Calls() int {
	return m.calls
}

func (m *Mock) Locate(frame *vision.Frame) ([]vision.Region, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]vision.Region, 0, len(m.regions))
	for _, r := range m.regions {
		if r.Within(frame) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Mock) Close() error {
	return nil
}

var _ Locator = (*Mock)(nil)
