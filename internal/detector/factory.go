package detector

import (
	"fmt"
)

// Backend names accepted by New.
const (
	TypeHaar = "haar"
	TypePigo = "pigo"
	TypeMock = "mock"
)

// Options selects and configures a detector backend.
type Options struct {
	// Type is one of the Type* constants.
	Type string

	// CascadePath points at the cascade artifact: an OpenCV XML file for
	// haar, a binary pigo cascade for pigo.
	CascadePath string

	Config Config
}

// New builds the configured Locator. Any load failure here is fatal for the
// process; analysis must not start without a working detector.
func New(opts Options) (Locator, error) {
	switch opts.Type {
	case TypeHaar:
		return NewHaar(opts.CascadePath, opts.Config)
	case TypePigo:
		return NewPigoFromFile(opts.CascadePath, opts.Config)
	case TypeMock:
		m := NewMock()
		m.SetRegions()
		return m, nil
	default:
		return nil, fmt.Errorf("unknown detector type %q", opts.Type)
	}
}
