package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visioncraft-labs/emoscope/internal/vision"
)

func solidGray(width, height int, value uint8) *vision.Frame {
	f := vision.NewFrame(width, height, vision.ChannelsGray)
	for i := range f.Pix {
		f.Pix[i] = value
	}
	return f
}

func TestAssess_SolidColorFrame(t *testing.T) {
	// Zero contrast: the score reduces to brightness/255/2.
	f := solidGray(64, 64, 128)
	q := Assess(f)

	assert.InDelta(t, 128.0/255.0/2.0, q, 1e-9)
	assert.GreaterOrEqual(t, q, 0.0)
	assert.LessOrEqual(t, q, 1.0)
}

func TestAssess_BlackFrame(t *testing.T) {
	q := Assess(solidGray(32, 32, 0))
	assert.Equal(t, 0.0, q)
}

func TestAssess_ClampsToOne(t *testing.T) {
	// Alternating black/white maximizes contrast; the raw score exceeds
	// one and must clamp.
	f := vision.NewFrame(64, 1, vision.ChannelsGray)
	for i := range f.Pix {
		if i%2 == 0 {
			f.Pix[i] = 255
		}
	}
	assert.Equal(t, 1.0, Assess(f))
}

func TestAssess_DegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.5, Assess(nil))
	assert.Equal(t, 0.5, Assess(&vision.Frame{}))

	// 1x1 frame is valid input and must not NaN.
	q := Assess(solidGray(1, 1, 200))
	assert.False(t, q != q, "score must not be NaN")
	assert.LessOrEqual(t, q, 1.0)
}

func TestAssess_ColorFrame(t *testing.T) {
	f := vision.NewFrame(8, 8, vision.ChannelsColor)
	for i := range f.Pix {
		f.Pix[i] = 255
	}
	// White frame: zero contrast, full brightness.
	assert.InDelta(t, 0.5, Assess(f), 1e-9)
}
