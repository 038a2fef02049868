// Package vision holds the pixel-level primitives the analysis pipeline works
// on: frames, face regions and the resampling operations between them.
package vision

import (
	"fmt"
	"image"
)

// Channel counts for the two frame layouts in use.
const (
	ChannelsColor = 3
	ChannelsGray  = 1
)

// Frame is an immutable 2-D pixel buffer in row-major order: either RGB
// interleaved (3 channels) or grayscale (1 channel). Operations return new
// frames and never mutate the receiver.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height, channels int) *Frame {
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// FrameFromImage converts a decoded image into an RGB frame.
func FrameFromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy(), ChannelsColor)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			f.Pix[i] = uint8(r >> 8)
			f.Pix[i+1] = uint8(g >> 8)
			f.Pix[i+2] = uint8(bl >> 8)
			i += ChannelsColor
		}
	}
	return f
}

// At returns the value of one channel at (x, y). No bounds checking beyond
// the slice's own.
func (f *Frame) At(x, y, c int) uint8 {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

// Size renders the frame dimensions as "WxH" for result metadata.
func (f *Frame) Size() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

// Gray returns a single-channel luma frame using the ITU-R BT.601 weights
// most detector toolkits use. A grayscale frame is returned as-is.
func (f *Frame) Gray() *Frame {
	if f.Channels == ChannelsGray {
		return f
	}
	out := NewFrame(f.Width, f.Height, ChannelsGray)
	for i, j := 0, 0; i < len(out.Pix); i, j = i+1, j+ChannelsColor {
		r := uint32(f.Pix[j])
		g := uint32(f.Pix[j+1])
		b := uint32(f.Pix[j+2])
		out.Pix[i] = uint8((299*r + 587*g + 114*b) / 1000)
	}
	return out
}

// GrayImage renders a grayscale copy as *image.Gray, the format the pigo
// detector and image encoders consume.
func (f *Frame) GrayImage() *image.Gray {
	g := f.Gray()
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

// Region is a face rectangle within a frame.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Within reports whether the region lies entirely inside the frame and has
// positive area.
func (r Region) Within(f *Frame) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= f.Width && r.Y+r.Height <= f.Height
}

// Crop extracts the region into a new frame with the same channel layout.
func (f *Frame) Crop(r Region) (*Frame, error) {
	if !r.Within(f) {
		return nil, fmt.Errorf("region %+v outside %dx%d frame", r, f.Width, f.Height)
	}
	out := NewFrame(r.Width, r.Height, f.Channels)
	rowLen := r.Width * f.Channels
	for y := 0; y < r.Height; y++ {
		src := ((r.Y+y)*f.Width + r.X) * f.Channels
		copy(out.Pix[y*rowLen:(y+1)*rowLen], f.Pix[src:src+rowLen])
	}
	return out, nil
}

// ResizeArea resamples to the target size with area averaging. Averaging
// over the source footprint of each destination pixel preserves detail when
// decimating, which is the common direction here (face crops down to 48x48,
// capture frames down to the width cap).
func (f *Frame) ResizeArea(width, height int) *Frame {
	if width == f.Width && height == f.Height {
		out := NewFrame(f.Width, f.Height, f.Channels)
		copy(out.Pix, f.Pix)
		return out
	}
	out := NewFrame(width, height, f.Channels)
	xRatio := float64(f.Width) / float64(width)
	yRatio := float64(f.Height) / float64(height)

	for dy := 0; dy < height; dy++ {
		y0 := int(float64(dy) * yRatio)
		y1 := int(float64(dy+1) * yRatio)
		if y1 <= y0 {
			y1 = y0 + 1
		}
		if y1 > f.Height {
			y1 = f.Height
		}
		for dx := 0; dx < width; dx++ {
			x0 := int(float64(dx) * xRatio)
			x1 := int(float64(dx+1) * xRatio)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			if x1 > f.Width {
				x1 = f.Width
			}
			area := (y1 - y0) * (x1 - x0)
			for c := 0; c < f.Channels; c++ {
				sum := 0
				for sy := y0; sy < y1; sy++ {
					for sx := x0; sx < x1; sx++ {
						sum += int(f.At(sx, sy, c))
					}
				}
				out.Pix[(dy*width+dx)*f.Channels+c] = uint8(sum / area)
			}
		}
	}
	return out
}

// CapWidth downscales the frame so its width does not exceed maxWidth,
// keeping the aspect ratio. Frames already within the cap are returned
// unchanged.
func (f *Frame) CapWidth(maxWidth int) *Frame {
	if maxWidth <= 0 || f.Width <= maxWidth {
		return f
	}
	height := f.Height * maxWidth / f.Width
	if height < 1 {
		height = 1
	}
	return f.ResizeArea(maxWidth, height)
}
