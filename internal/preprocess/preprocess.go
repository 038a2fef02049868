// Package preprocess turns a detected face region into the fixed-size
// normalized tensor the emotion model consumes.
package preprocess

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"math"

	"github.com/visioncraft-labs/emoscope/internal/vision"
)

// Size is the model input side length: faces are resized to Size x Size
// single-channel tensors.
const Size = 48

// Tensor is a normalized grayscale face, values in [0,1], row-major.
// Immutable once constructed; it serves as model input and cache key
// material.
type Tensor struct {
	Width  int
	Height int
	Data   []float32
}

// Prepare crops the region, converts to grayscale, resizes with area
// averaging and normalizes to [0,1]. The fixed step order keeps the output
// bit-identical for identical input bytes.
func Prepare(frame *vision.Frame, region vision.Region) (*Tensor, error) {
	face, err := frame.Crop(region)
	if err != nil {
		return nil, fmt.Errorf("crop face: %w", err)
	}

	gray := face.Gray().ResizeArea(Size, Size)

	t := &Tensor{
		Width:  Size,
		Height: Size,
		Data:   make([]float32, Size*Size),
	}
	for i, p := range gray.Pix {
		t.Data[i] = float32(p) / 255.0
	}
	return t, nil
}

// Bytes returns the tensor's canonical byte representation: each value as a
// little-endian IEEE 754 float32, row-major. This form is what gets hashed,
// so fingerprints are reproducible across processes and platforms.
func (t *Tensor) Bytes() []byte {
	out := make([]byte, len(t.Data)*4)
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Fingerprint is the hex SHA-256 of the canonical byte representation, used
// as the inference cache key.
func (t *Tensor) Fingerprint() string {
	sum := sha256.Sum256(t.Bytes())
	return hex.EncodeToString(sum[:])
}

// Image renders the tensor back into an 8-bit grayscale image, for
// providers that take encoded images rather than raw tensors.
func (t *Tensor) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, t.Width, t.Height))
	for i, v := range t.Data {
		img.Pix[i] = uint8(v*255 + 0.5)
	}
	return img
}
