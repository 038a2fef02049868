package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/visioncraft-labs/emoscope/internal/domain"
)

// Decode turns raw image bytes into an RGB frame. Malformed bytes fail with
// the decode-error taxonomy entry before any detector or model work happens.
func Decode(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return FrameFromImage(img), nil
}

// DecodeBase64 accepts a base64 payload with or without a data-URI prefix
// ("data:image/jpeg;base64,....") and decodes it into a frame.
func DecodeBase64(s string) (*Frame, error) {
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return Decode(data)
}
