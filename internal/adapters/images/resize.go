package images

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoding
)

const (
	insideQuality = 80
	coverQuality  = 85
)

// Resizer normalizes uploaded images. Output is always JPEG regardless of
// the input format.
type Resizer struct{}

func NewResizer() Resizer { return Resizer{} }

// ResizeInside scales the image down to fit within w x h, keeping aspect
// ratio and never enlarging.
func (Resizer) ResizeInside(data []byte, w, h int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() > w || img.Bounds().Dy() > h {
		img = imaging.Fit(img, w, h, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(insideQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ResizeCover scales and center-crops to exactly w x h, enlarging smaller
// sources so the output is always the full size.
func (Resizer) ResizeCover(data []byte, w, h int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
