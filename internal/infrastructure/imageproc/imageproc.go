package imageproc

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// FitWidth downscales a PNG so it is at most maxWidth pixels wide, keeping
// the aspect ratio. Images already narrow enough, and maxWidth <= 0, are
// returned unchanged.
func FitWidth(data []byte, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return data, nil
	}

	img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}
	return buf.Bytes(), nil
}
