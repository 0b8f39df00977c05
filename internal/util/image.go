package util

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// 课程封面尺寸上限
const (
	CoverMaxWidth  = 1280
	CoverMaxHeight = 720
)

// FitImage shrinks the image to fit within maxWidth x maxHeight, keeping its format and
// aspect ratio. Images already inside the box, and formats imaging cannot encode (webp),
// are returned byte for byte.
func FitImage(r io.Reader, filename string, maxWidth, maxHeight int) (io.Reader, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}

	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return bytes.NewReader(data), int64(len(data)), nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth && bounds.Dy() <= maxHeight {
		return bytes.NewReader(data), int64(len(data)), nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos), format); err != nil {
		return nil, 0, err
	}
	return &buf, int64(buf.Len()), nil
}
