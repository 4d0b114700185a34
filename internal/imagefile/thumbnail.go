package imagefile

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// DefaultThumbnailMaxDimension bounds preview images served to the browser.
const DefaultThumbnailMaxDimension = 400

// Thumbnail returns a JPEG preview of the image, downscaled so neither side
// exceeds maxDimension. Images already small enough are re-encoded anyway so
// the preview pane always receives JPEG regardless of the upload format.
func Thumbnail(data []byte, maxDimension int) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.CatmullRom)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	log.Debug().
		Int("orig_width", bounds.Dx()).
		Int("orig_height", bounds.Dy()).
		Int("output_size", buf.Len()).
		Msg("Thumbnail generated")

	return buf.Bytes(), "image/jpeg", nil
}
