package imagefile

import (
	"bytes"
	"fmt"
	"time"

	"github.com/evanoberholster/imagemeta"
)

// captureTime extracts the moment the photo was taken from its EXIF block.
// Fallback chain: DateTimeOriginal > CreateDate > ModifyDate. Returns an
// error when the image carries no metadata at all (common for PNG and for
// images exported by messaging apps).
func captureTime(data []byte) (time.Time, error) {
	exifData, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	if t := exifData.DateTimeOriginal(); !t.IsZero() {
		return t, nil
	}
	if t := exifData.CreateDate(); !t.IsZero() {
		return t, nil
	}
	if t := exifData.ModifyDate(); !t.IsZero() {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("no date fields in EXIF")
}
