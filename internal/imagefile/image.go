// Package imagefile handles the images a user brings into the app: upload
// validation, MIME detection, capture-time extraction, and web previews.
package imagefile

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions maps the file extensions accepted for upload to their
// MIME types. Video formats are deliberately absent; the app edits photos.
var SupportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// Image is one uploaded photo. Instances are replaced wholesale on a new
// upload and never mutated in place.
type Image struct {
	FileName    string
	MIMEType    string
	Data        []byte
	CaptureTime time.Time // zero when EXIF carries no usable date
}

// New validates raw upload bytes against the declared MIME type and builds an
// Image. The declared type must be an image type. The payload is sniffed as a
// cross-check: content that sniffs as a concrete non-image type (text, video,
// pdf) is rejected, but formats outside the sniff table (HEIC, TIFF) come
// back as application/octet-stream and are accepted under their declared type.
func New(fileName, declaredMIME string, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	if !strings.HasPrefix(declaredMIME, "image/") {
		return nil, fmt.Errorf("unsupported file type %q, expected an image", declaredMIME)
	}

	sniffed := http.DetectContentType(data)
	var mime string
	switch {
	case strings.HasPrefix(sniffed, "image/"):
		// Prefer the sniffed type when it is specific; browsers sometimes
		// declare the wrong subtype.
		mime = sniffed
	case sniffed == "application/octet-stream":
		mime = declaredMIME
	default:
		return nil, fmt.Errorf("file content is %s, not an image", sniffed)
	}

	img := &Image{
		FileName: filepath.Base(fileName),
		MIMEType: mime,
		Data:     data,
	}

	if t, err := captureTime(data); err == nil {
		img.CaptureTime = t
	} else {
		log.Debug().Err(err).Str("file", img.FileName).Msg("No capture time in EXIF")
	}

	log.Info().
		Str("file", img.FileName).
		Str("mime", img.MIMEType).
		Int("size_bytes", len(data)).
		Bool("has_capture_time", !img.CaptureTime.IsZero()).
		Msg("Image accepted")

	return img, nil
}

// Load reads an image from disk for the CLI path. The extension must be one
// of the supported image formats.
func Load(path string) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	declared, ok := SupportedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return New(filepath.Base(path), declared, data)
}

// Stem returns the file name without its extension, for deriving the
// download name of a generated result.
func (i *Image) Stem() string {
	name := i.FileName
	return strings.TrimSuffix(name, filepath.Ext(name))
}
