package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("file exceeds the maximum allowed size")
)

// Processor validates a captured image and downsamples/re-encodes it
// before it is handed to a storage backend. Images are never scaled up;
// the long edge is clamped to its maximum and the short edge follows
// proportionally. Output is always JPEG.
type Processor struct {
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func NewProcessor(maxBytes int64, maxWidth, maxHeight, quality int) *Processor {
	return &Processor{
		MaxBytes:  maxBytes,
		MaxWidth:  maxWidth,
		MaxHeight: maxHeight,
		Quality:   quality,
	}
}

// Process validates and re-encodes raw image bytes. A decode failure or a
// failed validation must prevent any storage attempt by the caller.
func (p *Processor) Process(data []byte) ([]byte, error) {
	if int64(len(data)) > p.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), p.MaxBytes)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.MaxWidth || bounds.Dy() > p.MaxHeight {
		// Fit shrinks to the bounding box preserving aspect ratio.
		img = imaging.Fit(img, p.MaxWidth, p.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
