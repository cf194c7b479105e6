// Package imaging validates and normalizes avatar uploads: accepted images
// are scaled to a fixed square size and re-encoded as PNG regardless of the
// uploaded format.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	// Register the decoders for the accepted upload formats.
	_ "image/jpeg"
	_ "image/png"
)

// Avatar upload constraints.
const (
	// MaxUploadBytes is the largest accepted avatar upload.
	MaxUploadBytes = 1_000_000

	// AvatarSize is the square edge length avatars are scaled to.
	AvatarSize = 250
)

// Validation errors for avatar uploads. These map to a 400 with their
// message; anything else from this package is a server-side failure.
var (
	ErrUnsupportedFormat = errors.New("file must be png, jpg or jpeg")
	ErrTooLarge          = fmt.Errorf("file must be at most %d bytes", MaxUploadBytes)
	ErrNotAnImage        = errors.New("file is not a decodable image")
)

// IsValidationError reports whether err is an upload-validation failure
// whose message is safe to return to the client.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrTooLarge) ||
		errors.Is(err, ErrNotAnImage)
}

// allowedExtensions guards uploads by filename extension, matching the
// original contract (the decoder still has the final word on content).
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ValidateUpload checks an upload's filename extension and declared size
// before any bytes are processed.
func ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return ErrUnsupportedFormat
	}
	if size > MaxUploadBytes {
		return ErrTooLarge
	}
	return nil
}

// Processor scales uploads to a fixed square and re-encodes them as PNG.
type Processor struct {
	size int
}

// NewProcessor creates a Processor producing AvatarSize x AvatarSize PNGs.
func NewProcessor() *Processor {
	return &Processor{size: AvatarSize}
}

// Process decodes the uploaded image, scales it to the target square and
// returns the PNG-encoded result. Returns ErrNotAnImage when the bytes
// cannot be decoded as PNG or JPEG.
func (p *Processor) Process(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return out.Bytes(), nil
}
