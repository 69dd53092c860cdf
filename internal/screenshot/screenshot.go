// Package screenshot wraps a decoded player screenshot and provides fast
// RGBA pixel access, format loading, and content hashing.
package screenshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"

	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// Screenshot is an in-memory screenshot with guaranteed RGBA backing.
type Screenshot struct {
	rgba *image.RGBA
	hash string
}

// FromImage wraps a decoded image, converting to RGBA if needed.
func FromImage(img image.Image) *Screenshot {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return &Screenshot{rgba: rgba}
}

// Load reads and decodes a screenshot file (PNG, JPEG, or TIFF).
func Load(path string) (*Screenshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open screenshot: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot %s: %w", filepath.Base(path), err)
	}
	_ = format

	return FromImage(img), nil
}

// Width returns the image width in pixels.
func (s *Screenshot) Width() int {
	return s.rgba.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Screenshot) Height() int {
	return s.rgba.Bounds().Dy()
}

// RGBA returns the underlying image. Callers must treat it as read-only.
func (s *Screenshot) RGBA() *image.RGBA {
	return s.rgba
}

// At returns the 8-bit RGBA components of the pixel at (x, y).
// Out-of-bounds coordinates return opaque black.
func (s *Screenshot) At(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return 0, 0, 0, 255
	}
	i := s.rgba.PixOffset(x, y)
	p := s.rgba.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

// SubImage returns the portion of the screenshot inside rect as an
// image sharing pixels with the original.
func (s *Screenshot) SubImage(rect geometry.RectInt) image.Image {
	clamped := rect.ClampTo(s.Width(), s.Height())
	return s.rgba.SubImage(clamped.ToImageRect())
}

// Hash returns a stable hex digest of the pixel content, suitable as the
// image hash recorded alongside user corrections. Computed lazily.
func (s *Screenshot) Hash() string {
	if s.hash == "" {
		sum := sha256.Sum256(s.rgba.Pix)
		s.hash = hex.EncodeToString(sum[:16])
	}
	return s.hash
}

// GrayAt returns the grayscale luminance (0-255) of the pixel at (x, y)
// using the standard BT.601 weights.
func (s *Screenshot) GrayAt(x, y int) float64 {
	r, g, b, _ := s.At(x, y)
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// MeanColor returns the mean RGB over a rectangle. A zero-area rectangle
// yields black.
func (s *Screenshot) MeanColor(rect geometry.RectInt) color.RGBA {
	clamped := rect.ClampTo(s.Width(), s.Height())
	if clamped.Empty() {
		return color.RGBA{A: 255}
	}

	var sumR, sumG, sumB uint64
	for y := clamped.Y; y < clamped.Y+clamped.Height; y++ {
		for x := clamped.X; x < clamped.X+clamped.Width; x++ {
			r, g, b, _ := s.At(x, y)
			sumR += uint64(r)
			sumG += uint64(g)
			sumB += uint64(b)
		}
	}
	n := uint64(clamped.Area())
	return color.RGBA{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
		A: 255,
	}
}

// SupportedFormats lists the screenshot file formats Load accepts.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tif", ".tiff"}
}

// IsSupportedFormat checks whether a path has a loadable extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedFormats() {
		if ext == s {
			return true
		}
	}
	return false
}
