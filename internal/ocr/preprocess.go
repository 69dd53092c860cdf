package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

// minOCRWidth is the smallest region width Tesseract reads reliably;
// smaller regions are upscaled before extraction.
const minOCRWidth = 128

// PrepareRegion preprocesses a slot region for text extraction: grayscale
// to drop icon color noise, contrast stretch so faint HUD text separates
// from the background, and upscaling when the region is too small for the
// engine's line detection.
func PrepareRegion(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)

	if w := out.Bounds().Dx(); w > 0 && w < minOCRWidth {
		scale := (minOCRWidth + w - 1) / w
		out = imaging.Resize(out, out.Bounds().Dx()*scale, 0, imaging.Lanczos)
	}
	return out
}
