// Package match prepares catalog reference templates and scores slot
// regions against them. The pixel-level scoring primitives live behind
// the Scorer interface; the rest of the engine treats scores as opaque.
package match

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/jtn0123/MegaBonk-sub002/internal/analysis"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/internal/strategy"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// Template is a prepared reference image for one catalog entity, resized
// to the slot icon size with its color signature precomputed.
type Template struct {
	EntityID string
	Rarity   string
	Img      image.Image
	Colors   analysis.ColorProfile
}

// NewTemplate prepares a reference image: resized to iconSize square with
// Lanczos resampling, color signature extracted once up front.
func NewTemplate(entityID, rarity string, img image.Image, iconSize int) *Template {
	resized := imaging.Resize(img, iconSize, iconSize, imaging.Lanczos)
	shot := screenshot.FromImage(resized)
	profile := analysis.ExtractColorProfile(shot,
		geometry.NewRectInt(0, 0, shot.Width(), shot.Height()))
	return &Template{
		EntityID: entityID,
		Rarity:   rarity,
		Img:      resized,
		Colors:   profile,
	}
}

// Scorer computes a match score in [0, 1] between a slot region and a
// reference template, using the algorithm the strategy selects.
type Scorer interface {
	Score(region image.Image, tmpl *Template, algo strategy.Algorithm) (float64, error)
}
