package match

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/jtn0123/MegaBonk-sub002/internal/strategy"
)

// GocvScorer scores regions against templates with OpenCV template
// matching. NCC uses TM_CCOEFF_NORMED, SSD uses TM_SQDIFF_NORMED
// (inverted so higher is better); SSIM runs the pure-Go computation in
// ssim.go since OpenCV has no direct primitive for it.
type GocvScorer struct{}

// NewGocvScorer returns the OpenCV-backed scorer.
func NewGocvScorer() *GocvScorer {
	return &GocvScorer{}
}

// Score implements Scorer. The region is resampled to the template size
// before matching so the result Mat is a single cell.
func (s *GocvScorer) Score(region image.Image, tmpl *Template, algo strategy.Algorithm) (float64, error) {
	if tmpl == nil || tmpl.Img == nil {
		return 0, fmt.Errorf("nil template")
	}

	tb := tmpl.Img.Bounds()
	resized := imaging.Resize(region, tb.Dx(), tb.Dy(), imaging.Linear)

	if algo == strategy.AlgorithmSSIM {
		return ssimScore(resized, tmpl.Img), nil
	}

	regionMat, err := gocv.ImageToMatRGB(resized)
	if err != nil {
		return 0, fmt.Errorf("region to mat: %w", err)
	}
	defer regionMat.Close()

	tmplMat, err := gocv.ImageToMatRGB(imaging.Clone(tmpl.Img))
	if err != nil {
		return 0, fmt.Errorf("template to mat: %w", err)
	}
	defer tmplMat.Close()

	result := gocv.NewMat()
	defer result.Close()

	switch algo {
	case strategy.AlgorithmSSD:
		gocv.MatchTemplate(regionMat, tmplMat, &result, gocv.TmSqdiffNormed, gocv.NewMat())
		minVal, _, _, _ := gocv.MinMaxLoc(result)
		return clamp01(1.0 - float64(minVal)), nil
	default: // NCC
		gocv.MatchTemplate(regionMat, tmplMat, &result, gocv.TmCcoeffNormed, gocv.NewMat())
		_, maxVal, _, _ := gocv.MinMaxLoc(result)
		return clamp01(float64(maxVal)), nil
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
