package match

import (
	"image"
)

// SSIM stabilization constants for 8-bit dynamic range (k1=0.01, k2=0.03).
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// ssimScore computes global structural similarity between two images of
// equal size over their grayscale luminance, mapped from [-1, 1] to
// [0, 1] so it composes with the other algorithms' score range.
func ssimScore(a, b image.Image) float64 {
	ab := a.Bounds()
	bb := b.Bounds()
	w, h := ab.Dx(), ab.Dy()
	if w != bb.Dx() || h != bb.Dy() || w == 0 || h == 0 {
		return 0
	}

	ga := grayValues(a)
	gb := grayValues(b)
	n := float64(len(ga))

	var sumA, sumB float64
	for i := range ga {
		sumA += ga[i]
		sumB += gb[i]
	}
	meanA := sumA / n
	meanB := sumB / n

	var varA, varB, cov float64
	for i := range ga {
		da := ga[i] - meanA
		db := gb[i] - meanB
		varA += da * da
		varB += db * db
		cov += da * db
	}
	varA /= n
	varB /= n
	cov /= n

	num := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	den := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	if den == 0 {
		return 0
	}
	return clamp01((num/den + 1) / 2)
}

func grayValues(img image.Image) []float64 {
	b := img.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out = append(out, 0.299*float64(r>>8)+0.587*float64(g>>8)+0.114*float64(bl>>8))
		}
	}
	return out
}
