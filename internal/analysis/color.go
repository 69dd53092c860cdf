package analysis

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// ColorLabel is one of the fixed palette buckets a sample classifies into.
type ColorLabel string

const (
	ColorBlack  ColorLabel = "black"
	ColorWhite  ColorLabel = "white"
	ColorGray   ColorLabel = "gray"
	ColorSilver ColorLabel = "silver"
	ColorRed    ColorLabel = "red"
	ColorOrange ColorLabel = "orange"
	ColorBrown  ColorLabel = "brown"
	ColorYellow ColorLabel = "yellow"
	ColorGold   ColorLabel = "gold"
	ColorGreen  ColorLabel = "green"
	ColorTeal   ColorLabel = "teal"
	ColorBlue   ColorLabel = "blue"
	ColorPurple ColorLabel = "purple"
	ColorPink   ColorLabel = "pink"
)

// borderRing is the width in pixels of the border sample.
const borderRing = 3

// ColorProfile is a seven-field categorical color signature for a slot or
// template image. Pure value type, compared structurally.
type ColorProfile struct {
	TopLeft     ColorLabel `json:"top_left"`
	TopRight    ColorLabel `json:"top_right"`
	BottomLeft  ColorLabel `json:"bottom_left"`
	BottomRight ColorLabel `json:"bottom_right"`
	Center      ColorLabel `json:"center"`
	Border      ColorLabel `json:"border"`
	Dominant    ColorLabel `json:"dominant"`
}

// ClassifyRGB maps an RGB color into its palette bucket. Low-saturation
// colors take the grayscale branch (brightness decides black/white/gray);
// the rest classify by channel dominance refined with secondary channel
// ratios (a red-dominant sample with green well above blue reads orange).
func ClassifyRGB(c color.RGBA) ColorLabel {
	r := float64(c.R)
	g := float64(c.G)
	b := float64(c.B)

	cf := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	_, s, v := cf.Hsv()

	if s < 0.15 {
		switch {
		case v < 0.18:
			return ColorBlack
		case v > 0.88:
			return ColorWhite
		case v > 0.60:
			return ColorSilver
		default:
			return ColorGray
		}
	}

	switch {
	case r >= g && r >= b: // red-dominant
		if g > 1.3*b {
			// Warm tones: how close green runs to red splits yellow from orange.
			if g > 0.75*r {
				if v > 0.70 {
					return ColorYellow
				}
				return ColorGold
			}
			if v > 0.45 {
				return ColorOrange
			}
			return ColorBrown
		}
		if b > 0.6*r && v > 0.70 {
			return ColorPink
		}
		if v < 0.35 {
			return ColorBrown
		}
		return ColorRed

	case g >= r && g >= b: // green-dominant
		if b > 0.8*g {
			return ColorTeal
		}
		return ColorGreen

	default: // blue-dominant
		if r > 0.7*b {
			return ColorPurple
		}
		if g > 0.8*b {
			return ColorTeal
		}
		return ColorBlue
	}
}

// ExtractColorProfile computes the seven-field signature for a rectangle:
// four overlapping corner quadrants plus a center sample (each 60% of the
// rect), a 3-pixel border ring, and the dominant bucket over the whole
// rectangle. A zero-area rectangle yields an all-black profile.
func ExtractColorProfile(shot *screenshot.Screenshot, rect geometry.RectInt) ColorProfile {
	clamped := rect.ClampTo(shot.Width(), shot.Height())
	if clamped.Empty() {
		return ColorProfile{
			TopLeft: ColorBlack, TopRight: ColorBlack,
			BottomLeft: ColorBlack, BottomRight: ColorBlack,
			Center: ColorBlack, Border: ColorBlack, Dominant: ColorBlack,
		}
	}

	// Overlapping samples: 60% of the rect anchored at each corner and
	// the middle, so adjoining samples share pixels near the center.
	sw := clamped.Width * 6 / 10
	sh := clamped.Height * 6 / 10
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}

	sample := func(x, y int) ColorLabel {
		return ClassifyRGB(shot.MeanColor(geometry.RectInt{X: x, Y: y, Width: sw, Height: sh}))
	}

	x2 := clamped.X + clamped.Width - sw
	y2 := clamped.Y + clamped.Height - sh

	return ColorProfile{
		TopLeft:     sample(clamped.X, clamped.Y),
		TopRight:    sample(x2, clamped.Y),
		BottomLeft:  sample(clamped.X, y2),
		BottomRight: sample(x2, y2),
		Center:      sample(clamped.X+(clamped.Width-sw)/2, clamped.Y+(clamped.Height-sh)/2),
		Border:      classifyBorder(shot, clamped),
		Dominant:    dominantLabel(shot, clamped),
	}
}

// classifyBorder averages the 3-pixel ring around the rectangle edge.
func classifyBorder(shot *screenshot.Screenshot, rect geometry.RectInt) ColorLabel {
	ring := borderRing
	if rect.Width <= 2*ring || rect.Height <= 2*ring {
		return ClassifyRGB(shot.MeanColor(rect))
	}

	var sumR, sumG, sumB, n uint64
	inner := rect.Inset(ring)
	for y := rect.Y; y < rect.Y+rect.Height; y++ {
		for x := rect.X; x < rect.X+rect.Width; x++ {
			if inner.Contains(x, y) {
				continue
			}
			r, g, b, _ := shot.At(x, y)
			sumR += uint64(r)
			sumG += uint64(g)
			sumB += uint64(b)
			n++
		}
	}
	if n == 0 {
		return ColorBlack
	}
	return ClassifyRGB(color.RGBA{
		R: uint8(sumR / n), G: uint8(sumG / n), B: uint8(sumB / n), A: 255,
	})
}

// dominantLabel finds the most frequent bucket over the rectangle,
// sampling every other pixel to keep the scan cheap.
func dominantLabel(shot *screenshot.Screenshot, rect geometry.RectInt) ColorLabel {
	counts := make(map[ColorLabel]int)
	for y := rect.Y; y < rect.Y+rect.Height; y += 2 {
		for x := rect.X; x < rect.X+rect.Width; x += 2 {
			r, g, b, _ := shot.At(x, y)
			counts[ClassifyRGB(color.RGBA{R: r, G: g, B: b, A: 255})]++
		}
	}

	best := ColorBlack
	bestCount := -1
	for label, count := range counts {
		if count > bestCount {
			best = label
			bestCount = count
		}
	}
	return best
}

// CompareColorProfiles returns the fraction of the seven fields that
// match exactly, 0.0-1.0. A profile always compares 1.0 against itself.
func CompareColorProfiles(a, b ColorProfile) float64 {
	matches := 0
	if a.TopLeft == b.TopLeft {
		matches++
	}
	if a.TopRight == b.TopRight {
		matches++
	}
	if a.BottomLeft == b.BottomLeft {
		matches++
	}
	if a.BottomRight == b.BottomRight {
		matches++
	}
	if a.Center == b.Center {
		matches++
	}
	if a.Border == b.Border {
		matches++
	}
	if a.Dominant == b.Dominant {
		matches++
	}
	return float64(matches) / 7.0
}
