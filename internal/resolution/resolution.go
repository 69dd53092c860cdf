// Package resolution maps raw screenshot dimensions to a canonical
// resolution profile and derives the scaled slot geometry for it.
package resolution

import "math"

// Profile defines reference geometry for one display resolution.
// Profiles are immutable; detection selects one per image and never
// mutates it afterwards.
type Profile struct {
	Name            string `json:"name"`
	ReferenceWidth  int    `json:"reference_width"`
	ReferenceHeight int    `json:"reference_height"`
	IconSize        int    `json:"icon_size"`
	Spacing         int    `json:"spacing"`
	MarginX         int    `json:"margin_x"`
	MarginY         int    `json:"margin_y"`
}

// Built-in profile geometry. Icon sizes and spacing were measured from
// screenshots at each native resolution.
const (
	icon720p  = 44
	icon1080p = 64
	icon1440p = 86
	icon4k    = 128
)

// Profile720p returns the 1280x720 reference profile.
func Profile720p() Profile {
	return Profile{Name: "720p", ReferenceWidth: 1280, ReferenceHeight: 720,
		IconSize: icon720p, Spacing: 6, MarginX: 14, MarginY: 14}
}

// Profile1080p returns the 1920x1080 reference profile.
func Profile1080p() Profile {
	return Profile{Name: "1080p", ReferenceWidth: 1920, ReferenceHeight: 1080,
		IconSize: icon1080p, Spacing: 8, MarginX: 20, MarginY: 20}
}

// Profile1440p returns the 2560x1440 reference profile.
func Profile1440p() Profile {
	return Profile{Name: "1440p", ReferenceWidth: 2560, ReferenceHeight: 1440,
		IconSize: icon1440p, Spacing: 10, MarginX: 26, MarginY: 26}
}

// Profile4K returns the 3840x2160 reference profile.
func Profile4K() Profile {
	return Profile{Name: "4k", ReferenceWidth: 3840, ReferenceHeight: 2160,
		IconSize: icon4k, Spacing: 16, MarginX: 40, MarginY: 40}
}

// ProfileHandheld returns the 1280x800 (16:10 handheld) reference profile.
func ProfileHandheld() Profile {
	return Profile{Name: "handheld", ReferenceWidth: 1280, ReferenceHeight: 800,
		IconSize: icon720p, Spacing: 6, MarginX: 14, MarginY: 16}
}

// CustomProfile builds an ad-hoc profile for a caller-supplied reference
// size, interpolating icon geometry from the 1080p baseline.
func CustomProfile(width, height int) Profile {
	base := Profile1080p()
	scale := math.Min(float64(width)/float64(base.ReferenceWidth),
		float64(height)/float64(base.ReferenceHeight))
	return Profile{
		Name:            "custom",
		ReferenceWidth:  width,
		ReferenceHeight: height,
		IconSize:        scaleRound(base.IconSize, scale),
		Spacing:         scaleRound(base.Spacing, scale),
		MarginX:         scaleRound(base.MarginX, scale),
		MarginY:         scaleRound(base.MarginY, scale),
	}
}

// Presets returns the built-in profile table in match-priority order.
func Presets() []Profile {
	return []Profile{
		Profile720p(),
		Profile1080p(),
		Profile1440p(),
		Profile4K(),
		ProfileHandheld(),
	}
}

// DetectPreset selects the profile for an image. An exact (width, height)
// match wins; otherwise every preset is scored by aspect-ratio difference
// x1000 plus absolute size difference, and the lowest score wins. This
// never fails: an unrecognized resolution degrades to the closest preset.
func DetectPreset(width, height int) Profile {
	presets := Presets()

	for _, p := range presets {
		if p.ReferenceWidth == width && p.ReferenceHeight == height {
			return p
		}
	}

	aspect := float64(width) / float64(height)
	best := presets[0]
	bestScore := math.Inf(1)
	for _, p := range presets {
		refAspect := float64(p.ReferenceWidth) / float64(p.ReferenceHeight)
		score := math.Abs(aspect-refAspect)*1000 +
			math.Abs(float64(width-p.ReferenceWidth)) +
			math.Abs(float64(height-p.ReferenceHeight))
		if score < bestScore {
			bestScore = score
			best = p
		}
	}
	return best
}

// ScaledGeometry is a profile's slot geometry scaled to an actual image.
type ScaledGeometry struct {
	Profile  Profile
	Scale    float64 // pixels-to-reference scale factor
	IconSize int
	Spacing  int
	MarginX  int
	MarginY  int
}

// ScaleFactor returns the pixels-to-reference scale for an image against a
// profile: min(width/refWidth, height/refHeight).
func ScaleFactor(p Profile, width, height int) float64 {
	if p.ReferenceWidth <= 0 || p.ReferenceHeight <= 0 {
		return 1.0
	}
	return math.Min(float64(width)/float64(p.ReferenceWidth),
		float64(height)/float64(p.ReferenceHeight))
}

// Scaled derives the geometry for an image of the given size. Icon size,
// spacing, and margins scale multiplicatively, rounded to nearest integer.
func Scaled(p Profile, width, height int) ScaledGeometry {
	scale := ScaleFactor(p, width, height)
	return ScaledGeometry{
		Profile:  p,
		Scale:    scale,
		IconSize: scaleRound(p.IconSize, scale),
		Spacing:  scaleRound(p.Spacing, scale),
		MarginX:  scaleRound(p.MarginX, scale),
		MarginY:  scaleRound(p.MarginY, scale),
	}
}

// Detect resolves the preset for an image and returns its scaled geometry
// in one step.
func Detect(width, height int) ScaledGeometry {
	return Scaled(DetectPreset(width, height), width, height)
}

func scaleRound(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}
