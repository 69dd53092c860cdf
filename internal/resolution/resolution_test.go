package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPresetExactMatch(t *testing.T) {
	for _, p := range Presets() {
		got := DetectPreset(p.ReferenceWidth, p.ReferenceHeight)
		assert.Equal(t, p.Name, got.Name, "exact dimensions must round-trip to their own preset")
	}
}

func TestDetectPresetNearestMatch(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   string
	}{
		{"slightly off 1080p", 1918, 1078, "1080p"},
		{"ultrawide-ish leans 1080p", 2048, 1152, "1080p"},
		{"steam deck native", 1280, 800, "handheld"},
		// Aspect is 16:10 but the sheer size difference from the
		// handheld preset outweighs the aspect penalty against 1080p.
		{"16:10 laptop", 1920, 1200, "1080p"},
		{"huge display", 5120, 2880, "4k"},
		{"tiny window", 640, 360, "720p"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectPreset(tt.width, tt.height)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDetectPresetDeterministic(t *testing.T) {
	first := DetectPreset(1777, 999)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectPreset(1777, 999))
	}
}

func TestScaledGeometryMonotonic(t *testing.T) {
	p := Profile1080p()
	base := Scaled(p, 1920, 1080)
	doubled := Scaled(p, 3840, 2160)

	// Doubling both dimensions doubles all derived geometry (within rounding).
	assert.InDelta(t, base.IconSize*2, doubled.IconSize, 1)
	assert.InDelta(t, base.Spacing*2, doubled.Spacing, 1)
	assert.InDelta(t, base.MarginX*2, doubled.MarginX, 1)
	assert.InDelta(t, base.MarginY*2, doubled.MarginY, 1)
	assert.InDelta(t, base.Scale*2, doubled.Scale, 0.001)
}

func TestScaleFactorIsMinAxis(t *testing.T) {
	p := Profile1080p()
	// Wider than reference aspect: height is the limiting axis.
	assert.InDelta(t, 1.0, ScaleFactor(p, 2500, 1080), 0.001)
	// Taller than reference aspect: width limits.
	assert.InDelta(t, 1.0, ScaleFactor(p, 1920, 1400), 0.001)
}

func TestScaledAtReferenceIsIdentity(t *testing.T) {
	for _, p := range Presets() {
		geom := Scaled(p, p.ReferenceWidth, p.ReferenceHeight)
		require.InDelta(t, 1.0, geom.Scale, 0.001)
		assert.Equal(t, p.IconSize, geom.IconSize)
		assert.Equal(t, p.Spacing, geom.Spacing)
	}
}

func TestCustomProfile(t *testing.T) {
	p := CustomProfile(960, 540)
	assert.Equal(t, "custom", p.Name)
	assert.Equal(t, 960, p.ReferenceWidth)
	// Half of 1080p, so icon geometry halves.
	assert.Equal(t, Profile1080p().IconSize/2, p.IconSize)
}
