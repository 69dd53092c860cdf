package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/detect"
	"github.com/jtn0123/MegaBonk-sub002/internal/layout"
	"github.com/jtn0123/MegaBonk-sub002/internal/resolution"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

func testShot(w, h int) *screenshot.Screenshot {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{20, 20, 20, 255})
		}
	}
	return screenshot.FromImage(img)
}

func testResult(w, h int) *detect.BuildResult {
	geom := resolution.Detect(w, h)
	regions := layout.BuildRegions(geom, w, h, layout.DefaultWeaponLayout(), layout.DefaultTomeLayout())
	slot := regions.Hotbar.Slots[0]
	slot.Occupancy = layout.OccupancyFilled
	return &detect.BuildResult{
		Regions: regions,
		Matches: []detect.SlotMatch{{
			Slot:       slot,
			Kind:       catalog.KindItem,
			EntityID:   "clover",
			EntityName: "Lucky Clover",
			Confidence: 0.92,
			Pass:       1,
		}},
	}
}

func TestRenderAnnotates(t *testing.T) {
	shot := testShot(1280, 720)
	result := testResult(1280, 720)

	img := Render(shot, result, DefaultRenderOptions())
	require.Equal(t, shot.RGBA().Bounds(), img.Bounds())

	// The matched slot's top-left corner carries the highlight color.
	b := result.Matches[0].Slot.Bounds
	assert.Equal(t, matchColor, img.RGBAAt(b.X, b.Y))

	// The source screenshot is untouched.
	r, g, _, _ := shot.At(b.X, b.Y)
	assert.Equal(t, uint8(20), r)
	assert.Equal(t, uint8(20), g)
}

func TestRenderUnmatchedSlotColors(t *testing.T) {
	shot := testShot(1280, 720)
	result := testResult(1280, 720)
	result.Matches = nil
	result.Regions.Hotbar.Slots[1].Occupancy = layout.OccupancyEmpty

	img := Render(shot, result, DefaultRenderOptions())
	b := result.Regions.Hotbar.Slots[1].Bounds
	assert.Equal(t, emptyColor, img.RGBAAt(b.X, b.Y))
}

func TestDrawRectOutlineClips(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	drawRectOutline(img, geometry.NewRectInt(-5, -5, 30, 30), 2, matchColor)
	drawRectOutline(img, geometry.NewRectInt(0, 0, 0, 0), 1, matchColor)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(5, 5), "interior stays untouched")
}
