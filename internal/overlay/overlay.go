// Package overlay renders detection results on top of a screenshot for
// visual inspection of region geometry, occupancy, and matches.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jtn0123/MegaBonk-sub002/internal/detect"
	"github.com/jtn0123/MegaBonk-sub002/internal/layout"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// Overlay colors.
var (
	regionColor  = color.RGBA{R: 0, G: 200, B: 255, A: 255} // region borders
	filledColor  = color.RGBA{R: 0, G: 220, B: 0, A: 255}   // occupied slots
	emptyColor   = color.RGBA{R: 140, G: 140, B: 140, A: 255}
	unknownColor = color.RGBA{R: 255, G: 160, B: 0, A: 255}
	matchColor   = color.RGBA{R: 255, G: 255, B: 0, A: 255} // matched slot highlight
	labelColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RenderOptions configures how results are rendered.
type RenderOptions struct {
	RegionOutlineWidth int  // Border width around whole regions
	SlotOutlineWidth   int  // Border width around individual slots
	MatchOutlineWidth  int  // Highlight width around matched slots
	DrawLabels         bool // Whether to draw entity names over matches
}

// DefaultRenderOptions returns default rendering options.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		RegionOutlineWidth: 2,
		SlotOutlineWidth:   1,
		MatchOutlineWidth:  2,
		DrawLabels:         true,
	}
}

// Render produces a copy of the screenshot annotated with the detected
// regions, slot occupancy, and slot matches.
func Render(shot *screenshot.Screenshot, result *detect.BuildResult, opts RenderOptions) *image.RGBA {
	src := shot.RGBA()
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	// Region borders first, slots on top, matches above everything.
	for _, region := range []layout.Region{
		result.Regions.Hotbar, result.Regions.Weapons,
		result.Regions.Tomes, result.Regions.Portrait,
	} {
		drawRectOutline(img, region.Bounds, opts.RegionOutlineWidth, regionColor)
		for _, slot := range region.Slots {
			drawRectOutline(img, slot.Bounds, opts.SlotOutlineWidth, slotColor(slot.Occupancy))
		}
	}

	for _, m := range result.Matches {
		drawRectOutline(img, m.Slot.Bounds, opts.MatchOutlineWidth, matchColor)
		if opts.DrawLabels {
			drawLabel(img, m.Slot.Bounds, m.EntityName)
		}
	}

	return img
}

func slotColor(o layout.Occupancy) color.RGBA {
	switch o {
	case layout.OccupancyFilled:
		return filledColor
	case layout.OccupancyEmpty:
		return emptyColor
	default:
		return unknownColor
	}
}

// drawRectOutline draws a rectangle outline of the given width, clipped
// to the image bounds.
func drawRectOutline(img *image.RGBA, r geometry.RectInt, width int, c color.RGBA) {
	if r.Empty() || width <= 0 {
		return
	}
	for w := 0; w < width; w++ {
		x1, y1 := r.X+w, r.Y+w
		x2, y2 := r.X+r.Width-1-w, r.Y+r.Height-1-w
		if x2 <= x1 || y2 <= y1 {
			break
		}
		drawHLine(img, x1, x2, y1, c)
		drawHLine(img, x1, x2, y2, c)
		drawVLine(img, x1, y1, y2, c)
		drawVLine(img, x2, y1, y2, c)
	}
}

func drawHLine(img *image.RGBA, x1, x2, y int, c color.RGBA) {
	b := img.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= b.Min.X && x < b.Max.X {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawVLine(img *image.RGBA, x, y1, y2 int, c color.RGBA) {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= b.Min.Y && y < b.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawLabel draws text just above a slot, falling back to inside the slot
// at the top edge of the frame.
func drawLabel(img *image.RGBA, r geometry.RectInt, text string) {
	if text == "" {
		return
	}

	face := basicfont.Face7x13
	y := r.Y - 3
	if y-face.Ascent < img.Bounds().Min.Y {
		y = r.Y + face.Height
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(r.X, y),
	}
	d.DrawString(text)
}
