// Package layout computes the screen regions and slot rectangles that
// hold equipped items, weapons, tomes, and the character portrait.
package layout

import (
	"fmt"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/resolution"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// Vertical anchor of the hotbar slot row, as a fraction of image height.
const hotbarAnchorY = 0.88

// Expected placement bounds used by Validate.
const (
	hotbarMinY      = 0.85
	hotbarMaxY      = 0.95
	weaponMaxWidth  = 0.15
	weaponMaxHeight = 0.20
)

// Occupancy is the tri-state result of slot occupancy analysis.
type Occupancy int

const (
	// OccupancyUnknown means the slot has not been analyzed yet.
	OccupancyUnknown Occupancy = iota
	// OccupancyEmpty means the slot content variance was below threshold.
	OccupancyEmpty
	// OccupancyFilled means the slot holds something worth matching.
	OccupancyFilled
)

func (o Occupancy) String() string {
	switch o {
	case OccupancyEmpty:
		return "empty"
	case OccupancyFilled:
		return "filled"
	default:
		return "unknown"
	}
}

// SlotInfo describes one slot rectangle within a region. The layout
// builder creates slots with unknown occupancy; the occupancy analyzer
// sets Occupancy and Variance exactly once per run.
type SlotInfo struct {
	Index      int              `json:"index"`
	Bounds     geometry.RectInt `json:"bounds"`
	Occupancy  Occupancy        `json:"occupancy"`
	Variance   float64          `json:"variance,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// Region is one semantic screen region plus its slot grid.
type Region struct {
	Bounds geometry.RectInt `json:"bounds"`
	Slots  []SlotInfo       `json:"slots,omitempty"`
}

// GridLayout is the expected row/column arrangement for a slot region.
type GridLayout struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// DefaultWeaponLayout is the standard single-row weapon arrangement.
func DefaultWeaponLayout() GridLayout { return GridLayout{Rows: 1, Columns: 5} }

// DefaultTomeLayout is the standard single-row tome arrangement.
func DefaultTomeLayout() GridLayout { return GridLayout{Rows: 1, Columns: 5} }

// ScreenRegions holds the derived geometry for one screenshot. Created
// once per image and read-only afterwards.
type ScreenRegions struct {
	Geometry    resolution.ScaledGeometry
	ImageWidth  int
	ImageHeight int

	Hotbar   Region
	Weapons  Region
	Tomes    Region
	Portrait Region
}

// BuildRegions derives all four regions from the scaled geometry. The
// hotbar always carries the catalog's maximum item-slot count; weapon and
// tome grids follow the supplied layouts (pass zero values for defaults).
func BuildRegions(geom resolution.ScaledGeometry, imgW, imgH int, weapons, tomes GridLayout) ScreenRegions {
	if weapons.Rows <= 0 || weapons.Columns <= 0 {
		weapons = DefaultWeaponLayout()
	}
	if tomes.Rows <= 0 || tomes.Columns <= 0 {
		tomes = DefaultTomeLayout()
	}

	r := ScreenRegions{
		Geometry:    geom,
		ImageWidth:  imgW,
		ImageHeight: imgH,
	}

	r.Hotbar = buildHotbar(geom, imgW, imgH, catalog.MaxItemSlots)

	// Weapon grid hangs off the top-left margin; tomes sit directly
	// below it separated by a fixed gap of two spacings.
	weaponOrigin := geometry.PointInt{X: geom.MarginX, Y: geom.MarginY}
	r.Weapons = buildGrid(geom, imgW, imgH, weaponOrigin, weapons)

	tomeGap := geom.Spacing * 2
	tomeOrigin := geometry.PointInt{
		X: geom.MarginX,
		Y: r.Weapons.Bounds.Y + r.Weapons.Bounds.Height + tomeGap,
	}
	r.Tomes = buildGrid(geom, imgW, imgH, tomeOrigin, tomes)

	r.Portrait = buildPortrait(geom, imgW, imgH)

	return r
}

// buildHotbar lays out the item slot row: evenly spaced, centered
// horizontally as a block, vertically centered on the 88% anchor line.
func buildHotbar(geom resolution.ScaledGeometry, imgW, imgH, count int) Region {
	totalW := count*geom.IconSize + (count-1)*geom.Spacing
	startX := (imgW - totalW) / 2
	y := int(float64(imgH)*hotbarAnchorY) - geom.IconSize/2

	slots := make([]SlotInfo, 0, count)
	for i := 0; i < count; i++ {
		rect := geometry.RectInt{
			X:      startX + i*(geom.IconSize+geom.Spacing),
			Y:      y,
			Width:  geom.IconSize,
			Height: geom.IconSize,
		}.ClampTo(imgW, imgH)
		slots = append(slots, SlotInfo{Index: i, Bounds: rect})
	}

	bounds := geometry.RectInt{X: startX, Y: y, Width: totalW, Height: geom.IconSize}.ClampTo(imgW, imgH)
	return Region{Bounds: bounds, Slots: slots}
}

// buildGrid lays out a rows x columns slot grid anchored at origin.
// Weapon and tome HUD icons render at half the hotbar icon size.
func buildGrid(geom resolution.ScaledGeometry, imgW, imgH int, origin geometry.PointInt, grid GridLayout) Region {
	icon := geom.IconSize / 2
	spacing := geom.Spacing / 2
	if icon < 1 {
		icon = 1
	}
	if spacing < 1 {
		spacing = 1
	}

	slots := make([]SlotInfo, 0, grid.Rows*grid.Columns)
	idx := 0
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Columns; col++ {
			rect := geometry.RectInt{
				X:      origin.X + col*(icon+spacing),
				Y:      origin.Y + row*(icon+spacing),
				Width:  icon,
				Height: icon,
			}.ClampTo(imgW, imgH)
			slots = append(slots, SlotInfo{Index: idx, Bounds: rect})
			idx++
		}
	}

	w := grid.Columns*icon + (grid.Columns-1)*spacing
	h := grid.Rows*icon + (grid.Rows-1)*spacing
	bounds := geometry.RectInt{X: origin.X, Y: origin.Y, Width: w, Height: h}.ClampTo(imgW, imgH)
	return Region{Bounds: bounds, Slots: slots}
}

// buildPortrait places the character portrait: centered horizontally at
// the top margin, two icons wide and tall.
func buildPortrait(geom resolution.ScaledGeometry, imgW, imgH int) Region {
	size := geom.IconSize * 2
	rect := geometry.RectInt{
		X:      (imgW - size) / 2,
		Y:      geom.MarginY,
		Width:  size,
		Height: size,
	}.ClampTo(imgW, imgH)
	return Region{Bounds: rect}
}

// AdjustHotbarSlots rebuilds the hotbar with a known occupied-slot count,
// recentering the block so slot rectangles line up with what the game
// actually renders. When occupiedCount is not positive, derive is invoked
// to obtain it (typically by re-running the occupancy analyzer); if that
// also yields nothing, the full-width hotbar is kept.
func AdjustHotbarSlots(r ScreenRegions, occupiedCount int, derive func() int) ScreenRegions {
	if occupiedCount <= 0 && derive != nil {
		occupiedCount = derive()
	}
	if occupiedCount <= 0 || occupiedCount > catalog.MaxItemSlots {
		return r
	}
	r.Hotbar = buildHotbar(r.Geometry, r.ImageWidth, r.ImageHeight, occupiedCount)
	return r
}

// Validate flags regions that violate expected placement bounds. It never
// fails hard: the result is a list of human-readable issues for
// diagnostic display, empty when the layout looks sane.
func Validate(r ScreenRegions) []string {
	var issues []string

	if r.ImageWidth <= 0 || r.ImageHeight <= 0 {
		return []string{"image dimensions are not positive"}
	}

	hotbarCenterY := float64(r.Hotbar.Bounds.Center().Y) / float64(r.ImageHeight)
	if hotbarCenterY < hotbarMinY || hotbarCenterY > hotbarMaxY {
		issues = append(issues, fmt.Sprintf(
			"hotbar centered at %.0f%% of image height, expected %.0f%%-%.0f%%",
			hotbarCenterY*100, hotbarMinY*100, hotbarMaxY*100))
	}

	weaponRight := float64(r.Weapons.Bounds.X+r.Weapons.Bounds.Width) / float64(r.ImageWidth)
	if weaponRight > weaponMaxWidth {
		issues = append(issues, fmt.Sprintf(
			"weapon region extends to %.0f%% of image width, expected within %.0f%%",
			weaponRight*100, weaponMaxWidth*100))
	}
	weaponBottom := float64(r.Weapons.Bounds.Y+r.Weapons.Bounds.Height) / float64(r.ImageHeight)
	if weaponBottom > weaponMaxHeight {
		issues = append(issues, fmt.Sprintf(
			"weapon region extends to %.0f%% of image height, expected within %.0f%%",
			weaponBottom*100, weaponMaxHeight*100))
	}

	for _, slot := range r.Hotbar.Slots {
		if slot.Bounds.Empty() {
			issues = append(issues, fmt.Sprintf("hotbar slot %d clamped to zero area", slot.Index))
		}
	}

	return issues
}
