// Package analysis inspects slot pixel content: occupancy via grayscale
// variance, and color signatures used as a cheap pre-filter before
// template matching.
package analysis

import (
	"github.com/jtn0123/MegaBonk-sub002/internal/layout"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// OccupancyParams controls the slot occupancy decision.
type OccupancyParams struct {
	// VarianceThreshold is the grayscale pixel variance (squared 0-255
	// gray levels) a slot must strictly exceed to count as occupied.
	VarianceThreshold float64 `json:"variance_threshold"`
}

// DefaultOccupancyParams returns the empirically calibrated defaults.
// Empty slot backgrounds vary around 40-120; occupied slots with icon art
// run well above 300.
func DefaultOccupancyParams() OccupancyParams {
	return OccupancyParams{VarianceThreshold: 180.0}
}

// SlotVariance computes the grayscale pixel variance over a rectangle:
// mean of squares minus square of mean. A zero-area rectangle yields 0,
// which reads as an empty slot rather than an error.
func SlotVariance(shot *screenshot.Screenshot, rect geometry.RectInt) float64 {
	clamped := rect.ClampTo(shot.Width(), shot.Height())
	if clamped.Empty() {
		return 0
	}

	var sum, sumSq float64
	for y := clamped.Y; y < clamped.Y+clamped.Height; y++ {
		for x := clamped.X; x < clamped.X+clamped.Width; x++ {
			g := shot.GrayAt(x, y)
			sum += g
			sumSq += g * g
		}
	}

	n := float64(clamped.Area())
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

// DetectOccupancy analyzes every slot and returns a copy with Occupancy
// and Variance set. Input slots are not modified; each returned slot is
// decided exactly once.
func DetectOccupancy(shot *screenshot.Screenshot, slots []layout.SlotInfo, params OccupancyParams) []layout.SlotInfo {
	out := make([]layout.SlotInfo, len(slots))
	for i, slot := range slots {
		slot.Variance = SlotVariance(shot, slot.Bounds)
		if slot.Variance > params.VarianceThreshold {
			slot.Occupancy = layout.OccupancyFilled
		} else {
			slot.Occupancy = layout.OccupancyEmpty
		}
		out[i] = slot
	}
	return out
}

// CountOccupied returns how many slots were decided as filled.
func CountOccupied(slots []layout.SlotInfo) int {
	count := 0
	for _, s := range slots {
		if s.Occupancy == layout.OccupancyFilled {
			count++
		}
	}
	return count
}
