package strategy

import (
	"sort"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
)

// Thresholds holds the per-pass confidence cutoffs for slot matching.
// Pass1 >= Pass2 >= Pass3 always.
type Thresholds struct {
	Pass1 float64 `json:"pass1"`
	Pass2 float64 `json:"pass2"`
	Pass3 float64 `json:"pass3"`
}

// FixedThresholds is the constant triple used by PolicyFixed and as the
// safe fallback for every other policy.
func FixedThresholds() Thresholds {
	return Thresholds{Pass1: 0.80, Pass2: 0.70, Pass3: 0.60}
}

// Per-rarity threshold table for PolicyAdaptiveRarity. Common items share
// generic art and are the most likely false matches, so they demand the
// highest confidence; legendary art is distinctive and a miss (false
// negative) is costlier, so thresholds relax as rarity rises.
var rarityThresholds = map[catalog.Rarity]Thresholds{
	catalog.RarityCommon:    {Pass1: 0.88, Pass2: 0.80, Pass3: 0.72},
	catalog.RarityUncommon:  {Pass1: 0.86, Pass2: 0.78, Pass3: 0.70},
	catalog.RarityRare:      {Pass1: 0.84, Pass2: 0.76, Pass3: 0.68},
	catalog.RarityEpic:      {Pass1: 0.80, Pass2: 0.72, Pass3: 0.64},
	catalog.RarityLegendary: {Pass1: 0.76, Pass2: 0.68, Pass3: 0.60},
}

// ThresholdsFor resolves the pass thresholds for a strategy and an
// optional rarity label. Under PolicyFixed the rarity is ignored. Under
// PolicyAdaptiveRarity an unrecognized label falls back to the fixed
// triple. PolicyAdaptiveGap depends on the runtime score distribution
// owned by the caller, so this function returns the fixed triple as its
// placeholder; see GapThresholds.
func ThresholdsFor(s Strategy, rarityLabel string) Thresholds {
	switch s.ThresholdPolicy {
	case PolicyAdaptiveRarity:
		rarity, ok := catalog.ParseRarity(rarityLabel)
		if !ok {
			return FixedThresholds()
		}
		if t, found := rarityThresholds[rarity]; found {
			return t
		}
		return FixedThresholds()
	default:
		return FixedThresholds()
	}
}

// ThresholdsForRarity is ThresholdsFor with an already-parsed rarity.
func ThresholdsForRarity(s Strategy, rarity catalog.Rarity) Thresholds {
	if s.ThresholdPolicy != PolicyAdaptiveRarity {
		return FixedThresholds()
	}
	if t, found := rarityThresholds[rarity]; found {
		return t
	}
	return FixedThresholds()
}

// GapThresholds implements the adaptive-gap policy hook. It receives the
// full candidate score list for one slot and derives the triple from the
// separation between the best and second-best candidate: a wide gap means
// the best match is unambiguous and thresholds can relax toward it, a
// narrow gap keeps the fixed triple. With fewer than two scores the fixed
// triple is returned unchanged.
func GapThresholds(scores []float64) Thresholds {
	base := FixedThresholds()
	if len(scores) < 2 {
		return base
	}

	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	gap := sorted[0] - sorted[1]
	if gap <= 0.05 {
		return base
	}

	// Relax pass1 toward the best score, never below the fixed pass2 and
	// never above the best score itself. Pass ordering stays monotonic.
	relaxed := sorted[0] - gap/2
	if relaxed < base.Pass2 {
		relaxed = base.Pass2
	}
	if relaxed > base.Pass1 {
		relaxed = base.Pass1
	}

	t := Thresholds{Pass1: relaxed, Pass2: base.Pass2, Pass3: base.Pass3}
	if t.Pass2 > t.Pass1 {
		t.Pass2 = t.Pass1
	}
	if t.Pass3 > t.Pass2 {
		t.Pass3 = t.Pass2
	}
	return t
}
