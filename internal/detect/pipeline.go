package detect

import (
	"fmt"

	"github.com/jtn0123/MegaBonk-sub002/internal/analysis"
	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/layout"
	"github.com/jtn0123/MegaBonk-sub002/internal/match"
	"github.com/jtn0123/MegaBonk-sub002/internal/metrics"
	"github.com/jtn0123/MegaBonk-sub002/internal/ocr"
	"github.com/jtn0123/MegaBonk-sub002/internal/resolution"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/internal/strategy"
)

// ocrCutoff is the minimum fuzzy-match score the OCR fallback accepts.
const ocrCutoff = 0.60

// SlotMatch is one detected entity in one slot.
type SlotMatch struct {
	Slot       layout.SlotInfo `json:"slot"`
	Kind       catalog.Kind    `json:"kind"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	Confidence float64         `json:"confidence"`
	Pass       int             `json:"pass"`
	ViaOCR     bool            `json:"via_ocr,omitempty"`
}

// BuildResult is the outcome of one full detection run.
type BuildResult struct {
	Regions layout.ScreenRegions     `json:"regions"`
	Issues  []string                 `json:"issues,omitempty"`
	Matches []SlotMatch              `json:"matches"`
	Metrics metrics.DetectionMetrics `json:"metrics"`
}

// DetectRegions resolves the resolution profile for a screenshot and
// derives all region and slot geometry.
func (c *DetectionContext) DetectRegions(shot *screenshot.Screenshot) layout.ScreenRegions {
	geom := resolution.Detect(shot.Width(), shot.Height())
	if c.debug {
		fmt.Printf("[Detect] %dx%d -> profile %s (scale %.3f)\n",
			shot.Width(), shot.Height(), geom.Profile.Name, geom.Scale)
	}
	return layout.BuildRegions(geom, shot.Width(), shot.Height(),
		layout.DefaultWeaponLayout(), layout.DefaultTomeLayout())
}

// DetectOccupancy analyzes the given slots and returns a copy with
// occupancy and variance decided.
func (c *DetectionContext) DetectOccupancy(shot *screenshot.Screenshot, slots []layout.SlotInfo) []layout.SlotInfo {
	return analysis.DetectOccupancy(shot, slots, c.occupancy)
}

// DetectBuild runs the full pipeline on one screenshot: geometry, slot
// occupancy, per-slot matching across the item, weapon, and tome regions
// plus the character portrait, all under the active strategy. The run is
// wrapped in a metrics session appended to the rolling history.
func (c *DetectionContext) DetectBuild(shot *screenshot.Screenshot) (*BuildResult, error) {
	return c.DetectBuildWithGroundTruth(shot, nil)
}

// DetectBuildWithGroundTruth is DetectBuild with an expected entity
// multiset (entity ID -> count) for accuracy scoring.
func (c *DetectionContext) DetectBuildWithGroundTruth(shot *screenshot.Screenshot, groundTruth map[string]int) (*BuildResult, error) {
	if c.scorer == nil {
		return nil, fmt.Errorf("detection context has no template scorer")
	}

	strat := c.ActiveStrategy()
	session := c.tracker.StartSession(strat.Name, shot.Hash())
	if groundTruth != nil {
		session.SetGroundTruth(groundTruth)
	}

	session.StartPhase(metrics.PhaseLoad)
	regions := c.DetectRegions(shot)
	issues := layout.Validate(regions)
	session.EndPhase(metrics.PhaseLoad)

	for _, issue := range issues {
		fmt.Printf("[Detect] Layout warning: %s\n", issue)
	}

	session.StartPhase(metrics.PhasePreprocess)
	hotbarSlots := c.DetectOccupancy(shot, regions.Hotbar.Slots)
	weaponSlots := c.DetectOccupancy(shot, regions.Weapons.Slots)
	tomeSlots := c.DetectOccupancy(shot, regions.Tomes.Slots)

	totalSlots := len(hotbarSlots) + len(weaponSlots) + len(tomeSlots) + 1
	valid := analysis.CountOccupied(hotbarSlots) +
		analysis.CountOccupied(weaponSlots) +
		analysis.CountOccupied(tomeSlots) + 1 // portrait always scans
	session.SetSlotStats(totalSlots, valid, totalSlots-valid)
	session.EndPhase(metrics.PhasePreprocess)

	session.StartPhase(metrics.PhaseMatch)
	var matches []SlotMatch
	matches = append(matches, c.matchRegion(shot, hotbarSlots, catalog.KindItem, strat, session)...)
	matches = append(matches, c.matchRegion(shot, weaponSlots, catalog.KindWeapon, strat, session)...)
	matches = append(matches, c.matchRegion(shot, tomeSlots, catalog.KindTome, strat, session)...)

	portraitSlot := layout.SlotInfo{Bounds: regions.Portrait.Bounds, Occupancy: layout.OccupancyFilled}
	matches = append(matches, c.matchRegion(shot, []layout.SlotInfo{portraitSlot}, catalog.KindCharacter, strat, session)...)
	session.EndPhase(metrics.PhaseMatch)

	session.StartPhase(metrics.PhasePostprocess)
	m := session.Complete()
	session.EndPhase(metrics.PhasePostprocess)

	return &BuildResult{
		Regions: regions,
		Issues:  issues,
		Matches: matches,
		Metrics: m,
	}, nil
}

// matchRegion matches every occupied slot of one region against the
// templates for its entity kind.
func (c *DetectionContext) matchRegion(shot *screenshot.Screenshot, slots []layout.SlotInfo,
	kind catalog.Kind, strat strategy.Strategy, session *metrics.Session) []SlotMatch {

	templates := c.templatesFor(kind)
	var out []SlotMatch

	for _, slot := range slots {
		if slot.Occupancy != layout.OccupancyFilled {
			continue
		}

		sm := c.matchSlot(shot, slot, kind, templates, strat)
		if sm == nil && strat.OCRFallback && c.extractor != nil {
			sm = c.matchSlotOCR(shot, slot, kind)
		}
		if sm == nil {
			continue
		}
		session.AddDetection(sm.EntityID, sm.Confidence, sm.Pass)
		out = append(out, *sm)
	}
	return out
}

// matchSlot scores one occupied slot against all candidate templates and
// applies the strategy's color filter, feedback penalties, and threshold
// policy. Returns nil when nothing clears the final pass.
func (c *DetectionContext) matchSlot(shot *screenshot.Screenshot, slot layout.SlotInfo,
	kind catalog.Kind, templates []*match.Template, strat strategy.Strategy) *SlotMatch {

	if len(templates) == 0 {
		return nil
	}

	slotColors := analysis.ExtractColorProfile(shot, slot.Bounds)
	region := shot.SubImage(slot.Bounds)

	var (
		bestTmpl  *match.Template
		bestScore float64
		scores    []float64
	)

	for _, tmpl := range templates {
		if strat.ColorFilter != strategy.ColorFilterOff {
			sim := analysis.CompareColorProfiles(slotColors, tmpl.Colors)
			if sim < strat.ColorCutoff {
				continue
			}
			if strat.ColorFilter == strategy.ColorFilterStrict &&
				slotColors.Dominant != tmpl.Colors.Dominant {
				continue
			}
		}

		score, err := c.scorer.Score(region, tmpl, strat.Algorithm)
		if err != nil {
			if c.debug {
				fmt.Printf("[Detect] Scoring %s failed: %v\n", tmpl.EntityID, err)
			}
			continue
		}

		if strat.FeedbackPenalties {
			score += c.feedback.TemplatePenalty(tmpl.EntityID)
			if score < 0 {
				score = 0
			}
		}

		scores = append(scores, score)
		if bestTmpl == nil || score > bestScore {
			bestTmpl = tmpl
			bestScore = score
		}

		if strat.EarlyExit && score >= strategy.ThresholdsFor(strat, tmpl.Rarity).Pass1 {
			break
		}
	}

	if bestTmpl == nil {
		return nil
	}

	th := c.resolveThresholds(strat, bestTmpl.Rarity, scores)
	pass := passFor(bestScore, th, strat.MultiPass)
	if pass == 0 {
		return nil
	}

	slot.Confidence = bestScore
	return &SlotMatch{
		Slot:       slot,
		Kind:       kind,
		EntityID:   bestTmpl.EntityID,
		EntityName: c.entityName(bestTmpl.EntityID),
		Confidence: bestScore,
		Pass:       pass,
	}
}

// resolveThresholds picks the pass triple for the winning candidate. The
// adaptive-gap policy is computed here, at scoring time, from the full
// candidate score list; the static threshold function only ever returns
// its placeholder for that policy.
func (c *DetectionContext) resolveThresholds(strat strategy.Strategy, rarity string, scores []float64) strategy.Thresholds {
	if strat.ThresholdPolicy == strategy.PolicyAdaptiveGap {
		return strategy.GapThresholds(scores)
	}
	return strategy.ThresholdsFor(strat, rarity)
}

// passFor returns which pass (1-3) a score clears, or 0 for none.
// Without multi-pass only pass 1 counts.
func passFor(score float64, th strategy.Thresholds, multiPass bool) int {
	switch {
	case score >= th.Pass1:
		return 1
	case !multiPass:
		return 0
	case score >= th.Pass2:
		return 2
	case score >= th.Pass3:
		return 3
	default:
		return 0
	}
}

// matchSlotOCR is the text-extraction fallback for slots template
// matching could not resolve.
func (c *DetectionContext) matchSlotOCR(shot *screenshot.Screenshot, slot layout.SlotInfo, kind catalog.Kind) *SlotMatch {
	text, err := c.extractor.ExtractText(shot.SubImage(slot.Bounds))
	if err != nil {
		if c.debug {
			fmt.Printf("[Detect] OCR fallback failed for slot %d: %v\n", slot.Index, err)
		}
		return nil
	}

	result, ok := ocr.FuzzyMatch(text, c.cat.ByKind(kind), ocrCutoff)
	if !ok {
		return nil
	}

	slot.Confidence = result.Score
	return &SlotMatch{
		Slot:       slot,
		Kind:       kind,
		EntityID:   result.Entity.ID(),
		EntityName: result.Entity.Name(),
		Confidence: result.Score,
		Pass:       3,
		ViaOCR:     true,
	}
}

func (c *DetectionContext) entityName(id string) string {
	if e := c.cat.ByID(id); e != nil {
		return e.Name()
	}
	return id
}
