package detect

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/layout"
	"github.com/jtn0123/MegaBonk-sub002/internal/match"
	"github.com/jtn0123/MegaBonk-sub002/internal/screenshot"
	"github.com/jtn0123/MegaBonk-sub002/internal/strategy"
	"github.com/jtn0123/MegaBonk-sub002/pkg/geometry"
)

// stubScorer returns a fixed score per template entity ID.
type stubScorer struct {
	scores map[string]float64
	err    error
}

func (s stubScorer) Score(_ image.Image, tmpl *match.Template, _ strategy.Algorithm) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[tmpl.EntityID], nil
}

// stubExtractor returns canned OCR text.
type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(image.Image) (string, error) { return s.text, s.err }
func (s stubExtractor) Close() error                            { return nil }

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entity{
		catalog.Item{BaseEntity: catalog.BaseEntity{EntityID: "clover", EntityName: "Lucky Clover", Tier: catalog.RarityCommon}},
		catalog.Item{BaseEntity: catalog.BaseEntity{EntityID: "anvil", EntityName: "Iron Anvil", Tier: catalog.RarityRare}},
		catalog.Character{BaseEntity: catalog.BaseEntity{EntityID: "bonk", EntityName: "Sir Bonk", Tier: catalog.RarityCommon}},
	})
}

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// checkerShot fills the whole frame with a high-variance checkerboard so
// every slot reads as occupied.
func checkerShot(w, h int) *screenshot.Screenshot {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return screenshot.FromImage(img)
}

func itemTemplates(t *testing.T, scores map[string]float64) []*match.Template {
	t.Helper()
	var out []*match.Template
	for id := range scores {
		out = append(out, match.NewTemplate(id, "common", solidImage(64, 64, color.RGBA{90, 160, 60, 255}), 32))
	}
	return out
}

func newTestContext(scorer match.Scorer) *DetectionContext {
	return NewContext(Options{Catalog: testCatalog(), Scorer: scorer})
}

func TestActiveStrategyDefaultsToCurrent(t *testing.T) {
	c := newTestContext(stubScorer{})
	assert.Equal(t, "current", c.ActiveStrategy().Name)
}

func TestSetActiveStrategyName(t *testing.T) {
	c := newTestContext(stubScorer{})
	require.NoError(t, c.SetActiveStrategyName("fast"))
	assert.Equal(t, "fast", c.ActiveStrategy().Name)

	err := c.SetActiveStrategyName("turbo")
	require.Error(t, err)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
	assert.Equal(t, "fast", c.ActiveStrategy().Name, "failed switch leaves active unchanged")
}

func TestActiveStrategySnapshot(t *testing.T) {
	c := newTestContext(stubScorer{})
	require.NoError(t, c.SetActiveStrategyName("accurate"))
	snap := c.ActiveStrategy()

	require.NoError(t, c.SetActiveStrategyName("fast"))
	assert.Equal(t, "accurate", snap.Name, "snapshot keeps its values after a swap")
	assert.Equal(t, "fast", c.ActiveStrategy().Name)
}

func TestContextsAreIsolated(t *testing.T) {
	a := newTestContext(stubScorer{})
	b := newTestContext(stubScorer{})

	require.NoError(t, a.SetActiveStrategyName("fast"))
	a.RecordCorrection("clover", "anvil", 0.8, "")
	a.RecordCorrection("clover", "anvil", 0.8, "")

	assert.Equal(t, "current", b.ActiveStrategy().Name)
	assert.Zero(t, b.SimilarityPenalty("anvil", "clover"))
	assert.Negative(t, a.SimilarityPenalty("anvil", "clover"))
}

func TestDetectRegions(t *testing.T) {
	c := newTestContext(stubScorer{})
	shot := screenshot.FromImage(solidImage(1920, 1080, color.RGBA{30, 30, 30, 255}))

	regions := c.DetectRegions(shot)
	assert.Equal(t, "1080p", regions.Geometry.Profile.Name)
	assert.Len(t, regions.Hotbar.Slots, catalog.MaxItemSlots)
	assert.Len(t, regions.Weapons.Slots, 5)
	assert.Len(t, regions.Tomes.Slots, 5)
	assert.Empty(t, layout.Validate(regions))
}

func TestDetectBuildRequiresScorer(t *testing.T) {
	c := NewContext(Options{Catalog: testCatalog()})
	_, err := c.DetectBuild(checkerShot(1920, 1080))
	require.Error(t, err)
}

func TestDetectBuildEmptyScreen(t *testing.T) {
	c := newTestContext(stubScorer{scores: map[string]float64{"clover": 0.9}})
	shot := screenshot.FromImage(solidImage(1920, 1080, color.RGBA{20, 20, 20, 255}))

	res, err := c.DetectBuild(shot)
	require.NoError(t, err)

	assert.Empty(t, res.Matches, "uniform frame has no occupied slots and no templates to hit")
	assert.Equal(t, 23, res.Metrics.Slots.Total) // 12 items + 5 weapons + 5 tomes + portrait
	assert.Equal(t, 1, res.Metrics.Slots.Valid)  // portrait always scans
	assert.Equal(t, 22, res.Metrics.Slots.Empty)
	assert.Zero(t, res.Metrics.Detections)
}

func TestDetectBuildMatchesOccupiedSlots(t *testing.T) {
	scores := map[string]float64{"clover": 0.9, "anvil": 0.5}
	c := newTestContext(stubScorer{scores: scores})
	c.SetActiveStrategy(strategy.Strategy{
		Name:            "test",
		ColorFilter:     strategy.ColorFilterOff,
		ThresholdPolicy: strategy.PolicyFixed,
		MultiPass:       true,
	})
	c.RegisterTemplates(catalog.KindItem, itemTemplates(t, scores))

	res, err := c.DetectBuild(checkerShot(1920, 1080))
	require.NoError(t, err)

	// Every hotbar slot reads occupied and resolves to the highest-scoring
	// template. Weapons, tomes, and the portrait have no templates.
	require.Len(t, res.Matches, catalog.MaxItemSlots)
	for _, m := range res.Matches {
		assert.Equal(t, catalog.KindItem, m.Kind)
		assert.Equal(t, "clover", m.EntityID)
		assert.Equal(t, "Lucky Clover", m.EntityName)
		assert.InDelta(t, 0.9, m.Confidence, 1e-9)
		assert.Equal(t, 1, m.Pass)
		assert.False(t, m.ViaOCR)
	}

	assert.Equal(t, catalog.MaxItemSlots, res.Metrics.Detections)
	assert.Equal(t, 23, res.Metrics.Slots.Valid, "checkerboard fills every slot")
}

func TestDetectBuildWithGroundTruth(t *testing.T) {
	scores := map[string]float64{"clover": 0.9}
	c := newTestContext(stubScorer{scores: scores})
	c.SetActiveStrategy(strategy.Strategy{
		Name:            "test",
		ColorFilter:     strategy.ColorFilterOff,
		ThresholdPolicy: strategy.PolicyFixed,
	})
	c.RegisterTemplates(catalog.KindItem, itemTemplates(t, scores))

	res, err := c.DetectBuildWithGroundTruth(checkerShot(1920, 1080),
		map[string]int{"clover": 12})
	require.NoError(t, err)

	require.True(t, res.Metrics.HasGroundTruth)
	assert.Equal(t, 12, res.Metrics.TruePositives)
	assert.Zero(t, res.Metrics.FalsePositives)
	assert.Zero(t, res.Metrics.FalseNegatives)
	assert.InDelta(t, 1.0, res.Metrics.Accuracy, 1e-9)
}

func TestDetectBuildAppendsHistory(t *testing.T) {
	c := newTestContext(stubScorer{})
	shot := screenshot.FromImage(solidImage(1280, 720, color.RGBA{20, 20, 20, 255}))

	_, err := c.DetectBuild(shot)
	require.NoError(t, err)
	_, err = c.DetectBuild(shot)
	require.NoError(t, err)

	hist := c.Tracker().History()
	require.Len(t, hist, 2)
	assert.Equal(t, "current", hist[0].Strategy)

	_, err = c.CompareStrategies([]string{"current"})
	assert.NoError(t, err)
}

func filledSlot(x, y, size int) layout.SlotInfo {
	return layout.SlotInfo{Bounds: geometry.NewRectInt(x, y, size, size), Occupancy: layout.OccupancyFilled}
}

func TestMatchSlotMultiPass(t *testing.T) {
	// Score lands between pass2 and pass3 of the fixed triple.
	c := newTestContext(stubScorer{scores: map[string]float64{"clover": 0.66}})
	templates := itemTemplates(t, map[string]float64{"clover": 0.66})
	shot := checkerShot(200, 200)

	strict := strategy.Strategy{ColorFilter: strategy.ColorFilterOff, ThresholdPolicy: strategy.PolicyFixed}
	assert.Nil(t, c.matchSlot(shot, filledSlot(10, 10, 64), catalog.KindItem, templates, strict),
		"single-pass rejects anything below pass1")

	multi := strict
	multi.MultiPass = true
	sm := c.matchSlot(shot, filledSlot(10, 10, 64), catalog.KindItem, templates, multi)
	require.NotNil(t, sm)
	assert.Equal(t, 3, sm.Pass)
	assert.InDelta(t, 0.66, sm.Confidence, 1e-9)
}

func TestMatchSlotFeedbackPenalty(t *testing.T) {
	c := newTestContext(stubScorer{scores: map[string]float64{"clover": 0.72}})
	templates := itemTemplates(t, map[string]float64{"clover": 0.72})
	shot := checkerShot(200, 200)

	strat := strategy.Strategy{
		ColorFilter:       strategy.ColorFilterOff,
		ThresholdPolicy:   strategy.PolicyFixed,
		MultiPass:         true,
		FeedbackPenalties: true,
	}

	sm := c.matchSlot(shot, filledSlot(10, 10, 64), catalog.KindItem, templates, strat)
	require.NotNil(t, sm)
	assert.Equal(t, 2, sm.Pass)

	// Two corrections against the clover template drop the score from
	// 0.72 to 0.66, demoting the match to pass 3.
	c.RecordCorrection("clover", "anvil", 0.72, "")
	c.RecordCorrection("clover", "anvil", 0.72, "")

	sm = c.matchSlot(shot, filledSlot(10, 10, 64), catalog.KindItem, templates, strat)
	require.NotNil(t, sm)
	assert.Equal(t, 3, sm.Pass)
	assert.InDelta(t, 0.66, sm.Confidence, 1e-9)
}

func TestMatchSlotAdaptiveGap(t *testing.T) {
	// A wide score gap relaxes pass1, promoting a 0.75 to a pass-1 match.
	scores := map[string]float64{"clover": 0.75, "anvil": 0.30}
	c := newTestContext(stubScorer{scores: scores})
	templates := itemTemplates(t, scores)
	shot := checkerShot(200, 200)

	gap := strategy.Strategy{
		ColorFilter:     strategy.ColorFilterOff,
		ThresholdPolicy: strategy.PolicyAdaptiveGap,
		MultiPass:       true,
	}
	sm := c.matchSlot(shot, filledSlot(10, 10, 64), catalog.KindItem, templates, gap)
	require.NotNil(t, sm)
	assert.Equal(t, "clover", sm.EntityID)
	assert.Equal(t, 1, sm.Pass)

	fixed := gap
	fixed.ThresholdPolicy = strategy.PolicyFixed
	sm = c.matchSlot(shot, filledSlot(10, 10, 64), catalog.KindItem, templates, fixed)
	require.NotNil(t, sm)
	assert.Equal(t, 2, sm.Pass, "same score is only pass 2 under the fixed triple")
}

func TestMatchSlotScorerErrorSkipsCandidate(t *testing.T) {
	c := newTestContext(stubScorer{err: errors.New("boom")})
	templates := itemTemplates(t, map[string]float64{"clover": 0.9})

	sm := c.matchSlot(checkerShot(200, 200), filledSlot(10, 10, 64), catalog.KindItem, templates,
		strategy.Strategy{ColorFilter: strategy.ColorFilterOff})
	assert.Nil(t, sm)
}

func TestMatchSlotNoTemplates(t *testing.T) {
	c := newTestContext(stubScorer{})
	sm := c.matchSlot(checkerShot(200, 200), filledSlot(10, 10, 64), catalog.KindItem, nil,
		strategy.Strategy{})
	assert.Nil(t, sm)
}

func TestOCRFallback(t *testing.T) {
	c := NewContext(Options{
		Catalog:   testCatalog(),
		Scorer:    stubScorer{scores: map[string]float64{"clover": 0.1, "anvil": 0.1}},
		Extractor: stubExtractor{text: "Iron Anvil"},
	})
	c.SetActiveStrategy(strategy.Strategy{
		Name:            "test",
		ColorFilter:     strategy.ColorFilterOff,
		ThresholdPolicy: strategy.PolicyFixed,
		OCRFallback:     true,
	})
	scores := map[string]float64{"clover": 0.1, "anvil": 0.1}
	c.RegisterTemplates(catalog.KindItem, itemTemplates(t, scores))

	res, err := c.DetectBuild(checkerShot(1920, 1080))
	require.NoError(t, err)

	var viaOCR int
	for _, m := range res.Matches {
		if m.Kind != catalog.KindItem {
			continue
		}
		require.True(t, m.ViaOCR)
		assert.Equal(t, "anvil", m.EntityID)
		assert.Equal(t, 1.0, m.Confidence)
		assert.Equal(t, 3, m.Pass)
		viaOCR++
	}
	assert.Equal(t, catalog.MaxItemSlots, viaOCR)
}

func TestOCRFallbackRespectsCutoff(t *testing.T) {
	c := NewContext(Options{
		Catalog:   testCatalog(),
		Scorer:    stubScorer{},
		Extractor: stubExtractor{text: "zzzz"},
	})
	sm := c.matchSlotOCR(checkerShot(200, 200), filledSlot(10, 10, 64), catalog.KindItem)
	assert.Nil(t, sm)

	c2 := NewContext(Options{
		Catalog:   testCatalog(),
		Scorer:    stubScorer{},
		Extractor: stubExtractor{err: errors.New("tesseract unavailable")},
	})
	assert.Nil(t, c2.matchSlotOCR(checkerShot(200, 200), filledSlot(10, 10, 64), catalog.KindItem))
}

func TestPassFor(t *testing.T) {
	th := strategy.Thresholds{Pass1: 0.80, Pass2: 0.70, Pass3: 0.60}

	assert.Equal(t, 1, passFor(0.85, th, false))
	assert.Equal(t, 1, passFor(0.80, th, true))
	assert.Equal(t, 0, passFor(0.75, th, false))
	assert.Equal(t, 2, passFor(0.75, th, true))
	assert.Equal(t, 3, passFor(0.65, th, true))
	assert.Equal(t, 0, passFor(0.55, th, true))
}
