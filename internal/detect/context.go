// Package detect ties the detection engine together: resolution and
// layout, occupancy and color analysis, strategy-governed template
// matching, feedback penalties, and metrics tracking.
package detect

import (
	"sync"

	"github.com/jtn0123/MegaBonk-sub002/internal/analysis"
	"github.com/jtn0123/MegaBonk-sub002/internal/catalog"
	"github.com/jtn0123/MegaBonk-sub002/internal/feedback"
	"github.com/jtn0123/MegaBonk-sub002/internal/match"
	"github.com/jtn0123/MegaBonk-sub002/internal/metrics"
	"github.com/jtn0123/MegaBonk-sub002/internal/ocr"
	"github.com/jtn0123/MegaBonk-sub002/internal/strategy"
)

// Options configures a DetectionContext.
type Options struct {
	Catalog   *catalog.Catalog
	Scorer    match.Scorer
	Extractor ocr.TextExtractor // optional; enables the OCR fallback path

	Occupancy   analysis.OccupancyParams // zero value uses defaults
	HistoryCap  int                      // metrics history cap; 0 uses default
	FeedbackCap int                      // correction log cap; 0 uses default
	Debug       bool
}

// DetectionContext owns all mutable engine state for one caller: the
// active strategy, the feedback store, and the metrics history. Callers
// wanting isolated instances (tests, side-by-side comparisons) create
// separate contexts; there are no package-level singletons.
type DetectionContext struct {
	cat       *catalog.Catalog
	registry  *strategy.Registry
	scorer    match.Scorer
	extractor ocr.TextExtractor
	occupancy analysis.OccupancyParams
	debug     bool

	feedback *feedback.Store
	tracker  *metrics.Tracker

	mu        sync.RWMutex
	active    strategy.Strategy
	templates map[catalog.Kind][]*match.Template
}

// NewContext creates a detection context with the "current" preset
// active.
func NewContext(opts Options) *DetectionContext {
	occ := opts.Occupancy
	if occ.VarianceThreshold <= 0 {
		occ = analysis.DefaultOccupancyParams()
	}

	return &DetectionContext{
		cat:       opts.Catalog,
		registry:  strategy.NewRegistry(),
		scorer:    opts.Scorer,
		extractor: opts.Extractor,
		occupancy: occ,
		debug:     opts.Debug,
		feedback:  feedback.NewStoreWithCap(opts.FeedbackCap),
		tracker:   metrics.NewTrackerWithCap(opts.HistoryCap),
		active:    strategy.Current(),
		templates: make(map[catalog.Kind][]*match.Template),
	}
}

// Catalog returns the entity catalog the context matches against.
func (c *DetectionContext) Catalog() *catalog.Catalog { return c.cat }

// Feedback returns the correction store.
func (c *DetectionContext) Feedback() *feedback.Store { return c.feedback }

// Tracker returns the metrics tracker.
func (c *DetectionContext) Tracker() *metrics.Tracker { return c.tracker }

// ActiveStrategy returns a snapshot of the active strategy. The snapshot
// keeps its values even if the active strategy is swapped afterwards.
func (c *DetectionContext) ActiveStrategy() strategy.Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SetActiveStrategy replaces the active strategy with a full bundle.
func (c *DetectionContext) SetActiveStrategy(s strategy.Strategy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = s
}

// SetActiveStrategyName activates a registered preset by name. An
// unknown name fails with strategy.ErrUnknownStrategy and leaves the
// active strategy unchanged.
func (c *DetectionContext) SetActiveStrategyName(name string) error {
	s, err := c.registry.Get(name)
	if err != nil {
		return err
	}
	c.SetActiveStrategy(s)
	return nil
}

// ConfidenceThresholds resolves the pass thresholds for a strategy and
// an optional rarity label.
func (c *DetectionContext) ConfidenceThresholds(s strategy.Strategy, rarityLabel string) strategy.Thresholds {
	return strategy.ThresholdsFor(s, rarityLabel)
}

// RecordCorrection records a user correction of a misdetection.
func (c *DetectionContext) RecordCorrection(detectedID, actualID string, confidence float64, imageHash string) {
	c.feedback.RecordCorrection(detectedID, actualID, confidence, imageHash)
}

// SimilarityPenalty exposes the learned per-pair penalty.
func (c *DetectionContext) SimilarityPenalty(candidateID, templateID string) float64 {
	return c.feedback.SimilarityPenalty(candidateID, templateID)
}

// RegisterTemplates installs the prepared reference templates for one
// entity kind, replacing any previous set.
func (c *DetectionContext) RegisterTemplates(kind catalog.Kind, templates []*match.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates[kind] = templates
}

// templatesFor returns the shared template slice for one kind.
func (c *DetectionContext) templatesFor(kind catalog.Kind) []*match.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.templates[kind]
}

// StartSession begins a tracked metrics session under the active
// strategy.
func (c *DetectionContext) StartSession(name string) *metrics.Session {
	return c.tracker.StartSession(c.ActiveStrategy().Name, name)
}

// CompareStrategies ranks the named strategies by their latest runs.
func (c *DetectionContext) CompareStrategies(names []string) (*metrics.Comparison, error) {
	return c.tracker.CompareStrategies(names)
}
