// Package strategy defines named detection strategy bundles and the
// confidence threshold policies attached to them.
package strategy

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownStrategy is returned when a strategy name is not registered.
// Silently substituting another strategy would corrupt comparison runs,
// so this is a hard failure.
var ErrUnknownStrategy = errors.New("unknown strategy")

// ColorFilterMode controls how color signatures gate template matching.
type ColorFilterMode int

const (
	// ColorFilterOff disables the color pre-filter entirely.
	ColorFilterOff ColorFilterMode = iota
	// ColorFilterPrefilter skips candidates whose color signature
	// similarity falls below the cutoff before pixel matching runs.
	ColorFilterPrefilter
	// ColorFilterStrict requires a dominant-bucket match in addition to
	// the similarity cutoff.
	ColorFilterStrict
)

func (m ColorFilterMode) String() string {
	switch m {
	case ColorFilterOff:
		return "off"
	case ColorFilterPrefilter:
		return "prefilter"
	case ColorFilterStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ThresholdPolicy names how pass thresholds are derived.
type ThresholdPolicy int

const (
	// PolicyFixed uses one constant threshold triple.
	PolicyFixed ThresholdPolicy = iota
	// PolicyAdaptiveRarity uses a per-rarity table: lower rarities get
	// stricter thresholds, higher rarities more lenient ones.
	PolicyAdaptiveRarity
	// PolicyAdaptiveGap derives thresholds from the runtime score gap
	// between the best and second-best candidate. The static Thresholds
	// function returns the fixed triple as a placeholder for this policy;
	// the concrete value is computed at scoring time via GapThresholds.
	PolicyAdaptiveGap
)

func (p ThresholdPolicy) String() string {
	switch p {
	case PolicyFixed:
		return "fixed"
	case PolicyAdaptiveRarity:
		return "adaptive-rarity"
	case PolicyAdaptiveGap:
		return "adaptive-gap"
	default:
		return "unknown"
	}
}

// Algorithm selects the template matching primitive.
type Algorithm int

const (
	AlgorithmNCC Algorithm = iota // normalized cross-correlation
	AlgorithmSSD                  // sum of squared differences
	AlgorithmSSIM                 // structural similarity
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNCC:
		return "ncc"
	case AlgorithmSSD:
		return "ssd"
	case AlgorithmSSIM:
		return "ssim"
	default:
		return "unknown"
	}
}

// Strategy is an immutable named bundle of detection settings. Swapping
// the active strategy replaces the reference; a previously returned
// snapshot keeps its old values.
type Strategy struct {
	Name            string          `json:"name"`
	ColorFilter     ColorFilterMode `json:"color_filter"`
	ColorCutoff     float64         `json:"color_cutoff"` // minimum signature similarity for the pre-filter
	ThresholdPolicy ThresholdPolicy `json:"threshold_policy"`
	Algorithm       Algorithm       `json:"algorithm"`

	MultiPass         bool `json:"multi_pass"`         // try pass2/pass3 thresholds when pass1 finds nothing
	OCRFallback       bool `json:"ocr_fallback"`       // fall back to text extraction for unmatched slots
	FeedbackPenalties bool `json:"feedback_penalties"` // apply learned confusion penalties to scores
	EarlyExit         bool `json:"early_exit"`         // stop scanning candidates once pass1 is met
}

// Fast favors speed: loose single-pass thresholds, aggressive color
// filtering, early exit.
func Fast() Strategy {
	return Strategy{
		Name:              "fast",
		ColorFilter:       ColorFilterStrict,
		ColorCutoff:       0.43,
		ThresholdPolicy:   PolicyFixed,
		Algorithm:         AlgorithmNCC,
		MultiPass:         false,
		OCRFallback:       false,
		FeedbackPenalties: true,
		EarlyExit:         true,
	}
}

// Accurate favors recall: rarity-adaptive thresholds, multi-pass, OCR
// fallback, no early exit.
func Accurate() Strategy {
	return Strategy{
		Name:              "accurate",
		ColorFilter:       ColorFilterPrefilter,
		ColorCutoff:       0.29,
		ThresholdPolicy:   PolicyAdaptiveRarity,
		Algorithm:         AlgorithmNCC,
		MultiPass:         true,
		OCRFallback:       true,
		FeedbackPenalties: true,
		EarlyExit:         false,
	}
}

// Balanced is the middle ground between Fast and Accurate.
func Balanced() Strategy {
	return Strategy{
		Name:              "balanced",
		ColorFilter:       ColorFilterPrefilter,
		ColorCutoff:       0.43,
		ThresholdPolicy:   PolicyAdaptiveRarity,
		Algorithm:         AlgorithmNCC,
		MultiPass:         true,
		OCRFallback:       false,
		FeedbackPenalties: true,
		EarlyExit:         true,
	}
}

// Current is the production default, tracking Balanced with the gap
// policy enabled.
func Current() Strategy {
	s := Balanced()
	s.Name = "current"
	s.ThresholdPolicy = PolicyAdaptiveGap
	return s
}

// Registry holds the named strategy presets. It is immutable after
// construction; custom bundles are applied by value, not registered.
type Registry struct {
	presets map[string]Strategy
}

// NewRegistry returns a registry with the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{presets: make(map[string]Strategy)}
	for _, s := range []Strategy{Fast(), Accurate(), Balanced(), Current()} {
		r.presets[s.Name] = s
	}
	return r
}

// Get returns the preset with the given name.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.presets[name]
	if !ok {
		return Strategy{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// Names returns the registered preset names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
