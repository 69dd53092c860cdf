package metrics

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoRuns is returned when a comparison names a strategy that has no
// recorded runs — there is nothing to compare, and silently skipping it
// would misrepresent the result.
var ErrNoRuns = errors.New("no recorded runs for strategy")

// DefaultHistoryCap bounds the rolling metrics history.
const DefaultHistoryCap = 50

// balancedWorstCaseMs is the assumed worst-case total run time used to
// normalize the speed score in balanced ranking.
const balancedWorstCaseMs = 10000.0

// Tracker owns the rolling history of completed run snapshots.
type Tracker struct {
	mu      sync.RWMutex
	cap     int
	history []DetectionMetrics
}

// NewTracker creates a tracker with the default history cap.
func NewTracker() *Tracker {
	return NewTrackerWithCap(DefaultHistoryCap)
}

// NewTrackerWithCap creates a tracker retaining at most cap snapshots,
// oldest evicted first.
func NewTrackerWithCap(cap int) *Tracker {
	if cap <= 0 {
		cap = DefaultHistoryCap
	}
	return &Tracker{cap: cap}
}

// StartSession begins a tracked detection run for the named strategy.
func (t *Tracker) StartSession(strategyName, name string) *Session {
	return newSession(t, strategyName, name)
}

func (t *Tracker) append(m DetectionMetrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, m)
	if len(t.history) > t.cap {
		t.history = t.history[len(t.history)-t.cap:]
	}
}

// History returns a copy of the rolling history, oldest first.
func (t *Tracker) History() []DetectionMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]DetectionMetrics, len(t.history))
	copy(out, t.history)
	return out
}

// Latest returns the most recent snapshot for a strategy.
func (t *Tracker) Latest(strategyName string) (DetectionMetrics, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.history) - 1; i >= 0; i-- {
		if t.history[i].Strategy == strategyName {
			return t.history[i], true
		}
	}
	return DetectionMetrics{}, false
}

// ComparisonEntry is one strategy's line in a comparison.
type ComparisonEntry struct {
	Strategy      string           `json:"strategy"`
	Metrics       DetectionMetrics `json:"metrics"`
	AccuracyScore float64          `json:"accuracy_score"` // F1, else accuracy, else match rate
	SpeedScore    float64          `json:"speed_score"`
	BalancedScore float64          `json:"balanced_score"`
}

// Comparison ranks strategies by their most recent runs.
type Comparison struct {
	Entries      []ComparisonEntry `json:"entries"`
	Fastest      string            `json:"fastest"`
	MostAccurate string            `json:"most_accurate"`
	Balanced     string            `json:"balanced"`
}

// CompareStrategies pulls each named strategy's most recent snapshot and
// ranks them by speed, accuracy, and a balanced composite. Ties keep the
// earlier input. A strategy with zero recorded runs fails with ErrNoRuns.
func (t *Tracker) CompareStrategies(names []string) (*Comparison, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no strategies named", ErrNoRuns)
	}

	entries := make([]ComparisonEntry, 0, len(names))
	for _, name := range names {
		m, ok := t.Latest(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoRuns, name)
		}

		speed := 1.0 - float64(m.TotalTime.Milliseconds())/balancedWorstCaseMs
		if speed < 0 {
			speed = 0
		}
		entries = append(entries, ComparisonEntry{
			Strategy:      name,
			Metrics:       m,
			AccuracyScore: accuracyLike(m),
			SpeedScore:    speed,
			BalancedScore: (speed + accuracyLike(m)) / 2,
		})
	}

	cmp := &Comparison{Entries: entries}
	cmp.Fastest = pickFastest(entries)
	cmp.MostAccurate = pickMostAccurate(entries)
	cmp.Balanced = pickBalanced(entries)
	return cmp, nil
}

// accuracyLike returns the best available accuracy-style score: F1, else
// raw accuracy, else match rate.
func accuracyLike(m DetectionMetrics) float64 {
	if m.HasGroundTruth {
		if m.F1 > 0 {
			return m.F1
		}
		if m.Accuracy > 0 {
			return m.Accuracy
		}
	}
	return m.MatchRate
}

func pickFastest(entries []ComparisonEntry) string {
	best := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].Metrics.TotalTime < entries[best].Metrics.TotalTime {
			best = i
		}
	}
	return entries[best].Strategy
}

// pickMostAccurate ranks by F1 when any run has it, falling back to raw
// accuracy, falling back to fastest.
func pickMostAccurate(entries []ComparisonEntry) string {
	best := -1
	for i, e := range entries {
		if e.Metrics.HasGroundTruth && e.Metrics.F1 > 0 {
			if best < 0 || e.Metrics.F1 > entries[best].Metrics.F1 {
				best = i
			}
		}
	}
	if best >= 0 {
		return entries[best].Strategy
	}

	for i, e := range entries {
		if e.Metrics.HasGroundTruth && e.Metrics.Accuracy > 0 {
			if best < 0 || e.Metrics.Accuracy > entries[best].Metrics.Accuracy {
				best = i
			}
		}
	}
	if best >= 0 {
		return entries[best].Strategy
	}

	return pickFastest(entries)
}

func pickBalanced(entries []ComparisonEntry) string {
	best := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].BalancedScore > entries[best].BalancedScore {
			best = i
		}
	}
	return entries[best].Strategy
}
