// Package metrics times detection runs, scores them against ground truth,
// and compares the performance of alternative detection strategies.
package metrics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Phase names one timed stage of a detection run.
type Phase string

const (
	PhaseLoad        Phase = "load"
	PhasePreprocess  Phase = "preprocess"
	PhaseMatch       Phase = "match"
	PhasePostprocess Phase = "postprocess"
)

// Confidence band boundaries.
const (
	highBand   = 0.85
	mediumBand = 0.70
)

// Detection is one matched slot recorded during a session.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Pass       int     `json:"pass"` // 1-3; which threshold pass accepted it
}

// SlotStats counts slot dispositions for one run.
type SlotStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"` // non-empty slots worth matching
	Matched int `json:"matched"`
	Empty   int `json:"empty"`
}

// DetectionMetrics is one immutable snapshot of a completed run.
type DetectionMetrics struct {
	SessionID   string        `json:"session_id"`
	Name        string        `json:"name"`
	Strategy    string        `json:"strategy"`
	CompletedAt time.Time     `json:"completed_at"`
	TotalTime   time.Duration `json:"total_time"`

	PhaseTimes map[Phase]time.Duration `json:"phase_times"`

	Detections       int     `json:"detections"`
	MeanConfidence   float64 `json:"mean_confidence"`
	MedianConfidence float64 `json:"median_confidence"`
	HighCount        int     `json:"high_count"`   // >= 0.85
	MediumCount      int     `json:"medium_count"` // 0.70 - 0.85
	LowCount         int     `json:"low_count"`    // < 0.70
	PassCounts       [3]int  `json:"pass_counts"`
	Slots            SlotStats `json:"slots"`
	MatchRate        float64 `json:"match_rate"`

	HasGroundTruth bool    `json:"has_ground_truth"`
	TruePositives  int     `json:"true_positives,omitempty"`
	FalsePositives int     `json:"false_positives,omitempty"`
	FalseNegatives int     `json:"false_negatives,omitempty"`
	Precision      float64 `json:"precision,omitempty"`
	Recall         float64 `json:"recall,omitempty"`
	F1             float64 `json:"f1,omitempty"`
	Accuracy       float64 `json:"accuracy,omitempty"`
}

// Session tracks one in-progress detection run. Sessions are not safe for
// concurrent use; each run owns its session.
type Session struct {
	id       string
	name     string
	strategy string
	started  time.Time

	phaseStart map[Phase]time.Time
	phaseTimes map[Phase]time.Duration

	detections  []Detection
	slots       SlotStats
	groundTruth map[string]int
	tracker     *Tracker
}

// newSession is created through Tracker.StartSession.
func newSession(tracker *Tracker, strategyName, name string) *Session {
	return &Session{
		id:         uuid.NewString(),
		name:       name,
		strategy:   strategyName,
		started:    time.Now(),
		phaseStart: make(map[Phase]time.Time),
		phaseTimes: make(map[Phase]time.Duration),
		tracker:    tracker,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// StartPhase marks the beginning of a phase. Phases are independently
// optional; an unmarked phase contributes zero time.
func (s *Session) StartPhase(p Phase) {
	s.phaseStart[p] = time.Now()
}

// EndPhase records the wall-clock duration since StartPhase. Ending a
// phase that was never started is a no-op.
func (s *Session) EndPhase(p Phase) {
	start, ok := s.phaseStart[p]
	if !ok {
		return
	}
	s.phaseTimes[p] += time.Since(start)
	delete(s.phaseStart, p)
}

// AddDetection records one matched slot with its accepting pass (1-3).
func (s *Session) AddDetection(label string, confidence float64, pass int) {
	if pass < 1 || pass > 3 {
		pass = 1
	}
	s.detections = append(s.detections, Detection{Label: label, Confidence: confidence, Pass: pass})
}

// SetSlotStats records the slot disposition counts for the run.
func (s *Session) SetSlotStats(total, valid, empty int) {
	s.slots.Total = total
	s.slots.Valid = valid
	s.slots.Empty = empty
}

// SetGroundTruth supplies the expected entity multiset (label -> count)
// for accuracy scoring. Optional.
func (s *Session) SetGroundTruth(expected map[string]int) {
	s.groundTruth = make(map[string]int, len(expected))
	for label, count := range expected {
		s.groundTruth[label] = count
	}
}

// Complete finalizes the session into an immutable snapshot, appends it
// to the owning tracker's history, and returns it.
func (s *Session) Complete() DetectionMetrics {
	m := DetectionMetrics{
		SessionID:   s.id,
		Name:        s.name,
		Strategy:    s.strategy,
		CompletedAt: time.Now(),
		TotalTime:   time.Since(s.started),
		PhaseTimes:  make(map[Phase]time.Duration, len(s.phaseTimes)),
		Detections:  len(s.detections),
		Slots:       s.slots,
	}
	for p, d := range s.phaseTimes {
		m.PhaseTimes[p] = d
	}
	m.Slots.Matched = len(s.detections)

	if len(s.detections) > 0 {
		confidences := make([]float64, len(s.detections))
		for i, d := range s.detections {
			confidences[i] = d.Confidence
			switch {
			case d.Confidence >= highBand:
				m.HighCount++
			case d.Confidence >= mediumBand:
				m.MediumCount++
			default:
				m.LowCount++
			}
			m.PassCounts[d.Pass-1]++
		}
		m.MeanConfidence = stat.Mean(confidences, nil)
		sort.Float64s(confidences)
		m.MedianConfidence = stat.Quantile(0.5, stat.Empirical, confidences, nil)
	}

	if s.slots.Valid > 0 {
		m.MatchRate = float64(len(s.detections)) / float64(s.slots.Valid)
	}

	if s.groundTruth != nil {
		scoreGroundTruth(&m, s.detections, s.groundTruth)
	}

	if s.tracker != nil {
		s.tracker.append(m)
	}
	return m
}

// scoreGroundTruth compares the detected label multiset against the
// expected one. Over-detection counts as false positives, under-detection
// as false negatives.
func scoreGroundTruth(m *DetectionMetrics, detections []Detection, expected map[string]int) {
	detected := make(map[string]int)
	for _, d := range detections {
		detected[d.Label]++
	}

	labels := make(map[string]struct{})
	for label := range detected {
		labels[label] = struct{}{}
	}
	for label := range expected {
		labels[label] = struct{}{}
	}

	var tp, fp, fn int
	for label := range labels {
		det := detected[label]
		exp := expected[label]
		if det < exp {
			tp += det
			fn += exp - det
		} else {
			tp += exp
			fp += det - exp
		}
	}

	m.HasGroundTruth = true
	m.TruePositives = tp
	m.FalsePositives = fp
	m.FalseNegatives = fn
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if tp+fp+fn > 0 {
		m.Accuracy = float64(tp) / float64(tp+fp+fn)
	}
}
