// Package feedback records user corrections of misdetected entities and
// derives per-pair similarity penalties that bias future scoring away
// from repeated mistakes.
package feedback

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxPenalty is the cap on penalty magnitude.
const MaxPenalty = -0.15

// penaltyStep is the penalty added per repeated confusion.
const penaltyStep = -0.03

// minCountForPenalty is how often a pair must be confused before a
// penalty applies. A single correction may be user error.
const minCountForPenalty = 2

// DefaultLogCap bounds the retained correction log.
const DefaultLogCap = 500

// CorrectionRecord is one immutable user correction: the detector said
// Detected, the user said it was actually Actual.
type CorrectionRecord struct {
	ID         string    `json:"id"`
	DetectedID string    `json:"detected_id"`
	ActualID   string    `json:"actual_id"`
	Confidence float64   `json:"confidence"`
	ImageHash  string    `json:"image_hash,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// PairKey identifies an ordered (detected, actual) entity pair.
type PairKey struct {
	DetectedID string `json:"detected_id"`
	ActualID   string `json:"actual_id"`
}

// ConfusionEntry tracks how often one pair has been confused.
type ConfusionEntry struct {
	Pair     PairKey   `json:"pair"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// Store holds the correction log, the confusion matrix, and the derived
// penalties. Derived state is always a pure function of the log: import
// rebuilds it from scratch rather than merging.
type Store struct {
	mu        sync.RWMutex
	logCap    int
	log       []CorrectionRecord
	confusion map[PairKey]*ConfusionEntry
	penalties map[PairKey]float64
}

// NewStore creates an empty feedback store with the default log cap.
func NewStore() *Store {
	return NewStoreWithCap(DefaultLogCap)
}

// NewStoreWithCap creates an empty store retaining at most logCap
// correction records (oldest evicted first).
func NewStoreWithCap(logCap int) *Store {
	if logCap <= 0 {
		logCap = DefaultLogCap
	}
	return &Store{
		logCap:    logCap,
		confusion: make(map[PairKey]*ConfusionEntry),
		penalties: make(map[PairKey]float64),
	}
}

// RecordCorrection appends a correction to the log, increments the
// confusion count for the (detected, actual) pair, and recomputes the
// pair's penalty once the count reaches the minimum.
func (s *Store) RecordCorrection(detectedID, actualID string, confidence float64, imageHash string) CorrectionRecord {
	rec := CorrectionRecord{
		ID:         uuid.NewString(),
		DetectedID: detectedID,
		ActualID:   actualID,
		Confidence: confidence,
		ImageHash:  imageHash,
		Timestamp:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(rec)
	return rec
}

// apply ingests one record into the log and derived state.
// Caller must hold the write lock.
func (s *Store) apply(rec CorrectionRecord) {
	s.log = append(s.log, rec)
	if len(s.log) > s.logCap {
		s.log = s.log[len(s.log)-s.logCap:]
	}

	key := PairKey{DetectedID: rec.DetectedID, ActualID: rec.ActualID}
	entry, ok := s.confusion[key]
	if !ok {
		entry = &ConfusionEntry{Pair: key}
		s.confusion[key] = entry
	}
	entry.Count++
	entry.LastSeen = rec.Timestamp

	if entry.Count >= minCountForPenalty {
		penalty := penaltyStep * float64(entry.Count)
		if penalty < MaxPenalty {
			penalty = MaxPenalty
		}
		s.penalties[key] = penalty
	}
}

// SimilarityPenalty returns the penalty for matching candidateID against
// templateID, or 0 when the pair was never corrected. The lookup key is
// (template, candidate) — the inverse of how corrections are recorded —
// so an entity the user corrected away from a template becomes harder to
// re-match against that same template. Penalties are strictly negative
// and meant to be added to a raw match score before thresholding.
func (s *Store) SimilarityPenalty(candidateID, templateID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.penalties[PairKey{DetectedID: templateID, ActualID: candidateID}]
}

// TemplatePenalty returns the strongest (most negative) penalty among
// all pairs where templateID was the wrong detection, or 0. The matching
// pipeline uses this to make templates with a history of false matches
// harder to accept regardless of what actually occupies the slot.
func (s *Store) TemplatePenalty(templateID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	worst := 0.0
	for key, p := range s.penalties {
		if key.DetectedID == templateID && p < worst {
			worst = p
		}
	}
	return worst
}

// ConfusionCount returns how often a (detected, actual) pair has been
// corrected.
func (s *Store) ConfusionCount(detectedID, actualID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.confusion[PairKey{DetectedID: detectedID, ActualID: actualID}]; ok {
		return entry.Count
	}
	return 0
}

// Clear wipes the log, the confusion matrix, and all penalties.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = nil
	s.confusion = make(map[PairKey]*ConfusionEntry)
	s.penalties = make(map[PairKey]float64)
}

// Export returns a copy of the full correction log, oldest first.
func (s *Store) Export() []CorrectionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CorrectionRecord, len(s.log))
	copy(out, s.log)
	return out
}

// ExportJSON serializes the correction log.
func (s *Store) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.Export(), "", "  ")
}

// Import replaces the store's contents with the given records, rebuilding
// the confusion matrix and all penalties from scratch. Malformed records
// (missing detected or actual ID) are skipped with a diagnostic rather
// than aborting the import. Returns the number of records imported.
func (s *Store) Import(records []CorrectionRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = nil
	s.confusion = make(map[PairKey]*ConfusionEntry)
	s.penalties = make(map[PairKey]float64)

	imported := 0
	for i, rec := range records {
		if rec.DetectedID == "" || rec.ActualID == "" {
			fmt.Printf("[Feedback] Skipping malformed correction %d (missing entity id)\n", i)
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		s.apply(rec)
		imported++
	}
	return imported
}

// ImportJSON deserializes and imports a correction log produced by
// ExportJSON.
func (s *Store) ImportJSON(data []byte) (int, error) {
	var records []CorrectionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("invalid correction log: %w", err)
	}
	return s.Import(records), nil
}

// TopConfusedPairs returns the n most-confused pairs by count,
// descending. Ties order by most recent occurrence.
func (s *Store) TopConfusedPairs(n int) []ConfusionEntry {
	s.mu.RLock()
	entries := make([]ConfusionEntry, 0, len(s.confusion))
	for _, e := range s.confusion {
		entries = append(entries, *e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// PairsInvolving returns every confusion entry where the entity appears
// on either side of the pair.
func (s *Store) PairsInvolving(entityID string) []ConfusionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ConfusionEntry
	for key, e := range s.confusion {
		if key.DetectedID == entityID || key.ActualID == entityID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Stats summarizes the confusion matrix.
type Stats struct {
	TotalConfusions  int     `json:"total_confusions"`
	UniquePairs      int     `json:"unique_pairs"`
	MostConfused     PairKey `json:"most_confused,omitempty"`
	MostConfusedHits int     `json:"most_confused_hits,omitempty"`
	AvgCountPerPair  float64 `json:"avg_count_per_pair"`
}

// Statistics returns aggregate confusion stats.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{UniquePairs: len(s.confusion)}
	for key, e := range s.confusion {
		stats.TotalConfusions += e.Count
		if e.Count > stats.MostConfusedHits {
			stats.MostConfusedHits = e.Count
			stats.MostConfused = key
		}
	}
	if stats.UniquePairs > 0 {
		stats.AvgCountPerPair = float64(stats.TotalConfusions) / float64(stats.UniquePairs)
	}
	return stats
}
