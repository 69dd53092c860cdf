package metrics

import (
	"fmt"
	"strings"
	"time"
)

// Report renders a comparison as a markdown summary table followed by one
// detail block per run. Presentation only; every ranked field appears.
func (c *Comparison) Report() string {
	var b strings.Builder

	b.WriteString("# Strategy Comparison\n\n")
	fmt.Fprintf(&b, "- Fastest: **%s**\n", c.Fastest)
	fmt.Fprintf(&b, "- Most accurate: **%s**\n", c.MostAccurate)
	fmt.Fprintf(&b, "- Balanced: **%s**\n\n", c.Balanced)

	b.WriteString("| Strategy | Total | Match Rate | Accuracy Score | Balanced |\n")
	b.WriteString("|----------|-------|------------|----------------|----------|\n")
	for _, e := range c.Entries {
		fmt.Fprintf(&b, "| %s | %v | %.2f | %.3f | %.3f |\n",
			e.Strategy, e.Metrics.TotalTime.Round(time.Millisecond),
			e.Metrics.MatchRate, e.AccuracyScore, e.BalancedScore)
	}
	b.WriteString("\n")

	for _, e := range c.Entries {
		b.WriteString(detailBlock(e.Metrics))
	}

	return b.String()
}

func detailBlock(m DetectionMetrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s (%s)\n\n", m.Strategy, m.Name)
	fmt.Fprintf(&b, "- Total time: %v\n", m.TotalTime.Round(time.Millisecond))
	for _, p := range []Phase{PhaseLoad, PhasePreprocess, PhaseMatch, PhasePostprocess} {
		if d, ok := m.PhaseTimes[p]; ok {
			fmt.Fprintf(&b, "- %s: %v\n", p, d.Round(time.Millisecond))
		}
	}
	fmt.Fprintf(&b, "- Detections: %d (high %d / medium %d / low %d)\n",
		m.Detections, m.HighCount, m.MediumCount, m.LowCount)
	fmt.Fprintf(&b, "- Passes: %d / %d / %d\n", m.PassCounts[0], m.PassCounts[1], m.PassCounts[2])
	fmt.Fprintf(&b, "- Slots: %d total, %d valid, %d empty, %d matched\n",
		m.Slots.Total, m.Slots.Valid, m.Slots.Empty, m.Slots.Matched)
	fmt.Fprintf(&b, "- Confidence: mean %.3f, median %.3f\n", m.MeanConfidence, m.MedianConfidence)
	fmt.Fprintf(&b, "- Match rate: %.2f\n", m.MatchRate)

	if m.HasGroundTruth {
		fmt.Fprintf(&b, "- Ground truth: TP=%d FP=%d FN=%d\n",
			m.TruePositives, m.FalsePositives, m.FalseNegatives)
		fmt.Fprintf(&b, "- Precision %.3f / Recall %.3f / F1 %.3f / Accuracy %.3f\n",
			m.Precision, m.Recall, m.F1, m.Accuracy)
	}

	b.WriteString("\n")
	return b.String()
}
