package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a table of every scenario against the baseline
func (tf *TableFormatter) Format(cs *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Project: %s\n", cs.Ref))
	if len(cs.Keys) > 0 {
		sb.WriteString(fmt.Sprintf("Cards:   %s\n", strings.Join(cs.CardLabels(), ", ")))
	}
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 13

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "EP kWh/m2",
		numWidth, "EP delta",
		numWidth, "GES kg/m2",
		numWidth, "GES delta"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if cs.Baseline != nil {
		sb.WriteString(tf.formatRow(cs.Baseline, nameWidth, numWidth, true))
	}
	if len(cs.Alternatives) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range cs.Alternatives {
			sb.WriteString(tf.formatRow(&cs.Alternatives[i], nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(cs.Recommendations) > 0 {
		sb.WriteString("\nHIGHLIGHTS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range cs.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(r *PointResult, nameWidth, numWidth int, isBase bool) string {
	name := r.Label()
	if isBase {
		name += " (base)"
	}
	epDelta, gesDelta := "", ""
	if !isBase {
		epDelta = tf.formatDelta(r.EPDiff, r.EPPct)
		gesDelta = tf.formatDelta(r.EmissionDiff, r.EmissionPct)
	}
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, r.EPConso.StringFixed(1),
		numWidth, epDelta,
		numWidth, r.Emission.StringFixed(1),
		numWidth, gesDelta)
}

// formatDelta renders "-12.0 (-8%)"
func (tf *TableFormatter) formatDelta(diff, pct decimal.Decimal) string {
	return fmt.Sprintf("%s%s (%s%%)", tf.deltaSymbol(diff), diff.StringFixed(1), pct.StringFixed(0))
}

// deltaSymbol adds the + sign decimal omits; negatives carry their own
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary
func (tf *TableFormatter) FormatCompact(cs *ComparisonSet) string {
	var sb strings.Builder
	if cs.Baseline != nil {
		sb.WriteString(fmt.Sprintf("Base: %s kWh/m2 | ", cs.Baseline.EPConso.StringFixed(1)))
	}
	for i, alt := range cs.Alternatives {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Label(), tf.formatDelta(alt.EPDiff, alt.EPPct)))
	}
	return sb.String()
}
