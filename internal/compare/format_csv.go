package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(cs *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Ordinal",
		"Type",
		"Levels",
		"EP Conso (kWh/m2)",
		"Emission (kgCO2/m2)",
		"EP Diff",
		"EP % Change",
		"Emission Diff",
		"Emission % Change",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if cs.Baseline != nil {
		if err := writer.Write(cf.formatRow(cs.Baseline, "baseline")); err != nil {
			return "", err
		}
	}
	for i := range cs.Alternatives {
		if err := writer.Write(cf.formatRow(&cs.Alternatives[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(r *PointResult, kind string) []string {
	levels := make([]string, len(r.Levels))
	for i, l := range r.Levels {
		levels[i] = strconv.Itoa(int(l))
	}
	return []string{
		strconv.Itoa(r.Ordinal),
		kind,
		strings.Join(levels, " "),
		r.EPConso.StringFixed(2),
		r.Emission.StringFixed(2),
		r.EPDiff.StringFixed(2),
		r.EPPct.StringFixed(2),
		r.EmissionDiff.StringFixed(2),
		r.EmissionPct.StringFixed(2),
	}
}
