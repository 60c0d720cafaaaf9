package scenes

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

func decimalFromInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatPerM2 formats a per-square-metre output
func formatPerM2(v float64, unit string) string {
	return fmt.Sprintf("%.1f %s/m²", v, unit)
}
