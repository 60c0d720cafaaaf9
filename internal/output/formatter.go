package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formatter renders the views of the command line in one format.
type Formatter interface {
	Name() string
	Cards(v CardsView) ([]byte, error)
	Graph(v GraphView) ([]byte, error)
	Step(v StepView) ([]byte, error)
}

// NewFormatter returns the formatter for a format name: table, csv, json or
// yaml.
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "table", "console":
		return TableFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{Pretty: true}, nil
	case "yaml", "yml":
		return YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Write renders with render and writes the result to w.
func Write(w io.Writer, render func() ([]byte, error)) error {
	data, err := render()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// TableFormatter renders aligned console tables.
type TableFormatter struct{}

func (TableFormatter) Name() string { return "table" }

func (TableFormatter) Cards(v CardsView) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Project %s\n", v.Ref))
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-3s %-28s %-26s %-9s %6s %5s\n", "#", "Entry", "Group", "Levels", "Factor", "Scope"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	for _, c := range v.Cards {
		sb.WriteString(fmt.Sprintf("%-3d %-28s %-26s %-9s %6d %5s\n",
			c.Index, truncate(c.Entry, 28), truncate(c.Group, 26), levelMarks(c), c.Factor, c.Scope))
		for i, label := range c.Choices {
			sb.WriteString(fmt.Sprintf("      %d: %s\n", i+1, label))
		}
	}
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	if len(v.Inactive) > 0 {
		sb.WriteString(fmt.Sprintf("Inactive: %s\n", strings.Join(v.Inactive, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Combinations: %s (limit %d)", v.Total.String(), v.Limit))
	if v.Exceeds {
		sb.WriteString("  TOO MANY")
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// levelMarks renders enabled levels as "[0 1 .]" with the recorded level
// wrapped in asterisks.
func levelMarks(c CardRow) string {
	enabled := make(map[int]bool, len(c.Levels))
	for _, l := range c.Levels {
		enabled[l] = true
	}
	marks := make([]string, 0, 3)
	for l := 0; l <= len(c.Choices) && l <= 2; l++ {
		m := "."
		if enabled[l] {
			m = strconv.Itoa(l)
		}
		if c.Recorded == l {
			m = "*" + m + "*"
		}
		marks = append(marks, m)
	}
	return "[" + strings.Join(marks, " ") + "]"
}

func (TableFormatter) Graph(v GraphView) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Project %s: %d scenario(s)\n", v.Ref, len(v.Points)))
	sb.WriteString(fmt.Sprintf("%-8s %14s %14s\n", "Ordinal", "EP kWh/m2", "GES kg/m2"))
	sb.WriteString(strings.Repeat("-", 38) + "\n")
	for k, p := range v.Points {
		sb.WriteString(fmt.Sprintf("%-8d %14.1f %14.1f\n", k, p.Result.EPConso5UsagesM2, p.Result.EmissionGES5UsagesM2))
	}
	return []byte(sb.String()), nil
}

func (TableFormatter) Step(v StepView) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scenario %d, card %d (%s), level %d\n", v.Ordinal, v.CardIndex, v.Key, v.Level))
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	flat := flatten("", v.Inputs)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%-36s %s\n", k, flat[k]))
	}
	if len(keys) == 0 {
		sb.WriteString("(no recorded inputs)\n")
	}
	return []byte(sb.String()), nil
}

// flatten turns nested maps and lists into dotted keys.
func flatten(prefix string, v any) map[string]string {
	out := make(map[string]string)
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			for fk, fv := range flatten(join(k), child) {
				out[fk] = fv
			}
		}
	case []any:
		for i, child := range t {
			for fk, fv := range flatten(join(strconv.Itoa(i)), child) {
				out[fk] = fv
			}
		}
	case nil:
		if prefix != "" {
			out[prefix] = "null"
		}
	default:
		out[prefix] = fmt.Sprint(t)
	}
	return out
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// CSVFormatter renders one row per card or scenario.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Cards(v CardsView) ([]byte, error) {
	rows := [][]string{{"Index", "Key", "Category", "Entry", "Group", "Levels", "Factor", "Scope", "Recorded"}}
	for _, c := range v.Cards {
		levels := make([]string, len(c.Levels))
		for i, l := range c.Levels {
			levels[i] = strconv.Itoa(l)
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Index), c.Key, c.Category, c.Entry, c.Group,
			strings.Join(levels, " "), strconv.Itoa(c.Factor), c.Scope, strconv.Itoa(c.Recorded),
		})
	}
	return writeCSV(rows)
}

func (CSVFormatter) Graph(v GraphView) ([]byte, error) {
	rows := [][]string{{"Ordinal", "ID", "EPConso5UsagesM2", "EmissionGES5UsagesM2"}}
	for k, p := range v.Points {
		rows = append(rows, []string{
			strconv.Itoa(k), p.ID,
			strconv.FormatFloat(p.Result.EPConso5UsagesM2, 'f', -1, 64),
			strconv.FormatFloat(p.Result.EmissionGES5UsagesM2, 'f', -1, 64),
		})
	}
	return writeCSV(rows)
}

func (CSVFormatter) Step(v StepView) ([]byte, error) {
	rows := [][]string{{"Input", "Value"}}
	flat := flatten("", v.Inputs)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []string{k, flat[k]})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSONFormatter renders the views as JSON documents.
type JSONFormatter struct {
	Pretty bool
}

func (JSONFormatter) Name() string { return "json" }

func (f JSONFormatter) Cards(v CardsView) ([]byte, error) { return f.marshal(v) }
func (f JSONFormatter) Graph(v GraphView) ([]byte, error) { return f.marshal(v) }
func (f JSONFormatter) Step(v StepView) ([]byte, error)   { return f.marshal(v) }

func (f JSONFormatter) marshal(v any) ([]byte, error) {
	var data []byte
	var err error
	if f.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLFormatter renders the views as YAML documents.
type YAMLFormatter struct{}

func (YAMLFormatter) Name() string { return "yaml" }

func (YAMLFormatter) Cards(v CardsView) ([]byte, error) { return yaml.Marshal(v) }
func (YAMLFormatter) Graph(v GraphView) ([]byte, error) { return yaml.Marshal(v) }
func (YAMLFormatter) Step(v StepView) ([]byte, error)   { return yaml.Marshal(v) }
