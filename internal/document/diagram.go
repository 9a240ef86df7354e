package document

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	directionRe = regexp.MustCompile(`^(?i)(flowchart|graph)(\s+(TD|TB|BT|RL|LR))?\b(.*)$`)
	pieLineRe   = regexp.MustCompile(`^\s*"?([^":]+?)"?\s*:\s*([0-9]+(?:[.,][0-9]+)?)\s*%?\s*$`)
	pieTitleRe  = regexp.MustCompile(`^(?i)pie(?:\s+showData)?(?:\s+title\s+(.*))?$`)
	titleLineRe = regexp.MustCompile(`^(?i)title\s+(.*)$`)
)

// PieSlice is one labelled value of a pie pseudo-diagram.
type PieSlice struct {
	Label string
	Value float64
}

// Kind returns the lower-cased leading keyword of diagram source.
func Kind(source string) string {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		fields := strings.Fields(line)
		return strings.ToLower(fields[0])
	}
	return ""
}

// IsFlowchart reports whether the source describes a process flow.
func IsFlowchart(source string) bool {
	k := Kind(source)
	return k == "flowchart" || k == "graph"
}

// Normalize prepares diagram source for the rendering backend: comment and
// directive lines are dropped, flowcharts are laid out left to right and pie
// values use a dot as decimal separator without a percent sign.
func Normalize(source string) string {
	var (
		out    []string
		header = true
		isPie  bool
	)

	for _, line := range strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "%%") {
			continue
		}
		if header && trimmed != "" {
			header = false
			if m := directionRe.FindStringSubmatch(trimmed); m != nil {
				out = append(out, strings.ToLower(m[1])+" LR"+m[4])
				continue
			}
			isPie = strings.EqualFold(Kind(trimmed), "pie")
		}
		if isPie {
			if m := pieLineRe.FindStringSubmatch(trimmed); m != nil {
				out = append(out, `    "`+strings.TrimSpace(m[1])+`" : `+strings.ReplaceAll(m[2], ",", "."))
				continue
			}
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ParsePie extracts the title and slices of a pie diagram.
func ParsePie(source string) (string, []PieSlice, bool) {
	if Kind(source) != "pie" {
		return "", nil, false
	}

	var (
		title  string
		slices []PieSlice
	)
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := pieTitleRe.FindStringSubmatch(trimmed); m != nil {
			title = strings.TrimSpace(m[1])
			continue
		}
		if m := titleLineRe.FindStringSubmatch(trimmed); m != nil {
			title = strings.TrimSpace(m[1])
			continue
		}
		m := pieLineRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "."), 64)
		if err != nil {
			continue
		}
		slices = append(slices, PieSlice{Label: strings.TrimSpace(m[1]), Value: v})
	}

	return title, slices, len(slices) > 0
}

// PieTable renders pie slices as a two-column table.
func PieTable(slices []PieSlice) Table {
	rows := [][]string{{"Показатель", "Значение"}}
	for _, s := range slices {
		rows = append(rows, []string{s.Label, strconv.FormatFloat(s.Value, 'f', -1, 64)})
	}
	return Table{Rows: rows}
}
