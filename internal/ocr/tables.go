package ocr

import (
	"regexp"
	"strings"

	"github.com/sells-group/jeonse-risk/internal/extract"
)

var (
	separatorRow = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
)

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|")
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(lineBreakTag.ReplaceAllString(p, "\n"))
	}
	return cells
}

// ParseTables returns every markdown table in md. A table needs a header
// row followed by a separator row; rows are padded or truncated to the
// header width.
func ParseTables(md string) []extract.Table {
	lines := strings.Split(md, "\n")
	var tables []extract.Table
	for i := 0; i+1 < len(lines); i++ {
		header := strings.TrimSpace(lines[i])
		if !isTableRow(header) || !separatorRow.MatchString(strings.TrimSpace(lines[i+1])) {
			continue
		}
		t := extract.Table{Headers: splitRow(header)}
		j := i + 2
		for ; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if !isTableRow(line) {
				break
			}
			row := splitRow(line)
			if len(row) < len(t.Headers) {
				row = append(row, make([]string, len(t.Headers)-len(row))...)
			}
			t.Rows = append(t.Rows, row[:len(t.Headers)])
		}
		tables = append(tables, t)
		i = j - 1
	}
	return tables
}

// FlattenTables rewrites markdown table rows as space-separated lines and
// drops separator rows so text-based extraction can read them.
func FlattenTables(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case isTableRow(line) && separatorRow.MatchString(line):
			continue
		case isTableRow(line):
			cells := splitRow(line)
			for i, c := range cells {
				cells[i] = strings.ReplaceAll(c, "\n", " ")
			}
			out = append(out, strings.Join(strings.Fields(strings.Join(cells, " ")), " "))
		default:
			out = append(out, raw)
		}
	}
	return strings.Join(out, "\n")
}
