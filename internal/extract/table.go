package extract

import (
	"context"
	"strings"

	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/normalize"
)

// Column roles recognized in a summary table header.
const (
	colPriority = "순위번호"
	colPurpose  = "등기목적"
	colReceipt  = "접수정보"
	colDetails  = "주요등기사항"
	colOwner    = "대상소유자"
)

// TableExtractor reads pre-extracted table cells, renders each row as a
// canonical entry line and parses it with the pattern catalog.
type TableExtractor struct {
	catalog Catalog
}

// NewTableExtractor creates a TableExtractor over catalog.
func NewTableExtractor(catalog Catalog) *TableExtractor {
	return &TableExtractor{catalog: catalog}
}

// Name implements Extractor.
func (t *TableExtractor) Name() string { return BackendTable }

// Extract implements Extractor. It returns ErrBackendUnavailable when no
// supplied table carries a purpose column.
func (t *TableExtractor) Extract(_ context.Context, in Input) (*model.Extraction, error) {
	var lines []string
	owners := append([]string(nil), in.Owners...)
	for _, tbl := range in.Tables {
		cols := mapColumns(tbl.Headers)
		if _, ok := cols[colPurpose]; !ok {
			continue
		}
		if _, ok := cols[colPriority]; !ok {
			continue
		}
		for _, row := range tbl.Rows {
			line, owner := renderRow(row, cols)
			if line == "" {
				continue
			}
			lines = append(lines, line)
			if owner != "" {
				owners = append(owners, strings.Fields(owner)...)
			}
		}
	}
	if len(lines) == 0 {
		return nil, ErrBackendUnavailable
	}

	text := strings.Join(lines, "\n")
	entries := SplitEntries(text)

	out := model.NewExtraction(BackendTable)
	p := PatternExtractor{catalog: t.catalog}
	p.extractClaims(entries, owners, out)
	out.Liens = ParseLiens(text)
	return out, nil
}

// mapColumns maps each known column role to its index by header text.
func mapColumns(headers []string) map[string]int {
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.ReplaceAll(normalize.Normalize(h), " ", "")
		for _, role := range []string{colPriority, colPurpose, colReceipt, colDetails, colOwner} {
			if strings.Contains(h, role) {
				if _, dup := cols[role]; !dup {
					cols[role] = i
				}
			}
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, role string) string {
	i, ok := cols[role]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.Join(strings.Fields(normalize.Normalize(row[i])), " ")
}

// renderRow returns "priority purpose receipt details" for a row, plus the
// target-owner cell.
func renderRow(row []string, cols map[string]int) (string, string) {
	prio := strings.ReplaceAll(cell(row, cols, colPriority), " ", "")
	purpose := strings.ReplaceAll(cell(row, cols, colPurpose), " ", "")
	if prio == "" || purpose == "" {
		return "", ""
	}
	parts := []string{prio, purpose}
	for _, role := range []string{colReceipt, colDetails} {
		if c := cell(row, cols, role); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " "), cell(row, cols, colOwner)
}
