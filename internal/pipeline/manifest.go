package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// ManifestEntry is one document listed in a batch manifest.
type ManifestEntry struct {
	Line             int                      `json:"line"`
	Path             string                   `json:"path"`
	Address          string                   `json:"address,omitempty"`
	Deposit          int64                    `json:"deposit"`
	BuildingAgeYears *int                     `json:"building_age_years,omitempty"`
	Valuation        *model.PropertyValuation `json:"valuation,omitempty"`
}

// ParseManifest reads a batch manifest from a .csv or .xlsx file. The
// header row names the columns: path and deposit are required; address,
// building_age, value_low, value_mid, value_high, confidence and trend are
// optional. Relative paths resolve against the manifest's directory.
func ParseManifest(path string) ([]ManifestEntry, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.New("manifest: empty file")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"path", "deposit"} {
		if _, ok := cols[req]; !ok {
			return nil, eris.Errorf("manifest: missing required column %q", req)
		}
	}

	base := filepath.Dir(path)
	var entries []ManifestEntry
	for i, row := range rows[1:] {
		line := i + 2
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if get("path") == "" && get("deposit") == "" {
			continue
		}

		e, err := parseManifestRow(get, line)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(e.Path) {
			e.Path = filepath.Join(base, e.Path)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseManifestRow(get func(string) string, line int) (ManifestEntry, error) {
	e := ManifestEntry{Line: line, Path: get("path"), Address: get("address")}
	if e.Path == "" {
		return e, eris.Errorf("manifest: line %d: path is required", line)
	}

	deposit, err := parseWon(get("deposit"))
	if err != nil || deposit <= 0 {
		return e, eris.Errorf("manifest: line %d: invalid deposit %q", line, get("deposit"))
	}
	e.Deposit = deposit

	if s := get("building_age"); s != "" {
		age, err := strconv.Atoi(s)
		if err != nil {
			return e, eris.Errorf("manifest: line %d: invalid building_age %q", line, s)
		}
		e.BuildingAgeYears = &age
	}

	if s := get("value_mid"); s != "" {
		v := model.PropertyValuation{Confidence: 1, Source: model.ValuationProvided}
		if v.ValueMid, err = parseWon(s); err != nil {
			return e, eris.Errorf("manifest: line %d: invalid value_mid %q", line, s)
		}
		if s := get("value_low"); s != "" {
			if v.ValueLow, err = parseWon(s); err != nil {
				return e, eris.Errorf("manifest: line %d: invalid value_low %q", line, s)
			}
		}
		if s := get("value_high"); s != "" {
			if v.ValueHigh, err = parseWon(s); err != nil {
				return e, eris.Errorf("manifest: line %d: invalid value_high %q", line, s)
			}
		}
		if s := get("confidence"); s != "" {
			if v.Confidence, err = strconv.ParseFloat(s, 64); err != nil {
				return e, eris.Errorf("manifest: line %d: invalid confidence %q", line, s)
			}
		}
		if v.Trend, err = model.ParseTrend(get("trend")); err != nil {
			return e, eris.Wrapf(err, "manifest: line %d", line)
		}
		if err := v.Validate(); err != nil {
			return e, eris.Wrapf(err, "manifest: line %d", line)
		}
		e.Valuation = &v
	}
	return e, nil
}

// parseWon accepts plain or comma-grouped whole won.
func parseWon(s string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "manifest: open file")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "manifest: read csv")
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "manifest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("manifest: xlsx has no sheets")
	}
	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
