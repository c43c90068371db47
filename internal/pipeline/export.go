package pipeline

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// BatchResult pairs a manifest entry with its report or failure.
type BatchResult struct {
	Entry  ManifestEntry
	Report *Report
	Err    error
}

// exportColumns defines the ordered batch export columns.
var exportColumns = []string{
	"path",
	"address",
	"deposit",
	"score",
	"risk_level",
	"ltv",
	"total_debt",
	"small_deposit_eligible",
	"protected_amount",
	"critical_factors",
	"extraction_backend",
	"valuation_source",
	"parse_confidence",
	"error",
}

// ExportCSV writes batch results as a CSV file.
func ExportCSV(results []BatchResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(exportColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range results {
		if err := w.Write(buildExportRow(r)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}

// ExportXLSX writes batch results as a single-sheet workbook.
func ExportXLSX(results []BatchResult, outputPath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("assessments")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range exportColumns {
		header.AddCell().SetString(c)
	}
	for _, r := range results {
		row := sheet.AddRow()
		for i, v := range buildExportRow(r) {
			cell := row.AddCell()
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && isNumericColumn(exportColumns[i]) {
				cell.SetInt64(n)
				continue
			}
			if f, err := strconv.ParseFloat(v, 64); err == nil && exportColumns[i] == "ltv" {
				cell.SetFloat(f)
				continue
			}
			cell.SetString(v)
		}
	}

	if err := file.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func isNumericColumn(col string) bool {
	switch col {
	case "deposit", "score", "total_debt", "protected_amount":
		return true
	}
	return false
}

// buildExportRow maps a BatchResult to an export row.
func buildExportRow(r BatchResult) []string {
	row := make([]string, len(exportColumns))
	row[0] = r.Entry.Path
	row[1] = r.Entry.Address
	row[2] = strconv.FormatInt(r.Entry.Deposit, 10)
	if r.Err != nil {
		row[13] = r.Err.Error()
		return row
	}
	if r.Report == nil || r.Report.Assessment == nil {
		return row
	}

	a := r.Report.Assessment
	row[1] = r.Report.Address
	row[3] = strconv.Itoa(a.OverallScore)
	row[4] = string(a.RiskLevel)
	row[5] = strconv.FormatFloat(a.LTV, 'f', 1, 64)
	row[6] = strconv.FormatInt(a.TotalDebt, 10)
	row[7] = strconv.FormatBool(a.SmallDeposit.IsEligible)
	row[8] = strconv.FormatInt(a.SmallDeposit.ProtectedAmount, 10)
	row[9] = criticalFactors(a)
	row[10] = a.Provenance.ExtractionBackend
	row[11] = string(a.Provenance.ValuationSource)
	row[12] = string(a.Provenance.ParseConfidence)
	return row
}

func criticalFactors(a *model.RiskAssessment) string {
	var types []string
	for _, f := range a.Factors {
		if f.Severity == model.SeverityCritical {
			types = append(types, f.Type)
		}
	}
	return strings.Join(types, ";")
}
