package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/ocr"
	"github.com/sells-group/jeonse-risk/internal/pipeline"
)

var (
	assessFile        string
	assessDeposit     int64
	assessBuildingAge int
	assessAddress     string
	assessValueMid    int64
	assessValueLow    int64
	assessValueHigh   int64
	assessConfidence  float64
	assessTrend       string
	assessOutput      string
	assessSave        bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess one registry certificate against a proposed deposit",
	Long: `Reads a registry certificate (PDF, text or markdown), extracts claims and
scores the proposed jeonse deposit.

Examples:
  jeonse-cli assess --file cert.pdf --deposit 200000000 --building-age 12
  jeonse-cli assess --file cert.txt --deposit 200000000 --building-age 12 \
    --value-mid 500000000 --trend falling --output json --save`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		req := pipeline.Request{
			Address:         assessAddress,
			ProposedDeposit: assessDeposit,
		}
		if cmd.Flags().Changed("building-age") {
			age := assessBuildingAge
			req.BuildingAgeYears = &age
		} else {
			return eris.New("assess: --building-age is required")
		}
		if assessValueMid > 0 {
			trend, err := model.ParseTrend(assessTrend)
			if err != nil {
				return err
			}
			req.Valuation = &model.PropertyValuation{
				ValueLow:   assessValueLow,
				ValueMid:   assessValueMid,
				ValueHigh:  assessValueHigh,
				Confidence: assessConfidence,
				Trend:      trend,
			}
		}

		env, err := initApp(ctx, "assess", assessSave)
		if err != nil {
			return err
		}
		defer env.Close()

		rep, err := runAssess(ctx, env, assessFile, req)
		if err != nil {
			return err
		}

		if assessSave {
			rec, err := env.Store.SaveAssessment(ctx, rep)
			if err != nil {
				return eris.Wrap(err, "assess: save")
			}
			zap.L().Info("assessment saved", zap.String("id", rec.ID))
		}

		return writeReport(os.Stdout, rep, assessOutput)
	},
}

func init() {
	assessCmd.Flags().StringVar(&assessFile, "file", "", "registry certificate: .pdf, .txt or .md (required)")
	assessCmd.Flags().Int64Var(&assessDeposit, "deposit", 0, "proposed deposit in won (required)")
	assessCmd.Flags().IntVar(&assessBuildingAge, "building-age", 0, "building age in years (required)")
	assessCmd.Flags().StringVar(&assessAddress, "address", "", "property address (default: from certificate header)")
	assessCmd.Flags().Int64Var(&assessValueMid, "value-mid", 0, "market value midpoint in won (default: valuation file or estimate)")
	assessCmd.Flags().Int64Var(&assessValueLow, "value-low", 0, "market value low bound in won")
	assessCmd.Flags().Int64Var(&assessValueHigh, "value-high", 0, "market value high bound in won")
	assessCmd.Flags().Float64Var(&assessConfidence, "confidence", 1, "valuation confidence 0..1")
	assessCmd.Flags().StringVar(&assessTrend, "trend", "stable", "price trend: rising, stable or falling")
	assessCmd.Flags().StringVar(&assessOutput, "output", "table", "output format: table or json")
	assessCmd.Flags().BoolVar(&assessSave, "save", false, "persist the assessment to the store")
	_ = assessCmd.MarkFlagRequired("file")
	_ = assessCmd.MarkFlagRequired("deposit")
	rootCmd.AddCommand(assessCmd)
}

// runAssess reads the document at path and analyzes it.
func runAssess(ctx context.Context, env *appEnv, path string, req pipeline.Request) (*pipeline.Report, error) {
	doc, err := ocr.ReadDocument(ctx, env.OCR, path)
	if err != nil {
		return nil, eris.Wrap(err, "assess: read document")
	}
	req.Text = doc.Text
	req.Tables = doc.Tables
	return env.Analyzer.Analyze(ctx, req)
}

// writeReport renders a report as indented JSON or a text summary.
func writeReport(w io.Writer, rep *pipeline.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(rep), "write report json")
	case "table", "":
		return writeReportTable(w, rep)
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func writeReportTable(w io.Writer, rep *pipeline.Report) error {
	a := rep.Assessment
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Address\t%s\n", rep.Address)
	fmt.Fprintf(tw, "Risk\t%s (%d/100)\n", a.RiskLevel, a.OverallScore)
	fmt.Fprintf(tw, "LTV\t%.1f%%\n", a.LTV)
	fmt.Fprintf(tw, "Existing debt\t%s\n", formatWon(a.TotalDebt))
	fmt.Fprintf(tw, "Proposed deposit\t%s\n", formatWon(a.ProposedDeposit))
	fmt.Fprintf(tw, "Components\tltv=%d debt=%d legal=%d market=%d building=%d\n",
		a.Components.LTV, a.Components.Debt, a.Components.Legal, a.Components.Market, a.Components.Building)
	sd := a.SmallDeposit
	if sd.IsEligible {
		fmt.Fprintf(tw, "Small deposit\t%s: eligible, protected %s\n", sd.RegionLabel, formatWon(sd.ProtectedAmount))
	} else {
		fmt.Fprintf(tw, "Small deposit\t%s: not eligible (threshold %s)\n", sd.RegionLabel, formatWon(sd.Threshold))
	}
	fmt.Fprintf(tw, "Provenance\tbackend=%s valuation=%s confidence=%s unmatched=%d\n",
		a.Provenance.ExtractionBackend, a.Provenance.ValuationSource, a.Provenance.ParseConfidence, a.Provenance.UnmatchedEntries)

	fmt.Fprintln(tw, "\nRank\tType\tHolder\tAmount\tRegistered\tSeniority")
	for _, d := range a.DebtRanking {
		reg := ""
		if !d.RegisteredAt.IsZero() {
			reg = d.RegisteredAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", d.Rank, d.Type, d.Holder, formatWon(d.Amount), reg, d.Seniority)
	}

	if len(a.Factors) > 0 {
		fmt.Fprintln(tw, "\nSeverity\tFactor\tDetail")
		for _, f := range a.Factors {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Severity, f.Title, f.Description)
		}
	}

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(tw, "\n%s\n", title)
		for _, it := range items {
			fmt.Fprintf(tw, "  - %s\n", it)
		}
	}
	writeList("Mandatory", a.Recommendations.Mandatory)
	writeList("Recommended", a.Recommendations.Recommended)
	writeList("Optional", a.Recommendations.Optional)

	return eris.Wrap(tw.Flush(), "write report table")
}

// formatWon formats whole won with thousands separators.
func formatWon(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "원"
	if neg {
		return "-" + out
	}
	return out
}
