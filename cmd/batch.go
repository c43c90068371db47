package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/jeonse-risk/internal/pipeline"
)

var (
	batchManifest    string
	batchOut         string
	batchLimit       int
	batchConcurrency int
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Assess every certificate listed in a manifest",
	Long: `Reads a CSV or XLSX manifest (columns: path, deposit, building_age and
optionally address, value_low, value_mid, value_high, confidence, trend) and
assesses each document concurrently.

Examples:
  jeonse-cli batch --manifest batch.csv --out results.xlsx
  jeonse-cli batch --manifest batch.xlsx --out results.csv --save`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		entries, err := pipeline.ParseManifest(batchManifest)
		if err != nil {
			return eris.Wrap(err, "batch: parse manifest")
		}

		env, err := initApp(ctx, "batch", batchSave)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		results, err := processBatch(ctx, entries, batchLimit, concurrency, func(ctx context.Context, e pipeline.ManifestEntry) (*pipeline.Report, error) {
			return runAssess(ctx, env, e.Path, pipeline.Request{
				Address:          e.Address,
				ProposedDeposit:  e.Deposit,
				BuildingAgeYears: e.BuildingAgeYears,
				Valuation:        e.Valuation,
			})
		})
		if err != nil {
			return err
		}

		if batchSave {
			if err := saveBatch(ctx, env, results); err != nil {
				return err
			}
		}
		return writeBatchResults(results, batchOut)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchManifest, "manifest", "", "CSV or XLSX manifest of documents (required)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write results to .csv or .xlsx (default: JSON to stdout)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max documents to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max documents in flight (default from config)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist successful assessments to the store")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}

// assessFunc analyzes one manifest entry.
type assessFunc func(ctx context.Context, e pipeline.ManifestEntry) (*pipeline.Report, error)

// processBatch applies limit, then assesses entries concurrently. Results
// keep manifest order; a failing document never aborts the batch.
func processBatch(ctx context.Context, entries []pipeline.ManifestEntry, limit, concurrency int, assess assessFunc) ([]pipeline.BatchResult, error) {
	if len(entries) == 0 {
		zap.L().Info("batch: manifest has no entries")
		return nil, nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("documents", len(entries)),
		zap.Int("concurrency", concurrency),
	)

	start := time.Now()
	results := make([]pipeline.BatchResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for i, e := range entries {
		g.Go(func() error {
			log := zap.L().With(zap.String("path", e.Path), zap.Int("line", e.Line))
			results[i].Entry = e

			rep, err := assess(gctx, e)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed.Add(1)
				results[i].Err = err
				log.Error("assessment failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			results[i].Report = rep
			log.Info("assessment complete",
				zap.Int("score", rep.Assessment.OverallScore),
				zap.String("level", string(rep.Assessment.RiskLevel)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

func saveBatch(ctx context.Context, env *appEnv, results []pipeline.BatchResult) error {
	var reps []*pipeline.Report
	for _, r := range results {
		if r.Report != nil {
			reps = append(reps, r.Report)
		}
	}
	recs, err := env.Store.SaveAssessments(ctx, reps)
	if err != nil {
		return eris.Wrap(err, "batch: save")
	}
	zap.L().Info("batch saved", zap.Int("assessments", len(recs)))
	return nil
}

// writeBatchResults picks the export format from the output extension.
func writeBatchResults(results []pipeline.BatchResult, out string) error {
	switch strings.ToLower(filepath.Ext(out)) {
	case "":
		if out != "" {
			return eris.Errorf("batch: output %q needs a .csv, .xlsx or .json extension", out)
		}
		return writeBatchJSON(os.Stdout, results)
	case ".csv":
		return pipeline.ExportCSV(results, out)
	case ".xlsx":
		return pipeline.ExportXLSX(results, out)
	case ".json":
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrap(err, "batch: create output")
		}
		defer f.Close() //nolint:errcheck
		return writeBatchJSON(f, results)
	default:
		return eris.Errorf("batch: unsupported output format %q", filepath.Ext(out))
	}
}

type batchJSONRow struct {
	Line   int              `json:"line"`
	Path   string           `json:"path"`
	Report *pipeline.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func writeBatchJSON(w io.Writer, results []pipeline.BatchResult) error {
	rows := make([]batchJSONRow, 0, len(results))
	for _, r := range results {
		row := batchJSONRow{Line: r.Entry.Line, Path: r.Entry.Path, Report: r.Report}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		rows = append(rows, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rows), "batch: write json")
}
