// Package pipeline runs one registry document through normalization,
// section location, extraction, resolution and scoring.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/extract"
	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/normalize"
	"github.com/sells-group/jeonse-risk/internal/resolve"
	"github.com/sells-group/jeonse-risk/internal/risk"
	"github.com/sells-group/jeonse-risk/internal/section"
	"github.com/sells-group/jeonse-risk/internal/seniority"
	"github.com/sells-group/jeonse-risk/internal/valuation"
)

// Default valuation estimate parameters.
const (
	DefaultJeonseRatio        = 0.7
	DefaultEstimateConfidence = 0.3
)

// coreSections must be located for a high-confidence parse.
var coreSections = []string{
	section.NameOwnershipSummary,
	section.NameOwnershipOther,
	section.NameSecuredClaims,
}

// Request is one document to assess.
type Request struct {
	Text   string
	Tables []extract.Table
	// Address is derived from the certificate header when empty.
	Address          string
	ProposedDeposit  int64
	BuildingAgeYears *int
	// Valuation overrides the provider lookup when set.
	Valuation *model.PropertyValuation
	Now       time.Time
}

// Report is the full result of one analysis.
type Report struct {
	Address     string                    `json:"address"`
	Sections    map[string]string         `json:"sections"`
	Owners      []model.OwnershipRecord   `json:"owners"`
	Flags       []model.LegalFlag         `json:"flags"`
	Mortgages   []model.EncumbranceRecord `json:"mortgages"`
	LeaseRights []model.EncumbranceRecord `json:"lease_rights"`
	Liens       []model.LienRecord        `json:"liens"`
	Assessment  *model.RiskAssessment     `json:"assessment"`
}

// Analyzer wires the core stages together. It holds no per-document state
// and is safe for concurrent use.
type Analyzer struct {
	specs              section.Specs
	chain              extract.Extractor
	engine             *risk.Engine
	valuations         valuation.Provider
	jeonseRatio        float64
	estimateConfidence float64
	metrics            *Metrics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithValuation sets the valuation provider consulted when a request
// carries no valuation.
func WithValuation(p valuation.Provider) Option {
	return func(a *Analyzer) { a.valuations = p }
}

// WithEstimate overrides the deposit-based valuation estimate parameters.
func WithEstimate(jeonseRatio, confidence float64) Option {
	return func(a *Analyzer) {
		a.jeonseRatio = jeonseRatio
		a.estimateConfidence = confidence
	}
}

// WithMetrics records diagnostics to m.
func WithMetrics(m *Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// NewAnalyzer creates an Analyzer over an extraction chain and a scoring
// engine.
func NewAnalyzer(chain extract.Extractor, engine *risk.Engine, opts ...Option) *Analyzer {
	a := &Analyzer{
		specs:              section.DefaultSpecs(),
		chain:              chain,
		engine:             engine,
		jeonseRatio:        DefaultJeonseRatio,
		estimateConfidence: DefaultEstimateConfidence,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Analyze assesses one document. Missing or empty sections degrade the
// result and are recorded in provenance; only invalid input, context
// cancellation and scoring errors fail the call.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ProposedDeposit <= 0 {
		return nil, eris.New("pipeline: proposed deposit must be > 0")
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	text := normalize.Normalize(req.Text)
	address := req.Address
	if address == "" {
		address = DeriveAddress(text)
	}
	log := zap.L().With(zap.String("address", address))

	sections := section.LocateAll(text, a.specs)
	status := make(map[string]string, len(sections))
	for _, spec := range a.specs.All() {
		res := sections[spec.Name]
		status[spec.Name] = res.Status.String()
		log.Debug("pipeline: section located",
			zap.String("section", spec.Name),
			zap.String("status", res.Status.String()),
			zap.Int("chars", len(res.Text)),
		)
		a.metrics.ObserveSection(spec.Name, res.Status.String())
	}

	confidence := model.ParseConfidenceHigh
	for _, name := range coreSections {
		if sections[name].Status == section.NotFound {
			confidence = model.ParseConfidenceLow
			log.Warn("pipeline: core section not found", zap.String("section", name))
		}
	}

	summary := sections[section.NameOwnershipSummary]
	other := sections[section.NameOwnershipOther]
	secured := sections[section.NameSecuredClaims]

	owners := extract.ParseOwnership(summary.Text, sections[section.NameOwnershipBody].Text)
	names := make([]string, 0, len(owners))
	for _, o := range owners {
		names = append(names, o.Name)
	}

	ext, err := a.chain.Extract(ctx, extract.Input{
		Secured: secured.Text,
		Other:   other.Text,
		Tables:  req.Tables,
		Owners:  names,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract")
	}
	a.metrics.ObserveExtraction(ext.Backend, ext.Unmatched)
	log.Debug("pipeline: extraction complete",
		zap.String("backend", ext.Backend),
		zap.Strings("tried", ext.BackendsTried),
		zap.Int("unmatched", ext.Unmatched),
	)

	mortgages, leaseRights := splitLeaseRights(resolve.Resolve(ext.Claims(), secured.Text))
	// Seniority ranks both kinds on one timeline.
	claims := seniority.Classify(seniority.Combine(mortgages, leaseRights))
	mortgages, leaseRights = splitLeaseRights(claims)

	flags := extract.DetectFlags(extract.FlagInput{
		OwnershipSummary: summary.Text,
		OwnershipOther:   other.Text,
		SecuredClaims:    secured.Text,
		Title:            sections[section.NameTitle].Text,
		Owners:           owners,
		Liens:            ext.Liens,
	})

	val, err := a.resolveValuation(ctx, address, req)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveValuation(string(val.Source))

	assessment, err := a.engine.Score(risk.Input{
		Valuation:        val,
		ProposedDeposit:  req.ProposedDeposit,
		Claims:           claims,
		Liens:            ext.Liens,
		Owners:           owners,
		Flags:            flags,
		Address:          address,
		BuildingAgeYears: req.BuildingAgeYears,
		Now:              req.Now,
		Provenance: model.Provenance{
			ExtractionBackend: ext.Backend,
			BackendsTried:     ext.BackendsTried,
			ValuationSource:   val.Source,
			SectionStatus:     status,
			ParseConfidence:   confidence,
			UnmatchedEntries:  ext.Unmatched,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: score")
	}

	elapsed := time.Since(start)
	a.metrics.ObserveAssessment(string(assessment.RiskLevel), elapsed)
	log.Info("pipeline: assessment complete",
		zap.Int("score", assessment.OverallScore),
		zap.String("level", string(assessment.RiskLevel)),
		zap.Float64("ltv", assessment.LTV),
		zap.Duration("elapsed", elapsed),
	)

	return &Report{
		Address:     address,
		Sections:    status,
		Owners:      owners,
		Flags:       flags.Sorted(),
		Mortgages:   nonNil(mortgages),
		LeaseRights: nonNil(leaseRights),
		Liens:       ext.Liens,
		Assessment:  assessment,
	}, nil
}

// resolveValuation prefers the request valuation, then the provider, then
// the deposit-based estimate. Provider failures other than cancellation
// fall back to the estimate.
func (a *Analyzer) resolveValuation(ctx context.Context, address string, req Request) (model.PropertyValuation, error) {
	if req.Valuation != nil {
		v := *req.Valuation
		if v.Source == "" {
			v.Source = model.ValuationProvided
		}
		return v, nil
	}

	if a.valuations != nil && address != "" {
		v, err := a.valuations.Lookup(ctx, address)
		switch {
		case err == nil:
			if v.Source == "" {
				v.Source = model.ValuationProvided
			}
			return v, nil
		case ctx.Err() != nil:
			return model.PropertyValuation{}, ctx.Err()
		case errors.Is(err, valuation.ErrUnavailable):
			zap.L().Debug("pipeline: no valuation for address, estimating", zap.String("address", address))
		default:
			zap.L().Warn("pipeline: valuation lookup failed, estimating",
				zap.String("address", address),
				zap.Error(err),
			)
		}
	}

	v, err := valuation.EstimateFromDeposit(req.ProposedDeposit, a.jeonseRatio, a.estimateConfidence)
	if err != nil {
		return model.PropertyValuation{}, eris.Wrap(err, "pipeline: estimate valuation")
	}
	return v, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// splitLeaseRights separates existing lease rights from mortgages, keeping
// order within each.
func splitLeaseRights(records []model.EncumbranceRecord) (mortgages, leaseRights []model.EncumbranceRecord) {
	for _, r := range records {
		if r.Type.IsLeaseRight() {
			leaseRights = append(leaseRights, r)
		} else {
			mortgages = append(mortgages, r)
		}
	}
	return mortgages, leaseRights
}
