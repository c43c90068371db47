// Package risk scores a proposed jeonse deposit against resolved registry
// claims and a market valuation.
package risk

import (
	"math"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jeonse-risk/internal/model"
	"github.com/sells-group/jeonse-risk/internal/seniority"
)

// Input is everything one assessment needs. Claims are resolved mortgages
// and existing lease rights.
type Input struct {
	Valuation        model.PropertyValuation
	ProposedDeposit  int64
	Claims           []model.EncumbranceRecord
	Liens            []model.LienRecord
	Owners           []model.OwnershipRecord
	Flags            model.LegalFlags
	Address          string
	BuildingAgeYears *int
	Now              time.Time
	Provenance       model.Provenance
}

// Engine scores assessments against a fixed region table and weighting.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	regions RegionTable
	weights Weights
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights overrides the component weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// NewEngine creates an Engine over regions.
func NewEngine(regions RegionTable, opts ...Option) *Engine {
	e := &Engine{regions: regions, weights: DefaultWeights()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Regions returns the engine's region table.
func (e *Engine) Regions() RegionTable { return e.regions }

// Score computes the assessment. It fails only on structurally invalid
// input.
func (e *Engine) Score(in Input) (*model.RiskAssessment, error) {
	if err := in.Valuation.Validate(); err != nil {
		return nil, eris.Wrap(err, "risk: score")
	}
	if in.ProposedDeposit <= 0 {
		return nil, eris.New("risk: proposed deposit must be > 0")
	}
	if in.BuildingAgeYears == nil {
		return nil, eris.New("risk: building age is required")
	}
	if *in.BuildingAgeYears < 0 {
		return nil, eris.Errorf("risk: building age must be >= 0, got %d", *in.BuildingAgeYears)
	}

	f := e.facts(in)
	components := model.ComponentScores{
		LTV:      ltvScore(f.ltv),
		Debt:     debtScore(f.debtRatio, f.creditors),
		Legal:    legalScore(f.flags, len(in.Liens)),
		Market:   marketScore(in.Valuation),
		Building: buildingScore(f.ageYears),
	}
	score := overallScore(components, e.weights)
	factors := evaluateFactors(f)

	a := &model.RiskAssessment{
		OverallScore:    score,
		Components:      components,
		LTV:             math.Round(f.ltv*1000) / 10,
		TotalDebt:       f.totalDebt,
		ProposedDeposit: in.ProposedDeposit,
		SmallDeposit:    f.smallDeposit,
		Factors:         factors,
		DebtRanking:     rankDebts(in.Claims, in.ProposedDeposit),
		Provenance:      in.Provenance,
		EvaluatedAt:     in.Now,
	}
	a.RiskLevel = riskLevel(score, a.HasCritical())
	a.Recommendations = recommend(a.RiskLevel, f, factors)

	a.Provenance.ValuationSource = in.Valuation.Source
	if a.Provenance.ValuationSource == "" {
		a.Provenance.ValuationSource = model.ValuationProvided
	}
	if a.Provenance.ParseConfidence == "" {
		a.Provenance.ParseConfidence = model.ParseConfidenceHigh
	}
	return a, nil
}

func (e *Engine) facts(in Input) *facts {
	f := &facts{
		in:            in,
		ageYears:      *in.BuildingAgeYears,
		flags:         model.LegalFlags{},
		valuationEst:  in.Valuation.Source == model.ValuationEstimated,
		lowConfidence: in.Provenance.ParseConfidence == model.ParseConfidenceLow,
	}
	for flag, on := range in.Flags {
		if on {
			f.flags[flag] = true
		}
	}
	if len(in.Owners) > 1 {
		f.flags[model.FlagCoOwnership] = true
	}

	holders := make(map[string]bool)
	for _, c := range in.Claims {
		f.totalDebt += c.DebtValue()
		if c.Type == model.ClaimMortgage {
			f.mortgages++
		} else if c.Type.IsLeaseRight() {
			f.leaseRights++
		}
		holders[creditorKey(c)] = true
		if !in.Now.IsZero() && !c.RegisteredAt.IsZero() &&
			!c.RegisteredAt.After(in.Now) && in.Now.Sub(c.RegisteredAt) <= recentWindow {
			f.recentClaims++
		}
	}
	f.creditors = len(holders)

	mid := float64(in.Valuation.ValueMid)
	f.ltv = float64(f.totalDebt+in.ProposedDeposit) / mid
	f.debtRatio = float64(f.totalDebt) / mid
	f.depositRatio = float64(in.ProposedDeposit) / mid
	f.smallDeposit = smallDeposit(e.regions.Resolve(in.Address), in.ProposedDeposit)
	return f
}

// creditorKey identifies a distinct creditor. Claims without a holder count
// individually.
func creditorKey(c model.EncumbranceRecord) string {
	if c.Holder != "" {
		return c.Holder
	}
	return "#" + strconv.Itoa(c.Priority)
}

func smallDeposit(r Region, deposit int64) model.SmallDepositResult {
	res := model.SmallDepositResult{
		Region:       r.Key,
		RegionLabel:  r.Label,
		Threshold:    r.Threshold,
		ProtectedCap: r.ProtectedCap,
		IsEligible:   r.Threshold > 0 && deposit <= r.Threshold,
	}
	if res.IsEligible {
		res.ProtectedAmount = min(deposit, r.ProtectedCap)
	}
	return res
}

// rankDebts orders claims by registration and appends the proposed deposit
// as the most subordinate entry.
func rankDebts(claims []model.EncumbranceRecord, deposit int64) []model.DebtRank {
	ordered := seniority.Classify(claims)
	out := make([]model.DebtRank, 0, len(ordered)+1)
	for i, c := range ordered {
		out = append(out, model.DebtRank{
			Rank:         i + 1,
			Priority:     c.Priority,
			Type:         string(c.Type),
			Holder:       c.Holder,
			Amount:       c.DebtValue(),
			RegisteredAt: c.RegisteredAt,
			Seniority:    c.Seniority,
		})
	}
	pos := len(ordered) + 1
	return append(out, model.DebtRank{
		Rank:       pos,
		Type:       "proposed_deposit",
		Amount:     deposit,
		Seniority:  model.SeniorityForPosition(pos),
		IsProposed: true,
	})
}
