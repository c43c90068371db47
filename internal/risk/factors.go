package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// facts are the derived quantities every rule reads.
type facts struct {
	in            Input
	totalDebt     int64
	ltv           float64
	debtRatio     float64
	depositRatio  float64
	creditors     int
	mortgages     int
	leaseRights   int
	smallDeposit  model.SmallDepositResult
	recentClaims  int
	ageYears      int
	flags         model.LegalFlags
	valuationEst  bool
	lowConfidence bool
}

// rule emits at most one factor.
type rule struct {
	name string
	eval func(f *facts) (model.RiskFactor, bool)
}

// recentWindow is how far back a registration counts as recent.
const recentWindow = 90 * 24 * time.Hour

// rules is the fixed factor catalog in evaluation order.
var rules = []rule{
	{"ltv", ltvFactor},
	{"debt_ratio", debtRatioFactor},
	{"senior_mortgage_without_priority", seniorMortgageFactor},
	{"deposit_ratio", depositRatioFactor},
	{"many_creditors", manyCreditorsFactor},
	{"seizure", flagFactor(model.FlagSeizure, model.SeverityCritical, -40,
		"Seizure registered", "A seizure (압류) is registered against the property; it may be sold at auction.")},
	{"auction", flagFactor(model.FlagAuction, model.SeverityCritical, -40,
		"Auction proceedings started", "An auction commencement decision (경매개시결정) is registered.")},
	{"provisional_seizure", flagFactor(model.FlagProvisionalSeizure, model.SeverityHigh, -20,
		"Provisional seizure registered", "A creditor holds a provisional seizure (가압류) against the owner's interest.")},
	{"provisional_registration", flagFactor(model.FlagProvisionalRegistration, model.SeverityHigh, -20,
		"Provisional registration", "A provisional registration (가등기) can transfer ownership ahead of your lease.")},
	{"provisional_disposition", flagFactor(model.FlagProvisionalDisposition, model.SeverityHigh, -15,
		"Provisional disposition", "A provisional disposition (가처분) restricts transfer or encumbrance of the property.")},
	{"co_ownership", flagFactor(model.FlagCoOwnership, model.SeverityMedium, -10,
		"Co-owned property", "The property has more than one owner; every co-owner must consent to the lease.")},
	{"existing_lease_rights", existingLeaseFactor},
	{"falling_market", fallingMarketFactor},
	{"building_age", buildingAgeFactor},
	{"recent_encumbrance", recentEncumbranceFactor},
	{"registry_incomplete", registryIncompleteFactor},
	{"valuation_estimated", valuationEstimatedFactor},
}

// evaluateFactors runs the catalog and sorts the result by severity,
// keeping catalog order within a severity.
func evaluateFactors(f *facts) []model.RiskFactor {
	out := make([]model.RiskFactor, 0, len(rules))
	for _, r := range rules {
		if factor, ok := r.eval(f); ok {
			factor.Type = r.name
			out = append(out, factor)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}

func ltvFactor(f *facts) (model.RiskFactor, bool) {
	desc := fmt.Sprintf("Existing debt plus your deposit is %.1f%% of the market value.", f.ltv*100)
	switch {
	case f.ltv >= 0.90:
		return model.RiskFactor{Severity: model.SeverityCritical, Title: "LTV above 90%", Description: desc, ScoreImpact: -30, Category: model.CategoryDebt}, true
	case f.ltv >= 0.80:
		return model.RiskFactor{Severity: model.SeverityHigh, Title: "LTV above 80%", Description: desc, ScoreImpact: -20, Category: model.CategoryDebt}, true
	case f.ltv >= 0.70:
		return model.RiskFactor{Severity: model.SeverityMedium, Title: "LTV above 70%", Description: desc, ScoreImpact: -10, Category: model.CategoryDebt}, true
	}
	return model.RiskFactor{}, false
}

func debtRatioFactor(f *facts) (model.RiskFactor, bool) {
	desc := fmt.Sprintf("Registered debt is %.1f%% of the market value.", f.debtRatio*100)
	switch {
	case f.debtRatio > 0.70:
		return model.RiskFactor{Severity: model.SeverityHigh, Title: "Heavy existing debt", Description: desc, ScoreImpact: -20, Category: model.CategoryDebt}, true
	case f.debtRatio > 0.50:
		return model.RiskFactor{Severity: model.SeverityMedium, Title: "Substantial existing debt", Description: desc, ScoreImpact: -10, Category: model.CategoryDebt}, true
	}
	return model.RiskFactor{}, false
}

func seniorMortgageFactor(f *facts) (model.RiskFactor, bool) {
	if f.mortgages == 0 || f.smallDeposit.IsEligible {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityHigh,
		Title:       "Senior mortgage without small-deposit priority",
		Description: "A mortgage is repaid before your deposit and the deposit exceeds the small-deposit priority threshold.",
		ScoreImpact: -15,
		Category:    model.CategoryPriority,
	}, true
}

func depositRatioFactor(f *facts) (model.RiskFactor, bool) {
	if f.depositRatio <= 0.70 {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityHigh,
		Title:       "Deposit close to market value",
		Description: fmt.Sprintf("The deposit is %.1f%% of the market value.", f.depositRatio*100),
		ScoreImpact: -15,
		Category:    model.CategoryMarket,
	}, true
}

func manyCreditorsFactor(f *facts) (model.RiskFactor, bool) {
	if f.creditors < 3 {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityMedium,
		Title:       "Multiple creditors",
		Description: fmt.Sprintf("%d distinct creditors hold registered claims.", f.creditors),
		ScoreImpact: -10,
		Category:    model.CategoryDebt,
	}, true
}

func flagFactor(flag model.LegalFlag, sev model.Severity, impact int, title, desc string) func(*facts) (model.RiskFactor, bool) {
	return func(f *facts) (model.RiskFactor, bool) {
		if !f.flags.Has(flag) {
			return model.RiskFactor{}, false
		}
		return model.RiskFactor{Severity: sev, Title: title, Description: desc, ScoreImpact: impact, Category: model.CategoryLegal}, true
	}
}

func existingLeaseFactor(f *facts) (model.RiskFactor, bool) {
	if f.leaseRights == 0 {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityMedium,
		Title:       "Existing registered lease rights",
		Description: fmt.Sprintf("%d registered lease or tenancy right(s) rank ahead of your deposit.", f.leaseRights),
		ScoreImpact: -10,
		Category:    model.CategoryPriority,
	}, true
}

func fallingMarketFactor(f *facts) (model.RiskFactor, bool) {
	if f.in.Valuation.Trend != model.TrendFalling {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityMedium,
		Title:       "Falling market",
		Description: "Recent prices are falling; the value may not cover debt and deposit at expiry.",
		ScoreImpact: -10,
		Category:    model.CategoryMarket,
	}, true
}

func buildingAgeFactor(f *facts) (model.RiskFactor, bool) {
	if f.ageYears <= 25 {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityLow,
		Title:       "Old building",
		Description: fmt.Sprintf("The building is %d years old.", f.ageYears),
		ScoreImpact: -5,
		Category:    model.CategoryBuilding,
	}, true
}

func recentEncumbranceFactor(f *facts) (model.RiskFactor, bool) {
	if f.recentClaims == 0 {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityMedium,
		Title:       "Recently registered claim",
		Description: fmt.Sprintf("%d claim(s) were registered in the last 90 days.", f.recentClaims),
		ScoreImpact: -5,
		Category:    model.CategoryDebt,
	}, true
}

func registryIncompleteFactor(f *facts) (model.RiskFactor, bool) {
	if !f.lowConfidence {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityMedium,
		Title:       "Registry partly unreadable",
		Description: "One or more registry sections could not be located; claims may be understated.",
		ScoreImpact: -5,
		Category:    model.CategoryLegal,
	}, true
}

func valuationEstimatedFactor(f *facts) (model.RiskFactor, bool) {
	if !f.valuationEst {
		return model.RiskFactor{}, false
	}
	return model.RiskFactor{
		Severity:    model.SeverityLow,
		Title:       "Estimated market value",
		Description: "No market valuation was available; the value was estimated from the deposit.",
		ScoreImpact: -5,
		Category:    model.CategoryMarket,
	}, true
}
