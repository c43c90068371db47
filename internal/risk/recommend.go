package risk

import (
	"fmt"

	"github.com/sells-group/jeonse-risk/internal/model"
)

const (
	recDoNotProceed   = "Do not proceed with this contract."
	recSeekCounsel    = "Consult a real-estate lawyer before paying any deposit or contract money."
	recFreshRegistry  = "Obtain a fresh registry certificate on the contract date and again before paying the balance."
	recMoveIn         = "Complete move-in registration (전입신고) and obtain a fixed date (확정일자) on the move-in day."
	recGuarantee      = "Subscribe to jeonse deposit return guarantee insurance."
	recRepayMortgage  = "Add a special clause requiring the landlord to repay or reduce the senior mortgage before the balance is paid."
	recCoOwners       = "Obtain the written consent of every co-owner and sign with all of them."
	recExistingLeases = "Confirm the deposits and end dates of the existing registered lease rights."
	recFalling        = "Consider a lower deposit; prices in the area are falling."
	recAppraisal      = "Verify the market value with an independent appraisal."
	recRereadRegistry = "Upload a complete, legible registry certificate; some sections could not be read."
	recInspect        = "Inspect the building condition and repair history."
	recOwnerIdentity  = "Verify the landlord's identity against the registered owner."
)

// recommend builds the tiered advice for an assessment. CRITICAL returns a
// mandatory-only result.
func recommend(level model.RiskLevel, f *facts, factors []model.RiskFactor) model.Recommendations {
	if level == model.RiskCritical {
		return model.Recommendations{
			Mandatory:   []string{recDoNotProceed, recSeekCounsel},
			Recommended: []string{},
			Optional:    []string{},
		}
	}

	var rec model.Recommendations
	baseline := []string{recFreshRegistry, recMoveIn, recGuarantee}
	switch level {
	case model.RiskHigh:
		rec.Mandatory = append(rec.Mandatory, baseline...)
		rec.Mandatory = append(rec.Mandatory, recSeekCounsel)
	case model.RiskModerate:
		rec.Mandatory = append(rec.Mandatory, recFreshRegistry, recMoveIn)
		rec.Recommended = append(rec.Recommended, recGuarantee)
	default:
		rec.Mandatory = append(rec.Mandatory, recMoveIn)
		rec.Recommended = append(rec.Recommended, recFreshRegistry)
		rec.Optional = append(rec.Optional, recGuarantee)
	}
	rec.Mandatory = append(rec.Mandatory, recOwnerIdentity)

	fired := make(map[string]bool, len(factors))
	for _, fc := range factors {
		fired[fc.Type] = true
	}
	if fired["senior_mortgage_without_priority"] || fired["debt_ratio"] {
		rec.Recommended = append(rec.Recommended, recRepayMortgage)
	}
	if fired["co_ownership"] {
		rec.Mandatory = append(rec.Mandatory, recCoOwners)
	}
	if fired["existing_lease_rights"] {
		rec.Recommended = append(rec.Recommended, recExistingLeases)
	}
	if fired["falling_market"] {
		rec.Recommended = append(rec.Recommended, recFalling)
	}
	if fired["valuation_estimated"] {
		rec.Mandatory = append(rec.Mandatory, recAppraisal)
	}
	if fired["registry_incomplete"] {
		rec.Mandatory = append(rec.Mandatory, recRereadRegistry)
	}
	if fired["building_age"] {
		rec.Optional = append(rec.Optional, recInspect)
	}
	if sd := f.smallDeposit; sd.IsEligible {
		rec.Optional = append(rec.Optional, fmt.Sprintf(
			"Your deposit qualifies for small-deposit priority in %s; up to %d won is repaid ahead of other creditors.",
			sd.RegionLabel, sd.ProtectedAmount))
	}

	if rec.Recommended == nil {
		rec.Recommended = []string{}
	}
	if rec.Optional == nil {
		rec.Optional = []string{}
	}
	return rec
}
