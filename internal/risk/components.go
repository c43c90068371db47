package risk

import (
	"math"

	"github.com/sells-group/jeonse-risk/internal/model"
)

func ltvScore(ltv float64) int {
	switch {
	case ltv < 0.50:
		return 100
	case ltv < 0.60:
		return 80
	case ltv < 0.70:
		return 60
	case ltv < 0.80:
		return 40
	case ltv < 0.90:
		return 20
	default:
		return 0
	}
}

func debtScore(debtRatio float64, creditors int) int {
	score := 100
	switch {
	case debtRatio > 0.70:
		score -= 50
	case debtRatio > 0.60:
		score -= 30
	case debtRatio > 0.50:
		score -= 15
	case debtRatio > 0.40:
		score -= 5
	}
	score -= min(creditors*5, 20)
	return max(score, 0)
}

// flagPenalties are the legal-score deductions per detected flag.
var flagPenalties = map[model.LegalFlag]int{
	model.FlagSeizure:                 100,
	model.FlagAuction:                 100,
	model.FlagProvisionalSeizure:      50,
	model.FlagSuperficies:             40,
	model.FlagProvisionalRegistration: 35,
	model.FlagProvisionalDisposition:  30,
	model.FlagCoOwnership:             25,
	model.FlagEasement:                20,
	model.FlagAdvanceNotice:           15,
	model.FlagUnregisteredLandRights:  10,
}

const lienPenalty = 25

func legalScore(flags model.LegalFlags, liens int) int {
	score := 100
	for _, f := range flags.Sorted() {
		score -= flagPenalties[f]
	}
	score -= liens * lienPenalty
	return max(score, 0)
}

func marketScore(v model.PropertyValuation) int {
	score := 70
	switch v.Trend {
	case model.TrendRising:
		switch {
		case v.Confidence >= 0.7:
			score += 25
		case v.Confidence >= 0.4:
			score += 15
		default:
			score += 8
		}
	case model.TrendFalling:
		switch {
		case v.Confidence >= 0.7:
			score -= 35
		case v.Confidence >= 0.4:
			score -= 25
		default:
			score -= 15
		}
	}
	if v.Confidence < 0.4 {
		score -= 10
	}
	return clamp(score)
}

// buildingScore bands are inclusive of their upper age.
func buildingScore(age int) int {
	switch {
	case age <= 5:
		return 100
	case age <= 10:
		return 90
	case age <= 15:
		return 80
	case age <= 20:
		return 70
	case age <= 25:
		return 60
	case age <= 30:
		return 50
	default:
		return 40
	}
}

func overallScore(c model.ComponentScores, w Weights) int {
	raw := float64(c.LTV)*w.LTV +
		float64(c.Debt)*w.Debt +
		float64(c.Legal)*w.Legal +
		float64(c.Market)*w.Market +
		float64(c.Building)*w.Building
	return clamp(int(math.Round(raw)))
}

func riskLevel(score int, hasCritical bool) model.RiskLevel {
	switch {
	case hasCritical:
		return model.RiskCritical
	case score >= 75:
		return model.RiskSafe
	case score >= 60:
		return model.RiskModerate
	case score >= 40:
		return model.RiskHigh
	default:
		return model.RiskCritical
	}
}

func clamp(score int) int {
	return min(max(score, 0), 100)
}
