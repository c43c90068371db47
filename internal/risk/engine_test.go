package risk

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeonse-risk/internal/model"
)

func intPtr(v int) *int { return &v }

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func stableValuation(mid int64) model.PropertyValuation {
	return model.PropertyValuation{
		ValueLow:   mid * 9 / 10,
		ValueMid:   mid,
		ValueHigh:  mid * 11 / 10,
		Confidence: 0.85,
		Trend:      model.TrendStable,
	}
}

func mortgage(prio int, ceiling int64, holder string, at time.Time) model.EncumbranceRecord {
	return model.EncumbranceRecord{
		Priority:     prio,
		Type:         model.ClaimMortgage,
		RegisteredAt: at,
		Holder:       holder,
		Status:       model.ClaimActive,
	}.WithAmount(ceiling)
}

func TestScore_SingleMortgage(t *testing.T) {
	e := NewEngine(DefaultRegions())
	a, err := e.Score(Input{
		Valuation:        stableValuation(1_000_000_000),
		ProposedDeposit:  500_000_000,
		Claims:           []model.EncumbranceRecord{mortgage(5, 200_000_000, "주식회사국민은행", time.Date(2019, 5, 2, 0, 0, 0, 0, time.UTC))},
		Address:          "서울특별시 마포구 망원동 1",
		BuildingAgeYears: intPtr(5),
		Now:              now,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(166_666_667), a.TotalDebt)
	assert.InDelta(t, 66.7, a.LTV, 0.001)
	assert.Equal(t, 60, a.Components.LTV)
	assert.Equal(t, 95, a.Components.Debt, "one creditor costs 5")
	assert.Equal(t, 100, a.Components.Legal)
	assert.Equal(t, 70, a.Components.Market)
	assert.Equal(t, 100, a.Components.Building)

	want := int(math.Round(60*0.30 + 95*0.25 + 100*0.25 + 70*0.10 + 100*0.10))
	assert.Equal(t, want, a.OverallScore)
	assert.Equal(t, model.RiskSafe, a.RiskLevel)

	require.NotEmpty(t, a.Factors)
	assert.Equal(t, "senior_mortgage_without_priority", a.Factors[0].Type)
	assert.Equal(t, model.SeverityHigh, a.Factors[0].Severity)

	require.Len(t, a.DebtRanking, 2)
	assert.Equal(t, model.SenioritySenior, a.DebtRanking[0].Seniority)
	assert.Equal(t, int64(166_666_667), a.DebtRanking[0].Amount)
	assert.True(t, a.DebtRanking[1].IsProposed)
	assert.Equal(t, model.SeniorityJunior, a.DebtRanking[1].Seniority)

	assert.Equal(t, model.ValuationProvided, a.Provenance.ValuationSource)
	assert.Equal(t, model.ParseConfidenceHigh, a.Provenance.ParseConfidence)
	assert.Equal(t, now, a.EvaluatedAt)
}

func TestScore_SmallDepositCapital(t *testing.T) {
	e := NewEngine(DefaultRegions())
	a, err := e.Score(Input{
		Valuation:        stableValuation(400_000_000),
		ProposedDeposit:  150_000_000,
		Address:          "서울특별시 강서구 화곡동 100",
		BuildingAgeYears: intPtr(12),
		Now:              now,
	})
	require.NoError(t, err)

	sd := a.SmallDeposit
	assert.Equal(t, "seoul", sd.Region)
	assert.Equal(t, int64(165_000_000), sd.Threshold)
	assert.Equal(t, int64(55_000_000), sd.ProtectedCap)
	assert.True(t, sd.IsEligible)
	assert.Equal(t, int64(55_000_000), sd.ProtectedAmount)
}

func TestScore_CriticalFactorOverridesScore(t *testing.T) {
	e := NewEngine(DefaultRegions())
	a, err := e.Score(Input{
		Valuation:        stableValuation(1_000_000_000),
		ProposedDeposit:  300_000_000,
		Flags:            model.LegalFlags{model.FlagSeizure: true},
		Address:          "부산광역시 해운대구",
		BuildingAgeYears: intPtr(3),
		Now:              now,
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, a.OverallScore, 60, "numeric score alone would not be critical")
	assert.Equal(t, model.RiskCritical, a.RiskLevel)
	assert.Equal(t, []string{recDoNotProceed, recSeekCounsel}, a.Recommendations.Mandatory)
	assert.Empty(t, a.Recommendations.Recommended)
	assert.Empty(t, a.Recommendations.Optional)
	assert.Equal(t, model.SeverityCritical, a.Factors[0].Severity)
}

func TestScore_LienFlagSeverity(t *testing.T) {
	e := NewEngine(DefaultRegions())

	tests := []struct {
		name     string
		lien     model.LienType
		flag     model.LegalFlag
		factor   string
		severity model.Severity
		critical bool
	}{
		{"seizure", model.LienSeizure, model.FlagSeizure, "seizure", model.SeverityCritical, true},
		{"auction", model.LienAuction, model.FlagAuction, "auction", model.SeverityCritical, true},
		{"provisional disposition", model.LienProvisionalDisposition, model.FlagProvisionalDisposition, "provisional_disposition", model.SeverityHigh, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := e.Score(Input{
				Valuation:        stableValuation(1_000_000_000),
				ProposedDeposit:  300_000_000,
				Liens:            []model.LienRecord{{Priority: 1, Type: tt.lien, RegisteredAt: now.AddDate(-1, 0, 0)}},
				Flags:            model.LegalFlags{tt.flag: true},
				Address:          "부산광역시 해운대구",
				BuildingAgeYears: intPtr(5),
				Now:              now,
			})
			require.NoError(t, err)

			assert.InDelta(t, 30.0, a.LTV, 0.001)
			var found *model.RiskFactor
			for i := range a.Factors {
				if a.Factors[i].Type == tt.factor {
					found = &a.Factors[i]
				}
			}
			require.NotNil(t, found)
			assert.Equal(t, tt.severity, found.Severity)
			if tt.critical {
				assert.Equal(t, model.RiskCritical, a.RiskLevel)
			} else {
				assert.NotEqual(t, model.RiskCritical, a.RiskLevel)
			}
		})
	}
}

func TestScore_InvalidInput(t *testing.T) {
	e := NewEngine(DefaultRegions())
	valid := Input{
		Valuation:        stableValuation(1_000_000_000),
		ProposedDeposit:  100_000_000,
		BuildingAgeYears: intPtr(10),
	}

	tests := []struct {
		name   string
		mutate func(*Input)
		msg    string
	}{
		{"missing building age", func(in *Input) { in.BuildingAgeYears = nil }, "building age is required"},
		{"negative building age", func(in *Input) { in.BuildingAgeYears = intPtr(-1) }, "building age must be >= 0"},
		{"zero deposit", func(in *Input) { in.ProposedDeposit = 0 }, "proposed deposit"},
		{"zero value", func(in *Input) { in.Valuation.ValueMid = 0 }, "value_mid"},
		{"bad trend", func(in *Input) { in.Valuation.Trend = "sideways" }, "trend"},
		{"bad confidence", func(in *Input) { in.Valuation.Confidence = 1.5 }, "confidence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := e.Score(in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := e.Score(valid)
	assert.NoError(t, err)
}

func TestScore_AlwaysInRange(t *testing.T) {
	e := NewEngine(DefaultRegions())
	allFlags := model.LegalFlags{}
	for f := range flagPenalties {
		allFlags[f] = true
	}
	var claims []model.EncumbranceRecord
	for i := 1; i <= 6; i++ {
		claims = append(claims, mortgage(i, 600_000_000, "은행"+string(rune('가'+i)), now.AddDate(-i, 0, 0)))
	}

	for _, deposit := range []int64{1, 50_000_000, 900_000_000, 5_000_000_000} {
		for _, trend := range []model.Trend{model.TrendRising, model.TrendStable, model.TrendFalling} {
			for _, conf := range []float64{0, 0.39, 0.4, 0.7, 1} {
				for _, age := range []int{0, 26, 80} {
					for _, heavy := range []bool{false, true} {
						in := Input{
							Valuation:        model.PropertyValuation{ValueMid: 500_000_000, Confidence: conf, Trend: trend},
							ProposedDeposit:  deposit,
							BuildingAgeYears: intPtr(age),
							Now:              now,
						}
						if heavy {
							in.Claims = claims
							in.Flags = allFlags
							in.Liens = make([]model.LienRecord, 5)
						}
						a, err := e.Score(in)
						require.NoError(t, err)
						assert.GreaterOrEqual(t, a.OverallScore, 0)
						assert.LessOrEqual(t, a.OverallScore, 100)
						if a.HasCritical() {
							assert.Equal(t, model.RiskCritical, a.RiskLevel)
						}
						last := a.DebtRanking[len(a.DebtRanking)-1]
						assert.True(t, last.IsProposed)
					}
				}
			}
		}
	}
}

func TestScore_SmallDepositMonotonic(t *testing.T) {
	e := NewEngine(DefaultRegions())
	for _, addr := range []string{"서울특별시 종로구", "경기도 수원시", "대전광역시 서구", "강원도 춘천시"} {
		wasEligible := false
		for deposit := int64(300_000_000); deposit > 0; deposit -= 5_000_000 {
			a, err := e.Score(Input{
				Valuation:        stableValuation(1_000_000_000),
				ProposedDeposit:  deposit,
				Address:          addr,
				BuildingAgeYears: intPtr(1),
			})
			require.NoError(t, err)
			if wasEligible {
				assert.True(t, a.SmallDeposit.IsEligible, "%s at %d", addr, deposit)
			}
			wasEligible = a.SmallDeposit.IsEligible
			assert.LessOrEqual(t, a.SmallDeposit.ProtectedAmount, a.SmallDeposit.ProtectedCap)
		}
		assert.True(t, wasEligible, addr)
	}
}

func TestScore_Provenance(t *testing.T) {
	e := NewEngine(DefaultRegions())
	v := stableValuation(300_000_000)
	v.Source = model.ValuationEstimated
	v.Confidence = 0.3

	a, err := e.Score(Input{
		Valuation:        v,
		ProposedDeposit:  210_000_000,
		BuildingAgeYears: intPtr(8),
		Now:              now,
		Provenance: model.Provenance{
			ExtractionBackend: "pattern",
			ParseConfidence:   model.ParseConfidenceLow,
			SectionStatus:     map[string]string{"secured_claims": "not_found"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ValuationEstimated, a.Provenance.ValuationSource)
	assert.Equal(t, model.ParseConfidenceLow, a.Provenance.ParseConfidence)
	assert.Equal(t, "pattern", a.Provenance.ExtractionBackend)

	types := factorTypes(a.Factors)
	assert.Contains(t, types, "registry_incomplete")
	assert.Contains(t, types, "valuation_estimated")
	if a.RiskLevel != model.RiskCritical {
		assert.Contains(t, a.Recommendations.Mandatory, recAppraisal)
		assert.Contains(t, a.Recommendations.Mandatory, recRereadRegistry)
	}
}

func TestScore_RecentEncumbranceUsesNow(t *testing.T) {
	e := NewEngine(DefaultRegions())
	in := Input{
		Valuation:        stableValuation(1_000_000_000),
		ProposedDeposit:  100_000_000,
		Claims:           []model.EncumbranceRecord{mortgage(3, 120_000_000, "주식회사국민은행", now.AddDate(0, -1, 0))},
		BuildingAgeYears: intPtr(10),
		Now:              now,
	}
	a, err := e.Score(in)
	require.NoError(t, err)
	assert.Contains(t, factorTypes(a.Factors), "recent_encumbrance")

	in.Now = now.AddDate(1, 0, 0)
	a, err = e.Score(in)
	require.NoError(t, err)
	assert.NotContains(t, factorTypes(a.Factors), "recent_encumbrance")
}

func TestScore_FactorsSortedBySeverity(t *testing.T) {
	e := NewEngine(DefaultRegions())
	v := stableValuation(300_000_000)
	v.Trend = model.TrendFalling
	a, err := e.Score(Input{
		Valuation:       v,
		ProposedDeposit: 200_000_000,
		Claims: []model.EncumbranceRecord{
			mortgage(1, 60_000_000, "주식회사국민은행", now.AddDate(-3, 0, 0)),
			mortgage(2, 60_000_000, "신한캐피탈주식회사", now.AddDate(-2, 0, 0)),
			{Priority: 3, Type: model.ClaimLeaseDepositRight, Amount: 30_000_000, Holder: "김철수", RegisteredAt: now.AddDate(-1, 0, 0)},
		},
		Owners:           []model.OwnershipRecord{{Name: "홍길동"}, {Name: "이영희"}},
		BuildingAgeYears: intPtr(30),
		Now:              now,
	})
	require.NoError(t, err)

	for i := 1; i < len(a.Factors); i++ {
		assert.LessOrEqual(t, a.Factors[i-1].Severity.Rank(), a.Factors[i].Severity.Rank())
	}
	types := factorTypes(a.Factors)
	assert.Contains(t, types, "co_ownership", "more than one owner")
	assert.Contains(t, types, "many_creditors")
	assert.Contains(t, types, "existing_lease_rights")
	assert.Contains(t, types, "falling_market")
	assert.Contains(t, types, "building_age")
	assert.Equal(t, 75, a.Components.Legal)

	require.Len(t, a.DebtRanking, 4)
	assert.Equal(t, model.SenioritySubordinate, a.DebtRanking[2].Seniority)
	assert.Equal(t, "lease_deposit_right", a.DebtRanking[2].Type)
	assert.Equal(t, int64(30_000_000), a.DebtRanking[2].Amount)
	assert.Equal(t, 4, a.DebtRanking[3].Rank)
}

func TestNewEngine_WithWeights(t *testing.T) {
	w := Weights{LTV: 1}
	e := NewEngine(DefaultRegions(), WithWeights(w))
	a, err := e.Score(Input{
		Valuation:        stableValuation(1_000_000_000),
		ProposedDeposit:  100_000_000,
		BuildingAgeYears: intPtr(40),
	})
	require.NoError(t, err)
	assert.Equal(t, 100, a.OverallScore)
}

func factorTypes(fs []model.RiskFactor) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Type
	}
	return out
}
