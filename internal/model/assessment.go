package model

import "time"

// Severity ranks a risk factor. Lower Rank means more severe.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank orders severities from most (0) to least severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// FactorCategory groups risk factors for display.
type FactorCategory string

const (
	CategoryDebt     FactorCategory = "debt"
	CategoryLegal    FactorCategory = "legal"
	CategoryMarket   FactorCategory = "market"
	CategoryBuilding FactorCategory = "building"
	CategoryPriority FactorCategory = "priority"
)

// RiskFactor is one discrete finding emitted by the rule catalog.
type RiskFactor struct {
	Type        string         `json:"type"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	ScoreImpact int            `json:"score_impact"`
	Category    FactorCategory `json:"category"`
}

// RiskLevel is the overall classification of an assessment.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ComponentScores holds the five weighted sub-scores, each in [0,100].
type ComponentScores struct {
	LTV      int `json:"ltv"`
	Debt     int `json:"debt"`
	Legal    int `json:"legal"`
	Market   int `json:"market"`
	Building int `json:"building"`
}

// SmallDepositResult is the statutory small-deposit priority outcome.
type SmallDepositResult struct {
	Region          string `json:"region"`
	RegionLabel     string `json:"region_label"`
	Threshold       int64  `json:"threshold"`
	ProtectedCap    int64  `json:"protected_cap"`
	IsEligible      bool   `json:"is_eligible"`
	ProtectedAmount int64  `json:"protected_amount"`
}

// Recommendations are tiered advice strings.
type Recommendations struct {
	Mandatory   []string `json:"mandatory"`
	Recommended []string `json:"recommended"`
	Optional    []string `json:"optional"`
}

// DebtRank is one row of the repayment-order table.
type DebtRank struct {
	Rank         int       `json:"rank"`
	Priority     int       `json:"priority,omitempty"`
	Type         string    `json:"type"`
	Holder       string    `json:"holder,omitempty"`
	Amount       int64     `json:"amount"`
	RegisteredAt time.Time `json:"registered_at,omitzero"`
	Seniority    Seniority `json:"seniority"`
	IsProposed   bool      `json:"is_proposed"`
}

// ParseConfidence summarizes how much of the registry was located.
type ParseConfidence string

const (
	ParseConfidenceHigh ParseConfidence = "high"
	ParseConfidenceLow  ParseConfidence = "low"
)

// Provenance records which inputs were estimated or fell back.
type Provenance struct {
	ExtractionBackend string            `json:"extraction_backend"`
	BackendsTried     []string          `json:"backends_tried,omitempty"`
	ValuationSource   ValuationSource   `json:"valuation_source"`
	SectionStatus     map[string]string `json:"section_status,omitempty"`
	ParseConfidence   ParseConfidence   `json:"parse_confidence"`
	UnmatchedEntries  int               `json:"unmatched_entries,omitempty"`
}

// RiskAssessment is the terminal output of the scoring engine.
type RiskAssessment struct {
	OverallScore    int                `json:"overall_score"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	LTV             float64            `json:"ltv"`
	TotalDebt       int64              `json:"total_debt"`
	ProposedDeposit int64              `json:"proposed_deposit"`
	Components      ComponentScores    `json:"components"`
	SmallDeposit    SmallDepositResult `json:"small_deposit"`
	Factors         []RiskFactor       `json:"factors"`
	Recommendations Recommendations    `json:"recommendations"`
	DebtRanking     []DebtRank         `json:"debt_ranking"`
	Provenance      Provenance         `json:"provenance"`
	EvaluatedAt     time.Time          `json:"evaluated_at"`
}

// HasCritical reports whether any factor is CRITICAL.
func (a *RiskAssessment) HasCritical() bool {
	for _, f := range a.Factors {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
