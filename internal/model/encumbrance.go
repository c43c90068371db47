package model

import (
	"math"
	"time"
)

// ClaimType identifies the kind of registered claim competing for repayment.
type ClaimType string

const (
	ClaimMortgage          ClaimType = "mortgage"            // (근)저당권
	ClaimLeaseDepositRight ClaimType = "lease_deposit_right" // 전세권
	ClaimTenancyRight      ClaimType = "tenancy_right"       // 임차권
)

// Label returns the registry term for the claim type.
func (c ClaimType) Label() string {
	switch c {
	case ClaimMortgage:
		return "근저당권"
	case ClaimLeaseDepositRight:
		return "전세권"
	case ClaimTenancyRight:
		return "임차권"
	default:
		return string(c)
	}
}

// IsLeaseRight reports whether the claim is an existing tenant's deposit claim.
func (c ClaimType) IsLeaseRight() bool {
	return c == ClaimLeaseDepositRight || c == ClaimTenancyRight
}

// ClaimStatus is the registry state of a claim. Only active claims are emitted.
type ClaimStatus string

const ClaimActive ClaimStatus = "active"

// Seniority is the repayment-priority tier derived from registration order.
type Seniority string

const (
	SeniorityUnranked    Seniority = ""
	SenioritySenior      Seniority = "senior"
	SeniorityJunior      Seniority = "junior"
	SenioritySubordinate Seniority = "subordinate"
)

// SeniorityForPosition maps a 1-based chronological position to a tier.
func SeniorityForPosition(pos int) Seniority {
	switch {
	case pos <= 1:
		return SenioritySenior
	case pos == 2:
		return SeniorityJunior
	default:
		return SenioritySubordinate
	}
}

// PrincipalRatio is the conventional ceiling-to-principal ratio of a
// maximum-amount mortgage.
const PrincipalRatio = 1.2

// EstimatePrincipal returns ceiling / 1.2 rounded to the nearest won.
func EstimatePrincipal(ceiling int64) int64 {
	if ceiling <= 0 {
		return 0
	}
	return int64(math.Round(float64(ceiling) / PrincipalRatio))
}

// EncumbranceRecord is one registered claim against the property, keyed by
// its priority number within a single document.
type EncumbranceRecord struct {
	Priority           int         `json:"priority"`
	Type               ClaimType   `json:"type"`
	RegisteredAt       time.Time   `json:"registered_at"`
	Amount             int64       `json:"amount"`
	EstimatedPrincipal int64       `json:"estimated_principal,omitempty"`
	Holder             string      `json:"holder"`
	Status             ClaimStatus `json:"status"`
	Seniority          Seniority   `json:"seniority,omitempty"`
	Variant            string      `json:"variant,omitempty"`
}

// WithAmount returns a copy carrying a new amount, recomputing the estimated
// principal for mortgages.
func (r EncumbranceRecord) WithAmount(amount int64) EncumbranceRecord {
	r.Amount = amount
	if r.Type == ClaimMortgage {
		r.EstimatedPrincipal = EstimatePrincipal(amount)
	} else {
		r.EstimatedPrincipal = 0
	}
	return r
}

// DebtValue is the amount counted toward existing debt: estimated principal
// for mortgages, the full deposit for lease rights.
func (r EncumbranceRecord) DebtValue() int64 {
	if r.Type == ClaimMortgage {
		if r.EstimatedPrincipal > 0 {
			return r.EstimatedPrincipal
		}
		return EstimatePrincipal(r.Amount)
	}
	return r.Amount
}

// AmendmentEvent replaces the amount of its parent claim. It is a full
// restatement, not a delta.
type AmendmentEvent struct {
	Parent   int       `json:"parent"`
	SubIndex int       `json:"sub_index"`
	Amount   int64     `json:"amount"`
	Date     time.Time `json:"date"`
}

// TransferEvent replaces the holder of its parent claim. SubIndex is 0 for
// the inline form recorded inside the base entry.
type TransferEvent struct {
	Parent   int       `json:"parent"`
	SubIndex int       `json:"sub_index"`
	Holder   string    `json:"holder"`
	Date     time.Time `json:"date"`
}

// LienType identifies an ownership-restricting registration.
type LienType string

const (
	LienSeizure                LienType = "seizure"                 // 압류
	LienProvisionalSeizure     LienType = "provisional_seizure"     // 가압류
	LienProvisionalDisposition LienType = "provisional_disposition" // 가처분
	LienAuction                LienType = "auction"                 // 경매개시결정
)

// LienRecord is a seizure, provisional measure or auction registration.
type LienRecord struct {
	Priority     int       `json:"priority"`
	Type         LienType  `json:"type"`
	Claimant     string    `json:"claimant,omitempty"`
	Amount       *int64    `json:"amount,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// OwnershipRecord is one current owner from the ownership summary.
type OwnershipRecord struct {
	Name              string    `json:"name"`
	SharePercent      float64   `json:"share_percent"`
	RegisteredAt      time.Time `json:"registered_at,omitzero"`
	AcquisitionMethod string    `json:"acquisition_method,omitempty"`
}

// Extraction is the shape every extraction backend returns.
type Extraction struct {
	Mortgages   []EncumbranceRecord `json:"mortgages"`
	LeaseRights []EncumbranceRecord `json:"lease_rights"`
	Liens       []LienRecord        `json:"liens"`
	// Unmatched counts entries that carried a claim keyword but matched no
	// layout variant. They are dropped, never partially emitted.
	Unmatched     int      `json:"unmatched"`
	Backend       string   `json:"backend"`
	BackendsTried []string `json:"backends_tried,omitempty"`
}

// Claims returns mortgages followed by lease rights.
func (e *Extraction) Claims() []EncumbranceRecord {
	if e == nil {
		return nil
	}
	out := make([]EncumbranceRecord, 0, len(e.Mortgages)+len(e.LeaseRights))
	out = append(out, e.Mortgages...)
	out = append(out, e.LeaseRights...)
	return out
}

// Empty reports whether nothing was extracted.
func (e *Extraction) Empty() bool {
	return e == nil || (len(e.Mortgages) == 0 && len(e.LeaseRights) == 0 && len(e.Liens) == 0)
}

// NewExtraction returns an Extraction with non-nil empty slices.
func NewExtraction(backend string) *Extraction {
	return &Extraction{
		Mortgages:   []EncumbranceRecord{},
		LeaseRights: []EncumbranceRecord{},
		Liens:       []LienRecord{},
		Backend:     backend,
	}
}
