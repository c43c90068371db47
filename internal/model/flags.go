package model

import "sort"

// LegalFlag is a registry condition that restricts or clouds title.
type LegalFlag string

const (
	FlagSeizure                 LegalFlag = "seizure"                   // 압류
	FlagAuction                 LegalFlag = "auction"                   // 경매개시결정
	FlagProvisionalSeizure      LegalFlag = "provisional_seizure"       // 가압류
	FlagSuperficies             LegalFlag = "superficies"               // 지상권
	FlagProvisionalRegistration LegalFlag = "provisional_registration"  // 가등기
	FlagProvisionalDisposition  LegalFlag = "provisional_disposition"   // 가처분
	FlagCoOwnership             LegalFlag = "co_ownership"              // 공유
	FlagEasement                LegalFlag = "easement"                  // 지역권
	FlagAdvanceNotice           LegalFlag = "advance_notice"            // 예고등기
	FlagUnregisteredLandRights  LegalFlag = "unregistered_land_rights"  // 대지권미등기
)

// LegalFlags is a set of detected flags.
type LegalFlags map[LegalFlag]bool

// Has reports whether f is set. A nil set has no flags.
func (s LegalFlags) Has(f LegalFlag) bool {
	return s != nil && s[f]
}

// Sorted returns the set flags in lexical order.
func (s LegalFlags) Sorted() []LegalFlag {
	out := make([]LegalFlag, 0, len(s))
	for f, ok := range s {
		if ok {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LienFlag maps a lien type to its legal flag.
func LienFlag(t LienType) LegalFlag {
	switch t {
	case LienSeizure:
		return FlagSeizure
	case LienProvisionalSeizure:
		return FlagProvisionalSeizure
	case LienProvisionalDisposition:
		return FlagProvisionalDisposition
	case LienAuction:
		return FlagAuction
	default:
		return ""
	}
}
