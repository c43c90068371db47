package extract

import (
	"regexp"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// FlagInput is the located section text a flag scan may read. Text outside
// these sections is never scanned.
type FlagInput struct {
	OwnershipSummary string
	OwnershipOther   string
	SecuredClaims    string
	Title            string
	Owners           []model.OwnershipRecord
	Liens            []model.LienRecord
}

type flagRule struct {
	flag model.LegalFlag
	re   *regexp.Regexp
}

var (
	restrictionRules = []flagRule{
		{model.FlagProvisionalSeizure, regexp.MustCompile(`가압류`)},
		{model.FlagSeizure, regexp.MustCompile(`(?:^|[^가])압류`)},
		{model.FlagAuction, regexp.MustCompile(`경매개시결정`)},
		{model.FlagProvisionalDisposition, regexp.MustCompile(`가처분`)},
		{model.FlagProvisionalRegistration, regexp.MustCompile(`가등기`)},
		{model.FlagAdvanceNotice, regexp.MustCompile(`예고등기`)},
	}
	encumbranceRules = []flagRule{
		{model.FlagSuperficies, regexp.MustCompile(`지상권`)},
		{model.FlagEasement, regexp.MustCompile(`지역권`)},
	}
	titleRules = []flagRule{
		{model.FlagUnregisteredLandRights, regexp.MustCompile(`대지권\s*미등기`)},
	}
	coOwnerMarker = regexp.MustCompile(`공유자`)
)

// DetectFlags scans located sections for title-clouding registrations and
// folds in extracted liens and co-ownership.
func DetectFlags(in FlagInput) model.LegalFlags {
	flags := model.LegalFlags{}
	apply := func(rules []flagRule, texts ...string) {
		for _, text := range texts {
			if text == "" {
				continue
			}
			for _, r := range rules {
				if r.re.MatchString(text) {
					flags[r.flag] = true
				}
			}
		}
	}
	apply(restrictionRules, in.OwnershipOther)
	apply(encumbranceRules, in.SecuredClaims, in.OwnershipOther)
	apply(titleRules, in.Title)

	for _, l := range in.Liens {
		if f := model.LienFlag(l.Type); f != "" {
			flags[f] = true
		}
	}
	if len(in.Owners) > 1 || coOwnerMarker.MatchString(in.OwnershipSummary) {
		flags[model.FlagCoOwnership] = true
	}
	return flags
}
