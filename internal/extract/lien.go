package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/jeonse-risk/internal/model"
)

var (
	claimantRe    = regexp.MustCompile(`(?:가압류권자|가처분권자|채권자|권리자)\s*(.+)$`)
	claimAmountRe = regexp.MustCompile(`청구금액\s*` + amountGroup)
)

// ParseLiens extracts seizure, provisional and auction registrations from
// the other-ownership-matters section.
func ParseLiens(text string) []model.LienRecord {
	liens := []model.LienRecord{}
	seen := make(map[int]bool)
	for _, e := range SplitEntries(text) {
		if e.Purpose != PurposeLien || e.Sub != 0 || seen[e.Priority] {
			continue
		}
		seen[e.Priority] = true

		rec := model.LienRecord{
			Priority:     e.Priority,
			Type:         lienType(e.Keyword),
			RegisteredAt: FirstDate(e.Body),
		}
		if m := claimantRe.FindStringSubmatch(e.Body); m != nil {
			rec.Claimant = holderText(m[1])
		}
		if m := claimAmountRe.FindStringSubmatch(e.Body); m != nil {
			if amt, ok := ParseAmount(m[1]); ok {
				rec.Amount = &amt
			}
		}
		liens = append(liens, rec)
	}
	return liens
}

// lienType must test 가압류 before 압류.
func lienType(kw string) model.LienType {
	switch {
	case strings.HasSuffix(kw, "경매개시결정"):
		return model.LienAuction
	case strings.Contains(kw, "가압류"):
		return model.LienProvisionalSeizure
	case strings.Contains(kw, "압류"):
		return model.LienSeizure
	default:
		return model.LienProvisionalDisposition
	}
}
