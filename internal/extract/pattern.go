package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// PatternExtractor parses section text with a variant catalog.
type PatternExtractor struct {
	catalog Catalog
}

// NewPatternExtractor creates a PatternExtractor over catalog.
func NewPatternExtractor(catalog Catalog) *PatternExtractor {
	return &PatternExtractor{catalog: catalog}
}

// Name implements Extractor.
func (p *PatternExtractor) Name() string { return BackendPattern }

// Extract implements Extractor. It never fails; an empty section yields an
// empty extraction.
func (p *PatternExtractor) Extract(_ context.Context, in Input) (*model.Extraction, error) {
	out := model.NewExtraction(BackendPattern)
	p.extractClaims(SplitEntries(in.Secured), in.Owners, out)
	out.Liens = ParseLiens(in.Other)
	return out, nil
}

func (p *PatternExtractor) extractClaims(entries []Entry, owners []string, out *model.Extraction) {
	seen := make(map[int]bool)
	for _, e := range entries {
		if e.Sub != 0 {
			continue
		}
		kind, ok := claimKind(e.Purpose)
		if !ok || seen[e.Priority] {
			continue
		}

		v, amount, holder, ok := p.catalog.Match(kind, e.Body)
		if !ok {
			out.Unmatched++
			zap.L().Debug("extract: dropped entry matching no variant",
				zap.Int("priority", e.Priority),
				zap.String("purpose", e.Keyword),
			)
			continue
		}
		seen[e.Priority] = true

		rec := model.EncumbranceRecord{
			Priority:     e.Priority,
			Type:         kind,
			RegisteredAt: FirstDate(e.Body),
			Holder:       stripOwners(holder, owners),
			Status:       model.ClaimActive,
			Variant:      v.Name,
		}.WithAmount(amount)

		if kind == model.ClaimMortgage {
			out.Mortgages = append(out.Mortgages, rec)
		} else {
			out.LeaseRights = append(out.LeaseRights, rec)
		}
	}
}

func claimKind(p Purpose) (model.ClaimType, bool) {
	switch p {
	case PurposeMortgage:
		return model.ClaimMortgage, true
	case PurposeLeaseDeposit:
		return model.ClaimLeaseDepositRight, true
	case PurposeTenancy:
		return model.ClaimTenancyRight, true
	default:
		return "", false
	}
}
