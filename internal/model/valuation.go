package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Trend is the recent price direction reported by the valuation source.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

// ParseTrend maps a string onto a Trend.
func ParseTrend(s string) (Trend, error) {
	switch Trend(strings.ToLower(strings.TrimSpace(s))) {
	case TrendRising:
		return TrendRising, nil
	case TrendStable, "":
		return TrendStable, nil
	case TrendFalling:
		return TrendFalling, nil
	default:
		return "", eris.Errorf("model: unknown trend %q", s)
	}
}

// ValuationSource records whether a valuation came from the external
// collaborator or was estimated because it was unavailable.
type ValuationSource string

const (
	ValuationProvided  ValuationSource = "provided"
	ValuationEstimated ValuationSource = "estimated"
)

// PropertyValuation is the externally supplied market value of the unit.
type PropertyValuation struct {
	ValueLow   int64           `json:"value_low"`
	ValueMid   int64           `json:"value_mid"`
	ValueHigh  int64           `json:"value_high"`
	Confidence float64         `json:"confidence"`
	Trend      Trend           `json:"trend"`
	Source     ValuationSource `json:"source,omitempty"`
}

// Validate rejects structurally invalid valuations. Low and high are only
// checked against mid when set.
func (v PropertyValuation) Validate() error {
	var errs []string
	if v.ValueMid <= 0 {
		errs = append(errs, "value_mid must be > 0")
	}
	if math.IsNaN(v.Confidence) || v.Confidence < 0 || v.Confidence > 1 {
		errs = append(errs, "confidence must be between 0 and 1")
	}
	switch v.Trend {
	case TrendRising, TrendStable, TrendFalling:
	default:
		errs = append(errs, "trend must be rising, stable or falling")
	}
	if v.ValueLow > 0 && v.ValueLow > v.ValueMid {
		errs = append(errs, "value_low must be <= value_mid")
	}
	if v.ValueHigh > 0 && v.ValueHigh < v.ValueMid {
		errs = append(errs, "value_high must be >= value_mid")
	}
	if len(errs) > 0 {
		return eris.Errorf("model: invalid valuation: %s", strings.Join(errs, "; "))
	}
	return nil
}
