package risk

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Weights are the component weights of the overall score. They sum to 1.
type Weights struct {
	LTV      float64 `yaml:"ltv"`
	Debt     float64 `yaml:"debt"`
	Legal    float64 `yaml:"legal"`
	Market   float64 `yaml:"market"`
	Building float64 `yaml:"building"`
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{LTV: 0.30, Debt: 0.25, Legal: 0.25, Market: 0.10, Building: 0.10}
}

// Sum returns the sum of all component weights.
func (w Weights) Sum() float64 {
	return w.LTV + w.Debt + w.Legal + w.Market + w.Building
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	var errs []string
	for name, v := range map[string]float64{
		"ltv": w.LTV, "debt": w.Debt, "legal": w.Legal, "market": w.Market, "building": w.Building,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}
	sort.Strings(errs)
	if sum := w.Sum(); math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.3f", sum))
	}
	if len(errs) > 0 {
		return eris.Errorf("risk: invalid weights: %s", strings.Join(errs, "; "))
	}
	return nil
}
