// Package valuation looks up market values for a unit and estimates one
// from the deposit when no valuation is available.
package valuation

import (
	"context"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/jeonse-risk/internal/model"
)

// ErrUnavailable reports that no valuation exists for an address.
var ErrUnavailable = eris.New("valuation: unavailable")

// Provider returns the market valuation of the unit at an address.
type Provider interface {
	Lookup(ctx context.Context, address string) (model.PropertyValuation, error)
}

// Entry is one address in a static valuation file.
type Entry struct {
	Address    string  `yaml:"address"`
	ValueLow   int64   `yaml:"value_low"`
	ValueMid   int64   `yaml:"value_mid"`
	ValueHigh  int64   `yaml:"value_high"`
	Confidence float64 `yaml:"confidence"`
	Trend      string  `yaml:"trend"`
}

// StaticProvider serves valuations from a fixed table keyed by address
// with whitespace removed.
type StaticProvider struct {
	values map[string]model.PropertyValuation
}

// NewStaticProvider builds a provider from entries. Invalid entries are
// rejected.
func NewStaticProvider(entries ...Entry) (*StaticProvider, error) {
	p := &StaticProvider{values: make(map[string]model.PropertyValuation, len(entries))}
	for _, e := range entries {
		trend, err := model.ParseTrend(e.Trend)
		if err != nil {
			return nil, eris.Wrapf(err, "valuation: entry %q", e.Address)
		}
		v := model.PropertyValuation{
			ValueLow:   e.ValueLow,
			ValueMid:   e.ValueMid,
			ValueHigh:  e.ValueHigh,
			Confidence: e.Confidence,
			Trend:      trend,
			Source:     model.ValuationProvided,
		}
		if err := v.Validate(); err != nil {
			return nil, eris.Wrapf(err, "valuation: entry %q", e.Address)
		}
		p.values[addressKey(e.Address)] = v
	}
	return p, nil
}

// LoadFile reads a static provider from a YAML list of entries.
func LoadFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "valuation: read %s", path)
	}
	var f struct {
		Valuations []Entry `yaml:"valuations"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "valuation: parse %s", path)
	}
	return NewStaticProvider(f.Valuations...)
}

// Lookup implements Provider.
func (p *StaticProvider) Lookup(_ context.Context, address string) (model.PropertyValuation, error) {
	if p != nil {
		if v, ok := p.values[addressKey(address)]; ok {
			return v, nil
		}
	}
	return model.PropertyValuation{}, ErrUnavailable
}

// Len returns the number of addresses served.
func (p *StaticProvider) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

func addressKey(address string) string {
	return strings.Join(strings.Fields(address), "")
}

// EstimateFromDeposit derives a valuation from the deposit under an
// assumed jeonse-to-value ratio: mid = deposit / ratio with a ±10% band,
// stable trend and the given confidence.
func EstimateFromDeposit(deposit int64, ratio, confidence float64) (model.PropertyValuation, error) {
	if deposit <= 0 {
		return model.PropertyValuation{}, eris.New("valuation: deposit must be > 0")
	}
	if ratio <= 0 || ratio > 1 {
		return model.PropertyValuation{}, eris.Errorf("valuation: jeonse ratio must be in (0,1], got %v", ratio)
	}
	mid := int64(math.Round(float64(deposit) / ratio))
	return model.PropertyValuation{
		ValueLow:   int64(math.Round(float64(mid) * 0.9)),
		ValueMid:   mid,
		ValueHigh:  int64(math.Round(float64(mid) * 1.1)),
		Confidence: math.Min(math.Max(confidence, 0), 1),
		Trend:      model.TrendStable,
		Source:     model.ValuationEstimated,
	}, nil
}
