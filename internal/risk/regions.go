package risk

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Region is one tier of the small-deposit priority table. A region with no
// match keywords is the fallback and must come last.
type Region struct {
	Key          string   `yaml:"key" json:"key"`
	Label        string   `yaml:"label" json:"label"`
	Threshold    int64    `yaml:"threshold" json:"threshold"`
	ProtectedCap int64    `yaml:"protected_cap" json:"protected_cap"`
	Match        []string `yaml:"match" json:"match,omitempty"`
}

// RegionTable is an ordered, immutable list of regions, most specific
// first. Build one with DefaultRegions or LoadRegions.
type RegionTable struct {
	regions []Region
}

// DefaultRegions returns the statutory small-deposit table.
func DefaultRegions() RegionTable {
	return RegionTable{regions: []Region{
		{
			Key:          "seoul",
			Label:        "서울특별시",
			Threshold:    165_000_000,
			ProtectedCap: 55_000_000,
			Match:        []string{"서울"},
		},
		{
			Key:          "overcrowded",
			Label:        "과밀억제권역 (세종, 용인, 화성, 김포 포함)",
			Threshold:    145_000_000,
			ProtectedCap: 48_000_000,
			Match: []string{
				"세종", "용인", "화성", "김포", "인천",
				"의정부", "구리시", "남양주", "하남", "고양", "수원", "성남",
				"안양", "부천", "광명", "과천", "의왕", "군포", "시흥",
			},
		},
		{
			Key:          "metro",
			Label:        "광역시 (안산, 광주, 파주, 이천, 평택 포함)",
			Threshold:    85_000_000,
			ProtectedCap: 28_000_000,
			Match:        []string{"광역시", "부산", "대구", "광주", "대전", "울산", "안산", "파주", "이천", "평택"},
		},
		{
			Key:          "other",
			Label:        "그 밖의 지역",
			Threshold:    75_000_000,
			ProtectedCap: 25_000_000,
		},
	}}
}

type regionFile struct {
	Regions []Region `yaml:"regions"`
}

// LoadRegions reads a region table from a YAML file.
func LoadRegions(path string) (RegionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RegionTable{}, eris.Wrapf(err, "risk: read regions file %s", path)
	}
	var f regionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return RegionTable{}, eris.Wrapf(err, "risk: parse regions file %s", path)
	}
	return NewRegionTable(f.Regions...)
}

// NewRegionTable validates regions and builds a table.
func NewRegionTable(regions ...Region) (RegionTable, error) {
	if len(regions) == 0 {
		return RegionTable{}, eris.New("risk: region table is empty")
	}
	var errs []string
	seen := make(map[string]bool)
	for i, r := range regions {
		if r.Key == "" {
			errs = append(errs, "region key is required")
		} else if seen[r.Key] {
			errs = append(errs, "duplicate region "+r.Key)
		}
		seen[r.Key] = true
		if r.Threshold <= 0 || r.ProtectedCap <= 0 {
			errs = append(errs, r.Key+": threshold and protected_cap must be > 0")
		}
		if r.ProtectedCap > r.Threshold {
			errs = append(errs, r.Key+": protected_cap must be <= threshold")
		}
		if len(r.Match) == 0 && i != len(regions)-1 {
			errs = append(errs, r.Key+": only the last region may omit match")
		}
	}
	if len(regions[len(regions)-1].Match) != 0 {
		errs = append(errs, "last region must be a fallback with no match")
	}
	if len(errs) > 0 {
		return RegionTable{}, eris.Errorf("risk: invalid region table: %s", strings.Join(errs, "; "))
	}
	return RegionTable{regions: append([]Region(nil), regions...)}, nil
}

// Regions returns a copy of the table in match order.
func (t RegionTable) Regions() []Region {
	return append([]Region(nil), t.regions...)
}

// Resolve returns the first region whose keywords appear in address. An
// empty table resolves to the zero Region.
func (t RegionTable) Resolve(address string) Region {
	address = strings.Join(strings.Fields(address), "")
	for _, r := range t.regions {
		if len(r.Match) == 0 {
			return r
		}
		for _, m := range r.Match {
			if strings.Contains(address, strings.ReplaceAll(m, " ", "")) {
				return r
			}
		}
	}
	return Region{}
}
