// Package section locates bounded subsections of a registry certificate.
//
// A section that is absent is reported as NotFound and must never be
// replaced by a scan of the whole document: full renderings carry
// struck-through historical entries that would raise false flags.
package section

import (
	"regexp"
	"strings"
)

// Status distinguishes a located section from a legitimately empty or an
// absent one.
type Status int

const (
	NotFound Status = iota
	Found
	Empty
)

// String returns the status label used in logs and metrics.
func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Empty:
		return "empty"
	default:
		return "not_found"
	}
}

// Spec names a start heading and the headings or footer markers that end it.
// Starts lists acceptable aliases; the earliest match wins.
type Spec struct {
	Name        string
	Starts      []*regexp.Regexp
	Terminators []*regexp.Regexp
}

// Result is the outcome of Locate.
type Result struct {
	Name   string
	Status Status
	Text   string
}

// sentinel is the "no records" phrase printed under an empty heading,
// optionally after a bullet or a column-header row.
var sentinel = regexp.MustCompile(
	`^[\s\-–•*·]*(?:순위번호\s*등기목적\s*접수정보\s*주요등기사항\s*대상소유자\s*)?[\s\-–•*·]*기\s*록\s*사\s*항\s*없\s*음`,
)

// Locate returns the span between the spec's start heading and the earliest
// terminator after it.
func Locate(text string, spec Spec) Result {
	res := Result{Name: spec.Name, Status: NotFound}
	if text == "" {
		return res
	}

	start, end := -1, -1
	for _, re := range spec.Starts {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if start < 0 || loc[0] < start {
			start, end = loc[0], loc[1]
		}
	}
	if start < 0 {
		return res
	}

	body := text[end:]
	stop := len(body)
	for _, re := range spec.Terminators {
		if loc := re.FindStringIndex(body); loc != nil && loc[0] < stop {
			stop = loc[0]
		}
	}
	body = strings.TrimSpace(body[:stop])

	if sentinel.MatchString(body) {
		res.Status = Empty
		return res
	}

	res.Status = Found
	res.Text = body
	return res
}

// Specs is the immutable set of sections the pipeline reads.
type Specs struct {
	OwnershipSummary Spec
	OwnershipOther   Spec
	SecuredClaims    Spec
	Title            Spec
	OwnershipBody    Spec
}

// Section names.
const (
	NameOwnershipSummary = "ownership_summary"
	NameOwnershipOther   = "ownership_other"
	NameSecuredClaims    = "secured_claims"
	NameTitle            = "title"
	NameOwnershipBody    = "ownership_body"
)

// DefaultSpecs builds the section specs for the Korean registry summary
// ("주요 등기사항 요약") and the title and 갑구 bodies.
func DefaultSpecs() Specs {
	ownershipSummary := regexp.MustCompile(`(?:1\s*\.\s*)?소유지분\s*현황(?:\s*\(\s*갑\s*구\s*\))?`)
	ownershipOther := regexp.MustCompile(`(?:2\s*\.\s*)?소유지분을\s*제외한\s*소유권에\s*관한\s*사항(?:\s*\(\s*갑\s*구\s*\))?`)
	securedClaims := regexp.MustCompile(`(?:3\s*\.\s*)?\(\s*근\s*\)\s*저당권\s*및\s*전세권\s*등(?:\s*\(\s*을\s*구\s*\))?`)
	titleHeading := regexp.MustCompile(`[【\[]\s*표\s*제\s*부\s*[】\]]`)
	gapHeading := regexp.MustCompile(`[【\[]\s*갑\s*구\s*[】\]]`)
	eulHeading := regexp.MustCompile(`[【\[]\s*을\s*구\s*[】\]]`)
	summaryHeading := regexp.MustCompile(`주요\s*등기사항\s*요약`)

	footers := []*regexp.Regexp{
		regexp.MustCompile(`\[\s*참\s*고\s*사\s*항\s*\]`),
		regexp.MustCompile(`본\s*주요\s*등기사항\s*요약은`),
		regexp.MustCompile(`관할\s*등기소`),
		regexp.MustCompile(`출력\s*일시`),
		regexp.MustCompile(`열람\s*일시`),
	}

	return Specs{
		OwnershipSummary: Spec{
			Name:        NameOwnershipSummary,
			Starts:      []*regexp.Regexp{ownershipSummary},
			Terminators: append([]*regexp.Regexp{ownershipOther, securedClaims}, footers...),
		},
		OwnershipOther: Spec{
			Name:        NameOwnershipOther,
			Starts:      []*regexp.Regexp{ownershipOther},
			Terminators: append([]*regexp.Regexp{securedClaims}, footers...),
		},
		SecuredClaims: Spec{
			Name:        NameSecuredClaims,
			Starts:      []*regexp.Regexp{securedClaims},
			Terminators: footers,
		},
		Title: Spec{
			Name:        NameTitle,
			Starts:      []*regexp.Regexp{titleHeading},
			Terminators: []*regexp.Regexp{gapHeading, eulHeading, summaryHeading},
		},
		OwnershipBody: Spec{
			Name:        NameOwnershipBody,
			Starts:      []*regexp.Regexp{gapHeading},
			Terminators: []*regexp.Regexp{eulHeading, summaryHeading},
		},
	}
}

// All returns the specs in pipeline order.
func (s Specs) All() []Spec {
	return []Spec{s.OwnershipSummary, s.OwnershipOther, s.SecuredClaims, s.Title, s.OwnershipBody}
}

// LocateAll runs every spec and keys the results by section name.
func LocateAll(text string, specs Specs) map[string]Result {
	out := make(map[string]Result, 5)
	for _, spec := range specs.All() {
		out[spec.Name] = Locate(text, spec)
	}
	return out
}
