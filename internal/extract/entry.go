package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Purpose classifies the registration purpose (등기목적) of an entry.
type Purpose int

const (
	PurposeOther Purpose = iota
	PurposeMortgage
	PurposeLeaseDeposit
	PurposeTenancy
	PurposeAmendment
	PurposeTransfer
	PurposeLien
	PurposeOwnership
)

// Entry is one numbered row of a registry section. Sub is zero for a base
// entry and k for a sub-entry "N-k".
type Entry struct {
	Priority int
	Sub      int
	Purpose  Purpose
	Keyword  string
	Body     string
}

// purposeKeywords are the registration purposes an entry can start with.
var purposeKeywords = []string{
	`근저당권설정`, `근저당권변경`, `근저당권경정`, `근저당권이전`,
	`저당권설정`, `저당권변경`, `저당권경정`, `저당권이전`,
	`전세권설정`, `전세권변경`, `전세권경정`, `전세권이전`,
	`주택임차권설정`, `주택임차권`, `임차권설정`, `임차권변경`, `임차권경정`, `임차권이전`,
	`임의경매개시결정`, `강제경매개시결정`, `경매개시결정`,
	`가압류`, `압류`, `가처분`,
	`소유권이전청구권가등기`, `가등기`, `지상권설정`, `지역권설정`, `예고등기`,
	`소유권보존`, `소유권이전`, `소유권일부이전`, `공유자전원지분전부이전`,
}

var entryStart = regexp.MustCompile(
	`(?:^|\s)(\d{1,3})(?:\s*-\s*(\d{1,3}))?\s+(` + alternation(purposeKeywords) + `)`,
)

// alternation joins words into a regexp alternation ordered longest-first.
// Go alternation takes the first listed branch that matches, so a keyword
// must come before any of its prefixes.
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	for i, w := range sorted {
		sorted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(sorted, "|")
}

// SplitEntries splits section text into numbered entries. Text before the
// first recognizable entry is discarded. Line breaks inside an entry are
// folded to spaces.
func SplitEntries(text string) []Entry {
	locs := entryStart.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		prio, _ := strconv.Atoi(text[loc[2]:loc[3]])
		sub := 0
		if loc[4] >= 0 {
			sub, _ = strconv.Atoi(text[loc[4]:loc[5]])
		}
		kw := text[loc[6]:loc[7]]
		body := strings.Join(strings.Fields(text[loc[7]:end]), " ")
		entries = append(entries, Entry{
			Priority: prio,
			Sub:      sub,
			Purpose:  classifyPurpose(kw),
			Keyword:  kw,
			Body:     body,
		})
	}
	return entries
}

func classifyPurpose(kw string) Purpose {
	switch {
	case strings.HasPrefix(kw, "소유권이전청구권"), strings.HasSuffix(kw, "가등기"),
		strings.HasPrefix(kw, "지상권"), strings.HasPrefix(kw, "지역권"), kw == "예고등기":
		return PurposeOther
	case strings.HasPrefix(kw, "소유권"), strings.HasPrefix(kw, "공유자"):
		return PurposeOwnership
	case strings.HasSuffix(kw, "변경"), strings.HasSuffix(kw, "경정"):
		return PurposeAmendment
	case strings.HasSuffix(kw, "이전"):
		return PurposeTransfer
	case strings.Contains(kw, "저당권"):
		return PurposeMortgage
	case strings.HasPrefix(kw, "전세권"):
		return PurposeLeaseDeposit
	case strings.Contains(kw, "임차권"):
		return PurposeTenancy
	case strings.Contains(kw, "압류"), kw == "가처분", strings.HasSuffix(kw, "경매개시결정"):
		return PurposeLien
	default:
		return PurposeOther
	}
}
