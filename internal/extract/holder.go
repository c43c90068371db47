package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	receiptToken = regexp.MustCompile(`제\s*\d+\s*호`)
	idToken      = regexp.MustCompile(`\d{6}\s*-\s*[\d*]{7}|\d{3}-\d{2}-\d{5}`)
	holderDate   = regexp.MustCompile(`\s*\d{4}년\d{1,2}월\d{1,2}일.*$`)
	hangulOnly   = regexp.MustCompile(`^[가-힣]+$`)
)

// orgMarkers identify a token as part of an institution name.
var orgMarkers = []string{
	"주식회사", "(주)", "㈜", "유한회사", "합자회사", "은행", "캐피탈", "보험", "생명", "화재",
	"저축", "금고", "협동조합", "조합", "신협", "농협", "수협", "축협", "신탁", "카드",
	"대부", "증권", "투자", "공사", "공단", "재단", "법인", "중앙회", "공제회", "자산관리",
	"펀드", "리츠",
}

// branchMarkers are institution sub-units, never personal names.
var branchMarkers = []string{"지점", "본점", "지사", "센터", "출장소", "영업부", "사업소"}

func isOrgToken(tok string) bool {
	for _, m := range orgMarkers {
		if strings.Contains(tok, m) {
			return true
		}
	}
	return false
}

func isPersonalName(tok string) bool {
	n := utf8.RuneCountInString(tok)
	if n < 2 || n > 4 || !hangulOnly.MatchString(tok) || isOrgToken(tok) {
		return false
	}
	for _, m := range branchMarkers {
		if strings.Contains(tok, m) {
			return false
		}
	}
	return true
}

// CleanHolder strips receipt numbers and ID numbers from a creditor or
// tenant name, then repeatedly removes a short personal name merged onto
// either end of an institution name.
func CleanHolder(raw string) string {
	s := receiptToken.ReplaceAllString(raw, " ")
	s = idToken.ReplaceAllString(s, " ")
	s = strings.NewReplacer("(", " (", ")", ") ").Replace(s)
	toks := strings.Fields(s)
	toks = rejoinParens(toks)

	for {
		n := len(toks)
		if n >= 2 && isPersonalName(toks[0]) && isOrgToken(toks[1]) {
			toks = toks[1:]
		}
		if n := len(toks); n >= 2 && isPersonalName(toks[n-1]) && isOrgToken(toks[n-2]) {
			toks = toks[:n-1]
		}
		if len(toks) == n {
			break
		}
	}
	return strings.Trim(strings.Join(toks, " "), " ,.·-")
}

// rejoinParens glues "(주)" style markers back onto the following token
// so "(주) 한국" and "(주)한국" clean the same way.
func rejoinParens(toks []string) []string {
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		if strings.HasPrefix(toks[i], "(") && strings.HasSuffix(toks[i], ")") && isOrgToken(toks[i]) && i+1 < len(toks) {
			out = append(out, toks[i]+toks[i+1])
			i++
			continue
		}
		out = append(out, toks[i])
	}
	return out
}

// holderText cuts raw holder text at the first date, which starts an inline
// transfer or the next column, and at a registration number that follows
// the name and precedes an address. The rest is cleaned.
func holderText(raw string) string {
	raw = holderDate.ReplaceAllString(raw, "")
	if loc := idToken.FindStringIndex(raw); loc != nil && strings.TrimSpace(raw[:loc[0]]) != "" {
		raw = raw[:loc[0]]
	}
	return CleanHolder(raw)
}

// stripOwners drops owner names printed next to the holder in the
// target-owner column. A single remaining token is kept.
func stripOwners(holder string, owners []string) string {
	if len(owners) == 0 || holder == "" {
		return holder
	}
	set := make(map[string]bool, len(owners))
	for _, o := range owners {
		set[strings.TrimSpace(o)] = true
	}
	toks := strings.Fields(holder)
	for len(toks) > 1 && set[toks[len(toks)-1]] {
		toks = toks[:len(toks)-1]
	}
	for len(toks) > 1 && set[toks[0]] {
		toks = toks[1:]
	}
	return strings.Join(toks, " ")
}

var holderRole = regexp.MustCompile(`(?:근저당권자|저당권자|전세권자|임차권자)\s*`)

// HolderAfterRole returns the cleaned name following the first creditor or
// tenant role keyword in an entry body.
func HolderAfterRole(body string) (string, bool) {
	loc := holderRole.FindStringIndex(body)
	if loc == nil {
		return "", false
	}
	name := holderText(body[loc[1]:])
	if name == "" || roleKeyword.MatchString(name) {
		return "", false
	}
	return name, true
}
