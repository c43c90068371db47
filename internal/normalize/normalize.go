// Package normalize canonicalizes recognized registry text before any
// section location or extraction runs.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Keywords are registry terms whose characters OCR often separates with
// stray spaces. A space inside a keyword is kept as a single space.
var Keywords = []string{
	// summary headings and columns
	"소유지분현황", "소유지분을 제외한 소유권에 관한 사항",
	"순위번호", "등기목적", "접수정보", "주요등기사항", "대상소유자",
	"등기명의인", "등록번호", "최종지분", "등기원인", "권리자및기타사항",
	"표제부", "기록사항 없음", "참고사항",
	// claim purposes and roles
	"근저당권설정", "근저당권변경", "근저당권이전", "근저당권자", "채권최고액",
	"저당권설정", "전세권설정", "전세권변경", "전세권이전", "전세권자", "전세금",
	"주택임차권", "임차권설정", "임차권변경", "임차권이전", "임차권자", "임차보증금",
	"채무자", "채권자", "권리자", "소유자", "공유자", "청구금액",
	// liens and title restrictions
	"임의경매개시결정", "강제경매개시결정", "경매개시결정", "가압류", "가처분", "압류",
	"소유권이전청구권가등기", "가등기", "예고등기", "지상권", "지역권", "대지권미등기",
	"소유권보존", "소유권이전", "단독소유",
}

type keywordRule struct {
	re   *regexp.Regexp
	repl string
}

var keywordRules = buildKeywordRules(Keywords)

func buildKeywordRules(words []string) []keywordRule {
	sorted := append([]string(nil), words...)
	// Longest first so a longer keyword is joined before its substrings.
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	rules := make([]keywordRule, 0, len(sorted))
	for _, w := range sorted {
		var parts []string
		for _, r := range w {
			if r == ' ' {
				continue
			}
			parts = append(parts, regexp.QuoteMeta(string(r)))
		}
		rules = append(rules, keywordRule{
			re:   regexp.MustCompile(strings.Join(parts, ` *`)),
			repl: w,
		})
	}
	return rules
}

// headerFragments are table column-header rows the recognizer splices into
// data rows. Removing one can rejoin a keyword it was spliced into.
var headerFragments = []*regexp.Regexp{
	regexp.MustCompile(`순위번호 *등기목적 *접수정보 *주요등기사항 *대상소유자`),
	regexp.MustCompile(`순위번호 *등기목적 *접 *수 *등기원인 *권리자및기타사항`),
	regexp.MustCompile(`등기명의인 *\(?주민\)? *등록번호 *최종지분 *주 *소 *순위번호`),
}

var (
	horizontalSpace = regexp.MustCompile(`[\t\f\v\x{00A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]`)
	zeroWidth       = strings.NewReplacer("\u200b", "", "\ufeff", "", "\u200c", "", "\u200d", "")
	spaceRun        = regexp.MustCompile(` {2,}`)
	blankRun        = regexp.MustCompile(`\n{3,}`)

	splitDate  = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`)
	dottedDate = regexp.MustCompile(`(^|[^\d,.])((?:19|20)\d{2}) *\. *(\d{1,2}) *\. *(\d{1,2})\.?`)
	splitMoney = regexp.MustCompile(`금 *(\d[\d,억천백십만 ]*?) *원`)
)

// Normalize canonicalizes whitespace, dates, currency and keyword spacing.
// It is pure and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)
	text = width.Fold.String(text)
	text = zeroWidth.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")

	text = canonicalizeKeywords(text)

	text = splitDate.ReplaceAllString(text, "${1}년${2}월${3}일")
	text = dottedDate.ReplaceAllString(text, "${1}${2}년${3}월${4}일")
	text = splitMoney.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, " ", "")
	})

	return collapseWhitespace(text)
}

// canonicalizeKeywords alternates keyword joining and header stripping until
// neither changes the text. Both steps only shorten it, so the loop ends.
func canonicalizeKeywords(text string) string {
	for {
		prev := text
		for _, rule := range keywordRules {
			text = rule.re.ReplaceAllString(text, rule.repl)
		}
		for _, re := range headerFragments {
			text = re.ReplaceAllString(text, " ")
		}
		if text == prev {
			return text
		}
	}
}

// collapseWhitespace trims each line, collapses space runs and keeps at most
// one blank line between paragraphs.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
